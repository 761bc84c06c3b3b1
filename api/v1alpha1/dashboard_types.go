/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package v1alpha1

const (
	// MaxWidgetWidth is the width of the dashboard grid
	MaxWidgetWidth int32 = 24

	// DefaultWidgetWidth is used when a dashboard does not set one
	DefaultWidgetWidth int32 = 24

	// DefaultWidgetHeight is used when a dashboard does not set one
	DefaultWidgetHeight int32 = 6
)

// Target capacity unit types accepted by the Spot placement score API
const (
	UnitTypeVCPU      = "vcpu"
	UnitTypeMemoryMiB = "memory-mib"
	UnitTypeUnits     = "units"
)

// Dashboard groups scoring configurations that share layout defaults.
// Field names match the keys of the sps_config.yaml document.
type Dashboard struct {
	// Name of the dashboard, unique within a document
	Name string `json:"dashboard"`

	// DefaultWidgetHeight of the graph widgets
	// +optional
	DefaultWidgetHeight int32 `json:"defaultWidgetHeight,omitempty"`

	// DefaultWidgetWidth of the graph widgets, at most 24
	// +optional
	DefaultWidgetWidth int32 `json:"defaultWidgetWidth,omitempty"`

	// Configurations evaluated for this dashboard, in priority order
	Configurations []ScoringConfiguration `json:"sps"`
}

// ScoringConfiguration is one diversified capacity request
type ScoringConfiguration struct {
	// ConfigurationName is unique within its dashboard
	ConfigurationName string `json:"configurationName"`

	// TargetCapacity expressed in TargetCapacityUnitType
	TargetCapacity int32 `json:"targetCapacity"`

	// TargetCapacityUnitType is one of vcpu, memory-mib or units
	// +kubebuilder:validation:Enum=vcpu;memory-mib;units
	TargetCapacityUnitType string `json:"targetCapacityUnitType"`

	// SingleAvailabilityZone asks for per zone scores
	// +optional
	SingleAvailabilityZone bool `json:"singleAvailabilityZone,omitempty"`

	// RegionNames to evaluate
	RegionNames []string `json:"regionNames"`

	// InstanceTypes is mutually exclusive with InstanceRequirementsWithMetadata
	// +optional
	InstanceTypes []string `json:"instanceTypes,omitempty"`

	// InstanceRequirementsWithMetadata selects instance types by attributes
	// +optional
	InstanceRequirementsWithMetadata *InstanceRequirementsWithMetadata `json:"instanceRequirementsWithMetadata,omitempty"`
}

// InstanceRequirementsWithMetadata is the attribute based instance selection
type InstanceRequirementsWithMetadata struct {
	// +optional
	ArchitectureTypes []string `json:"architectureTypes,omitempty"`

	// +optional
	VirtualizationTypes []string `json:"virtualizationTypes,omitempty"`

	// +optional
	InstanceRequirements *InstanceRequirements `json:"instanceRequirements,omitempty"`
}

// InstanceRequirements lists instance attributes. Unset fields are left to
// the defaults of the scoring API.
type InstanceRequirements struct {
	// +optional
	VCpuCount *IntRange `json:"vCpuCount,omitempty"`

	// +optional
	MemoryMiB *IntRange `json:"memoryMiB,omitempty"`

	// +kubebuilder:validation:Type=object
	// +optional
	MemoryGiBPerVCpu *FloatRange `json:"memoryGiBPerVCpu,omitempty"`

	// +optional
	AcceleratorCount *IntRange `json:"acceleratorCount,omitempty"`

	// +optional
	AcceleratorTotalMemoryMiB *IntRange `json:"acceleratorTotalMemoryMiB,omitempty"`

	// +optional
	AcceleratorTypes []string `json:"acceleratorTypes,omitempty"`

	// +optional
	AcceleratorManufacturers []string `json:"acceleratorManufacturers,omitempty"`

	// +optional
	CpuManufacturers []string `json:"cpuManufacturers,omitempty"`

	// InstanceGenerations is current and/or previous
	// +optional
	InstanceGenerations []string `json:"instanceGenerations,omitempty"`

	// +optional
	AllowedInstanceTypes []string `json:"allowedInstanceTypes,omitempty"`

	// +optional
	ExcludedInstanceTypes []string `json:"excludedInstanceTypes,omitempty"`

	// SpotMaxPricePercentageOverLowestPrice is the price protection ceiling
	// +optional
	SpotMaxPricePercentageOverLowestPrice *int32 `json:"spotMaxPricePercentageOverLowestPrice,omitempty"`

	// +optional
	OnDemandMaxPricePercentageOverLowestPrice *int32 `json:"onDemandMaxPricePercentageOverLowestPrice,omitempty"`

	// BareMetal is included, excluded or required
	// +optional
	BareMetal string `json:"bareMetal,omitempty"`

	// BurstablePerformance is included, excluded or required
	// +optional
	BurstablePerformance string `json:"burstablePerformance,omitempty"`

	// LocalStorage is included, excluded or required
	// +optional
	LocalStorage string `json:"localStorage,omitempty"`

	// +optional
	RequireHibernateSupport *bool `json:"requireHibernateSupport,omitempty"`
}

// IntRange is an inclusive integer bound, either side may be omitted
type IntRange struct {
	// +optional
	Min *int32 `json:"min,omitempty"`
	// +optional
	Max *int32 `json:"max,omitempty"`
}

// FloatRange is an inclusive decimal bound, either side may be omitted
type FloatRange struct {
	// +optional
	Min *float64 `json:"min,omitempty"`
	// +optional
	Max *float64 `json:"max,omitempty"`
}
