package planner

import (
	"fmt"
	"strings"

	spotv1alpha1 "github.com/mehdiazizian/spot-score-tracker/api/v1alpha1"
)

var unitTypes = map[string]struct{}{
	spotv1alpha1.UnitTypeVCPU:      {},
	spotv1alpha1.UnitTypeMemoryMiB: {},
	spotv1alpha1.UnitTypeUnits:     {},
}

func validate(dashboard string, cfg *spotv1alpha1.ScoringConfiguration) *ValidationError {
	fail := func(field, reason string) *ValidationError {
		return &ValidationError{
			Dashboard:     dashboard,
			Configuration: cfg.ConfigurationName,
			Field:         field,
			Reason:        reason,
		}
	}

	if strings.TrimSpace(cfg.ConfigurationName) == "" {
		return fail("ConfigurationName", "must not be empty")
	}
	if len(cfg.RegionNames) == 0 {
		return fail("RegionNames", "at least one region is required")
	}
	for i, region := range cfg.RegionNames {
		if strings.TrimSpace(region) == "" {
			return fail(fmt.Sprintf("RegionNames[%d]", i), "must not be empty")
		}
	}
	if cfg.TargetCapacity <= 0 {
		return fail("TargetCapacity", fmt.Sprintf("must be strictly positive, got %d", cfg.TargetCapacity))
	}
	if _, ok := unitTypes[strings.ToLower(cfg.TargetCapacityUnitType)]; !ok {
		return fail("TargetCapacityUnitType", fmt.Sprintf("must be one of vcpu, memory-mib or units, got %q", cfg.TargetCapacityUnitType))
	}

	hasTypes := len(cfg.InstanceTypes) > 0
	hasRequirements := cfg.InstanceRequirementsWithMetadata != nil
	switch {
	case hasTypes && hasRequirements:
		return fail("InstanceTypes", "mutually exclusive with InstanceRequirementsWithMetadata")
	case !hasTypes && !hasRequirements:
		return fail("InstanceTypes", "one of InstanceTypes or InstanceRequirementsWithMetadata is required")
	}

	for i, instanceType := range cfg.InstanceTypes {
		if strings.TrimSpace(instanceType) == "" {
			return fail(fmt.Sprintf("InstanceTypes[%d]", i), "must not be empty")
		}
	}

	if hasRequirements {
		if field, reason := validateRequirements(cfg.InstanceRequirementsWithMetadata.InstanceRequirements); field != "" {
			return fail("InstanceRequirementsWithMetadata.InstanceRequirements."+field, reason)
		}
	}
	return nil
}

func validateRequirements(r *spotv1alpha1.InstanceRequirements) (string, string) {
	if r == nil {
		return "", ""
	}

	intRanges := []struct {
		field string
		r     *spotv1alpha1.IntRange
	}{
		{"VCpuCount", r.VCpuCount},
		{"MemoryMiB", r.MemoryMiB},
		{"AcceleratorCount", r.AcceleratorCount},
		{"AcceleratorTotalMemoryMiB", r.AcceleratorTotalMemoryMiB},
	}
	for _, b := range intRanges {
		if b.r == nil {
			continue
		}
		if b.r.Min != nil && *b.r.Min < 0 {
			return b.field, fmt.Sprintf("Min must not be negative, got %d", *b.r.Min)
		}
		if b.r.Min != nil && b.r.Max != nil && *b.r.Min > *b.r.Max {
			return b.field, fmt.Sprintf("Min %d is greater than Max %d", *b.r.Min, *b.r.Max)
		}
	}

	if m := r.MemoryGiBPerVCpu; m != nil && m.Min != nil && m.Max != nil && *m.Min > *m.Max {
		return "MemoryGiBPerVCpu", fmt.Sprintf("Min %g is greater than Max %g", *m.Min, *m.Max)
	}

	if p := r.SpotMaxPricePercentageOverLowestPrice; p != nil && *p < 0 {
		return "SpotMaxPricePercentageOverLowestPrice", "must not be negative"
	}
	if p := r.OnDemandMaxPricePercentageOverLowestPrice; p != nil && *p < 0 {
		return "OnDemandMaxPricePercentageOverLowestPrice", "must not be negative"
	}
	return "", ""
}
