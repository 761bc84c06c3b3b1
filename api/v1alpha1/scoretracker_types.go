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

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Tracker phases
const (
	PhaseSucceeded = "Succeeded"
	PhaseDegraded  = "Degraded"
	PhaseFailed    = "Failed"
	PhaseSuspended = "Suspended"
)

// ScoreTrackerSpec defines the desired state of ScoreTracker.
// Exactly one of Dashboards, ConfigMapRef and S3 must be set.
type ScoreTrackerSpec struct {
	// Interval between two scoring runs
	// +optional
	Interval *metav1.Duration `json:"interval,omitempty"`

	// MetricNamespace overrides the namespace metrics are published under
	// +optional
	MetricNamespace string `json:"metricNamespace,omitempty"`

	// Suspend stops scheduling new runs
	// +optional
	Suspend bool `json:"suspend,omitempty"`

	// Dashboards is an inline configuration document
	// +optional
	Dashboards []Dashboard `json:"dashboards,omitempty"`

	// ConfigMapRef points to a ConfigMap key holding the document
	// +optional
	ConfigMapRef *ConfigMapKeyReference `json:"configMapRef,omitempty"`

	// S3 points to an object holding the document
	// +optional
	S3 *S3ObjectReference `json:"s3,omitempty"`
}

// ConfigMapKeyReference selects a key of a ConfigMap in the tracker namespace
type ConfigMapKeyReference struct {
	Name string `json:"name"`

	// Key defaults to sps_config.yaml
	// +optional
	Key string `json:"key,omitempty"`
}

// S3ObjectReference locates a document in object storage
type S3ObjectReference struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// RunStatus is the summary of the last scoring run
type RunStatus struct {
	Configurations  int32 `json:"configurations"`
	Attempted       int32 `json:"attempted"`
	Succeeded       int32 `json:"succeeded"`
	Throttled       int32 `json:"throttled"`
	Skipped         int32 `json:"skipped"`
	Failed          int32 `json:"failed"`
	DataPoints      int32 `json:"dataPoints"`
	PublishFailures int32 `json:"publishFailures"`
	UnscoredRegions int32 `json:"unscoredRegions"`

	// Failures holds one human readable reason per failed item
	// +optional
	Failures []string `json:"failures,omitempty"`
}

// ScoreTrackerStatus defines the observed state of ScoreTracker
type ScoreTrackerStatus struct {
	// +optional
	Phase string `json:"phase,omitempty"`

	// ObservedGeneration is the generation the last run was made for
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`

	// +optional
	LastRunTime *metav1.Time `json:"lastRunTime,omitempty"`

	// +optional
	LastRunID string `json:"lastRunID,omitempty"`

	// +optional
	LastRun *RunStatus `json:"lastRun,omitempty"`

	// +optional
	Message string `json:"message,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Succeeded",type=integer,JSONPath=`.status.lastRun.succeeded`
// +kubebuilder:printcolumn:name="Skipped",type=integer,JSONPath=`.status.lastRun.skipped`
// +kubebuilder:printcolumn:name="Last-Run",type=date,JSONPath=`.status.lastRunTime`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// ScoreTracker is the Schema for the scoretrackers API
type ScoreTracker struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ScoreTrackerSpec   `json:"spec,omitempty"`
	Status ScoreTrackerStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ScoreTrackerList contains a list of ScoreTracker
type ScoreTrackerList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ScoreTracker `json:"items"`
}

func init() {
	SchemeBuilder.Register(&ScoreTracker{}, &ScoreTrackerList{})
}
