// Package scoring describes requests to the Spot placement score API and
// the error kinds the rest of the pipeline reacts to.
package scoring

import (
	"context"
	"encoding/json"

	spotv1alpha1 "github.com/mehdiazizian/spot-score-tracker/api/v1alpha1"
)

// Scores are reported on a 1 to 9 scale
const (
	MinScore int32 = 1
	MaxScore int32 = 9
)

// Owner identifies the configuration a request was planned from
type Owner struct {
	Dashboard     string
	Configuration string
}

// ScoreRequest is the wire ready form of a scoring configuration. Identical
// configurations of a run share a single request and list every owner.
type ScoreRequest struct {
	Owners []Owner `json:"-"`

	TargetCapacity                   int32                                          `json:"targetCapacity"`
	TargetCapacityUnitType           string                                         `json:"targetCapacityUnitType"`
	SingleAvailabilityZone           bool                                           `json:"singleAvailabilityZone"`
	RegionNames                      []string                                       `json:"regionNames"`
	InstanceTypes                    []string                                       `json:"instanceTypes,omitempty"`
	InstanceRequirementsWithMetadata *spotv1alpha1.InstanceRequirementsWithMetadata `json:"instanceRequirementsWithMetadata,omitempty"`
}

// Fingerprint identifies the request payload regardless of its owners
func (r *ScoreRequest) Fingerprint() string {
	data, err := json.Marshal(r)
	if err != nil {
		// only reachable with NaN bounds, keep the request unique
		return ""
	}
	return string(data)
}

// Score is one scored region, or one zone when SingleAvailabilityZone is set
type Score struct {
	Region             string
	AvailabilityZoneID string
	Score              int32
}

// Client submits score requests
type Client interface {
	GetScores(ctx context.Context, req *ScoreRequest) ([]Score, error)
}

// ClientFunc adapts a function to Client
type ClientFunc func(ctx context.Context, req *ScoreRequest) ([]Score, error)

// GetScores calls f
func (f ClientFunc) GetScores(ctx context.Context, req *ScoreRequest) ([]Score, error) {
	return f(ctx, req)
}
