// Package planner turns scoring configurations into score requests.
package planner

import (
	"fmt"
	"strings"

	spotv1alpha1 "github.com/mehdiazizian/spot-score-tracker/api/v1alpha1"
	"github.com/mehdiazizian/spot-score-tracker/internal/config"
	"github.com/mehdiazizian/spot-score-tracker/internal/scoring"
)

// ValidationError rejects a single configuration and names the field at fault
type ValidationError struct {
	Dashboard     string
	Configuration string
	Field         string
	Reason        string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration %q in dashboard %q: %s: %s",
		e.Configuration, e.Dashboard, e.Field, e.Reason)
}

// Rejected is a configuration that could not be planned
type Rejected struct {
	Owner scoring.Owner
	Err   *ValidationError
}

// Plan is the outcome of planning a document. Requests keep the declaration
// order of their first owner.
type Plan struct {
	Requests       []*scoring.ScoreRequest
	Rejected       []Rejected
	Configurations int
}

// PlanConfiguration validates one configuration and builds its request.
// The request holds copies of every source field.
func PlanConfiguration(dashboard string, cfg *spotv1alpha1.ScoringConfiguration) (*scoring.ScoreRequest, error) {
	if err := validate(dashboard, cfg); err != nil {
		return nil, err
	}

	req := &scoring.ScoreRequest{
		Owners:                 []scoring.Owner{{Dashboard: dashboard, Configuration: cfg.ConfigurationName}},
		TargetCapacity:         cfg.TargetCapacity,
		TargetCapacityUnitType: strings.ToLower(cfg.TargetCapacityUnitType),
		SingleAvailabilityZone: cfg.SingleAvailabilityZone,
		RegionNames:            append([]string(nil), cfg.RegionNames...),
	}
	if len(cfg.InstanceTypes) > 0 {
		req.InstanceTypes = append([]string(nil), cfg.InstanceTypes...)
	}
	if cfg.InstanceRequirementsWithMetadata != nil {
		req.InstanceRequirementsWithMetadata = cfg.InstanceRequirementsWithMetadata.DeepCopy()
	}
	return req, nil
}

// PlanDocument plans every configuration of the document. A configuration
// that fails validation is rejected without affecting its siblings, and
// identical requests are merged so each one is submitted once per run.
func PlanDocument(doc *config.Document) *Plan {
	plan := &Plan{}
	byFingerprint := make(map[string]*scoring.ScoreRequest)

	for _, dashboard := range doc.Dashboards {
		names := make(map[string]struct{}, len(dashboard.Configurations))
		for i := range dashboard.Configurations {
			cfg := &dashboard.Configurations[i]
			plan.Configurations++
			owner := scoring.Owner{Dashboard: dashboard.Name, Configuration: cfg.ConfigurationName}

			if _, dup := names[cfg.ConfigurationName]; dup {
				plan.Rejected = append(plan.Rejected, Rejected{Owner: owner, Err: &ValidationError{
					Dashboard:     dashboard.Name,
					Configuration: cfg.ConfigurationName,
					Field:         "ConfigurationName",
					Reason:        "already used in this dashboard",
				}})
				continue
			}
			names[cfg.ConfigurationName] = struct{}{}

			req, err := PlanConfiguration(dashboard.Name, cfg)
			if err != nil {
				plan.Rejected = append(plan.Rejected, Rejected{Owner: owner, Err: err.(*ValidationError)})
				continue
			}

			fp := req.Fingerprint()
			if existing, ok := byFingerprint[fp]; ok && fp != "" {
				existing.Owners = append(existing.Owners, owner)
				continue
			}
			byFingerprint[fp] = req
			plan.Requests = append(plan.Requests, req)
		}
	}
	return plan
}
