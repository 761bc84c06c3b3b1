package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// State of a run
type State string

const (
	StateLoading    State = "Loading"
	StatePlanning   State = "Planning"
	StateExecuting  State = "Executing"
	StateMapping    State = "Mapping"
	StatePublishing State = "Publishing"
	StateDone       State = "Done"
	StateFailed     State = "Failed"
)

// Reason classifies a summary entry
type Reason string

const (
	ReasonValidation       Reason = "ValidationError"
	ReasonQuotaExceeded    Reason = "QuotaExceeded"
	ReasonSkippedQuota     Reason = "Skipped: QuotaExceeded"
	ReasonSkippedCancelled Reason = "Skipped: Cancelled"
	ReasonTransient        Reason = "Failed: Transient"
	ReasonInvalidRequest   Reason = "Failed: InvalidRequest"
	ReasonPublish          Reason = "Failed: PublishError"
	ReasonUnscored         Reason = "Unscored"
	ReasonLoad             Reason = "FatalLoadError"
)

// Failure is one item of a run that did not produce or publish a score
type Failure struct {
	Dashboard     string
	Configuration string
	Region        string
	Metric        string
	Reason        Reason
	Message       string
}

func (f Failure) String() string {
	var b strings.Builder
	b.WriteString(string(f.Reason))
	if f.Dashboard != "" || f.Configuration != "" {
		fmt.Fprintf(&b, " %s/%s", f.Dashboard, f.Configuration)
	}
	if f.Region != "" {
		fmt.Fprintf(&b, " region=%s", f.Region)
	}
	if f.Metric != "" {
		fmt.Fprintf(&b, " metric=%s", f.Metric)
	}
	if f.Message != "" {
		fmt.Fprintf(&b, ": %s", f.Message)
	}
	return b.String()
}

// RunSummary is returned to the trigger of a run. Counters are per scoring
// configuration, not per API request.
type RunSummary struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	State     State

	Configurations int
	Attempted      int
	Succeeded      int
	Throttled      int
	Skipped        int
	Failed         int

	DataPoints      int
	Published       int
	PublishFailures int
	UnscoredRegions int

	Failures []Failure
}

// Degraded reports whether anything short of a full success happened
func (s *RunSummary) Degraded() bool {
	return s.State == StateFailed ||
		s.Throttled > 0 || s.Skipped > 0 || s.Failed > 0 ||
		s.PublishFailures > 0 || s.UnscoredRegions > 0
}

func (s *RunSummary) addFailure(f Failure) {
	s.Failures = append(s.Failures, f)
}
