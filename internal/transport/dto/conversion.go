package dto

import (
	"github.com/mehdiazizian/spot-score-tracker/internal/pipeline"
)

// ToRunSummaryDTO converts a run summary to its wire format. source names
// whatever triggered the run.
func ToRunSummaryDTO(source string, s *pipeline.RunSummary) *RunSummaryDTO {
	out := &RunSummaryDTO{
		RunID:           s.RunID,
		Source:          source,
		StartedAt:       s.StartedAt.UTC(),
		DurationSeconds: s.Duration.Seconds(),
		State:           string(s.State),
		Degraded:        s.Degraded(),
		Counts: CountsDTO{
			Configurations:  s.Configurations,
			Attempted:       s.Attempted,
			Succeeded:       s.Succeeded,
			Throttled:       s.Throttled,
			Skipped:         s.Skipped,
			Failed:          s.Failed,
			DataPoints:      s.DataPoints,
			Published:       s.Published,
			PublishFailures: s.PublishFailures,
			UnscoredRegions: s.UnscoredRegions,
		},
	}

	if len(s.Failures) > 0 {
		out.Failures = make([]FailureDTO, 0, len(s.Failures))
		for _, f := range s.Failures {
			out.Failures = append(out.Failures, FailureDTO{
				Dashboard:     f.Dashboard,
				Configuration: f.Configuration,
				Region:        f.Region,
				Metric:        f.Metric,
				Reason:        string(f.Reason),
				Message:       f.Message,
			})
		}
	}
	return out
}
