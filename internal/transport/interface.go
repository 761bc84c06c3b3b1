package transport

import (
	"context"

	"github.com/mehdiazizian/spot-score-tracker/internal/transport/dto"
)

// SummaryReporter forwards run summaries to an external collector.
// Implementations: HTTP REST API.
type SummaryReporter interface {
	// Report delivers the summary of one run
	Report(ctx context.Context, summary *dto.RunSummaryDTO) error

	// Close cleans up resources
	Close() error
}
