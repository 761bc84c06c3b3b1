// Package publisher sends metric data points to a monitoring backend in
// batches the backend accepts.
package publisher

import (
	"context"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mehdiazizian/spot-score-tracker/internal/metrics"
)

// Sink is a monitoring backend
type Sink interface {
	// Put publishes one batch
	Put(ctx context.Context, batch []metrics.Datum) error

	// MaxBatchSize is the largest batch Put accepts, 0 means unlimited
	MaxBatchSize() int
}

// PublishError reports a batch that could not be published after retries
type PublishError struct {
	Batch    int
	Data     []metrics.Datum
	Attempts int
	Err      error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("failed to publish batch %d (%d data points) after %d attempts: %v",
		e.Batch, len(e.Data), e.Attempts, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// Report summarises a Publish call
type Report struct {
	Batches   int
	Published int
	Failed    int
	Errors    []*PublishError
}

// Publisher batches data points and publishes them with retries
type Publisher struct {
	sink      Sink
	backoff   wait.Backoff
	batchSize int
}

// DefaultBackoff makes three attempts per batch
func DefaultBackoff() wait.Backoff {
	return wait.Backoff{
		Steps:    3,
		Duration: 500 * time.Millisecond,
		Factor:   2.0,
		Jitter:   0.1,
	}
}

// New creates a publisher. batchSize is capped by the sink maximum, 0 uses
// the sink maximum.
func New(sink Sink, backoff wait.Backoff, batchSize int) *Publisher {
	if limit := sink.MaxBatchSize(); limit > 0 && (batchSize <= 0 || batchSize > limit) {
		batchSize = limit
	}
	if backoff.Steps <= 0 {
		backoff.Steps = 1
	}
	return &Publisher{sink: sink, backoff: backoff, batchSize: batchSize}
}

// BatchSize returns the effective batch size, 0 means a single batch
func (p *Publisher) BatchSize() int {
	return p.batchSize
}

// Publish sends every data point. A batch that exhausts its retries is
// reported and the following batches are still published.
func (p *Publisher) Publish(ctx context.Context, data []metrics.Datum) *Report {
	logger := log.FromContext(ctx).WithName("publisher")
	report := &Report{}

	for i, batch := range Batches(data, p.batchSize) {
		report.Batches++

		attempts := 0
		var lastErr error
		err := wait.ExponentialBackoffWithContext(ctx, p.backoff, func(ctx context.Context) (bool, error) {
			attempts++
			if err := p.sink.Put(ctx, batch); err != nil {
				lastErr = err
				logger.Info("Failed to publish batch, will retry",
					"batch", i, "size", len(batch), "attempt", attempts, "error", err.Error())
				return false, nil
			}
			return true, nil
		})

		if err != nil {
			if lastErr == nil {
				lastErr = err
			}
			pubErr := &PublishError{Batch: i, Data: batch, Attempts: attempts, Err: lastErr}
			logger.Error(pubErr, "Giving up on batch")
			report.Errors = append(report.Errors, pubErr)
			report.Failed += len(batch)
			continue
		}
		report.Published += len(batch)
	}

	logger.Info("Published metric data",
		"batches", report.Batches,
		"published", report.Published,
		"failed", report.Failed)
	return report
}

// Batches splits data into consecutive batches of at most size elements,
// ceil(len(data)/size) batches in total. size <= 0 yields a single batch.
func Batches(data []metrics.Datum, size int) [][]metrics.Datum {
	if len(data) == 0 {
		return nil
	}
	if size <= 0 || size >= len(data) {
		return [][]metrics.Datum{data}
	}

	batches := make([][]metrics.Datum, 0, (len(data)+size-1)/size)
	for start := 0; start < len(data); start += size {
		end := start + size
		if end > len(data) {
			end = len(data)
		}
		batches = append(batches, data[start:end])
	}
	return batches
}
