// Package executor submits score requests while honouring the account wide
// configuration quota of the Spot placement score API.
package executor

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mehdiazizian/spot-score-tracker/internal/scoring"
)

// Status is the outcome of one request
type Status string

const (
	StatusSucceeded       Status = "Succeeded"
	StatusQuotaExceeded   Status = "QuotaExceeded"
	StatusSkipped         Status = "Skipped"
	StatusFailedTransient Status = "FailedTransient"
	StatusFailedInvalid   Status = "FailedInvalidRequest"
)

// SkipReason explains a StatusSkipped result
type SkipReason string

const (
	SkipQuotaExceeded SkipReason = "QuotaExceeded"
	SkipCancelled     SkipReason = "Cancelled"
)

// errSuperseded stops retrying a request that the quota signal of an
// earlier request already turned into a skip
var errSuperseded = errors.New("superseded by quota exceeded signal")

// Result is the outcome of one request, Index is its submission order
type Result struct {
	Index      int
	Request    *scoring.ScoreRequest
	Status     Status
	SkipReason SkipReason
	Scores     []scoring.Score
	Attempts   int
	Err        error
}

// Options tunes the executor
type Options struct {
	// Concurrency is the number of in-flight requests
	Concurrency int

	// Backoff between attempts of a transient failure, Steps is the
	// maximum number of attempts
	Backoff wait.Backoff

	// CallTimeout bounds every single API call
	CallTimeout time.Duration

	// Limiter paces calls below the API request rate, nil disables pacing
	Limiter *rate.Limiter
}

// DefaultOptions returns the production settings
func DefaultOptions() Options {
	return Options{
		Concurrency: 2,
		Backoff: wait.Backoff{
			Steps:    3,
			Duration: 1 * time.Second,
			Factor:   2.0,
			Jitter:   0.1,
		},
		CallTimeout: 30 * time.Second,
		Limiter:     rate.NewLimiter(rate.Limit(2), 1),
	}
}

// Executor runs score requests for a single run; it keeps no state between
// calls to Execute
type Executor struct {
	client scoring.Client
	opts   Options
}

// New creates an executor
func New(client scoring.Client, opts Options) *Executor {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Backoff.Steps <= 0 {
		opts.Backoff.Steps = 1
	}
	return &Executor{client: client, opts: opts}
}

// Execute submits requests in order. Once a request reports the quota as
// exceeded, no request with a higher index is submitted, and those already
// in flight are reported as skipped whatever their outcome. Cancelling ctx
// skips the requests not yet submitted.
func (e *Executor) Execute(ctx context.Context, requests []*scoring.ScoreRequest) []Result {
	logger := log.FromContext(ctx).WithName("executor")

	results := make([]Result, len(requests))
	for i, req := range requests {
		results[i] = Result{Index: i, Request: req}
	}

	var quotaAt atomic.Int64
	quotaAt.Store(math.MaxInt64)

	sem := semaphore.NewWeighted(int64(e.opts.Concurrency))
	var wg sync.WaitGroup

	for i, req := range requests {
		if err := sem.Acquire(ctx, 1); err != nil {
			for j := i; j < len(requests); j++ {
				results[j].Status = StatusSkipped
				results[j].SkipReason = SkipCancelled
				results[j].Err = err
			}
			logger.Info("Run cancelled, skipping remaining requests", "remaining", len(requests)-i)
			break
		}

		if int64(i) > quotaAt.Load() {
			sem.Release(1)
			results[i].Status = StatusSkipped
			results[i].SkipReason = SkipQuotaExceeded
			continue
		}

		wg.Add(1)
		go func(i int, req *scoring.ScoreRequest) {
			defer wg.Done()
			defer sem.Release(1)
			e.submit(ctx, &results[i], &quotaAt)
		}(i, req)
	}
	wg.Wait()

	// apply the quota signal by submission order
	if k := quotaAt.Load(); k != math.MaxInt64 {
		skipped := 0
		for i := int(k) + 1; i < len(results); i++ {
			results[i].Status = StatusSkipped
			results[i].SkipReason = SkipQuotaExceeded
			results[i].Scores = nil
			skipped++
		}
		logger.Info("Configuration quota exceeded, stopped submitting",
			"index", k, "skipped", skipped)
	}
	return results
}

func (e *Executor) submit(ctx context.Context, res *Result, quotaAt *atomic.Int64) {
	logger := log.FromContext(ctx).WithName("executor").WithValues("index", res.Index, "owners", res.Request.Owners)

	var lastErr error
	err := wait.ExponentialBackoffWithContext(ctx, e.opts.Backoff, func(ctx context.Context) (bool, error) {
		if int64(res.Index) > quotaAt.Load() {
			return false, errSuperseded
		}
		if e.opts.Limiter != nil {
			if err := e.opts.Limiter.Wait(ctx); err != nil {
				return false, err
			}
		}

		res.Attempts++
		callCtx, cancel := context.WithTimeout(ctx, e.opts.CallTimeout)
		scores, err := e.client.GetScores(callCtx, res.Request)
		cancel()
		if err == nil {
			res.Scores = scores
			return true, nil
		}

		if scoring.Classify(err) == scoring.KindTransient {
			lastErr = err
			logger.Info("Transient scoring error, will retry", "attempt", res.Attempts, "error", err.Error())
			return false, nil
		}
		return false, err
	})

	switch {
	case err == nil:
		res.Status = StatusSucceeded
	case errors.Is(err, errSuperseded):
		res.Status = StatusSkipped
		res.SkipReason = SkipQuotaExceeded
	case ctx.Err() != nil:
		res.Status = StatusSkipped
		res.SkipReason = SkipCancelled
		res.Err = ctx.Err()
	case scoring.Classify(err) == scoring.KindQuotaExceeded:
		res.Status = StatusQuotaExceeded
		res.Err = err
		markQuota(quotaAt, int64(res.Index))
	case errors.Is(err, scoring.ErrInvalidRequest):
		res.Status = StatusFailedInvalid
		res.Err = err
		logger.Error(err, "Scoring request rejected")
	default:
		// retries exhausted
		if lastErr == nil {
			lastErr = err
		}
		res.Status = StatusFailedTransient
		res.Err = lastErr
		logger.Error(lastErr, "Scoring request failed after retries", "attempts", res.Attempts)
	}
}

// markQuota keeps the lowest index that observed the quota signal
func markQuota(quotaAt *atomic.Int64, index int64) {
	for {
		current := quotaAt.Load()
		if index >= current || quotaAt.CompareAndSwap(current, index) {
			return
		}
	}
}
