package pipeline

import (
	"context"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mehdiazizian/spot-score-tracker/internal/config"
)

// DefaultInterval between two runs
const DefaultInterval = 5 * time.Minute

// Ticker runs the pipeline on a fixed interval. It implements
// manager.Runnable and only runs on the elected leader, so a single poller
// is active per account.
type Ticker struct {
	Orchestrator *Orchestrator
	Loader       config.Loader
	Interval     time.Duration

	// RunTimeout bounds a single run, 0 means no bound
	RunTimeout time.Duration

	// OnSummary is called after every run, including failed ones
	OnSummary func(ctx context.Context, summary *RunSummary)
}

// Start runs immediately and then on every tick until ctx is done
func (t *Ticker) Start(ctx context.Context) error {
	logger := log.FromContext(ctx).WithName("ticker")

	interval := t.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger.Info("Starting scoring ticker", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	t.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping scoring ticker")
			return nil
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

// NeedLeaderElection implements manager.LeaderElectionRunnable
func (t *Ticker) NeedLeaderElection() bool {
	return true
}

func (t *Ticker) tick(ctx context.Context) {
	logger := log.FromContext(ctx).WithName("ticker")

	runCtx := ctx
	if t.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, t.RunTimeout)
		defer cancel()
	}

	summary, err := t.Orchestrator.RunFrom(runCtx, t.Loader)
	if err != nil {
		logger.Error(err, "Scoring run failed", "run", summary.RunID)
	}
	if t.OnSummary != nil {
		t.OnSummary(ctx, summary)
	}
}
