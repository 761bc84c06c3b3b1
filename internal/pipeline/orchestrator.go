// Package pipeline drives a scoring run from the configuration document to
// the published metrics.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mehdiazizian/spot-score-tracker/internal/config"
	"github.com/mehdiazizian/spot-score-tracker/internal/executor"
	"github.com/mehdiazizian/spot-score-tracker/internal/metrics"
	"github.com/mehdiazizian/spot-score-tracker/internal/planner"
	"github.com/mehdiazizian/spot-score-tracker/internal/publisher"
)

// DefaultPublishReserve is kept free at the end of a run with a deadline
const DefaultPublishReserve = 30 * time.Second

// Orchestrator runs the pipeline. It is safe to reuse across runs but runs
// must not overlap.
type Orchestrator struct {
	Executor  *executor.Executor
	Publisher *publisher.Publisher
	Recorder  *metrics.Recorder

	// PublishReserve is the time kept for publishing before the run
	// deadline. Execution stops early to leave it free.
	PublishReserve time.Duration

	// Clock defaults to time.Now
	Clock func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Clock != nil {
		return o.Clock()
	}
	return time.Now()
}

// RunFrom loads the document with loader and runs it. The only error
// returned is a *config.FatalLoadError, the summary is always set.
func (o *Orchestrator) RunFrom(ctx context.Context, loader config.Loader) (*RunSummary, error) {
	summary := o.newSummary()
	ctx = log.IntoContext(ctx, log.FromContext(ctx).WithValues("run", summary.RunID))

	doc, err := loader.Load(ctx)
	if err != nil {
		return o.fail(ctx, summary, err)
	}
	return o.run(ctx, summary, doc), nil
}

// Run processes an already loaded document
func (o *Orchestrator) Run(ctx context.Context, doc *config.Document) (*RunSummary, error) {
	summary := o.newSummary()
	ctx = log.IntoContext(ctx, log.FromContext(ctx).WithValues("run", summary.RunID))

	if doc == nil {
		return o.fail(ctx, summary, &config.FatalLoadError{Source: "document", Err: errors.New("no document")})
	}
	if err := doc.Validate(); err != nil {
		return o.fail(ctx, summary, &config.FatalLoadError{Source: "document", Err: err})
	}
	doc.ApplyDefaults()
	return o.run(ctx, summary, doc), nil
}

func (o *Orchestrator) newSummary() *RunSummary {
	return &RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: o.now(),
		State:     StateLoading,
	}
}

func (o *Orchestrator) fail(ctx context.Context, summary *RunSummary, err error) (*RunSummary, error) {
	logger := log.FromContext(ctx).WithName("pipeline")

	var loadErr *config.FatalLoadError
	if !errors.As(err, &loadErr) {
		loadErr = &config.FatalLoadError{Source: "loader", Err: err}
	}
	summary.addFailure(Failure{Reason: ReasonLoad, Message: loadErr.Error()})
	o.finish(ctx, summary, StateFailed)
	logger.Error(loadErr, "Scoring run aborted")
	return summary, loadErr
}

func (o *Orchestrator) transition(ctx context.Context, summary *RunSummary, state State) {
	log.FromContext(ctx).WithName("pipeline").V(1).Info("State transition", "from", summary.State, "to", state)
	summary.State = state
}

func (o *Orchestrator) finish(ctx context.Context, summary *RunSummary, state State) {
	o.transition(ctx, summary, state)
	summary.Duration = o.now().Sub(summary.StartedAt)

	result := string(state)
	if state == StateDone && summary.Degraded() {
		result = "Degraded"
	}
	o.Recorder.ObserveRun(result, summary.Duration)
}

func (o *Orchestrator) run(ctx context.Context, summary *RunSummary, doc *config.Document) *RunSummary {
	logger := log.FromContext(ctx).WithName("pipeline")

	// Planning
	o.transition(ctx, summary, StatePlanning)
	plan := planner.PlanDocument(doc)
	summary.Configurations = plan.Configurations
	for _, rej := range plan.Rejected {
		summary.Failed++
		summary.addFailure(Failure{
			Dashboard:     rej.Owner.Dashboard,
			Configuration: rej.Owner.Configuration,
			Reason:        ReasonValidation,
			Message:       rej.Err.Error(),
		})
	}
	o.Recorder.AddConfigurations("invalid", len(plan.Rejected))
	logger.Info("Planned scoring run",
		"configurations", plan.Configurations,
		"requests", len(plan.Requests),
		"rejected", len(plan.Rejected))

	// Executing
	o.transition(ctx, summary, StateExecuting)
	execCtx := ctx
	if deadline, ok := ctx.Deadline(); ok && o.PublishReserve > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithDeadline(ctx, deadline.Add(-o.PublishReserve))
		defer cancel()
	}
	results := o.Executor.Execute(execCtx, plan.Requests)

	// Mapping
	o.transition(ctx, summary, StateMapping)
	mapper := metrics.NewMapper(summary.StartedAt)
	var data []metrics.Datum
	for i := range results {
		data = append(data, o.collect(summary, mapper, &results[i])...)
	}
	summary.DataPoints = len(data)

	// Publishing, detached from cancellation so mapped scores are not lost
	o.transition(ctx, summary, StatePublishing)
	pubCtx := context.WithoutCancel(ctx)
	if o.PublishReserve > 0 {
		var cancel context.CancelFunc
		pubCtx, cancel = context.WithTimeout(pubCtx, o.PublishReserve)
		defer cancel()
	}
	if len(data) > 0 {
		report := o.Publisher.Publish(pubCtx, data)
		summary.Published = report.Published
		summary.PublishFailures = report.Failed
		for _, pubErr := range report.Errors {
			for _, d := range pubErr.Data {
				summary.addFailure(Failure{
					Dashboard:     d.Dimensions[metrics.DimensionDashboard],
					Configuration: d.Dimensions[metrics.DimensionConfiguration],
					Region:        d.Dimensions[metrics.DimensionRegion],
					Metric:        d.Name,
					Reason:        ReasonPublish,
					Message:       pubErr.Err.Error(),
				})
			}
		}
	}
	o.Recorder.AddDataPoints("published", summary.Published)
	o.Recorder.AddDataPoints("failed", summary.PublishFailures)

	o.finish(ctx, summary, StateDone)
	logger.Info("Scoring run finished",
		"duration", summary.Duration.String(),
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"throttled", summary.Throttled,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"published", summary.Published,
		"publishFailures", summary.PublishFailures)
	return summary
}

// collect folds the result of one request into the summary for each of its
// owners and returns the data points to publish
func (o *Orchestrator) collect(summary *RunSummary, mapper *metrics.Mapper, res *executor.Result) []metrics.Datum {
	owners := res.Request.Owners
	n := len(owners)
	message := ""
	if res.Err != nil {
		message = res.Err.Error()
	}

	var reason Reason
	switch res.Status {
	case executor.StatusSucceeded:
		summary.Attempted += n
		summary.Succeeded += n
		o.Recorder.AddConfigurations("succeeded", n)

		var data []metrics.Datum
		for _, owner := range owners {
			d, unscored := mapper.Map(owner, res.Request, res.Scores)
			data = append(data, d...)
			for _, u := range unscored {
				summary.UnscoredRegions++
				summary.addFailure(Failure{
					Dashboard:     u.Owner.Dashboard,
					Configuration: u.Owner.Configuration,
					Region:        u.Region,
					Reason:        ReasonUnscored,
					Message:       u.Reason,
				})
			}
		}
		return data
	case executor.StatusQuotaExceeded:
		summary.Attempted += n
		summary.Throttled += n
		reason = ReasonQuotaExceeded
		o.Recorder.AddConfigurations("throttled", n)
	case executor.StatusSkipped:
		summary.Skipped += n
		reason = ReasonSkippedQuota
		if res.SkipReason == executor.SkipCancelled {
			reason = ReasonSkippedCancelled
		}
		o.Recorder.AddConfigurations("skipped", n)
	case executor.StatusFailedInvalid:
		summary.Attempted += n
		summary.Failed += n
		reason = ReasonInvalidRequest
		o.Recorder.AddConfigurations("failed", n)
	default:
		summary.Attempted += n
		summary.Failed += n
		reason = ReasonTransient
		o.Recorder.AddConfigurations("failed", n)
	}

	for _, owner := range owners {
		summary.addFailure(Failure{
			Dashboard:     owner.Dashboard,
			Configuration: owner.Configuration,
			Reason:        reason,
			Message:       message,
		})
	}
	return nil
}
