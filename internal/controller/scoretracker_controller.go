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

package controller

import (
	"context"
	"fmt"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/util/retry"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	spotv1alpha1 "github.com/mehdiazizian/spot-score-tracker/api/v1alpha1"
	"github.com/mehdiazizian/spot-score-tracker/internal/config"
	"github.com/mehdiazizian/spot-score-tracker/internal/pipeline"
	"github.com/mehdiazizian/spot-score-tracker/internal/transport"
	"github.com/mehdiazizian/spot-score-tracker/internal/transport/dto"
)

// maxStatusFailures bounds the failure reasons kept in status
const maxStatusFailures = 50

// OrchestratorFactory returns the orchestrator publishing under a metric
// namespace, an empty namespace selects the default one
type OrchestratorFactory func(metricNamespace string) *pipeline.Orchestrator

// ScoreTrackerReconciler reconciles a ScoreTracker object
type ScoreTrackerReconciler struct {
	client.Client
	Scheme        *runtime.Scheme
	Orchestrators OrchestratorFactory
	S3            config.S3API
	Reporter      transport.SummaryReporter

	// RunTimeout bounds a single run, 0 means no bound
	RunTimeout time.Duration

	// DefaultInterval applies to trackers without an interval
	DefaultInterval time.Duration

	// Clock defaults to time.Now
	Clock func() time.Time
}

// +kubebuilder:rbac:groups=spot.fluidos.eu,resources=scoretrackers,verbs=get;list;watch;update;patch
// +kubebuilder:rbac:groups=spot.fluidos.eu,resources=scoretrackers/status,verbs=get;update;patch
// +kubebuilder:rbac:groups="",resources=configmaps,verbs=get;list;watch

// Reconcile runs the scoring pipeline of a tracker once per interval
func (r *ScoreTrackerReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	tracker := &spotv1alpha1.ScoreTracker{}
	if err := r.Get(ctx, req.NamespacedName, tracker); err != nil {
		if client.IgnoreNotFound(err) == nil {
			logger.Info("ScoreTracker not found, may have been deleted")
			return ctrl.Result{}, nil
		}
		logger.Error(err, "Failed to get ScoreTracker")
		return ctrl.Result{}, err
	}

	if tracker.Spec.Suspend {
		if tracker.Status.Phase == spotv1alpha1.PhaseSuspended {
			return ctrl.Result{}, nil
		}
		logger.Info("ScoreTracker suspended")
		status := tracker.Status.DeepCopy()
		status.Phase = spotv1alpha1.PhaseSuspended
		status.Message = "Scoring runs suspended"
		return ctrl.Result{}, r.updateStatus(ctx, tracker, status)
	}

	interval := r.interval(tracker)
	now := r.now()
	if last := tracker.Status.LastRunTime; last != nil &&
		tracker.Status.ObservedGeneration == tracker.Generation &&
		tracker.Status.Phase != spotv1alpha1.PhaseSuspended {
		if elapsed := now.Sub(last.Time); elapsed >= 0 && elapsed < interval {
			return ctrl.Result{RequeueAfter: interval - elapsed}, nil
		}
	}

	status := tracker.Status.DeepCopy()
	status.ObservedGeneration = tracker.Generation

	loader, err := config.ForTracker(r.Client, r.S3, tracker)
	if err != nil {
		logger.Error(err, "Invalid document source")
		status.Phase = spotv1alpha1.PhaseFailed
		status.Message = err.Error()
		status.LastRunTime = &metav1.Time{Time: now}
		return ctrl.Result{RequeueAfter: interval}, r.updateStatus(ctx, tracker, status)
	}

	runCtx := ctx
	if r.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.RunTimeout)
		defer cancel()
	}

	orchestrator := r.Orchestrators(tracker.Spec.MetricNamespace)
	summary, runErr := orchestrator.RunFrom(runCtx, loader)

	status.LastRunTime = &metav1.Time{Time: summary.StartedAt}
	status.LastRunID = summary.RunID
	status.LastRun = toRunStatus(summary)
	switch {
	case runErr != nil:
		status.Phase = spotv1alpha1.PhaseFailed
		status.Message = runErr.Error()
	case summary.Degraded():
		status.Phase = spotv1alpha1.PhaseDegraded
		status.Message = fmt.Sprintf("%d of %d configurations scored", summary.Succeeded, summary.Configurations)
	default:
		status.Phase = spotv1alpha1.PhaseSucceeded
		status.Message = fmt.Sprintf("%d configurations scored, %d data points published",
			summary.Succeeded, summary.Published)
	}

	if err := r.updateStatus(ctx, tracker, status); err != nil {
		return ctrl.Result{}, err
	}

	if r.Reporter != nil {
		source := fmt.Sprintf("%s/%s", tracker.Namespace, tracker.Name)
		if err := r.Reporter.Report(ctx, dto.ToRunSummaryDTO(source, summary)); err != nil {
			// Don't fail the reconciliation, the summary is in status
			logger.Error(err, "Failed to report run summary")
		}
	}

	return ctrl.Result{RequeueAfter: interval}, nil
}

func (r *ScoreTrackerReconciler) interval(tracker *spotv1alpha1.ScoreTracker) time.Duration {
	if tracker.Spec.Interval != nil && tracker.Spec.Interval.Duration > 0 {
		return tracker.Spec.Interval.Duration
	}
	if r.DefaultInterval > 0 {
		return r.DefaultInterval
	}
	return pipeline.DefaultInterval
}

func (r *ScoreTrackerReconciler) now() time.Time {
	if r.Clock != nil {
		return r.Clock()
	}
	return time.Now()
}

// updateStatus writes status on the latest version of the tracker, a run
// may outlive the object version it started from
func (r *ScoreTrackerReconciler) updateStatus(
	ctx context.Context,
	tracker *spotv1alpha1.ScoreTracker,
	status *spotv1alpha1.ScoreTrackerStatus,
) error {
	logger := log.FromContext(ctx)

	err := retry.RetryOnConflict(retry.DefaultRetry, func() error {
		latest := &spotv1alpha1.ScoreTracker{}
		if err := r.Get(ctx, client.ObjectKeyFromObject(tracker), latest); err != nil {
			return err
		}
		status.DeepCopyInto(&latest.Status)
		return r.Status().Update(ctx, latest)
	})
	if err != nil {
		logger.Error(err, "Failed to update ScoreTracker status")
	}
	return client.IgnoreNotFound(err)
}

func toRunStatus(s *pipeline.RunSummary) *spotv1alpha1.RunStatus {
	out := &spotv1alpha1.RunStatus{
		Configurations:  int32(s.Configurations),
		Attempted:       int32(s.Attempted),
		Succeeded:       int32(s.Succeeded),
		Throttled:       int32(s.Throttled),
		Skipped:         int32(s.Skipped),
		Failed:          int32(s.Failed),
		DataPoints:      int32(s.DataPoints),
		PublishFailures: int32(s.PublishFailures),
		UnscoredRegions: int32(s.UnscoredRegions),
	}
	for i, f := range s.Failures {
		if i == maxStatusFailures {
			out.Failures = append(out.Failures, fmt.Sprintf("... %d more", len(s.Failures)-maxStatusFailures))
			break
		}
		out.Failures = append(out.Failures, f.String())
	}
	return out
}

// SetupWithManager sets up the controller with the Manager. Runs of the
// account quota must not overlap, so reconciles are serialized.
func (r *ScoreTrackerReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&spotv1alpha1.ScoreTracker{}, builder.WithPredicates(predicate.GenerationChangedPredicate{})).
		WithOptions(controller.Options{MaxConcurrentReconciles: 1}).
		Named("scoretracker").
		Complete(r)
}
