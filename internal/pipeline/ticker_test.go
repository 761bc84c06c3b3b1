package pipeline_test

import (
	"context"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	spotv1alpha1 "github.com/mehdiazizian/spot-score-tracker/api/v1alpha1"
	"github.com/mehdiazizian/spot-score-tracker/internal/config"
	"github.com/mehdiazizian/spot-score-tracker/internal/pipeline"
)

var _ = Describe("Ticker", func() {
	It("should run on start and on every tick until stopped", func() {
		sink := &recordingSink{}
		var runs atomic.Int32
		ticker := &pipeline.Ticker{
			Orchestrator: newOrchestrator(scoreEveryRegion(5), sink),
			Loader: &config.StaticLoader{Dashboards: []spotv1alpha1.Dashboard{{
				Name:           "compute",
				Configurations: []spotv1alpha1.ScoringConfiguration{configuration("c5", 100, "us-east-1")},
			}}},
			Interval:   20 * time.Millisecond,
			RunTimeout: time.Second,
			OnSummary: func(_ context.Context, summary *pipeline.RunSummary) {
				Expect(summary.State).To(Equal(pipeline.StateDone))
				runs.Add(1)
			},
		}
		Expect(ticker.NeedLeaderElection()).To(BeTrue())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error)
		go func() {
			defer GinkgoRecover()
			done <- ticker.Start(ctx)
		}()

		Eventually(runs.Load).Should(BeNumerically(">=", 2))
		cancel()
		Eventually(done).Should(Receive(BeNil()))
	})

	It("should report failed runs", func() {
		var summaries []*pipeline.RunSummary
		ticker := &pipeline.Ticker{
			Orchestrator: newOrchestrator(scoreEveryRegion(5), &recordingSink{}),
			Loader:       &config.FileLoader{Path: "/does/not/exist.yaml"},
			Interval:     time.Hour,
			OnSummary: func(_ context.Context, summary *pipeline.RunSummary) {
				summaries = append(summaries, summary)
			},
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(ticker.Start(ctx)).To(Succeed())

		Expect(summaries).To(HaveLen(1))
		Expect(summaries[0].State).To(Equal(pipeline.StateFailed))
	})
})
