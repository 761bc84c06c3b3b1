package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/apimachinery/pkg/util/wait"

	spotv1alpha1 "github.com/mehdiazizian/spot-score-tracker/api/v1alpha1"
	"github.com/mehdiazizian/spot-score-tracker/internal/config"
	"github.com/mehdiazizian/spot-score-tracker/internal/executor"
	"github.com/mehdiazizian/spot-score-tracker/internal/metrics"
	"github.com/mehdiazizian/spot-score-tracker/internal/pipeline"
	"github.com/mehdiazizian/spot-score-tracker/internal/publisher"
	"github.com/mehdiazizian/spot-score-tracker/internal/scoring"
)

func TestPipeline(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Pipeline Suite")
}

var runStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// recordingSink keeps every published datum
type recordingSink struct {
	mu   sync.Mutex
	fail bool
	data []metrics.Datum
}

func (s *recordingSink) MaxBatchSize() int {
	return publisher.CloudWatchMaxBatchSize
}

func (s *recordingSink) Put(_ context.Context, batch []metrics.Datum) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("AccessDenied")
	}
	s.data = append(s.data, batch...)
	return nil
}

func newOrchestrator(client scoring.Client, sink publisher.Sink) *pipeline.Orchestrator {
	backoff := wait.Backoff{Steps: 3, Duration: time.Millisecond, Factor: 2.0}
	return &pipeline.Orchestrator{
		Executor: executor.New(client, executor.Options{
			Concurrency: 2,
			Backoff:     backoff,
			CallTimeout: time.Second,
		}),
		Publisher: publisher.New(sink, backoff, 0),
		Clock:     func() time.Time { return runStart },
	}
}

func configuration(name string, capacity int32, regions ...string) spotv1alpha1.ScoringConfiguration {
	return spotv1alpha1.ScoringConfiguration{
		ConfigurationName:      name,
		TargetCapacity:         capacity,
		TargetCapacityUnitType: spotv1alpha1.UnitTypeVCPU,
		RegionNames:            regions,
		InstanceTypes:          []string{"c5.xlarge"},
	}
}

func document(dashboards ...spotv1alpha1.Dashboard) *config.Document {
	return &config.Document{Dashboards: dashboards}
}

func scoreEveryRegion(score int32) scoring.ClientFunc {
	return func(_ context.Context, req *scoring.ScoreRequest) ([]scoring.Score, error) {
		scores := make([]scoring.Score, 0, len(req.RegionNames))
		for _, region := range req.RegionNames {
			scores = append(scores, scoring.Score{Region: region, Score: score})
		}
		return scores, nil
	}
}

var _ = Describe("Orchestrator", func() {
	var (
		ctx  context.Context
		sink *recordingSink
	)

	BeforeEach(func() {
		ctx = context.Background()
		sink = &recordingSink{}
	})

	It("should publish one datum for a single scored region", func() {
		doc := document(spotv1alpha1.Dashboard{
			Name:           "compute",
			Configurations: []spotv1alpha1.ScoringConfiguration{configuration("c5", 100, "us-east-1")},
		})

		summary, err := newOrchestrator(scoreEveryRegion(7), sink).Run(ctx, doc)

		Expect(err).ToNot(HaveOccurred())
		Expect(summary.State).To(Equal(pipeline.StateDone))
		Expect(summary.RunID).ToNot(BeEmpty())
		Expect(summary.Succeeded).To(Equal(1))
		Expect(summary.Failures).To(BeEmpty())
		Expect(summary.Degraded()).To(BeFalse())

		Expect(sink.data).To(HaveLen(1))
		Expect(sink.data[0].Value).To(Equal(7.0))
		Expect(sink.data[0].Timestamp).To(Equal(runStart))
		Expect(sink.data[0].Dimensions).To(Equal(map[string]string{
			metrics.DimensionDashboard:     "compute",
			metrics.DimensionConfiguration: "c5",
			metrics.DimensionRegion:        "us-east-1",
		}))
	})

	It("should skip the configurations after the quota signal", func() {
		configurations := make([]spotv1alpha1.ScoringConfiguration, 12)
		for i := range configurations {
			configurations[i] = configuration(fmt.Sprintf("c%d", i), int32(10+i), "us-east-1")
		}
		doc := document(spotv1alpha1.Dashboard{Name: "compute", Configurations: configurations})

		client := scoring.ClientFunc(func(ctx context.Context, req *scoring.ScoreRequest) ([]scoring.Score, error) {
			if req.TargetCapacity == 18 {
				return nil, fmt.Errorf("%w: MaxConfigLimitExceeded", scoring.ErrQuotaExceeded)
			}
			return scoreEveryRegion(6)(ctx, req)
		})

		summary, err := newOrchestrator(client, sink).Run(ctx, doc)

		Expect(err).ToNot(HaveOccurred())
		Expect(summary.Configurations).To(Equal(12))
		Expect(summary.Attempted).To(Equal(9))
		Expect(summary.Succeeded).To(Equal(8))
		Expect(summary.Throttled).To(Equal(1))
		Expect(summary.Skipped).To(Equal(3))
		Expect(summary.Failed).To(BeZero())
		Expect(summary.Published).To(Equal(8))
		Expect(sink.data).To(HaveLen(8))

		reasons := map[pipeline.Reason]int{}
		for _, f := range summary.Failures {
			reasons[f.Reason]++
		}
		Expect(reasons).To(Equal(map[pipeline.Reason]int{
			pipeline.ReasonQuotaExceeded: 1,
			pipeline.ReasonSkippedQuota:  3,
		}))
	})

	It("should plan and score the siblings of an invalid configuration", func() {
		invalid := configuration("no-regions", 100)
		doc := document(spotv1alpha1.Dashboard{
			Name: "compute",
			Configurations: []spotv1alpha1.ScoringConfiguration{
				configuration("first", 100, "us-east-1"),
				invalid,
				configuration("third", 200, "eu-west-1"),
			},
		})

		summary, err := newOrchestrator(scoreEveryRegion(4), sink).Run(ctx, doc)

		Expect(err).ToNot(HaveOccurred())
		Expect(summary.Succeeded).To(Equal(2))
		Expect(summary.Failed).To(Equal(1))
		Expect(summary.Failures).To(HaveLen(1))
		Expect(summary.Failures[0].Reason).To(Equal(pipeline.ReasonValidation))
		Expect(summary.Failures[0].Configuration).To(Equal("no-regions"))
		Expect(summary.Failures[0].Message).To(ContainSubstring("RegionNames"))
		Expect(sink.data).To(HaveLen(2))
	})

	It("should publish the same data after transient errors", func() {
		doc := func() *config.Document {
			return document(spotv1alpha1.Dashboard{
				Name:           "compute",
				Configurations: []spotv1alpha1.ScoringConfiguration{configuration("c5", 100, "us-east-1", "us-west-2")},
			})
		}

		immediate := &recordingSink{}
		_, err := newOrchestrator(scoreEveryRegion(8), immediate).Run(ctx, doc())
		Expect(err).ToNot(HaveOccurred())

		var calls atomic.Int32
		flaky := scoring.ClientFunc(func(ctx context.Context, req *scoring.ScoreRequest) ([]scoring.Score, error) {
			if calls.Add(1) < 3 {
				return nil, fmt.Errorf("%w: RequestLimitExceeded", scoring.ErrTransient)
			}
			return scoreEveryRegion(8)(ctx, req)
		})
		summary, err := newOrchestrator(flaky, sink).Run(ctx, doc())

		Expect(err).ToNot(HaveOccurred())
		Expect(calls.Load()).To(Equal(int32(3)))
		Expect(summary.Failures).To(BeEmpty())
		Expect(summary.Succeeded).To(Equal(1))
		Expect(sink.data).To(Equal(immediate.data))
	})

	It("should fan out a shared request to every owner", func() {
		doc := document(
			spotv1alpha1.Dashboard{Name: "a", Configurations: []spotv1alpha1.ScoringConfiguration{configuration("c5", 100, "us-east-1")}},
			spotv1alpha1.Dashboard{Name: "b", Configurations: []spotv1alpha1.ScoringConfiguration{configuration("c5", 100, "us-east-1")}},
		)
		var calls atomic.Int32
		client := scoring.ClientFunc(func(ctx context.Context, req *scoring.ScoreRequest) ([]scoring.Score, error) {
			calls.Add(1)
			return scoreEveryRegion(3)(ctx, req)
		})

		summary, err := newOrchestrator(client, sink).Run(ctx, doc)

		Expect(err).ToNot(HaveOccurred())
		Expect(calls.Load()).To(Equal(int32(1)))
		Expect(summary.Succeeded).To(Equal(2))
		Expect(sink.data).To(HaveLen(2))
		Expect(sink.data[0].Dimensions[metrics.DimensionDashboard]).To(Equal("a"))
		Expect(sink.data[1].Dimensions[metrics.DimensionDashboard]).To(Equal("b"))
	})

	It("should count unscored regions without failing the configuration", func() {
		doc := document(spotv1alpha1.Dashboard{
			Name:           "compute",
			Configurations: []spotv1alpha1.ScoringConfiguration{configuration("c5", 100, "us-east-1", "ap-south-2")},
		})
		client := scoring.ClientFunc(func(_ context.Context, _ *scoring.ScoreRequest) ([]scoring.Score, error) {
			return []scoring.Score{{Region: "us-east-1", Score: 9}}, nil
		})

		summary, err := newOrchestrator(client, sink).Run(ctx, doc)

		Expect(err).ToNot(HaveOccurred())
		Expect(summary.Succeeded).To(Equal(1))
		Expect(summary.UnscoredRegions).To(Equal(1))
		Expect(summary.Failures).To(ConsistOf(HaveField("Region", "ap-south-2")))
		Expect(sink.data).To(HaveLen(1))
	})

	It("should report data points the backend rejected", func() {
		sink.fail = true
		doc := document(spotv1alpha1.Dashboard{
			Name:           "compute",
			Configurations: []spotv1alpha1.ScoringConfiguration{configuration("c5", 100, "us-east-1", "us-west-2")},
		})

		summary, err := newOrchestrator(scoreEveryRegion(5), sink).Run(ctx, doc)

		Expect(err).ToNot(HaveOccurred())
		Expect(summary.State).To(Equal(pipeline.StateDone))
		Expect(summary.DataPoints).To(Equal(2))
		Expect(summary.PublishFailures).To(Equal(2))
		Expect(summary.Failures).To(HaveLen(2))
		Expect(summary.Failures[0].Reason).To(Equal(pipeline.ReasonPublish))
		Expect(summary.Failures[0].Metric).ToNot(BeEmpty())
		Expect(summary.Degraded()).To(BeTrue())
	})

	It("should publish what was scored when the run is cancelled", func() {
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		doc := document(spotv1alpha1.Dashboard{
			Name: "compute",
			Configurations: []spotv1alpha1.ScoringConfiguration{
				configuration("first", 100, "us-east-1"),
				configuration("second", 200, "us-east-1"),
				configuration("third", 300, "us-east-1"),
			},
		})
		client := scoring.ClientFunc(func(ctx context.Context, req *scoring.ScoreRequest) ([]scoring.Score, error) {
			cancel()
			return scoreEveryRegion(2)(ctx, req)
		})
		orchestrator := newOrchestrator(client, sink)
		orchestrator.Executor = executor.New(client, executor.Options{
			Concurrency: 1,
			Backoff:     wait.Backoff{Steps: 1},
			CallTimeout: time.Second,
		})

		summary, err := orchestrator.Run(runCtx, doc)

		Expect(err).ToNot(HaveOccurred())
		Expect(summary.Succeeded).To(Equal(1))
		Expect(summary.Skipped).To(Equal(2))
		Expect(summary.Failures).To(HaveEach(HaveField("Reason", pipeline.ReasonSkippedCancelled)))
		Expect(sink.data).To(HaveLen(1))
		Expect(summary.Published).To(Equal(1))
	})

	It("should fail the run when the document cannot be loaded", func() {
		loader := &config.FileLoader{Path: "/does/not/exist.yaml"}

		summary, err := newOrchestrator(scoreEveryRegion(5), sink).RunFrom(ctx, loader)

		var loadErr *config.FatalLoadError
		Expect(errors.As(err, &loadErr)).To(BeTrue())
		Expect(summary).ToNot(BeNil())
		Expect(summary.State).To(Equal(pipeline.StateFailed))
		Expect(summary.Failures).To(ConsistOf(HaveField("Reason", pipeline.ReasonLoad)))
		Expect(sink.data).To(BeEmpty())
	})

	It("should fail the run on an empty document", func() {
		summary, err := newOrchestrator(scoreEveryRegion(5), sink).Run(ctx, document())

		Expect(err).To(HaveOccurred())
		Expect(summary.State).To(Equal(pipeline.StateFailed))
	})
})
