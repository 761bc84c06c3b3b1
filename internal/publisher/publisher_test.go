package publisher

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/mehdiazizian/spot-score-tracker/internal/metrics"
)

var testBackoff = wait.Backoff{Steps: 3, Duration: time.Millisecond, Factor: 2.0}

func data(n int) []metrics.Datum {
	out := make([]metrics.Datum, n)
	for i := range out {
		out[i] = metrics.Datum{
			Name:  fmt.Sprintf("cfg-us-east-1-vcpu-%d", i),
			Value: 5,
			Unit:  metrics.UnitNone,
			Dimensions: map[string]string{
				metrics.DimensionDashboard:     "dash",
				metrics.DimensionConfiguration: "cfg",
				metrics.DimensionRegion:        "us-east-1",
			},
		}
	}
	return out
}

// fakeSink fails the calls listed in failures, by call number starting at 1
type fakeSink struct {
	limit    int
	failures map[int]bool
	calls    int
	batches  [][]metrics.Datum
}

func (s *fakeSink) MaxBatchSize() int {
	return s.limit
}

func (s *fakeSink) Put(_ context.Context, batch []metrics.Datum) error {
	s.calls++
	if s.failures[s.calls] {
		return errors.New("throttled")
	}
	s.batches = append(s.batches, batch)
	return nil
}

func TestBatches(t *testing.T) {
	cases := []struct {
		n, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{2500, 1000, 3},
		{7, 0, 1},
	}
	for _, tc := range cases {
		batches := Batches(data(tc.n), tc.size)
		if len(batches) != tc.want {
			t.Fatalf("%d data points in batches of %d: expected %d batches, got %d", tc.n, tc.size, tc.want, len(batches))
		}
		total := 0
		for _, b := range batches {
			if tc.size > 0 && len(b) > tc.size {
				t.Fatalf("batch of %d exceeds %d", len(b), tc.size)
			}
			total += len(b)
		}
		if total != tc.n {
			t.Fatalf("expected %d data points, got %d", tc.n, total)
		}
	}
}

func TestNewCapsBatchSize(t *testing.T) {
	if got := New(&fakeSink{limit: 1000}, testBackoff, 5000).BatchSize(); got != 1000 {
		t.Fatalf("expected 1000, got %d", got)
	}
	if got := New(&fakeSink{limit: 1000}, testBackoff, 0).BatchSize(); got != 1000 {
		t.Fatalf("expected 1000, got %d", got)
	}
	if got := New(&fakeSink{limit: 1000}, testBackoff, 20).BatchSize(); got != 20 {
		t.Fatalf("expected 20, got %d", got)
	}
	if got := New(&fakeSink{}, testBackoff, 0).BatchSize(); got != 0 {
		t.Fatalf("expected unlimited, got %d", got)
	}
}

func TestPublishRetriesBatch(t *testing.T) {
	sink := &fakeSink{limit: 10, failures: map[int]bool{1: true, 2: true}}

	report := New(sink, testBackoff, 0).Publish(context.Background(), data(25))

	if report.Batches != 3 || report.Published != 25 || report.Failed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if sink.calls != 5 {
		t.Fatalf("expected 5 calls, got %d", sink.calls)
	}
}

func TestPublishContinuesAfterFailedBatch(t *testing.T) {
	// the first batch fails on every attempt
	sink := &fakeSink{limit: 10, failures: map[int]bool{1: true, 2: true, 3: true}}

	report := New(sink, testBackoff, 0).Publish(context.Background(), data(25))

	if report.Published != 15 || report.Failed != 10 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("expected one error, got %d", len(report.Errors))
	}
	pubErr := report.Errors[0]
	if pubErr.Batch != 0 || pubErr.Attempts != 3 || len(pubErr.Data) != 10 {
		t.Fatalf("unexpected error %+v", pubErr)
	}
	var target *PublishError
	if !errors.As(error(pubErr), &target) {
		t.Fatalf("PublishError does not match errors.As")
	}
	if len(sink.batches) != 2 {
		t.Fatalf("expected 2 published batches, got %d", len(sink.batches))
	}
}

type fakeCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, params)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestCloudWatchSink(t *testing.T) {
	api := &fakeCloudWatch{}
	sink := &CloudWatchSink{API: api, Namespace: DefaultNamespace}
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	batch := data(2)
	batch[1].Timestamp = ts
	batch[1].Dimensions[metrics.DimensionAvailabilityZoneID] = "use1-az1"

	report := New(sink, testBackoff, 0).Publish(context.Background(), batch)
	if report.Published != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(api.inputs) != 1 {
		t.Fatalf("expected a single call, got %d", len(api.inputs))
	}

	input := api.inputs[0]
	if aws.ToString(input.Namespace) != DefaultNamespace {
		t.Fatalf("unexpected namespace %q", aws.ToString(input.Namespace))
	}
	datum := input.MetricData[1]
	if aws.ToString(datum.MetricName) != batch[1].Name || aws.ToFloat64(datum.Value) != 5 {
		t.Fatalf("unexpected datum %+v", datum)
	}
	if string(datum.Unit) != metrics.UnitNone || !aws.ToTime(datum.Timestamp).Equal(ts) {
		t.Fatalf("unexpected unit or timestamp %+v", datum)
	}
	wantDims := []string{
		metrics.DimensionAvailabilityZoneID,
		metrics.DimensionConfiguration,
		metrics.DimensionDashboard,
		metrics.DimensionRegion,
	}
	if len(datum.Dimensions) != len(wantDims) {
		t.Fatalf("unexpected dimensions %+v", datum.Dimensions)
	}
	for i, name := range wantDims {
		if aws.ToString(datum.Dimensions[i].Name) != name {
			t.Fatalf("dimension %d: expected %s, got %s", i, name, aws.ToString(datum.Dimensions[i].Name))
		}
	}
}

func TestPrometheusSink(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := NewPrometheusSink(reg)

	if err := sink.Put(context.Background(), data(3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count, err := testutil.GatherAndCount(reg, "sps_score")
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 series, got %d", count)
	}
	got := testutil.ToFloat64(sink.scores.WithLabelValues("cfg-us-east-1-vcpu-1", "dash", "cfg", "us-east-1", ""))
	if got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}
}
