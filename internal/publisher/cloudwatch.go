package publisher

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/mehdiazizian/spot-score-tracker/internal/metrics"
)

const (
	// DefaultNamespace groups the published scores in CloudWatch
	DefaultNamespace = "Spot Placement Score Metrics"

	// CloudWatchMaxBatchSize is the PutMetricData limit of data points per call
	CloudWatchMaxBatchSize = 1000
)

// CloudWatchAPI is the subset of the CloudWatch client used by the sink
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchSink publishes data points with PutMetricData
type CloudWatchSink struct {
	API       CloudWatchAPI
	Namespace string
}

// NewCloudWatchSink creates a sink with SDK retries disabled, the publisher
// owns the retry policy
func NewCloudWatchSink(cfg aws.Config, namespace string) *CloudWatchSink {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	api := cloudwatch.NewFromConfig(cfg, func(o *cloudwatch.Options) {
		o.RetryMaxAttempts = 1
	})
	return &CloudWatchSink{API: api, Namespace: namespace}
}

// MaxBatchSize implements Sink
func (s *CloudWatchSink) MaxBatchSize() int {
	return CloudWatchMaxBatchSize
}

// Put implements Sink
func (s *CloudWatchSink) Put(ctx context.Context, batch []metrics.Datum) error {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(s.Namespace),
		MetricData: make([]cwtypes.MetricDatum, 0, len(batch)),
	}
	for _, d := range batch {
		input.MetricData = append(input.MetricData, toMetricDatum(d))
	}

	if _, err := s.API.PutMetricData(ctx, input); err != nil {
		return fmt.Errorf("PutMetricData to %s: %w", s.Namespace, err)
	}
	return nil
}

func toMetricDatum(d metrics.Datum) cwtypes.MetricDatum {
	names := make([]string, 0, len(d.Dimensions))
	for name := range d.Dimensions {
		names = append(names, name)
	}
	sort.Strings(names)

	dims := make([]cwtypes.Dimension, 0, len(names))
	for _, name := range names {
		dims = append(dims, cwtypes.Dimension{
			Name:  aws.String(name),
			Value: aws.String(d.Dimensions[name]),
		})
	}

	return cwtypes.MetricDatum{
		MetricName: aws.String(d.Name),
		Dimensions: dims,
		Timestamp:  aws.Time(d.Timestamp),
		Unit:       cwtypes.StandardUnit(d.Unit),
		Value:      aws.Float64(d.Value),
	}
}
