package publisher

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mehdiazizian/spot-score-tracker/internal/metrics"
)

// PrometheusSink exposes the latest scores as gauges, for clusters that
// scrape the manager instead of shipping metrics to CloudWatch
type PrometheusSink struct {
	scores *prometheus.GaugeVec
}

// NewPrometheusSink creates the sps_score gauge and registers it on reg
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		scores: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sps_score",
				Help: "Latest spot placement score (1-9) per configuration, region and zone",
			},
			[]string{"metric", "dashboard", "configuration", "region", "availability_zone_id"},
		),
	}
	reg.MustRegister(s.scores)
	return s
}

// MaxBatchSize implements Sink
func (s *PrometheusSink) MaxBatchSize() int {
	return 0
}

// Put implements Sink
func (s *PrometheusSink) Put(_ context.Context, batch []metrics.Datum) error {
	for _, d := range batch {
		s.scores.WithLabelValues(
			d.Name,
			d.Dimensions[metrics.DimensionDashboard],
			d.Dimensions[metrics.DimensionConfiguration],
			d.Dimensions[metrics.DimensionRegion],
			d.Dimensions[metrics.DimensionAvailabilityZoneID],
		).Set(d.Value)
	}
	return nil
}
