package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder exposes counters about scoring runs. A nil *Recorder is a no-op.
type Recorder struct {
	runs           *prometheus.CounterVec
	configurations *prometheus.CounterVec
	dataPoints     *prometheus.CounterVec
	runDuration    prometheus.Histogram
}

// NewRecorder creates the run metrics and registers them on reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sps_tracker_runs_total",
				Help: "Total number of scoring runs by final state",
			},
			[]string{"result"},
		),
		configurations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sps_tracker_configurations_total",
				Help: "Scoring configurations processed by outcome",
			},
			[]string{"outcome"},
		),
		dataPoints: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sps_tracker_datapoints_total",
				Help: "Metric data points handed to the monitoring backend by publish result",
			},
			[]string{"result"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sps_tracker_run_duration_seconds",
				Help:    "Wall clock duration of scoring runs",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
		),
	}
	reg.MustRegister(r.runs, r.configurations, r.dataPoints, r.runDuration)
	return r
}

// ObserveRun records a finished run
func (r *Recorder) ObserveRun(result string, d time.Duration) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(result).Inc()
	r.runDuration.Observe(d.Seconds())
}

// AddConfigurations counts configurations that ended with outcome
func (r *Recorder) AddConfigurations(outcome string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.configurations.WithLabelValues(outcome).Add(float64(n))
}

// AddDataPoints counts data points by publish result
func (r *Recorder) AddDataPoints(result string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.dataPoints.WithLabelValues(result).Add(float64(n))
}
