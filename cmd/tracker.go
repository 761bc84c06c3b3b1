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

package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/time/rate"
	"sigs.k8s.io/controller-runtime/pkg/log"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/mehdiazizian/spot-score-tracker/internal/config"
	"github.com/mehdiazizian/spot-score-tracker/internal/executor"
	"github.com/mehdiazizian/spot-score-tracker/internal/metrics"
	"github.com/mehdiazizian/spot-score-tracker/internal/pipeline"
	"github.com/mehdiazizian/spot-score-tracker/internal/publisher"
	"github.com/mehdiazizian/spot-score-tracker/internal/scoring"
	"github.com/mehdiazizian/spot-score-tracker/internal/transport"
	"github.com/mehdiazizian/spot-score-tracker/internal/transport/dto"
	transporthttp "github.com/mehdiazizian/spot-score-tracker/internal/transport/http"
)

const (
	backendCloudWatch = "cloudwatch"
	backendPrometheus = "prometheus"
)

type trackerOptions struct {
	once            bool
	configFile      string
	s3Bucket        string
	s3Key           string
	metricNamespace string
	metricsBackend  string
	concurrency     int
	maxAttempts     int
	callTimeout     time.Duration
	qps             float64
	batchSize       int
	publishReserve  time.Duration
	runTimeout      time.Duration
	runInterval     time.Duration
	reportURL       string
	reportCertPath  string
}

// tracker holds the clients shared by every run
type tracker struct {
	opts     trackerOptions
	executor *executor.Executor
	recorder *metrics.Recorder
	s3       config.S3API
	reporter transport.SummaryReporter

	// newSink builds the sink of a metric namespace
	newSink func(namespace string) publisher.Sink

	mu            sync.Mutex
	orchestrators map[string]*pipeline.Orchestrator
}

func newTracker(awsCfg aws.Config, opts trackerOptions) (*tracker, error) {
	execOpts := executor.DefaultOptions()
	execOpts.Concurrency = opts.concurrency
	execOpts.Backoff.Steps = opts.maxAttempts
	execOpts.CallTimeout = opts.callTimeout
	execOpts.Limiter = nil
	if opts.qps > 0 {
		execOpts.Limiter = rate.NewLimiter(rate.Limit(opts.qps), 1)
	}

	t := &tracker{
		opts:          opts,
		executor:      executor.New(scoring.NewEC2Client(awsCfg), execOpts),
		recorder:      metrics.NewRecorder(ctrlmetrics.Registry),
		s3:            s3.NewFromConfig(awsCfg),
		orchestrators: make(map[string]*pipeline.Orchestrator),
	}

	switch opts.metricsBackend {
	case backendCloudWatch:
		cw := publisher.NewCloudWatchSink(awsCfg, opts.metricNamespace)
		t.newSink = func(namespace string) publisher.Sink {
			if namespace == "" {
				return cw
			}
			return &publisher.CloudWatchSink{API: cw.API, Namespace: namespace}
		}
	case backendPrometheus:
		sink := publisher.NewPrometheusSink(ctrlmetrics.Registry)
		t.newSink = func(string) publisher.Sink { return sink }
	default:
		return nil, fmt.Errorf("unknown metrics backend: %s (supported: %s, %s)",
			opts.metricsBackend, backendCloudWatch, backendPrometheus)
	}

	if opts.reportURL != "" {
		reporter, err := transporthttp.NewHTTPReporter(opts.reportURL, opts.reportCertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create run reporter: %w", err)
		}
		t.reporter = reporter
	}
	return t, nil
}

// orchestratorFor returns the orchestrator publishing under namespace
func (t *tracker) orchestratorFor(namespace string) *pipeline.Orchestrator {
	t.mu.Lock()
	defer t.mu.Unlock()

	if o, ok := t.orchestrators[namespace]; ok {
		return o
	}
	o := &pipeline.Orchestrator{
		Executor:       t.executor,
		Publisher:      publisher.New(t.newSink(namespace), publisher.DefaultBackoff(), t.opts.batchSize),
		Recorder:       t.recorder,
		PublishReserve: t.opts.publishReserve,
	}
	t.orchestrators[namespace] = o
	return o
}

// documentLoader returns the loader of the file or S3 document, nil when
// neither is configured
func (t *tracker) documentLoader() config.Loader {
	switch {
	case t.opts.configFile != "":
		return &config.FileLoader{Path: t.opts.configFile}
	case t.opts.s3Bucket != "" && t.opts.s3Key != "":
		return &config.S3Loader{Client: t.s3, Bucket: t.opts.s3Bucket, Key: t.opts.s3Key}
	default:
		return nil
	}
}

func (t *tracker) ticker(loader config.Loader) *pipeline.Ticker {
	return &pipeline.Ticker{
		Orchestrator: t.orchestratorFor(""),
		Loader:       loader,
		Interval:     t.opts.runInterval,
		RunTimeout:   t.opts.runTimeout,
		OnSummary: func(ctx context.Context, summary *pipeline.RunSummary) {
			t.report(ctx, "ticker", summary)
		},
	}
}

// runOnce runs the pipeline a single time, only a fatal load error fails it
func (t *tracker) runOnce(ctx context.Context) error {
	logger := log.FromContext(ctx)

	loader := t.documentLoader()
	if loader == nil {
		err := errors.New("--once requires --config-file or --config-s3-bucket and --config-s3-key")
		logger.Error(err, "No configuration document")
		return err
	}

	runCtx := ctx
	if t.opts.runTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, t.opts.runTimeout)
		defer cancel()
	}

	summary, err := t.orchestratorFor("").RunFrom(runCtx, loader)
	t.report(ctx, "once", summary)
	if err != nil {
		return err
	}

	for _, f := range summary.Failures {
		logger.Info("Run item not published", "failure", f.String())
	}
	return nil
}

func (t *tracker) report(ctx context.Context, source string, summary *pipeline.RunSummary) {
	if t.reporter == nil {
		return
	}
	if err := t.reporter.Report(ctx, dto.ToRunSummaryDTO(source, summary)); err != nil {
		log.FromContext(ctx).Error(err, "Failed to report run summary", "run", summary.RunID)
	}
}

func (t *tracker) close() {
	if t.reporter != nil {
		_ = t.reporter.Close()
	}
}
