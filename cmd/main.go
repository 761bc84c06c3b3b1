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
	"crypto/tls"
	"flag"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	// to ensure that exec-entrypoint and run can make use of them.
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/controller-runtime/pkg/metrics/filters"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	spotv1alpha1 "github.com/mehdiazizian/spot-score-tracker/api/v1alpha1"
	"github.com/mehdiazizian/spot-score-tracker/internal/config"
	"github.com/mehdiazizian/spot-score-tracker/internal/controller"
	"github.com/mehdiazizian/spot-score-tracker/internal/pipeline"
	"github.com/mehdiazizian/spot-score-tracker/internal/publisher"
	// +kubebuilder:scaffold:imports
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))

	utilruntime.Must(spotv1alpha1.AddToScheme(scheme))
	// +kubebuilder:scaffold:scheme
}

// nolint:gocyclo
func main() {
	var metricsAddr string
	var metricsCertPath, metricsCertName, metricsCertKey string
	var enableLeaderElection bool
	var probeAddr string
	var secureMetrics bool
	var enableHTTP2 bool
	var tlsOpts []func(*tls.Config)
	var opts trackerOptions

	flag.StringVar(&metricsAddr, "metrics-bind-address", "0", "The address the metrics endpoint binds to. "+
		"Use :8443 for HTTPS or :8080 for HTTP, or leave as 0 to disable the metrics service.")
	flag.StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")
	flag.BoolVar(&enableLeaderElection, "leader-elect", false,
		"Enable leader election for controller manager. "+
			"Enabling this will ensure there is only one active controller manager.")
	flag.BoolVar(&secureMetrics, "metrics-secure", true,
		"If set, the metrics endpoint is served securely via HTTPS. Use --metrics-secure=false to use HTTP instead.")
	flag.StringVar(&metricsCertPath, "metrics-cert-path", "",
		"The directory that contains the metrics server certificate.")
	flag.StringVar(&metricsCertName, "metrics-cert-name", "tls.crt", "The name of the metrics server certificate file.")
	flag.StringVar(&metricsCertKey, "metrics-cert-key", "tls.key", "The name of the metrics server key file.")
	flag.BoolVar(&enableHTTP2, "enable-http2", false,
		"If set, HTTP/2 will be enabled for the metrics server")

	flag.BoolVar(&opts.once, "once", false, "Run the scoring pipeline once from --config-file or S3 and exit")
	flag.StringVar(&opts.configFile, "config-file", "", "Path of a local sps_config.yaml document")
	flag.StringVar(&opts.s3Bucket, "config-s3-bucket", os.Getenv(config.S3BucketEnv),
		"S3 bucket holding the configuration document")
	flag.StringVar(&opts.s3Key, "config-s3-key", os.Getenv(config.S3ObjectKeyEnv),
		"S3 object key of the configuration document")
	flag.StringVar(&opts.metricNamespace, "metric-namespace", publisher.DefaultNamespace,
		"Namespace the scores are published under")
	flag.StringVar(&opts.metricsBackend, "metrics-backend", backendCloudWatch,
		"Monitoring backend receiving the scores (cloudwatch|prometheus)")
	flag.IntVar(&opts.concurrency, "scoring-concurrency", 2, "Number of in-flight score requests")
	flag.IntVar(&opts.maxAttempts, "scoring-max-attempts", 3, "Attempts per score request on transient errors")
	flag.DurationVar(&opts.callTimeout, "scoring-call-timeout", 30*time.Second, "Timeout of a single score request")
	flag.Float64Var(&opts.qps, "scoring-qps", 2, "Score requests per second, 0 disables pacing")
	flag.IntVar(&opts.batchSize, "publish-batch-size", publisher.CloudWatchMaxBatchSize,
		"Data points per publish call, capped by the backend maximum")
	flag.DurationVar(&opts.publishReserve, "publish-reserve", pipeline.DefaultPublishReserve,
		"Time kept for publishing before the run timeout")
	flag.DurationVar(&opts.runTimeout, "run-timeout", 4*time.Minute, "Timeout of a scoring run")
	flag.DurationVar(&opts.runInterval, "run-interval", pipeline.DefaultInterval,
		"Interval between runs of the file or S3 document, and default interval of ScoreTrackers")
	flag.StringVar(&opts.reportURL, "report-url", "", "Collector URL receiving run summaries (optional)")
	flag.StringVar(&opts.reportCertPath, "report-cert-path", "",
		"Directory with tls.crt, tls.key and ca.crt for mTLS to the collector")

	zapOpts := zap.Options{
		Development: true,
	}
	zapOpts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&zapOpts)))

	ctx := ctrl.SetupSignalHandler()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		setupLog.Error(err, "unable to load AWS configuration")
		os.Exit(1)
	}

	tracker, err := newTracker(awsCfg, opts)
	if err != nil {
		setupLog.Error(err, "unable to set up scoring pipeline")
		os.Exit(1)
	}
	defer tracker.close()

	if opts.once {
		if err := tracker.runOnce(log.IntoContext(ctx, setupLog)); err != nil {
			os.Exit(1)
		}
		return
	}

	// if the enable-http2 flag is false (the default), http/2 should be disabled
	// due to its vulnerabilities. More specifically, disabling http/2 will
	// prevent from being vulnerable to the HTTP/2 Stream Cancellation and
	// Rapid Reset CVEs. For more information see:
	// - https://github.com/advisories/GHSA-qppj-fm5r-hxr3
	// - https://github.com/advisories/GHSA-4374-p667-p6c8
	disableHTTP2 := func(c *tls.Config) {
		setupLog.Info("disabling http/2")
		c.NextProtos = []string{"http/1.1"}
	}

	if !enableHTTP2 {
		tlsOpts = append(tlsOpts, disableHTTP2)
	}

	metricsServerOptions := metricsserver.Options{
		BindAddress:   metricsAddr,
		SecureServing: secureMetrics,
		TLSOpts:       tlsOpts,
	}

	if secureMetrics {
		// FilterProvider is used to protect the metrics endpoint with authn/authz.
		metricsServerOptions.FilterProvider = filters.WithAuthenticationAndAuthorization
	}

	if len(metricsCertPath) > 0 {
		setupLog.Info("Initializing metrics certificate watcher using provided certificates",
			"metrics-cert-path", metricsCertPath, "metrics-cert-name", metricsCertName, "metrics-cert-key", metricsCertKey)

		metricsServerOptions.CertDir = metricsCertPath
		metricsServerOptions.CertName = metricsCertName
		metricsServerOptions.KeyName = metricsCertKey
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme:                 scheme,
		Metrics:                metricsServerOptions,
		HealthProbeBindAddress: probeAddr,
		// One scoring poller per account, the configuration quota is account wide
		LeaderElection:   enableLeaderElection,
		LeaderElectionID: "3b1f6c2a.spot.fluidos.eu",
	})
	if err != nil {
		setupLog.Error(err, "unable to start manager")
		os.Exit(1)
	}

	if err = (&controller.ScoreTrackerReconciler{
		Client:          mgr.GetClient(),
		Scheme:          mgr.GetScheme(),
		Orchestrators:   tracker.orchestratorFor,
		S3:              tracker.s3,
		Reporter:        tracker.reporter,
		RunTimeout:      opts.runTimeout,
		DefaultInterval: opts.runInterval,
	}).SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "ScoreTracker")
		os.Exit(1)
	}

	if loader := tracker.documentLoader(); loader != nil {
		if err := mgr.Add(tracker.ticker(loader)); err != nil {
			setupLog.Error(err, "unable to add scoring ticker")
			os.Exit(1)
		}
		setupLog.Info("Scoring ticker enabled", "interval", opts.runInterval)
	}
	// +kubebuilder:scaffold:builder

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	setupLog.Info("starting manager")
	if err := mgr.Start(ctx); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}
