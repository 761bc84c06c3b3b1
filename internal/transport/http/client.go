package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mehdiazizian/spot-score-tracker/internal/transport/dto"
)

// HTTPReporter implements SummaryReporter by posting JSON to a collector
type HTTPReporter struct {
	httpClient *http.Client
	url        string
	backoff    wait.Backoff
}

// DefaultBackoff retries a report three times after the first attempt
func DefaultBackoff() wait.Backoff {
	return wait.Backoff{
		Steps:    4,
		Duration: 1 * time.Second,
		Factor:   2.0,
		Cap:      16 * time.Second,
	}
}

// NewHTTPReporter creates a reporter posting to url. When certPath is set it
// holds tls.crt, tls.key and ca.crt and the connection uses mTLS.
func NewHTTPReporter(url, certPath string) (*HTTPReporter, error) {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if certPath != "" {
		tlsConfig, err := loadTLSConfig(certPath)
		if err != nil {
			return nil, err
		}
		transport.TLSClientConfig = tlsConfig
	}

	return NewHTTPReporterWithClient(url, &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}, DefaultBackoff()), nil
}

// NewHTTPReporterWithClient creates a reporter on top of an existing client
func NewHTTPReporterWithClient(url string, c *http.Client, backoff wait.Backoff) *HTTPReporter {
	if backoff.Steps <= 0 {
		backoff.Steps = 1
	}
	return &HTTPReporter{httpClient: c, url: url, backoff: backoff}
}

func loadTLSConfig(certPath string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(
		filepath.Join(certPath, "tls.crt"),
		filepath.Join(certPath, "tls.key"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load client certificate: %w", err)
	}

	caCert, err := os.ReadFile(filepath.Join(certPath, "ca.crt"))
	if err != nil {
		return nil, fmt.Errorf("failed to load CA certificate: %w", err)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, errors.New("failed to append CA certificate")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      caCertPool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// Report posts the summary
func (r *HTTPReporter) Report(ctx context.Context, summary *dto.RunSummaryDTO) error {
	logger := log.FromContext(ctx).WithName("http-reporter")

	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	resp, err := r.doWithRetry(ctx, body)
	if err != nil {
		return fmt.Errorf("failed to report run summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("collector returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	logger.V(1).Info("Run summary reported", "run", summary.RunID, "state", summary.State)
	return nil
}

// Close cleans up resources
func (r *HTTPReporter) Close() error {
	r.httpClient.CloseIdleConnections()
	return nil
}

// doWithRetry posts body, retrying transport errors and 5xx responses with
// exponential backoff. The last 5xx response is returned as is.
func (r *HTTPReporter) doWithRetry(ctx context.Context, body []byte) (*http.Response, error) {
	var resp *http.Response
	var lastErr error

	err := wait.ExponentialBackoffWithContext(ctx, r.backoff, func(ctx context.Context) (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
		if err != nil {
			return false, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		if resp != nil {
			resp.Body.Close()
			resp = nil
		}

		resp, lastErr = r.httpClient.Do(req)
		if lastErr != nil {
			return false, nil
		}
		return resp.StatusCode < 500, nil
	})

	if err == nil {
		return resp, nil
	}
	if resp != nil && wait.Interrupted(err) {
		return resp, nil
	}
	if resp != nil {
		resp.Body.Close()
	}
	if lastErr != nil {
		return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return nil, err
}
