// Package client provides the upstream breed API client: one GET of the full
// catalog, wrapped in bounded retries with exponential backoff and shared by
// concurrent callers.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/breeds-proxy/internal/observability"
	"github.com/Sternrassler/breeds-proxy/pkg/breed"
	"github.com/Sternrassler/breeds-proxy/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// Prometheus metrics for upstream operations.
var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breeds_upstream_requests_total",
		Help: "Total upstream attempts by status",
	}, []string{"status"})

	upstreamRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "breeds_upstream_request_duration_seconds",
		Help:    "Upstream attempt duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})

	upstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breeds_upstream_errors_total",
		Help: "Total failed upstream attempts by error class",
	}, []string{"class"})

	upstreamSharedFetchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "breeds_upstream_shared_fetches_total",
		Help: "Total callers served by an upstream fetch already in flight",
	})
)

const (
	// DefaultBaseURL is the public breed catalog API.
	DefaultBaseURL = "https://api.thedogapi.com/v1"

	// DefaultTimeout bounds each upstream attempt.
	DefaultTimeout = 5 * time.Second

	// BreedsPath is the catalog endpoint, relative to the base URL.
	BreedsPath = "/breeds"

	// APIKeyHeader carries the optional upstream API key.
	APIKeyHeader = "x-api-key"

	fetchAllKey = "breeds:all"
)

// Client fetches the breed catalog from the upstream API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	config     Config
	logger     zerolog.Logger
	group      singleflight.Group
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the upstream API (e.g., "https://api.thedogapi.com/v1")
	BaseURL string

	// APIKey is sent in the x-api-key header when non-empty
	APIKey string

	// UserAgent header sent with every request
	UserAgent string

	// Timeout bounds each attempt (connect + full response)
	Timeout time.Duration

	// Retry policy
	Retry RetryConfig
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: "breeds-proxy",
		Timeout:   DefaultTimeout,
		Retry:     DefaultRetryConfig(),
	}
}

// New creates a new upstream client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http(s) (got %q)", cfg.BaseURL)
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %v)", cfg.Timeout)
	}

	if cfg.Retry.MaxAttempts < 1 {
		return nil, fmt.Errorf("max_attempts must be >= 1 (got %d)", cfg.Retry.MaxAttempts)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + BreedsPath,
		config:   cfg,
		logger:   logging.NewLogger(logging.ComponentClient),
	}, nil
}

// FetchAllBreeds returns the full upstream catalog.
//
// Failed attempts (transport errors, timeouts, non-2xx responses, bodies that
// are not a breed list) are retried up to Retry.MaxAttempts in total. When
// every attempt fails the error wraps ErrUpstreamUnavailable and the last
// attempt's error.
//
// Concurrent callers share a single in-flight fetch. The shared fetch is not
// cancelled by any one caller; a caller whose ctx ends stops waiting and
// gets ctx.Err(). The returned slice may be shared and must not be modified.
func (c *Client) FetchAllBreeds(ctx context.Context) ([]breed.Raw, error) {
	ch := c.group.DoChan(fetchAllKey, func() (any, error) {
		return c.fetchWithRetry(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		trace.SpanFromContext(ctx).SetAttributes(observability.AttrShared.Bool(res.Shared))
		if res.Shared {
			upstreamSharedFetchesTotal.Inc()
			c.logger.Debug().Msg("Served by shared upstream fetch")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]breed.Raw), nil
	}
}

// fetchWithRetry performs the retried fetch inside a client span.
func (c *Client) fetchWithRetry(ctx context.Context) ([]breed.Raw, error) {
	ctx, span := observability.StartClientSpan(ctx, "upstream.FetchAllBreeds")
	defer span.End()

	var records []breed.Raw
	attempts := 0

	err := retryWithBackoff(ctx, c.config.Retry, c.logger, func(attempt int) error {
		attempts = attempt
		var fetchErr error
		records, fetchErr = c.fetchOnce(ctx)
		return fetchErr
	})

	span.SetAttributes(observability.AttrAttempts.Int(attempts))
	if err != nil {
		observability.SetSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(observability.AttrRecordCount.Int(len(records)))
	observability.SetSpanOK(span)
	return records, nil
}

// fetchOnce performs a single GET of the catalog.
func (c *Client) fetchOnce(ctx context.Context) ([]breed.Raw, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if c.config.APIKey != "" {
		req.Header.Set(APIKeyHeader, c.config.APIKey)
	}

	c.logger.Debug().Str("endpoint", c.endpoint).Msg("Executing upstream request")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	upstreamRequestDuration.Observe(time.Since(startTime).Seconds())

	// Handle network errors (including the per-attempt timeout)
	if err != nil {
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		upstreamRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, &UpstreamError{
			ErrorClass: ErrorClassNetwork,
			Message:    "request failed",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	upstreamRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	// Handle HTTP errors
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errClass := classifyStatus(resp.StatusCode)
		upstreamErrorsTotal.WithLabelValues(string(errClass)).Inc()
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Upstream request error")

		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
		}
	}

	var records []breed.Raw
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Message:    "decode breed list",
			Err:        err,
		}
	}
	if records == nil {
		records = []breed.Raw{}
	}

	return records, nil
}

// Close releases idle upstream connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Endpoint returns the full catalog URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}
