package client

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for retry operations.
var (
	upstreamRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breeds_upstream_retries_total",
		Help: "Total number of upstream retry attempts by error class",
	}, []string{"error_class"})

	upstreamRetryBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "breeds_upstream_retry_backoff_seconds",
		Help:    "Backoff duration before upstream retries",
		Buckets: []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5},
	})

	upstreamRetryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "breeds_upstream_retry_exhausted_total",
		Help: "Total number of upstream fetches that exhausted all attempts",
	})
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the initial request).
	MaxAttempts int

	// InitialBackoff is the wait after the first failed attempt.
	InitialBackoff time.Duration

	// MaxBackoff caps a single wait.
	MaxBackoff time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	BackoffMultiplier float64

	// Jitter randomizes each wait by ±Jitter (0.2 = ±20%). Zero makes
	// backoff deterministic.
	Jitter float64
}

// DefaultRetryConfig returns the default retry configuration:
// 3 attempts, 100ms then 200ms between them, ±20% jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            0.2,
	}
}

// Backoff returns the un-jittered wait after the given failed attempt
// (1-indexed): InitialBackoff × BackoffMultiplier^(attempt-1), capped.
func (c RetryConfig) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	backoff := float64(c.InitialBackoff) * math.Pow(c.BackoffMultiplier, float64(attempt-1))
	if c.MaxBackoff > 0 && backoff > float64(c.MaxBackoff) {
		return c.MaxBackoff
	}
	return time.Duration(backoff)
}

// jittered applies the configured jitter to d.
func (c RetryConfig) jittered(d time.Duration) time.Duration {
	if c.Jitter <= 0 {
		return d
	}
	factor := 1 - c.Jitter + rand.Float64()*2*c.Jitter
	return time.Duration(float64(d) * factor)
}

// retryWithBackoff executes fn up to cfg.MaxAttempts times, waiting with
// exponential backoff between failures. Every failure is retried; waits
// respect context cancellation. fn receives the 1-indexed attempt number.
func retryWithBackoff(ctx context.Context, cfg RetryConfig, logger zerolog.Logger, fn func(attempt int) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn(attempt)
		if err == nil {
			if attempt > 1 {
				logger.Info().
					Int("attempt", attempt).
					Msg("Upstream request succeeded after retry")
			}
			return nil
		}

		lastErr = err
		errClass := errorClassOf(err)

		// If this was the last attempt, don't wait
		if attempt >= cfg.MaxAttempts {
			break
		}

		upstreamRetriesTotal.WithLabelValues(string(errClass)).Inc()

		wait := cfg.jittered(cfg.Backoff(attempt))
		upstreamRetryBackoffSeconds.Observe(wait.Seconds())

		logger.Warn().
			Err(err).
			Str("error_class", string(errClass)).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("Upstream attempt failed, retrying after backoff")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Warn().
				Int("attempt", attempt).
				Msg("Context cancelled during retry backoff")
			return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-timer.C:
		}
	}

	// All retries exhausted
	upstreamRetryExhaustedTotal.Inc()
	logger.Warn().
		Err(lastErr).
		Int("max_attempts", cfg.MaxAttempts).
		Msg("Retry attempts exhausted")

	return fmt.Errorf("%w after %d attempts: %w", ErrUpstreamUnavailable, cfg.MaxAttempts, lastErr)
}
