// Package config loads the proxy configuration from defaults, an optional
// YAML file and environment overrides, in that order.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/Sternrassler/breeds-proxy/internal/observability"
	"github.com/Sternrassler/breeds-proxy/pkg/cache"
	"github.com/Sternrassler/breeds-proxy/pkg/client"
	"github.com/Sternrassler/breeds-proxy/pkg/logging"
	"gopkg.in/yaml.v3"
)

// Version is the build version, set with -ldflags "-X".
var Version = "dev"

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// UpstreamConfig holds breed API settings
type UpstreamConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	UserAgent      string        `yaml:"user_agent"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

// CacheConfig holds result cache settings
type CacheConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// TracingConfig holds OpenTelemetry settings
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Exporter    string  `yaml:"exporter"`
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"service_name"`
	SampleRate  float64 `yaml:"sample_rate"`
}

// Config is the central configuration struct embedding all component configs
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	retry := client.DefaultRetryConfig()
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Upstream: UpstreamConfig{
			BaseURL:        client.DefaultBaseURL,
			UserAgent:      "breeds-proxy/" + Version,
			Timeout:        client.DefaultTimeout,
			MaxAttempts:    retry.MaxAttempts,
			InitialBackoff: retry.InitialBackoff,
			MaxBackoff:     retry.MaxBackoff,
		},
		Cache: CacheConfig{
			TTL:           cache.DefaultTTL,
			SweepInterval: cache.DefaultSweepInterval,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Tracing: TracingConfig{
			Exporter:    "otlp-http",
			Endpoint:    "localhost:4318",
			ServiceName: "breeds-proxy",
			SampleRate:  1.0,
		},
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromEnv applies environment variable overrides to the config.
// Malformed durations are reported rather than ignored.
func LoadFromEnv(cfg *Config) error {
	if v := os.Getenv("DOGAPI_KEY"); v != "" {
		cfg.Upstream.APIKey = v
	}
	if v := os.Getenv("DOGAPI_BASE_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := os.Getenv("UPSTREAM_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("UPSTREAM_TIMEOUT: %w", err)
		}
		cfg.Upstream.Timeout = d
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL: %w", err)
		}
		cfg.Cache.TTL = d
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Tracing.Enabled = true
		cfg.Tracing.Endpoint = v
	}
	return nil
}

// parseDuration accepts Go duration strings and bare integers as seconds.
func parseDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// Validate checks the configuration for values the components would reject.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("upstream.base_url must be an absolute http(s) URL (got %q)", c.Upstream.BaseURL)
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be > 0 (got %v)", c.Upstream.Timeout)
	}
	if c.Upstream.MaxAttempts < 1 {
		return fmt.Errorf("upstream.max_attempts must be >= 1 (got %d)", c.Upstream.MaxAttempts)
	}
	if c.Upstream.InitialBackoff < 0 || c.Upstream.MaxBackoff < 0 {
		return fmt.Errorf("upstream backoff must be >= 0")
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be > 0 (got %v)", c.Cache.TTL)
	}
	if c.Cache.SweepInterval < 0 {
		return fmt.Errorf("cache.sweep_interval must be >= 0 (got %v)", c.Cache.SweepInterval)
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be within [0, 1] (got %v)", c.Tracing.SampleRate)
	}

	return nil
}

// ClientConfig returns the upstream client configuration.
func (c *Config) ClientConfig() client.Config {
	retry := client.DefaultRetryConfig()
	retry.MaxAttempts = c.Upstream.MaxAttempts
	retry.InitialBackoff = c.Upstream.InitialBackoff
	retry.MaxBackoff = c.Upstream.MaxBackoff

	return client.Config{
		BaseURL:   c.Upstream.BaseURL,
		APIKey:    c.Upstream.APIKey,
		UserAgent: c.Upstream.UserAgent,
		Timeout:   c.Upstream.Timeout,
		Retry:     retry,
	}
}

// CacheStoreConfig returns the cache store configuration.
func (c *Config) CacheStoreConfig() cache.Config {
	return cache.Config{
		DefaultTTL:    c.Cache.TTL,
		SweepInterval: c.Cache.SweepInterval,
	}
}

// LoggerConfig returns the logger configuration (output to stderr).
func (c *Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:  logging.LogLevel(c.Logging.Level),
		Pretty: c.Logging.Pretty,
		Output: os.Stderr,
	}
}

// TelemetryConfig returns the tracing configuration.
func (c *Config) TelemetryConfig() observability.Config {
	return observability.Config{
		Enabled:        c.Tracing.Enabled,
		Exporter:       c.Tracing.Exporter,
		Endpoint:       c.Tracing.Endpoint,
		ServiceName:    c.Tracing.ServiceName,
		ServiceVersion: Version,
		SampleRate:     c.Tracing.SampleRate,
	}
}
