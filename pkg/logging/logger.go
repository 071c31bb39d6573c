// Package logging configures zerolog for the breeds proxy. Components get
// their logger from NewLogger so every line carries a component field;
// HTTP handlers get a request-scoped logger from RequestLogger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component names used in the component field.
const (
	ComponentClient  = "breeds-client"
	ComponentCache   = "breeds-cache"
	ComponentService = "breeds-service"
	ComponentHTTP    = "http"
)

// LogLevel is a level name as accepted in config files and flags.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	Level LogLevel

	// Pretty switches from JSON lines to zerolog's console writer.
	Pretty bool

	// Output defaults to os.Stderr; stdout is reserved for list/get output.
	Output io.Writer
}

// DefaultConfig returns info-level JSON logging to stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Setup installs the global logger and level and returns the logger.
// Loggers created by NewLogger before Setup keep the previous settings,
// so Setup runs before any component is constructed.
func Setup(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	zerolog.SetGlobalLevel(ParseLevel(string(cfg.Level)))

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return log.Logger
}

// ParseLevel maps debug, info, warn (or warning) and error to zerolog levels,
// ignoring case and surrounding space. Anything else is info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger returns a child of the global logger tagged with component.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// RequestLogger derives the per-request logger of the HTTP layer.
func RequestLogger(base zerolog.Logger, requestID string) zerolog.Logger {
	return base.With().
		Str("component", ComponentHTTP).
		Str("request_id", requestID).
		Logger()
}

// What goes where:
//
//	debug  cache hit/miss/sweep, each upstream attempt, coalesced fetches
//	info   startup and shutdown, one access line per request, recovery after a retry
//	warn   failed attempt before a retry, exhausted retries, cache write failures
//	error  breed fetch failures returned to a client as 502, server failures
//
// Fields: cache_key, page, limit, search, breed_id, attempt, backoff,
// status, request_id, duration.
