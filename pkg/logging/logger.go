// Package logging configures zerolog for the Wise client and its tools.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output instead of JSON.
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
// Exports write records to stdout, so logs never default to it.
func Setup(cfg Config) zerolog.Logger {
	level := ParseLevel(string(cfg.Level))
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// ParseLevel converts a level name to zerolog.Level, falling back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a logger tagged with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: request flow inside the client
//   - Request sent (endpoint name and path)
//   - SCA challenge received, replay rejected
//   - Page fetched (page number, item count)
//
// Info: export progress
//   - Export started/resumed/finished
//   - Checkpoint saved
//
// Warn: degraded but continuing
//   - Checkpoint store unavailable
//
// Error: export aborted
//   - Configuration errors
//   - Request failures surfaced by the client
//
// Never log the API key, SCA tokens or signatures.
//
// Context Fields:
//   - component: emitting package or tool
//   - endpoint: logical endpoint name (e.g. "activities")
//   - path: request path
//   - status: HTTP status code
//   - error_class: client, server, sca, network
//   - run_id: export run identifier
//   - profile_id: Wise profile
