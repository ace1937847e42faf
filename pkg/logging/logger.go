// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
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

// DefaultConfig returns a default logger configuration. Console output is
// pretty when stderr is a terminal and JSON otherwise.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: IsTerminal(os.Stderr),
		Output: os.Stderr,
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.TimeOnly,
			NoColor:    !IsTerminal(output),
		}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()

	// Set as global logger
	log.Logger = logger

	return logger
}

// ValidateLevel returns an error for level names Setup would not recognize.
func ValidateLevel(level string) error {
	switch strings.ToLower(level) {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("unknown log level %q (want debug, info, warn or error)", level)
	}
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
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

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Each fetched page (url, page number, item count)
//   - Each request with its credential fingerprint
//   - Skipped duplicate courses
//
// Info: Normal operation events
//   - Completed paginated fetches and aggregation passes
//   - Dataset deliveries
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Course detail fetch failed (shown as an empty list)
//   - Low remaining quota for a credential
//   - Refresh trigger dropped while a pass is running
//   - Canvas responses with status >= 400
//
// Error: Error conditions requiring attention
//   - Course list fetch failed (pass kept the previous dataset)
//   - Network failures
//   - Configuration errors
//
// Context Fields:
//   - component: emitting package (canvas-client, aggregator, refresh, ...)
//   - endpoint: API path with numeric ids collapsed to :id
//   - credential: token fingerprint, never the token itself
//   - course_id: Canvas course id
//   - resource: assignments or modules
//   - duration: pass or request duration
//   - error_class: Error classification (client, server, rate_limit, network)
