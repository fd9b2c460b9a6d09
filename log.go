package dispatch

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// LogConfig holds logging configuration. A terminal app owns the screen,
// so diagnostics go to a file rather than stderr.
type LogConfig struct {
	Level zerolog.Level
	Path  string // log file path; empty discards everything
}

// DefaultLogConfig returns sensible defaults: discard at info level.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level: zerolog.InfoLevel,
	}
}

// NewLogger creates a zerolog logger from the configuration. The log file
// is opened for append and never closed; it lives as long as the process.
func NewLogger(cfg LogConfig) zerolog.Logger {
	if cfg.Path == "" {
		return zerolog.Nop()
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        f,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}).
		Level(cfg.Level).
		With().
		Timestamp().
		Logger()
}

// NewLoggerFromEnv creates a logger based on environment variables.
// DISPATCH_LOG: log file path (unset disables logging)
// DISPATCH_LOG_LEVEL: trace, debug, info, warn, error (default: info)
func NewLoggerFromEnv() zerolog.Logger {
	cfg := DefaultLogConfig()
	cfg.Path = os.Getenv("DISPATCH_LOG")

	if level := os.Getenv("DISPATCH_LOG_LEVEL"); level != "" {
		switch level {
		case "trace":
			cfg.Level = zerolog.TraceLevel
		case "debug":
			cfg.Level = zerolog.DebugLevel
		case "info":
			cfg.Level = zerolog.InfoLevel
		case "warn":
			cfg.Level = zerolog.WarnLevel
		case "error":
			cfg.Level = zerolog.ErrorLevel
		}
	}

	return NewLogger(cfg)
}
