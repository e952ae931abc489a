package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration
type Config struct {
	Level      string
	Format     string // "pretty" or "json"
	WithCaller bool
	Output     io.Writer
	TimeFormat string
}

// DefaultConfig returns the logger defaults used by the CLI
func DefaultConfig() *Config {
	return &Config{
		Level:      "warn",
		Format:     "pretty",
		WithCaller: false,
		Output:     os.Stderr,
		TimeFormat: time.RFC3339,
	}
}

// InitLogger creates and configures a new zerolog logger
func InitLogger(config *Config) zerolog.Logger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Output == nil {
		config.Output = os.Stderr
	}

	zerolog.SetGlobalLevel(ParseLevel(config.Level))
	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	var output io.Writer = config.Output
	if config.Format == "pretty" {
		output = &zerolog.ConsoleWriter{
			Out:        config.Output,
			TimeFormat: "15:04:05",
		}
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("app", "callout").
		Logger()

	if config.WithCaller {
		logger = logger.With().Caller().Logger()
	}

	return logger
}

// ParseLevel converts string level to zerolog.Level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetupFromFlags configures logger based on command flags.
// An explicit level wins over the verbose/debug switches.
func SetupFromFlags(level string, verbose bool, debug bool) zerolog.Logger {
	config := DefaultConfig()

	switch {
	case debug:
		config.Level = "debug"
		config.WithCaller = true
	case level != "":
		config.Level = level
	case verbose:
		config.Level = "info"
	}

	return InitLogger(config)
}

// ForComponent creates a logger with component context
func ForComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// ForRequest creates a logger with request context
func ForRequest(logger zerolog.Logger, alias, method, path string) zerolog.Logger {
	return logger.With().
		Str("alias", alias).
		Str("method", method).
		Str("path", path).
		Logger()
}

// ForJob creates a logger with job context
func ForJob(logger zerolog.Logger, kind, jobID string) zerolog.Logger {
	return logger.With().
		Str("component", "jobs").
		Str("job_kind", kind).
		Str("job_id", jobID).
		Logger()
}
