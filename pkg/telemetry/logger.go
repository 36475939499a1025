package telemetry

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger creates the root zerolog logger from configuration. Components
// derive child loggers from it with their own "component" field.
func NewLogger(cfg LoggingConfig) (zerolog.Logger, error) {
	var writer io.Writer
	switch cfg.Output {
	case "stdout":
		writer = os.Stdout
	case "stderr", "":
		writer = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), err
		}
		writer = file
	}

	if cfg.Format == "console" {
		writer = zerolog.ConsoleWriter{
			Out:        writer,
			TimeFormat: time.RFC3339,
		}
	}

	zlog := zerolog.New(writer).With().Timestamp().Logger()
	zlog = zlog.Level(parseLogLevel(cfg.Level))
	if cfg.EnableCaller {
		zlog = zlog.With().Caller().Logger()
	}
	return zlog, nil
}

// parseLogLevel converts a string log level to zerolog.Level.
func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
