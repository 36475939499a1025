package telemetry

import (
	"fmt"
	"time"
)

// Config contains the telemetry configuration.
type Config struct {
	// ServiceName identifies the service in traces.
	ServiceName string

	// ServiceVersion is the version of the service.
	ServiceVersion string

	// Logging contains logging configuration.
	Logging LoggingConfig

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level sets the minimum log level (trace, debug, info, warn, error).
	Level string

	// Format specifies the log format (console, json).
	Format string

	// Output specifies where logs are written (stdout, stderr, file path).
	Output string

	// EnableCaller adds file:line caller information to logs.
	EnableCaller bool
}

// TracingConfig configures distributed tracing.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	Enabled bool

	// Exporter specifies the trace exporter (otlp, stdout, none).
	Exporter string

	// Endpoint is the OTLP exporter endpoint.
	Endpoint string

	// SamplingRate is the trace sampling rate (0.0 to 1.0).
	SamplingRate float64

	// ExportTimeout is the timeout for trace export.
	ExportTimeout time.Duration

	// Insecure disables TLS for the exporter connection.
	Insecure bool
}

// MetricsConfig configures metrics collection.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool

	// Namespace is the metrics namespace prefix.
	Namespace string

	// DumpOnExit prints the text-format metrics to stderr when a run ends.
	DumpOnExit bool
}

// DefaultConfig returns the default telemetry configuration.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "caseflow",
		ServiceVersion: "dev",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Tracing: TracingConfig{
			Enabled:       false,
			Exporter:      "stdout",
			SamplingRate:  1.0,
			ExportTimeout: 30 * time.Second,
			Insecure:      true,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "caseflow",
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service name is required")
	}

	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'console' or 'json')", c.Logging.Format)
	}

	validExporters := map[string]bool{"otlp": true, "stdout": true, "none": true}
	if c.Tracing.Enabled && !validExporters[c.Tracing.Exporter] {
		return fmt.Errorf("invalid trace exporter: %s", c.Tracing.Exporter)
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0 and 1, got: %f", c.Tracing.SamplingRate)
	}
	return nil
}
