package config

import (
	"github.com/caseflow/caseflow/pkg/telemetry"
)

// Config is the full caseflow.yaml configuration.
type Config struct {
	// Root is the document store root directory.
	Root string `yaml:"root" validate:"required"`

	// PlanName is the planning document file name inside planning/.
	PlanName string `yaml:"plan_name" validate:"required"`

	// Interpreters maps a script file extension to the interpreter argv
	// prefix used to run it.
	Interpreters map[string][]string `yaml:"interpreters" validate:"required,dive,required,min=1"`

	// History configures the run-history database.
	History HistoryConfig `yaml:"history"`

	// Policy configures the pre-run policy gate.
	Policy PolicyConfig `yaml:"policy"`

	// Telemetry configures logging, tracing and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// HistoryConfig configures the SQLite run-history store.
type HistoryConfig struct {
	// Enabled turns run-history recording on.
	Enabled bool `yaml:"enabled"`

	// Path is the database file path, relative to the store root unless
	// absolute.
	Path string `yaml:"path"`
}

// PolicyConfig configures pre-run policy evaluation.
type PolicyConfig struct {
	// Paths lists extra .rego policy files or directories to load on top
	// of the built-in policies.
	Paths []string `yaml:"paths"`
}

// TelemetryConfig is the yaml-facing telemetry block.
type TelemetryConfig struct {
	// LogLevel sets the minimum log level.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`

	// LogFormat specifies the log format (console, json).
	LogFormat string `yaml:"log_format" validate:"omitempty,oneof=console json"`

	// TraceExporter selects the trace exporter (otlp, stdout, none).
	TraceExporter string `yaml:"trace_exporter" validate:"omitempty,oneof=otlp stdout none"`

	// TraceEndpoint is the OTLP endpoint when the otlp exporter is used.
	TraceEndpoint string `yaml:"trace_endpoint"`

	// MetricsDump prints text-format metrics to stderr after a run.
	MetricsDump bool `yaml:"metrics_dump"`
}

// TelemetryConfigFor expands the yaml block into the full telemetry config.
func (c *Config) TelemetryConfigFor(version string) *telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.ServiceVersion = version
	if c.Telemetry.LogLevel != "" {
		tc.Logging.Level = c.Telemetry.LogLevel
	}
	if c.Telemetry.LogFormat != "" {
		tc.Logging.Format = c.Telemetry.LogFormat
	}
	if c.Telemetry.TraceExporter != "" && c.Telemetry.TraceExporter != "none" {
		tc.Tracing.Enabled = true
		tc.Tracing.Exporter = c.Telemetry.TraceExporter
		tc.Tracing.Endpoint = c.Telemetry.TraceEndpoint
	}
	tc.Metrics.DumpOnExit = c.Telemetry.MetricsDump
	return tc
}
