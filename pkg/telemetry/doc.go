// Package telemetry provides the observability stack: structured zerolog
// logging, OpenTelemetry tracing with stdout or OTLP export, and a private
// Prometheus registry whose metrics can be dumped in text format at the
// end of a run.
package telemetry
