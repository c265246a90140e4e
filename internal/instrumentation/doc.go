// Package instrumentation wires OpenTelemetry metrics and tracing for the
// application: an exporter-agnostic provider plus a typed metrics recorder
// for the OAuth flow, the pipeline stages and HTTP traffic.
package instrumentation
