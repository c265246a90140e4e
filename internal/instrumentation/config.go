package instrumentation

import (
	"os"
	"strconv"
)

// Exporter types for metrics and traces.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName is the name of the service (default: minutegen).
	ServiceName string

	// ServiceVersion is the version of the service.
	ServiceVersion string

	// Enabled determines whether instrumentation is active (default: true).
	Enabled bool

	// MetricsExporter is one of "prometheus", "otlp", "stdout" (default:
	// "prometheus").
	MetricsExporter string

	// TracesExporter is one of "otlp", "stdout", "none" (default: "none").
	TracesExporter string

	// OTLPEndpoint is the OTLP collector endpoint without protocol prefix,
	// e.g. "localhost:4318".
	OTLPEndpoint string

	// OTLPInsecure uses plain HTTP for OTLP export. Local development only.
	OTLPInsecure bool
}

// DefaultConfig returns the default instrumentation configuration.
func DefaultConfig(version string) Config {
	return Config{
		ServiceName:     "minutegen",
		ServiceVersion:  version,
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracesExporter:  ExporterNone,
	}
}

// ConfigFromEnv builds a configuration from INSTRUMENTATION_* environment
// variables, falling back to defaults.
func ConfigFromEnv(version string) Config {
	cfg := DefaultConfig(version)

	if v := os.Getenv("INSTRUMENTATION_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = enabled
		}
	}
	if v := os.Getenv("INSTRUMENTATION_METRICS_EXPORTER"); v != "" {
		cfg.MetricsExporter = v
	}
	if v := os.Getenv("INSTRUMENTATION_TRACES_EXPORTER"); v != "" {
		cfg.TracesExporter = v
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		cfg.OTLPEndpoint = v
	}
	if v := os.Getenv("OTLP_INSECURE"); v != "" {
		if insecure, err := strconv.ParseBool(v); err == nil {
			cfg.OTLPInsecure = insecure
		}
	}

	return cfg
}
