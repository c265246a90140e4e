package instrumentation

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestDisabledProviderIsNoOp(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	m := provider.Metrics()
	if m == nil {
		t.Fatal("Expected a no-op metrics recorder, got nil")
	}

	// No-op recorder must not panic.
	ctx := context.Background()
	m.RecordHTTPRequest(ctx, "GET", "/api/files", 200, time.Millisecond)
	m.RecordOAuthFlow(ctx, "started")
	m.RecordPipelineStage(ctx, "transcribing", ResultSuccess, time.Second)
	m.RecordPipelineRun(ctx, ResultSuccess, time.Minute)

	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown of disabled provider failed: %v", err)
	}
}

func TestNilMetricsIsNoOp(t *testing.T) {
	var m *Metrics
	m.RecordOAuthFlow(context.Background(), "started")
	m.RecordPipelineRun(context.Background(), ResultError, time.Second)
}

func TestMetricsRecordAgainstManualReader(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	m, err := NewMetrics(provider.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	ctx := context.Background()
	m.RecordPipelineStage(ctx, "summarizing", ResultSuccess, 2*time.Second)
	m.RecordOAuthFlow(ctx, "completed")

	var data metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &data); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	names := make(map[string]bool)
	for _, scope := range data.ScopeMetrics {
		for _, metricData := range scope.Metrics {
			names[metricData.Name] = true
		}
	}
	for _, expected := range []string{"pipeline_stages_total", "pipeline_stage_duration_seconds", "oauth_flows_total"} {
		if !names[expected] {
			t.Errorf("Expected metric %s to be recorded, have %v", expected, names)
		}
	}
}

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg := ConfigFromEnv("test-version")
	if !cfg.Enabled {
		t.Error("Expected instrumentation enabled by default")
	}
	if cfg.MetricsExporter != ExporterPrometheus {
		t.Errorf("Expected prometheus default, got %s", cfg.MetricsExporter)
	}
	if cfg.TracesExporter != ExporterNone {
		t.Errorf("Expected tracing disabled by default, got %s", cfg.TracesExporter)
	}
	if cfg.ServiceVersion != "test-version" {
		t.Errorf("Expected version propagated, got %s", cfg.ServiceVersion)
	}
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("INSTRUMENTATION_ENABLED", "false")
	t.Setenv("INSTRUMENTATION_METRICS_EXPORTER", ExporterStdout)
	t.Setenv("OTLP_ENDPOINT", "collector:4318")

	cfg := ConfigFromEnv("v")
	if cfg.Enabled {
		t.Error("Expected instrumentation disabled")
	}
	if cfg.MetricsExporter != ExporterStdout {
		t.Errorf("Expected stdout exporter, got %s", cfg.MetricsExporter)
	}
	if cfg.OTLPEndpoint != "collector:4318" {
		t.Errorf("Expected endpoint override, got %s", cfg.OTLPEndpoint)
	}
}
