package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrMethod = "method"
	attrPath   = "path"
	attrStatus = "status"
	attrStage  = "stage"
	attrResult = "result"
)

// Result values for flow and stage metrics.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics records the application's observability metrics. The zero value is
// a safe no-op so callers never have to branch on instrumentation being
// disabled.
type Metrics struct {
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	oauthFlowsTotal        metric.Int64Counter
	oauthTokenRefreshTotal metric.Int64Counter

	pipelineRunsTotal     metric.Int64Counter
	pipelineRunDuration   metric.Float64Histogram
	pipelineStagesTotal   metric.Int64Counter
	pipelineStageDuration metric.Float64Histogram
}

// NewMetrics creates a Metrics recorder on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.oauthFlowsTotal, err = meter.Int64Counter(
		"oauth_flows_total",
		metric.WithDescription("OAuth authorization flow outcomes"),
		metric.WithUnit("{flow}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_flows_total counter: %w", err)
	}

	m.oauthTokenRefreshTotal, err = meter.Int64Counter(
		"oauth_token_refresh_total",
		metric.WithDescription("OAuth token refresh outcomes"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_refresh_total counter: %w", err)
	}

	m.pipelineRunsTotal, err = meter.Int64Counter(
		"pipeline_runs_total",
		metric.WithDescription("Pipeline run outcomes"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline_runs_total counter: %w", err)
	}

	m.pipelineRunDuration, err = meter.Float64Histogram(
		"pipeline_run_duration_seconds",
		metric.WithDescription("End-to-end pipeline run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 5, 15, 30, 60, 120, 300, 600),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline_run_duration_seconds histogram: %w", err)
	}

	m.pipelineStagesTotal, err = meter.Int64Counter(
		"pipeline_stages_total",
		metric.WithDescription("Pipeline stage outcomes"),
		metric.WithUnit("{stage}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline_stages_total counter: %w", err)
	}

	m.pipelineStageDuration, err = meter.Float64Histogram(
		"pipeline_stage_duration_seconds",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 1, 5, 15, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline_stage_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records one HTTP request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(status)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordOAuthFlow records an authorization flow outcome, e.g. "started",
// "completed", "denied", "state_mismatch", "exchange_failed".
func (m *Metrics) RecordOAuthFlow(ctx context.Context, result string) {
	if m == nil || m.oauthFlowsTotal == nil {
		return
	}
	m.oauthFlowsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordTokenRefresh records a token refresh outcome.
func (m *Metrics) RecordTokenRefresh(ctx context.Context, result string) {
	if m == nil || m.oauthTokenRefreshTotal == nil {
		return
	}
	m.oauthTokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordPipelineRun records the outcome and duration of a whole run.
func (m *Metrics) RecordPipelineRun(ctx context.Context, result string, duration time.Duration) {
	if m == nil || m.pipelineRunsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(attrResult, result))
	m.pipelineRunsTotal.Add(ctx, 1, attrs)
	m.pipelineRunDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordPipelineStage records the outcome and duration of a single stage.
func (m *Metrics) RecordPipelineStage(ctx context.Context, stage, result string, duration time.Duration) {
	if m == nil || m.pipelineStagesTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrStage, stage),
		attribute.String(attrResult, result),
	)
	m.pipelineStagesTotal.Add(ctx, 1, attrs)
	m.pipelineStageDuration.Record(ctx, duration.Seconds(), attrs)
}
