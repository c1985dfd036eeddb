package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "soldieriq-gateway"

// Metrics holds the gateway's metric instruments.
type Metrics struct {
	StreamsStarted   metric.Int64Counter
	StreamsCompleted metric.Int64Counter
	StreamsFailed    metric.Int64Counter
	ToolCalls        metric.Int64Counter
	TimeToFirstToken metric.Float64Histogram
	StreamDuration   metric.Float64Histogram
	AssetCacheHits   metric.Int64Counter
	AssetCacheMisses metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.StreamsStarted, err = meter.Int64Counter("soldieriq.chat.streams.started",
		metric.WithDescription("Number of chat streams opened"))
	if err != nil {
		return nil, err
	}

	m.StreamsCompleted, err = meter.Int64Counter("soldieriq.chat.streams.completed",
		metric.WithDescription("Number of chat streams that reached run.completed"))
	if err != nil {
		return nil, err
	}

	m.StreamsFailed, err = meter.Int64Counter("soldieriq.chat.streams.failed",
		metric.WithDescription("Number of chat streams that ended in a failed turn"))
	if err != nil {
		return nil, err
	}

	m.ToolCalls, err = meter.Int64Counter("soldieriq.chat.toolcalls",
		metric.WithDescription("Number of tool completions observed on streams"))
	if err != nil {
		return nil, err
	}

	m.TimeToFirstToken, err = meter.Float64Histogram("soldieriq.chat.ttft_seconds",
		metric.WithDescription("Time from stream open to first content delta"))
	if err != nil {
		return nil, err
	}

	m.StreamDuration, err = meter.Float64Histogram("soldieriq.chat.stream.duration_seconds",
		metric.WithDescription("Chat stream duration"))
	if err != nil {
		return nil, err
	}

	m.AssetCacheHits, err = meter.Int64Counter("soldieriq.assets.cache.hits",
		metric.WithDescription("Asset link resolutions served from cache"))
	if err != nil {
		return nil, err
	}

	m.AssetCacheMisses, err = meter.Int64Counter("soldieriq.assets.cache.misses",
		metric.WithDescription("Asset link resolutions fetched from the backend"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
