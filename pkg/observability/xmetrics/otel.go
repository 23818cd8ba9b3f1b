package xmetrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultInstrumentationName = "github.com/omeyang/xsink/xmetrics"

	metricEventsWritten   = "xsink.events.written"
	metricEventsDropped   = "xsink.events.dropped"
	metricBytesWritten    = "xsink.bytes.written"
	metricWriteDuration   = "xsink.write.duration"
	metricWriteRecoveries = "xsink.write.recoveries"
	metricRotations       = "xsink.rotations"
	metricFilesPruned     = "xsink.files.pruned"

	attrSink    = "sink"
	attrReason  = "reason"
	attrAction  = "action"
	attrTrigger = "trigger"
)

type otelConfig struct {
	instrumentationName string
	meterProvider       metric.MeterProvider
}

// Option 定义 OTel Recorder 的配置选项。
type Option func(*otelConfig)

// WithInstrumentationName 设置 OTel instrumentation 名称。
func WithInstrumentationName(name string) Option {
	return func(cfg *otelConfig) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithMeterProvider 设置 MeterProvider，默认使用全局 provider。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

type otelRecorder struct {
	written    metric.Int64Counter
	dropped    metric.Int64Counter
	bytes      metric.Int64Counter
	duration   metric.Float64Histogram
	recoveries metric.Int64Counter
	rotations  metric.Int64Counter
	pruned     metric.Int64Counter
}

// NewOTelRecorder 创建基于 OpenTelemetry 的 Recorder。
func NewOTelRecorder(opts ...Option) (Recorder, error) {
	cfg := &otelConfig{
		instrumentationName: defaultInstrumentationName,
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	meter := cfg.meterProvider.Meter(cfg.instrumentationName)

	r := &otelRecorder{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&r.written, metricEventsWritten, "events appended to log files", "1"},
		{&r.dropped, metricEventsDropped, "events dropped before or during write", "1"},
		{&r.bytes, metricBytesWritten, "bytes appended to log files", "By"},
		{&r.recoveries, metricWriteRecoveries, "write recovery attempts", "1"},
		{&r.rotations, metricRotations, "log file rotations", "1"},
		{&r.pruned, metricFilesPruned, "old generation files removed", "1"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCreateCounter, c.name, err)
		}
		*c.dst = counter
	}

	duration, err := meter.Float64Histogram(
		metricWriteDuration,
		metric.WithDescription("duration of a single append"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCreateHistogram, metricWriteDuration, err)
	}
	r.duration = duration
	return r, nil
}

// 指标在请求 context 取消后仍需记录，统一去掉取消信号。
func metricsContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}

func (r *otelRecorder) Written(ctx context.Context, sink string, bytes int, elapsed time.Duration) {
	ctx = metricsContext(ctx)
	attrs := metric.WithAttributes(attribute.String(attrSink, sink))
	r.written.Add(ctx, 1, attrs)
	r.bytes.Add(ctx, int64(bytes), attrs)
	r.duration.Record(ctx, elapsed.Seconds(), attrs)
}

func (r *otelRecorder) Dropped(ctx context.Context, sink string, reason DropReason) {
	r.dropped.Add(metricsContext(ctx), 1, metric.WithAttributes(
		attribute.String(attrSink, sink),
		attribute.String(attrReason, string(reason)),
	))
}

func (r *otelRecorder) Recovered(ctx context.Context, sink string, action Recovery) {
	r.recoveries.Add(metricsContext(ctx), 1, metric.WithAttributes(
		attribute.String(attrSink, sink),
		attribute.String(attrAction, string(action)),
	))
}

func (r *otelRecorder) Rotated(ctx context.Context, sink string, trigger string, pruned int) {
	ctx = metricsContext(ctx)
	r.rotations.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrSink, sink),
		attribute.String(attrTrigger, trigger),
	))
	if pruned > 0 {
		r.pruned.Add(ctx, int64(pruned), metric.WithAttributes(attribute.String(attrSink, sink)))
	}
}
