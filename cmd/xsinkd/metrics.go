package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/omeyang/xsink/pkg/observability/xlog"
	"github.com/omeyang/xsink/pkg/observability/xmetrics"
)

// meter 进程内的指标采集：退出时把累计值写进诊断日志
type meter struct {
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
	recorder xmetrics.Recorder
}

func newMeter(log xlog.Logger) (*meter, error) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	rec, err := xmetrics.NewOTelRecorder(xmetrics.WithMeterProvider(provider))
	if err != nil {
		return nil, errors.Join(err, provider.Shutdown(context.Background()))
	}
	return &meter{
		reader:   reader,
		provider: provider,
		recorder: &loggingRecorder{Recorder: rec, log: log},
	}, nil
}

// report 输出所有计数器的累计值
func (m *meter) report(ctx context.Context, log xlog.Logger) error {
	var rm metricdata.ResourceMetrics
	if err := m.reader.Collect(ctx, &rm); err != nil {
		return fmt.Errorf("xsinkd: collect metrics: %w", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				attrs := []slog.Attr{slog.String("metric", md.Name), slog.Int64("value", dp.Value)}
				for _, kv := range dp.Attributes.ToSlice() {
					attrs = append(attrs, slog.String(string(kv.Key), kv.Value.Emit()))
				}
				log.Info(ctx, "metric", attrs...)
			}
		}
	}
	return nil
}

func (m *meter) shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}

// loggingRecorder 在记录指标的同时把轮转写进诊断日志
type loggingRecorder struct {
	xmetrics.Recorder
	log xlog.Logger
}

func (r *loggingRecorder) Rotated(ctx context.Context, sink string, trigger string, pruned int) {
	r.Recorder.Rotated(ctx, sink, trigger, pruned)
	r.log.Info(ctx, "sink rotated", xlog.Sink(sink), xlog.Trigger(trigger), slog.Int("pruned", pruned))
}

func (r *loggingRecorder) Written(ctx context.Context, sink string, bytes int, elapsed time.Duration) {
	r.Recorder.Written(ctx, sink, bytes, elapsed)
	if elapsed > slowWrite {
		r.log.Warn(ctx, "slow write", xlog.Sink(sink), xlog.Duration(elapsed))
	}
}

// slowWrite 超过该耗时的单次写入记一条警告
const slowWrite = time.Second
