package xlog

import (
	"context"
	"log/slog"
	"slices"

	"github.com/omeyang/xsink/pkg/observability/xsink"
)

var _ slog.Handler = (*SinkHandler)(nil)

// SinkHandler 把 slog 记录转发给 xsink.Sink。
//
// 分组属性展开为 "group.key" 形式的元数据；级别过滤先由 leveler 做一次，
// sink 自身的 Level 与 MetadataFilter 仍然生效。
type SinkHandler struct {
	sink    *xsink.Sink
	leveler slog.Leveler
	prefix  string
	fields  []xsink.Field
}

// NewSinkHandler 创建转发到 s 的 Handler，leveler 为 nil 时放行所有级别
func NewSinkHandler(s *xsink.Sink, leveler slog.Leveler) *SinkHandler {
	if leveler == nil {
		leveler = slog.Level(-1 << 10)
	}
	return &SinkHandler{sink: s, leveler: leveler}
}

func (h *SinkHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.leveler.Level()
}

// Handle 转成 Event 投递，sink 已停止时返回 xsink.ErrStopped
func (h *SinkHandler) Handle(ctx context.Context, r slog.Record) error {
	fields := slices.Clip(h.fields)
	r.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, h.prefix, a)
		return true
	})
	return h.sink.Log(ctx, xsink.Event{
		Level:    r.Level,
		Message:  xsink.Text(r.Message),
		Time:     r.Time,
		Metadata: fields,
	})
}

func (h *SinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := *h
	c.fields = slices.Clone(h.fields)
	for _, a := range attrs {
		c.fields = appendAttr(c.fields, h.prefix, a)
	}
	return &c
}

func (h *SinkHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

func appendAttr(fields []xsink.Field, prefix string, a slog.Attr) []xsink.Field {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		group := v.Group()
		if len(group) == 0 {
			return fields
		}
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range group {
			fields = appendAttr(fields, prefix, ga)
		}
		return fields
	}
	if a.Key == "" {
		return fields
	}
	return append(fields, xsink.Field{Key: prefix + a.Key, Value: v.Any()})
}
