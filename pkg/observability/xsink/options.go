package xsink

import (
	"fmt"
	"log/slog"
	"strings"
)

// MetadataKeys 元数据渲染选择。
//
// All 为 true 时按事件顺序渲染全部字段；否则按 Keys 的顺序渲染存在的字段。
// 零值不渲染任何字段。
type MetadataKeys struct {
	All  bool
	Keys []string
}

// AllMetadata 渲染全部元数据
func AllMetadata() *MetadataKeys { return &MetadataKeys{All: true} }

// SelectMetadata 按给定顺序渲染指定键
func SelectMetadata(keys ...string) *MetadataKeys { return &MetadataKeys{Keys: keys} }

// Rotation 按大小轮转策略。MaxBytes 与 Keep 都大于 0 时才启用。
type Rotation struct {
	// MaxBytes 活跃文件达到该大小后切换到下一代
	MaxBytes int64
	// Keep 每天保留的代数
	Keep int
}

// Options sink 配置覆盖层。
//
// 指针字段为 nil 表示"未提供"，[Merge] 时保留旧值。
type Options struct {
	// Dir 日志目录，零值 Dir{} 表示禁用写入
	Dir *Dir
	// Filename 文件名前缀，未提供时使用 sink 名称
	Filename *string
	// Level 最低级别，nil 表示不限
	Level *slog.Level
	// ResetLevel 为 true 时 [Merge] 清除旧的 Level，恢复为不限级别；
	// 同时提供 Level 时以 Level 为准。合并结果中总为 false。
	ResetLevel bool
	// Format 行模板，默认 [DefaultFormat]
	Format *string
	// Metadata 元数据渲染选择，nil 表示不渲染
	Metadata *MetadataKeys
	// MetadataFilter 元数据过滤条件，nil 表示不过滤
	MetadataFilter *Filter
	// Rotate 按大小轮转策略，nil 表示不按大小轮转
	Rotate *Rotation
}

// Ptr 返回 v 的指针，便于构造 Options
func Ptr[T any](v T) *T { return &v }

// Merge 把 next 中提供的字段覆盖到 prev 上
func Merge(prev, next Options) Options {
	out := prev
	if next.Dir != nil {
		out.Dir = next.Dir
	}
	if next.Filename != nil {
		out.Filename = next.Filename
	}
	if next.ResetLevel {
		out.Level = nil
	}
	if next.Level != nil {
		out.Level = next.Level
	}
	out.ResetLevel = false
	if next.Format != nil {
		out.Format = next.Format
	}
	if next.Metadata != nil {
		out.Metadata = next.Metadata
	}
	if next.MetadataFilter != nil {
		out.MetadataFilter = next.MetadataFilter
	}
	if next.Rotate != nil {
		out.Rotate = next.Rotate
	}
	return out
}

// resolved 合并后的配置解析结果，由 sink goroutine 持有
type resolved struct {
	dir      string // "" 表示禁用
	filename string
	level    *slog.Level
	tmpl     template
	metadata MetadataKeys
	filter   Filter
	maxBytes int64
	keep     int
}

// resolve 校验并解析配置。name 是未提供文件名时的默认值。
func resolve(name string, o Options) (resolved, error) {
	r := resolved{
		filename: name,
		level:    o.Level,
		tmpl:     compileTemplate(DefaultFormat),
	}
	if o.Dir != nil {
		dir, err := o.Dir.Resolve()
		if err != nil {
			return resolved{}, err
		}
		r.dir = dir
	}
	if o.Filename != nil {
		r.filename = *o.Filename
	}
	if r.filename == "" || strings.ContainsAny(r.filename, `/\`) || strings.ContainsRune(r.filename, 0) {
		return resolved{}, fmt.Errorf("%w: %q", ErrInvalidFilename, r.filename)
	}
	if o.Format != nil {
		r.tmpl = compileTemplate(*o.Format)
	}
	if o.Metadata != nil {
		r.metadata = *o.Metadata
	}
	if o.MetadataFilter != nil {
		r.filter = *o.MetadataFilter
	}
	if o.Rotate != nil {
		if o.Rotate.MaxBytes < 0 || o.Rotate.Keep < 0 {
			return resolved{}, fmt.Errorf("%w: max_bytes=%d keep=%d", ErrInvalidRotation, o.Rotate.MaxBytes, o.Rotate.Keep)
		}
		r.maxBytes = o.Rotate.MaxBytes
		r.keep = o.Rotate.Keep
	}
	return r, nil
}
