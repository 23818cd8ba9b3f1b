package xconf

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/v2"

	"github.com/omeyang/xsink/pkg/observability/xlog"
	"github.com/omeyang/xsink/pkg/observability/xsink"
)

// SinksKey sink 配置所在的顶层键
const SinksKey = "sinks"

const (
	// metadataAll metadata 字段取该值时渲染全部元数据
	metadataAll = "all"
	// levelAll level 字段取该值时清除级别限制
	levelAll = "all"
)

type sinkSpec struct {
	Path           *string        `koanf:"path"`
	Dir            *dirSpec       `koanf:"dir"`
	Filename       *string        `koanf:"filename"`
	Level          *string        `koanf:"level"`
	Format         *string        `koanf:"format"`
	Metadata       any            `koanf:"metadata"`
	MetadataFilter map[string]any `koanf:"metadata_filter"`
	Rotate         *rotateSpec    `koanf:"rotate"`
}

type dirSpec struct {
	Kind    string `koanf:"kind"`
	Path    string `koanf:"path"`
	App     string `koanf:"app"`
	Author  string `koanf:"author"`
	Version string `koanf:"version"`
}

type rotateSpec struct {
	MaxBytes int64 `koanf:"max_bytes"`
	Keep     int   `koanf:"keep"`
}

// DecodeSinks 把 "sinks" 下的每一项解码为 xsink.Options，键为 sink 名称。
//
// 没有 "sinks" 时返回空 map。未知字段、无法识别的级别或目录类型返回 [ErrInvalidSink]。
func DecodeSinks(cfg Config) (map[string]xsink.Options, error) {
	var specs map[string]sinkSpec
	err := cfg.Client().UnmarshalWithConf(SinksKey, &specs, koanf.UnmarshalConf{
		// Result 由 koanf 以第二个参数填入
		DecoderConfig: &mapstructure.DecoderConfig{
			ErrorUnused:      true,
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSink, err)
	}

	out := make(map[string]xsink.Options, len(specs))
	for name, spec := range specs {
		o, err := spec.options()
		if err != nil {
			return nil, fmt.Errorf("%w: sink %q: %w", ErrInvalidSink, name, err)
		}
		out[name] = o
	}
	return out, nil
}

func (s sinkSpec) options() (xsink.Options, error) {
	o := xsink.Options{
		Filename: s.Filename,
		Format:   s.Format,
	}

	switch {
	case s.Path != nil && s.Dir != nil:
		return o, fmt.Errorf("path and dir are mutually exclusive")
	case s.Path != nil:
		o.Dir = xsink.PlainDir(*s.Path)
	case s.Dir != nil:
		d, err := s.Dir.dir()
		if err != nil {
			return o, err
		}
		o.Dir = d
	}

	switch {
	case s.Level == nil:
	case strings.EqualFold(strings.TrimSpace(*s.Level), levelAll):
		o.ResetLevel = true
	default:
		l, err := xlog.ParseLevel(*s.Level)
		if err != nil {
			return o, err
		}
		o.Level = xsink.Ptr(slog.Level(l))
	}

	if s.Metadata != nil {
		md, err := metadataKeys(s.Metadata)
		if err != nil {
			return o, err
		}
		o.Metadata = md
	}

	if s.MetadataFilter != nil {
		f := metadataFilter(s.MetadataFilter)
		o.MetadataFilter = &f
	}

	if s.Rotate != nil {
		o.Rotate = &xsink.Rotation{MaxBytes: s.Rotate.MaxBytes, Keep: s.Rotate.Keep}
	}
	return o, nil
}

func (d dirSpec) dir() (*xsink.Dir, error) {
	switch d.Kind {
	case "", xsink.DirPlain.String():
		return xsink.PlainDir(d.Path), nil
	case xsink.DirUserData.String():
		return xsink.UserDataDir(d.App, d.Author, d.Version), nil
	case xsink.DirUserLog.String():
		return xsink.UserLogDir(d.App, d.Author, d.Version), nil
	default:
		return nil, fmt.Errorf("unknown dir kind %q", d.Kind)
	}
}

// metadataKeys 接受 "all" 或键列表，空列表表示不渲染
func metadataKeys(v any) (*xsink.MetadataKeys, error) {
	switch x := v.(type) {
	case string:
		if x != metadataAll {
			return nil, fmt.Errorf("metadata: want %q or a list of keys, got %q", metadataAll, x)
		}
		return xsink.AllMetadata(), nil
	case []any:
		keys := make([]string, 0, len(x))
		for _, k := range x {
			s, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("metadata: key %v is not a string", k)
			}
			keys = append(keys, s)
		}
		return xsink.SelectMetadata(keys...), nil
	default:
		return nil, fmt.Errorf("metadata: unsupported value %T", v)
	}
}

// metadataFilter 列表值表示集合成员关系。
//
// koanf 会把含 "." 的键展开为嵌套 map，这里重新拼回原来的键。
// 结果按键排序，保证同一份配置得到同一个 Filter。
func metadataFilter(m map[string]any) xsink.Filter {
	flat := make(map[string]any)
	flatten(flat, "", m)

	f := make(xsink.Filter, 0, len(flat))
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		want := flat[key]
		if list, ok := want.([]any); ok {
			want = xsink.OneOf(list)
		}
		f = append(f, xsink.Match{Key: key, Want: want})
	}
	return f
}

func flatten(dst map[string]any, prefix string, m map[string]any) {
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			flatten(dst, prefix+k+delim, nested)
			continue
		}
		dst[prefix+k] = v
	}
}
