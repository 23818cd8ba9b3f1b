package xlog

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/omeyang/xsink/pkg/observability/xsink"
)

// Level 日志级别，与 slog.Level 数值相同
type Level slog.Level

const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// String 返回 sink 日志行中 $level 的写法，如 "warn"、"info+2"、"debug-4"
func (l Level) String() string { return xsink.LevelName(slog.Level(l)) }

// Slog 转换为 slog.Level
func (l Level) Slog() slog.Level { return slog.Level(l) }

// ParseLevel 解析级别名称，大小写不敏感，忽略首尾空白。
//
// 接受 debug/info/warn/warning/error 以及带偏移的写法（"info+2"、"debug-4"），
// 因此 [Level.String] 与日志行中的 $level 都能原样解析回来。
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if rest, ok := strings.CutPrefix(name, "warning"); ok {
		name = "warn" + rest
	}
	var l slog.Level
	if name == "" || l.UnmarshalText([]byte(name)) != nil {
		return LevelInfo, fmt.Errorf("xlog: unknown level %q", s)
	}
	return Level(l), nil
}
