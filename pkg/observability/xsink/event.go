package xsink

import (
	"log/slog"
	"strings"
	"time"
)

// Field 一条元数据，保持调用点给出的顺序
type Field struct {
	Key   string
	Value any
}

// Event 一条待落盘的日志事件
type Event struct {
	Level   slog.Level
	Message Value
	Time    time.Time
	// Metadata 调用点附带的元数据，键不要求唯一，按出现顺序渲染
	Metadata []Field
}

// Lookup 返回第一个键为 key 的元数据值
func (e Event) Lookup(key string) (any, bool) {
	return lookup(e.Metadata, key)
}

// levelNameWidth 标准级别名称的最大宽度，$levelpad 以此补齐
const levelNameWidth = 5

// LevelName 返回小写级别名：debug/info/warn/error，
// 非标准级别形如 "info+2"。
func LevelName(l slog.Level) string {
	return strings.ToLower(l.String())
}

// levelPad 补齐到 levelNameWidth 所需的空格
func levelPad(name string) string {
	if len(name) >= levelNameWidth {
		return ""
	}
	return strings.Repeat(" ", levelNameWidth-len(name))
}
