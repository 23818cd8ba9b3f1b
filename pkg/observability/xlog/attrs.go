package xlog

import (
	"log/slog"
	"time"
)

// 标准字段名
const (
	KeyError      = "error"
	KeyDuration   = "duration"
	KeyComponent  = "component"
	KeySink       = "sink"
	KeySinkID     = "sink_id"
	KeyPath       = "path"
	KeyGeneration = "generation"
	KeyTrigger    = "trigger"
	KeyLine       = "line"
)

// Err 错误属性，err 为 nil 时返回空属性（slog 会忽略）
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 人类可读的耗时，如 "1.5s"
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }

// Sink sink 名称
func Sink(name string) slog.Attr { return slog.String(KeySink, name) }

// SinkID sink 实例 ID，区分同名 sink 的多次启动
func SinkID(id string) slog.Attr { return slog.String(KeySinkID, id) }

// Path 日志文件路径，空路径记为 "-"
func Path(p string) slog.Attr {
	if p == "" {
		p = "-"
	}
	return slog.String(KeyPath, p)
}

func Generation(gen int) slog.Attr { return slog.Int(KeyGeneration, gen) }

// Trigger 轮转触发原因
func Trigger(t string) slog.Attr { return slog.String(KeyTrigger, t) }

// Line 输入中的行号，从 1 开始
func Line(n int) slog.Attr { return slog.Int(KeyLine, n) }
