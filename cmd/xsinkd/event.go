package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/tidwall/gjson"

	"github.com/omeyang/xsink/pkg/observability/xlog"
	"github.com/omeyang/xsink/pkg/observability/xsink"
)

var errInvalidEvent = errors.New("xsinkd: invalid event")

// parseEvent 解析一行 NDJSON，返回目标 sink（"" 表示所有 sink）与事件。
//
// meta 按文档中的顺序转成元数据；time 缺省时由 sink 的时钟补齐。
func parseEvent(line []byte) (string, xsink.Event, error) {
	var ev xsink.Event
	if !gjson.ValidBytes(line) {
		return "", ev, fmt.Errorf("%w: malformed json", errInvalidEvent)
	}
	root := gjson.ParseBytes(line)
	if !root.IsObject() {
		return "", ev, fmt.Errorf("%w: want an object", errInvalidEvent)
	}

	ev.Level = slog.LevelInfo
	if l := root.Get("level"); l.Exists() {
		level, err := xlog.ParseLevel(l.String())
		if err != nil {
			return "", ev, fmt.Errorf("%w: %w", errInvalidEvent, err)
		}
		ev.Level = slog.Level(level)
	}

	if t := root.Get("time"); t.Exists() {
		ts, err := time.Parse(time.RFC3339Nano, t.String())
		if err != nil {
			return "", ev, fmt.Errorf("%w: time: %w", errInvalidEvent, err)
		}
		ev.Time = ts
	}

	ev.Message = messageValue(root.Get("msg"))

	root.Get("meta").ForEach(func(k, v gjson.Result) bool {
		ev.Metadata = append(ev.Metadata, xsink.Field{Key: k.String(), Value: metaValue(v)})
		return true
	})

	return root.Get("sink").String(), ev, nil
}

// messageValue 字符串为文本；数组中的字符串为文本片段，整数为码点
func messageValue(r gjson.Result) xsink.Value {
	switch {
	case !r.Exists() || r.Type == gjson.Null:
		return nil
	case r.Type == gjson.String:
		return xsink.Text(r.Str)
	case r.IsArray():
		var seq xsink.Seq
		for _, item := range r.Array() {
			if cp, ok := codePoint(item); ok {
				seq.Items = append(seq.Items, cp)
				continue
			}
			seq.Items = append(seq.Items, messageValue(item))
		}
		return seq
	default:
		return xsink.Opaque{V: r.Value()}
	}
}

func codePoint(r gjson.Result) (xsink.CodePoint, bool) {
	if r.Type != gjson.Number || r.Num != math.Trunc(r.Num) || math.Abs(r.Num) > math.MaxInt32 {
		return 0, false
	}
	return xsink.CodePoint(r.Int()), true
}

// metaValue 整数保持为 int64，其余按 JSON 类型转换
func metaValue(r gjson.Result) any {
	if r.Type == gjson.Number && r.Num == math.Trunc(r.Num) && math.Abs(r.Num) < 1<<53 {
		return r.Int()
	}
	return r.Value()
}
