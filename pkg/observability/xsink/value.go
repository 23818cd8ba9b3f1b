package xsink

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ReplacementMarker 替换非法文本单元的标记（U+FFFD）
const ReplacementMarker = "�"

// Value 消息内容的封闭变体：[Text]、[Seq]、[CodePoint]、[Opaque]。
//
// 嵌套的 Seq 允许调用方按片段拼接消息而不必预先合并成一个字符串。
type Value interface {
	isValue()
}

// Text 一段文本，可能包含非法 UTF-8 字节
type Text string

// Seq 片段序列。
//
// Tail 为 nil 表示规整序列；非 nil 表示不规整的尾部元素，渲染时接在 Items 之后。
type Seq struct {
	Items []Value
	Tail  Value
}

// CodePoint 单个码点。非负值视为已合法，不做进一步检查。
type CodePoint int

// Opaque 无法作为文本处理的任意值
type Opaque struct {
	V any
}

func (Text) isValue()      {}
func (Seq) isValue()       {}
func (CodePoint) isValue() {}
func (Opaque) isValue()    {}

// Sanitize 把 v 中的非法文本单元替换为 [ReplacementMarker]，保持结构不变。
//
//   - Text: 逐码点复制，每个非法字节替换为一个标记
//   - Seq: 逐元素递归，长度与尾部形状不变
//   - 非负 CodePoint: 原样保留
//   - 负 CodePoint、Opaque: 整体替换为 Text(标记)
//   - nil: 保持 nil
//
// 对同一输入多次调用结果相同。
func Sanitize(v Value) Value {
	switch x := v.(type) {
	case nil:
		return nil
	case Text:
		return Text(sanitizeString(string(x)))
	case Seq:
		out := Seq{Tail: Sanitize(x.Tail)}
		if x.Items != nil {
			out.Items = make([]Value, len(x.Items))
			for i, item := range x.Items {
				out.Items[i] = Sanitize(item)
			}
		}
		return out
	case CodePoint:
		if x >= 0 {
			return x
		}
		return Text(ReplacementMarker)
	default:
		return Text(ReplacementMarker)
	}
}

func sanitizeString(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2*utf8.UTFMax)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteString(ReplacementMarker)
		} else {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

// SanitizeEvent 净化消息与元数据。
//
// 其他类型的元数据值按渲染后的文本检查，含非法字节时替换为净化后的字符串。
func SanitizeEvent(ev Event) Event {
	out := ev
	out.Message = Sanitize(ev.Message)
	if len(ev.Metadata) > 0 {
		out.Metadata = make([]Field, len(ev.Metadata))
		for i, f := range ev.Metadata {
			out.Metadata[i] = Field{Key: sanitizeString(f.Key), Value: sanitizeAny(f.Value)}
		}
	}
	return out
}

func sanitizeAny(v any) any {
	switch x := v.(type) {
	case string:
		return sanitizeString(x)
	case []byte:
		return sanitizeString(string(x))
	case Value:
		return Sanitize(x)
	default:
		// 与 appendAny 的渲染方式一致；渲染结果非法时以净化后的文本代替原值
		text := fmt.Sprint(v)
		if utf8.ValidString(text) {
			return v
		}
		return sanitizeString(text)
	}
}

// appendValue 把 v 渲染为文本追加到 buf。
//
// 不做合法性检查；Text 中的非法字节原样写出，由写入管道统一检测。
func appendValue(buf []byte, v Value) []byte {
	switch x := v.(type) {
	case nil:
		return buf
	case Text:
		return append(buf, x...)
	case Seq:
		for _, item := range x.Items {
			buf = appendValue(buf, item)
		}
		return appendValue(buf, x.Tail)
	case CodePoint:
		if x < 0 || x > utf8.MaxRune || !utf8.ValidRune(rune(x)) {
			// 超出 Unicode 范围或代理区，无法编码
			return append(buf, ReplacementMarker...)
		}
		return utf8.AppendRune(buf, rune(x))
	case Opaque:
		return fmt.Append(buf, x.V)
	default:
		return fmt.Append(buf, x)
	}
}

// appendAny 渲染元数据值
func appendAny(buf []byte, v any) []byte {
	switch x := v.(type) {
	case string:
		return append(buf, x...)
	case []byte:
		return append(buf, x...)
	case Value:
		return appendValue(buf, x)
	default:
		return fmt.Append(buf, x)
	}
}
