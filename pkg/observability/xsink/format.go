package xsink

import "time"

// DefaultFormat 默认行模板
const DefaultFormat = "$time $metadata[$level] $message\n"

type tokenKind uint8

const (
	tokLiteral tokenKind = iota
	tokDate
	tokTime
	tokLevel
	tokLevelPad
	tokMessage
	tokMetadata
	tokNode
)

var tokenNames = map[string]tokenKind{
	"date":     tokDate,
	"time":     tokTime,
	"level":    tokLevel,
	"levelpad": tokLevelPad,
	"message":  tokMessage,
	"metadata": tokMetadata,
	"node":     tokNode,
}

type token struct {
	kind tokenKind
	text string // 仅 tokLiteral
}

// template 编译后的行模板
type template []token

// compileTemplate 解析 $name 占位符。未知占位符按字面量输出，字面量中的非法字节被替换。
func compileTemplate(format string) template {
	var out template
	lit := make([]byte, 0, len(format))
	flush := func() {
		if len(lit) > 0 {
			out = append(out, token{kind: tokLiteral, text: sanitizeString(string(lit))})
			lit = lit[:0]
		}
	}
	for i := 0; i < len(format); {
		if format[i] != '$' {
			lit = append(lit, format[i])
			i++
			continue
		}
		j := i + 1
		for j < len(format) && isIdentByte(format[j]) {
			j++
		}
		kind, ok := tokenNames[format[i+1:j]]
		if !ok {
			lit = append(lit, format[i:j]...)
			i = j
			continue
		}
		flush()
		out = append(out, token{kind: kind})
		i = j
	}
	flush()
	return out
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z'
}

// formatter 按模板把事件渲染为一行
type formatter struct {
	tmpl     template
	metadata MetadataKeys
	loc      *time.Location
	node     string
}

// appendEvent 渲染 ev 并追加到 buf
func (f *formatter) appendEvent(buf []byte, ev Event) []byte {
	ts := ev.Time.In(f.loc)
	for _, tok := range f.tmpl {
		switch tok.kind {
		case tokLiteral:
			buf = append(buf, tok.text...)
		case tokDate:
			buf = ts.AppendFormat(buf, time.DateOnly)
		case tokTime:
			buf = ts.AppendFormat(buf, "15:04:05.000")
		case tokLevel:
			buf = append(buf, LevelName(ev.Level)...)
		case tokLevelPad:
			buf = append(buf, levelPad(LevelName(ev.Level))...)
		case tokMessage:
			buf = appendValue(buf, ev.Message)
		case tokMetadata:
			buf = f.appendMetadata(buf, ev.Metadata)
		case tokNode:
			buf = append(buf, f.node...)
		}
	}
	return buf
}

// appendMetadata 每个选中字段输出 "key=value "
func (f *formatter) appendMetadata(buf []byte, md []Field) []byte {
	if f.metadata.All {
		for _, fd := range md {
			buf = appendField(buf, fd)
		}
		return buf
	}
	for _, key := range f.metadata.Keys {
		if v, ok := lookup(md, key); ok {
			buf = appendField(buf, Field{Key: key, Value: v})
		}
	}
	return buf
}

func appendField(buf []byte, fd Field) []byte {
	buf = append(buf, fd.Key...)
	buf = append(buf, '=')
	buf = appendAny(buf, fd.Value)
	return append(buf, ' ')
}
