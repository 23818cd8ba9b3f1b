package xsink

import (
	"log/slog"
	"reflect"
)

// OneOf 集合期望值：事件中的值属于其中任意一个即匹配
type OneOf []any

// Match 一条元数据要求：键必须存在且值等于 Want（Want 为 [OneOf] 时为成员关系）
type Match struct {
	Key  string
	Want any
}

// Filter 元数据过滤条件，所有要求都满足才通过。nil 或空 Filter 放行一切。
type Filter []Match

// MetadataMatches 判断元数据是否满足 f。
//
// 元数据可以携带 f 未提及的键。遇到第一个不满足的要求立即返回 false。
func MetadataMatches(md []Field, f Filter) bool {
	for _, m := range f {
		got, ok := lookup(md, m.Key)
		if !ok || !wants(m.Want, got) {
			return false
		}
	}
	return true
}

// Accepts 先检查级别再检查元数据。minLevel 为 nil 表示不限级别。
func Accepts(ev Event, minLevel *slog.Level, f Filter) bool {
	if minLevel != nil && ev.Level < *minLevel {
		return false
	}
	return MetadataMatches(ev.Metadata, f)
}

func lookup(md []Field, key string) (any, bool) {
	for _, f := range md {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func wants(want, got any) bool {
	if set, ok := want.(OneOf); ok {
		for _, w := range set {
			if equalValue(w, got) {
				return true
			}
		}
		return false
	}
	return equalValue(want, got)
}

// equalValue 数值按数学值比较（配置中的 1 与 JSON 解出的 1.0 相等），其余用 DeepEqual
func equalValue(a, b any) bool {
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			return fa == fb
		}
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
