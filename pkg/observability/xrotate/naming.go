package xrotate

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// logSuffix 日志文件扩展名
const logSuffix = ".log"

// Date 本地日历日期，不含时刻与时区。
//
// 零值表示"未知日期"，[Path] 对零值返回 ok=false。
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf 取 t 在其自身时区下的日历日期
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsZero 是否为零值日期
func (d Date) IsZero() bool {
	return d == Date{}
}

// String 返回 YYYY-MM-DD 格式
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// After 判断 d 是否严格晚于 o
func (d Date) After(o Date) bool {
	if d.Year != o.Year {
		return d.Year > o.Year
	}
	if d.Month != o.Month {
		return d.Month > o.Month
	}
	return d.Day > o.Day
}

// AddDays 返回 d 之后第 n 天（n 可为负）
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

// Path 计算 (dir, filename, date, generation) 对应的文件路径。
//
// 格式为 "{dir}/{filename}_{YYYY-MM-DD}.{generation}.log"。
// 任一参数缺失（空目录、空文件名、零值日期、负代号）时返回 ok=false。
// 纯函数，不访问文件系统。
func Path(dir, filename string, date Date, generation int) (string, bool) {
	if dir == "" || filename == "" || date.IsZero() || generation < 0 {
		return "", false
	}
	return filepath.Join(dir, baseName(filename, date, generation)), true
}

func baseName(filename string, date Date, generation int) string {
	return datePrefix(filename, date) + strconv.Itoa(generation) + logSuffix
}

// datePrefix 返回 "{filename}_{YYYY-MM-DD}."，用于构造和匹配文件名
func datePrefix(filename string, date Date) string {
	return filename + "_" + date.String() + "."
}

// NextGeneration 扫描 dir，返回 filename 在 date 当天应使用的下一个代号。
//
// 取已存在文件中的最大代号 +1；没有匹配文件时返回 0。
// 目录不存在或不可读不视为错误，同样返回 0。
// 仅在启动或重新配置时调用，避免覆盖上一个进程写下的日志。
func NextGeneration(dir, filename string, date Date) int {
	if dir == "" || filename == "" || date.IsZero() {
		return 0
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	prefix := datePrefix(filename, date)
	next := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		gen, ok := parseGeneration(e.Name(), prefix)
		if ok && gen >= next {
			next = gen + 1
		}
	}
	return next
}

// parseGeneration 从 "{prefix}{N}.log" 中解析 N
func parseGeneration(name, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok {
		return 0, false
	}
	digits, ok := strings.CutSuffix(rest, logSuffix)
	if !ok || digits == "" {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	gen, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return gen, true
}

// Prune 删除 date 当天代号不高于 ceiling-keep 的文件，返回实际删除的数量。
//
// keep <= 0 表示未配置保留策略，直接返回。
// 从 ceiling-keep 向下扫描到 0，删除失败（文件已不存在、权限不足）一律忽略。
// 只处理给定日期，不会继续清理更早日期的文件。
func Prune(dir, filename string, date Date, ceiling, keep int) int {
	if keep <= 0 {
		return 0
	}
	removed := 0
	for g := ceiling - keep; g >= 0; g-- {
		p, ok := Path(dir, filename, date, g)
		if !ok {
			break
		}
		if err := os.Remove(p); err == nil {
			removed++
		}
	}
	return removed
}
