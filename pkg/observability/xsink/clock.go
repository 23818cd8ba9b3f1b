package xsink

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

//go:generate mockgen -source=clock.go -destination=mock_clock_test.go -package=xsink

// Clock 时间来源。
//
// LocalOffset 是唯一与平台相关的操作：无法确定本地偏移时返回错误，
// 依赖本地时间的操作（配置、跨天检查）随之失败。
type Clock interface {
	Now() time.Time
	LocalOffset() (time.Duration, error)
}

// SystemClock 使用进程本地时区
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) LocalOffset() (time.Duration, error) {
	_, offset := time.Now().Zone()
	return time.Duration(offset) * time.Second, nil
}

// localLocation 以 clock 的当前偏移构造固定时区
func localLocation(c Clock) (*time.Location, error) {
	offset, err := c.LocalOffset()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLocalTime, err)
	}
	return time.FixedZone("", int(offset/time.Second)), nil
}

// midnight 每天本地零点
var midnight = mustParseSchedule("@midnight")

func mustParseSchedule(spec string) cron.Schedule {
	s, err := cron.ParseStandard(spec)
	if err != nil {
		panic(fmt.Sprintf("xsink: parse schedule %q: %v", spec, err))
	}
	return s
}

// untilMidnight 距离 now 所在时区下一个零点的时长，可能 <= 0（时钟或时区被调整）
func untilMidnight(now time.Time) time.Duration {
	return midnight.Next(now).Sub(now)
}
