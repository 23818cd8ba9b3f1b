package xsink

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	retry "github.com/avast/retry-go/v5"

	"github.com/omeyang/xsink/pkg/observability/xmetrics"
)

const (
	// writeAttempts 首次写入加一次恢复重试
	writeAttempts = 2

	// maxRetainedBuf 超过该容量的行缓冲不复用
	maxRetainedBuf = 64 << 10
)

// write 格式化并追加一条事件。
//
// 第一次失败后按错误类型恢复再试一次：文本非法时净化事件重新格式化，
// 其他错误关闭句柄重新打开。仍失败则丢弃事件，下一条事件从头打开文件。
func (s *Sink) write(ctx context.Context, ev Event) {
	start := time.Now()
	line := s.format.appendEvent(s.buf[:0], ev)

	var (
		attempt int
		lastErr error
	)
	err := retry.New(
		retry.Attempts(writeAttempts),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	).Do(func() error {
		if attempt > 0 {
			line = s.recoverWrite(ctx, lastErr, &ev, line)
		}
		attempt++
		lastErr = s.appendLine(line)
		return lastErr
	})

	if cap(line) <= maxRetainedBuf {
		s.buf = line[:0]
	}
	if err != nil {
		path := s.gen.Path()
		s.gen.Invalidate()
		s.cfg.recorder.Dropped(ctx, s.name, xmetrics.DropWriteFailed)
		s.reportError(fmt.Errorf("xsink: drop event for %s: %w", path, err))
		return
	}
	s.cfg.recorder.Written(ctx, s.name, len(line), time.Since(start))
}

// appendLine 文本模式写入：内容必须是合法 UTF-8
func (s *Sink) appendLine(line []byte) error {
	if !utf8.Valid(line) {
		return ErrMalformedText
	}
	_, err := s.gen.Write(line)
	return err
}

func (s *Sink) recoverWrite(ctx context.Context, err error, ev *Event, line []byte) []byte {
	if errors.Is(err, ErrMalformedText) {
		*ev = SanitizeEvent(*ev)
		s.cfg.recorder.Recovered(ctx, s.name, xmetrics.RecoverySanitize)
		return s.format.appendEvent(line[:0], *ev)
	}
	s.gen.Invalidate()
	s.cfg.recorder.Recovered(ctx, s.name, xmetrics.RecoveryReopen)
	return line
}
