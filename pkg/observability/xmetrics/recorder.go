package xmetrics

import (
	"context"
	"time"
)

// DropReason 事件被丢弃的原因
type DropReason string

const (
	// DropFiltered 未通过级别或元数据过滤
	DropFiltered DropReason = "filtered"
	// DropNoPath 未配置目录
	DropNoPath DropReason = "no_path"
	// DropWriteFailed 重试后仍写入失败
	DropWriteFailed DropReason = "write_failed"
)

// Recovery 写入失败后采取的恢复动作
type Recovery string

const (
	// RecoverySanitize 文本非法，净化后重写
	RecoverySanitize Recovery = "sanitize"
	// RecoveryReopen I/O 失败，重新打开文件后重写
	RecoveryReopen Recovery = "reopen"
)

// Recorder 记录单个 sink 的写入与轮转指标。
//
// 实现必须并发安全：多个 sink goroutine 共用同一个 Recorder。
type Recorder interface {
	// Written 记录一次成功写入
	Written(ctx context.Context, sink string, bytes int, elapsed time.Duration)
	// Dropped 记录一次丢弃
	Dropped(ctx context.Context, sink string, reason DropReason)
	// Recovered 记录一次写入恢复尝试
	Recovered(ctx context.Context, sink string, action Recovery)
	// Rotated 记录一次轮转及其清理的文件数
	Rotated(ctx context.Context, sink string, trigger string, pruned int)
}

// NoopRecorder 是空实现。
type NoopRecorder struct{}

// Written 空实现。
func (NoopRecorder) Written(context.Context, string, int, time.Duration) {}

// Dropped 空实现。
func (NoopRecorder) Dropped(context.Context, string, DropReason) {}

// Recovered 空实现。
func (NoopRecorder) Recovered(context.Context, string, Recovery) {}

// Rotated 空实现。
func (NoopRecorder) Rotated(context.Context, string, string, int) {}

// OrNoop r 为 nil 时返回 [NoopRecorder]
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
