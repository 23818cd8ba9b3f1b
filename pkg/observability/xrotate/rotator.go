package xrotate

import "io"

// 编译时断言：Rotator 接口是 io.WriteCloser 的超集
var _ io.WriteCloser = (Rotator)(nil)

// Rotator 日志轮转器接口
//
// 隐式实现 [io.WriteCloser]，可直接用于任何接受 io.Writer 的场景（如 xlog 的输出目标）。
// 额外提供 Rotate 方法用于手动触发轮转。
//
// 实现需满足以下约定：
//   - Close 后调用 Write 或 Rotate 返回 [ErrClosed]
//   - Rotate 可以在任意时刻调用
//   - 并发安全性由实现自行声明：[NewLumberjack] 并发安全，
//     [NewGeneration] 要求调用方串行访问
type Rotator interface {
	// Write 写入日志数据，满足轮转条件时自动轮转
	Write(p []byte) (n int, err error)

	// Close 关闭轮转器，释放资源
	// 重复调用返回 [ErrClosed]
	Close() error

	// Rotate 手动触发日志轮转
	Rotate() error
}
