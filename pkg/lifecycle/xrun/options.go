package xrun

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/omeyang/xsink/pkg/observability/xlog"
)

// Option Group 选项
type Option func(*groupOptions)

type groupOptions struct {
	logger  xlog.Logger
	name    string
	signals []os.Signal
	hangup  func()
	// notify 测试中替换为手动投递
	notify func(c chan<- os.Signal, sig ...os.Signal)
	stop   func(c chan<- os.Signal)
}

func defaultOptions() *groupOptions {
	return &groupOptions{
		name:   "xrun",
		notify: signal.Notify,
		stop:   signal.Stop,
	}
}

// DefaultSignals 默认的终止信号，每次返回新切片
func DefaultSignals() []os.Signal {
	return []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}
}

// WithLogger 记录服务启停与信号，nil 表示不记录
func WithLogger(logger xlog.Logger) Option {
	return func(o *groupOptions) {
		o.logger = logger
	}
}

// WithName 日志中的 Group 名称，默认 "xrun"
func WithName(name string) Option {
	return func(o *groupOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithSignals 覆盖终止信号列表，空列表使用 [DefaultSignals]
func WithSignals(signals ...os.Signal) Option {
	copied := append([]os.Signal(nil), signals...)
	return func(o *groupOptions) {
		o.signals = copied
	}
}

// WithHangup 收到 SIGHUP 时调用 fn 而不是终止
func WithHangup(fn func()) Option {
	return func(o *groupOptions) {
		o.hangup = fn
	}
}
