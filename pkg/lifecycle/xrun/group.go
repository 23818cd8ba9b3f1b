package xrun

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"slices"
	"syscall"

	"golang.org/x/sync/errgroup"
)

// Group 管理一组命名服务的并发运行与协调关闭。
//
// Go 与 Cancel 可并发调用，Wait 只调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
}

// Service 命名服务，Run 应在 ctx 取消后尽快返回
type Service struct {
	Name string
	Run  func(ctx context.Context) error
}

// NewGroup 创建 Group，返回的 ctx 在任一服务出错或 Cancel 时取消
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}
	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)
	return &Group{eg: eg, ctx: egCtx, causeCtx: causeCtx, cancel: cancel, opts: options}, egCtx
}

// Go 启动一个命名服务
func (g *Group) Go(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		g.debug("service starting", slog.String("service", name))
		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			g.warn("service exited with error", slog.String("service", name), slog.Any("error", err))
		} else {
			g.debug("service stopped", slog.String("service", name))
		}
		return err
	})
}

// Wait 等待所有服务退出。
//
// 返回第一个非 nil 错误。Group 被取消导致的 context.Canceled 不算错误，
// 但 Cancel(cause) 或信号设置的原因会被返回。
func (g *Group) Wait() error {
	defer g.cancel(nil)
	err := g.eg.Wait()

	if errors.Is(err, context.Canceled) {
		if g.causeCtx.Err() == nil {
			// 服务内部产生的 Canceled，原样返回
			return err
		}
		return g.cause()
	}
	if err == nil && g.causeCtx.Err() != nil {
		return g.cause()
	}
	return err
}

func (g *Group) cause() error {
	if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return nil
}

// Cancel 取消所有服务，cause 为 Wait 的返回值（nil 表示正常结束）
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

func (g *Group) debug(msg string, attrs ...slog.Attr) {
	if g.opts.logger != nil {
		g.opts.logger.Debug(g.ctx, msg, append(attrs, slog.String("group", g.opts.name))...)
	}
}

func (g *Group) warn(msg string, attrs ...slog.Attr) {
	if g.opts.logger != nil {
		g.opts.logger.Warn(context.Background(), msg, append(attrs, slog.String("group", g.opts.name))...)
	}
}

func (g *Group) info(msg string, attrs ...slog.Attr) {
	if g.opts.logger != nil {
		g.opts.logger.Info(context.Background(), msg, append(attrs, slog.String("group", g.opts.name))...)
	}
}

// Run 运行服务并监听信号，直到所有服务退出。
//
// 收到终止信号时返回 [*SignalError]。
func Run(ctx context.Context, opts []Option, services ...Service) error {
	g, _ := NewGroup(ctx, opts...)
	g.Go("signals", g.watchSignals)
	for _, svc := range services {
		g.Go(svc.Name, svc.Run)
	}
	return g.Wait()
}

func (g *Group) watchSignals(ctx context.Context) error {
	signals := g.opts.signals
	if len(signals) == 0 {
		signals = DefaultSignals()
	}
	hangup := g.opts.hangup
	if hangup != nil && !slices.Contains(signals, os.Signal(syscall.SIGHUP)) {
		signals = append(slices.Clone(signals), syscall.SIGHUP)
	}

	ch := make(chan os.Signal, 1)
	g.opts.notify(ch, signals...)
	defer g.opts.stop(ch)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig := <-ch:
			if sig == syscall.SIGHUP && hangup != nil {
				g.info("reload requested", slog.String("signal", sig.String()))
				hangup()
				continue
			}
			g.info("received signal", slog.String("signal", sig.String()))
			g.cancel(&SignalError{Signal: sig})
			return nil
		}
	}
}
