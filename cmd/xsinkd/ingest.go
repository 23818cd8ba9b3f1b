package main

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/omeyang/xsink/pkg/observability/xlog"
	"github.com/omeyang/xsink/pkg/observability/xsink"
)

// maxLineBytes 单行事件上限
const maxLineBytes = 1 << 20

// errInputDone 输入读完，正常结束
var errInputDone = errors.New("xsinkd: input exhausted")

type line struct {
	n    int
	data []byte
}

// ingest 逐行读取事件并分发，EOF 时返回 errInputDone。
//
// 读取在独立 goroutine 中进行，ctx 取消时不等待阻塞中的 Read。
func (d *daemon) ingest(ctx context.Context, r io.Reader) error {
	lines := make(chan line)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
		for n := 1; sc.Scan(); n++ {
			data := append([]byte(nil), sc.Bytes()...)
			select {
			case lines <- line{n: n, data: data}:
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return err
					}
				default:
				}
				return errInputDone
			}
			d.dispatch(ctx, l)
		}
	}
}

func (d *daemon) dispatch(ctx context.Context, l line) {
	if len(l.data) == 0 {
		return
	}
	name, ev, err := parseEvent(l.data)
	if err != nil {
		d.log.Warn(ctx, "skip event", xlog.Err(err), xlog.Line(l.n))
		return
	}
	if name == "" {
		err = d.reg.Broadcast(ctx, ev)
	} else {
		err = d.reg.Log(ctx, name, ev)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		d.log.Warn(ctx, "event not delivered", xlog.Sink(name), xlog.Err(err), xlog.Line(l.n))
	}
}

// onSinkError 把 sink 内部错误写进诊断日志
func onSinkError(log xlog.Logger) func(name string, err error) {
	return func(name string, err error) {
		if errors.Is(err, xsink.ErrStopped) {
			return
		}
		log.Warn(context.Background(), "sink error", xlog.Sink(name), xlog.Err(err))
	}
}
