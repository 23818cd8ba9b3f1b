package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/omeyang/xsink/pkg/config/xconf"
	"github.com/omeyang/xsink/pkg/observability/xlog"
	"github.com/omeyang/xsink/pkg/observability/xsink"
)

// daemon 持有运行中的 sink 与它们对应的配置
type daemon struct {
	cfg xconf.Config
	reg *xsink.Registry
	log xlog.Logger

	// mu 串行化配置应用，current 为最近一次成功应用的配置
	mu      sync.Mutex
	current map[string]xsink.Options
}

func newDaemon(cfg xconf.Config, reg *xsink.Registry, log xlog.Logger) *daemon {
	return &daemon{cfg: cfg, reg: reg, log: log, current: map[string]xsink.Options{}}
}

// start 按当前配置启动全部 sink，任一失败都返回错误
func (d *daemon) start(ctx context.Context) error {
	sinks, err := xconf.DecodeSinks(d.cfg)
	if err != nil {
		return err
	}
	if len(sinks) == 0 {
		return fmt.Errorf("xsinkd: no sinks configured in %s", d.cfg.Path())
	}
	return d.apply(ctx, sinks)
}

// reload 重新解码配置并应用差异，失败只记录，保留旧状态
func (d *daemon) reload(ctx context.Context) {
	sinks, err := xconf.DecodeSinks(d.cfg)
	if err == nil {
		err = d.apply(ctx, sinks)
	}
	if err != nil {
		d.log.Warn(ctx, "config reload failed", xlog.Err(err))
		return
	}
	d.log.Info(ctx, "config reloaded", xlog.Path(d.cfg.Path()))
}

// apply 停止消失的 sink，启动新增的 sink，重新配置有变化的 sink。
//
// 已有 sink 的配置按 xsink.Merge 叠加：从配置文件里删掉的字段保持旧值。
func (d *daemon) apply(ctx context.Context, next map[string]xsink.Options) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	for _, name := range slices.Sorted(maps.Keys(d.current)) {
		if _, ok := next[name]; ok {
			continue
		}
		if err := d.reg.Stop(ctx, name); err != nil && !errors.Is(err, xsink.ErrNotFound) {
			errs = append(errs, fmt.Errorf("stop %s: %w", name, err))
			continue
		}
		delete(d.current, name)
		d.log.Info(ctx, "sink stopped", xlog.Sink(name))
	}

	for _, name := range slices.Sorted(maps.Keys(next)) {
		o := next[name]
		prev, running := d.current[name]
		switch {
		case !running:
			s, err := d.reg.Start(ctx, name, o)
			if err != nil {
				errs = append(errs, fmt.Errorf("start %s: %w", name, err))
				continue
			}
			path, _ := s.Path(ctx)
			d.log.Info(ctx, "sink started", xlog.Sink(name), xlog.SinkID(s.ID()), xlog.Path(path))
		case reflect.DeepEqual(prev, o):
			continue
		default:
			if err := d.reg.Configure(ctx, name, o); err != nil {
				errs = append(errs, fmt.Errorf("configure %s: %w", name, err))
				continue
			}
			d.log.Info(ctx, "sink reconfigured", xlog.Sink(name))
		}
		d.current[name] = o
	}
	return errors.Join(errs...)
}
