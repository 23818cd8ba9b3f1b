package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/omeyang/xsink/pkg/config/xconf"
	"github.com/omeyang/xsink/pkg/lifecycle/xrun"
	"github.com/omeyang/xsink/pkg/observability/xlog"
	"github.com/omeyang/xsink/pkg/observability/xrotate"
	"github.com/omeyang/xsink/pkg/observability/xsink"
	"github.com/omeyang/xsink/pkg/util/xproc"
)

// shutdownTimeout 停止全部 sink 的最长等待时间
const shutdownTimeout = 10 * time.Second

func onUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return &usageError{msg: err.Error()}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "sink 配置文件（.yaml/.yml/.json）",
	}
}

// loadConfig 读取 --config，缺省是参数错误
func loadConfig(cmd *cli.Command) (xconf.Config, error) {
	path := cmd.String("config")
	if path == "" {
		return nil, usageErrorf("--config is required")
	}
	return xconf.New(path)
}

func createRunCommand(s streams) *cli.Command {
	return &cli.Command{
		Name:         "run",
		Usage:        "启动 sink 并写入输入中的事件",
		OnUsageError: onUsageError,
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "NDJSON 事件文件，- 表示标准输入",
				Value:   "-",
			},
			&cli.StringFlag{
				Name:  "diag-log",
				Usage: "诊断日志文件（按大小轮转），缺省写到 stderr",
			},
			&cli.StringFlag{
				Name:  "diag-level",
				Usage: "诊断日志级别 (debug/info/warn/error)",
				Value: "info",
			},
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "配置文件变更的防抖时间",
				Value: xconf.DefaultDebounce,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cmdRun(ctx, cmd, s)
		},
	}
}

func newDiagLogger(cmd *cli.Command, errOut io.Writer) (xlog.LoggerWithLevel, func() error, error) {
	if _, err := xlog.ParseLevel(cmd.String("diag-level")); err != nil {
		return nil, nil, usageErrorf("--diag-level: %v", err)
	}
	b := xlog.New().
		SetOutput(errOut).
		SetLevelString(cmd.String("diag-level")).
		SetAttrs(
			xlog.Component("xsinkd"),
			xlog.SinkID(uuid.NewString()),
			slog.Int("pid", xproc.ProcessID()),
		)
	if path := cmd.String("diag-log"); path != "" {
		b = b.SetRotation(path, xrotate.WithCompress(false))
	}
	return b.Build()
}

func openInput(name string, stdin io.Reader) (io.Reader, func() error, error) {
	if name == "-" {
		return stdin, func() error { return nil }, nil
	}
	//#nosec G304 -- 输入路径来自命令行参数
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("xsinkd: open input: %w", err)
	}
	return f, f.Close, nil
}

func cmdRun(ctx context.Context, cmd *cli.Command, s streams) (err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := newDiagLogger(cmd, s.err)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, closeLog()) }()

	input, closeInput, err := openInput(cmd.String("input"), s.in)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, closeInput()) }()

	m, err := newMeter(log)
	if err != nil {
		return err
	}
	reg := xsink.NewRegistry(
		xsink.WithRecorder(m.recorder),
		xsink.WithOnError(onSinkError(log)),
	)
	d := newDaemon(cfg, reg, log)

	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		closeErr := reg.Close(stopCtx)
		reportErr := m.report(stopCtx, log)
		err = errors.Join(err, closeErr, reportErr, m.shutdown(stopCtx))
	}()

	if err := d.start(ctx); err != nil {
		return err
	}

	watcher, err := xconf.Watch(cfg, func(_ xconf.Config, werr error) {
		if werr != nil {
			log.Warn(ctx, "config watch", xlog.Err(werr))
			return
		}
		d.reload(ctx)
	}, xconf.WithDebounce(cmd.Duration("debounce")))
	if err != nil {
		return err
	}

	log.Info(ctx, "xsinkd started", xlog.Path(cfg.Path()), slog.Int("sinks", len(reg.Names())))
	err = xrun.Run(ctx, []xrun.Option{
		xrun.WithLogger(log),
		xrun.WithName("xsinkd"),
		xrun.WithHangup(func() {
			if rerr := cfg.Reload(); rerr != nil {
				log.Warn(ctx, "config reload failed", xlog.Err(rerr))
				return
			}
			d.reload(ctx)
		}),
	},
		xrun.Service{Name: "ingest", Run: func(ctx context.Context) error { return d.ingest(ctx, input) }},
		xrun.Service{Name: "watch", Run: watcher.Run},
	)
	if errors.Is(err, errInputDone) {
		log.Info(ctx, "input exhausted")
		return nil
	}
	return err
}

func createPathCommand(s streams) *cli.Command {
	return &cli.Command{
		Name:         "path",
		Usage:        "打印每个 sink 的活跃日志文件路径",
		OnUsageError: onUsageError,
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{Name: "sink", Aliases: []string{"s"}, Usage: "只打印该 sink"},
			&cli.IntFlag{Name: "generation", Aliases: []string{"g"}, Usage: "打印今天指定代号的路径", Value: -1},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cmdPath(ctx, cmd, s.out)
		},
	}
}

// cmdPath 临时启动 sink 以解析目录并扫描代号，不写入任何内容
func cmdPath(ctx context.Context, cmd *cli.Command, out io.Writer) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sinks, err := xconf.DecodeSinks(cfg)
	if err != nil {
		return err
	}
	names := slices.Sorted(maps.Keys(sinks))
	if only := cmd.String("sink"); only != "" {
		if _, ok := sinks[only]; !ok {
			return usageErrorf("sink %q not found in %s", only, cfg.Path())
		}
		names = []string{only}
	}
	gen := cmd.Int("generation")

	for _, name := range names {
		path, err := resolvePath(ctx, name, sinks[name], gen)
		if err != nil {
			return err
		}
		if path == "" {
			path = "-"
		}
		fmt.Fprintf(out, "%s\t%s\n", name, path)
	}
	return nil
}

func resolvePath(ctx context.Context, name string, o xsink.Options, gen int) (_ string, err error) {
	s, err := xsink.Open(name)
	if err != nil {
		return "", err
	}
	defer func() { err = errors.Join(err, s.Stop(ctx)) }()

	if err := s.Configure(ctx, o); err != nil {
		return "", fmt.Errorf("sink %s: %w", name, err)
	}
	if gen >= 0 {
		return s.PathFor(ctx, gen)
	}
	return s.Path(ctx)
}
