package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xsink/pkg/lifecycle/xrun"
)

// 退出码
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// usageError 参数错误，映射为退出码 2
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// streams 命令的标准输入输出，测试中替换
type streams struct {
	in       io.Reader
	out, err io.Writer
}

func createApp(s streams) *cli.Command {
	return &cli.Command{
		Name:      "xsinkd",
		Usage:     "rotating file log sinks fed by an NDJSON event stream",
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Reader:    s.in,
		Writer:    s.out,
		ErrWriter: s.err,
		Commands: []*cli.Command{
			createRunCommand(s),
			createPathCommand(s),
		},
		// 退出码由 run 统一映射，不让 cli 直接退出进程
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		OnUsageError: func(_ context.Context, _ *cli.Command, err error, _ bool) error {
			return &usageError{msg: err.Error()}
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Present() {
				return usageErrorf("unknown command %q", cmd.Args().First())
			}
			return usageErrorf("missing command, want run or path")
		},
	}
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	err := createApp(streams{in: in, out: out, err: errOut}).Run(ctx, args)
	return exitCode(err, errOut)
}

func exitCode(err error, errOut io.Writer) int {
	switch {
	case err == nil, errors.Is(err, xrun.ErrSignal):
		return exitOK
	}
	var usage *usageError
	if errors.As(err, &usage) {
		fmt.Fprintf(errOut, "usage error: %v\n", usage)
		return exitUsage
	}
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitFailure
}
