package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xsink/pkg/config/xconf"
	"github.com/omeyang/xsink/pkg/observability/xlog"
	"github.com/omeyang/xsink/pkg/observability/xsink"
)

func newTestDaemon(t *testing.T, yaml string) (*daemon, *bytes.Buffer) {
	t.Helper()
	cfg, err := xconf.NewFromBytes([]byte(yaml), xconf.FormatYAML)
	require.NoError(t, err)

	var buf bytes.Buffer
	log, cleanup, err := xlog.New().SetOutput(&buf).SetLevelString("debug").Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	reg := xsink.NewRegistry()
	t.Cleanup(func() { _ = reg.Close(context.Background()) })
	return newDaemon(cfg, reg, log), &buf
}

func TestDaemon_StartNoSinks(t *testing.T) {
	d, _ := newTestDaemon(t, "other: 1\n")
	err := d.start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sinks")
}

func TestDaemon_StartInvalid(t *testing.T) {
	d, _ := newTestDaemon(t, "sinks:\n  app:\n    level: loud\n")
	assert.ErrorIs(t, d.start(context.Background()), xconf.ErrInvalidSink)
}

func TestDaemon_Apply(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	d, buf := newTestDaemon(t, "other: 1\n")

	a := xsink.Options{Dir: xsink.PlainDir(filepath.Join(dir, "a")), Format: xsink.Ptr("$message\n")}
	b := xsink.Options{Dir: xsink.PlainDir(filepath.Join(dir, "b"))}
	require.NoError(t, d.apply(ctx, map[string]xsink.Options{"a": a, "b": b}))
	assert.Equal(t, []string{"a", "b"}, d.reg.Names())

	// 相同配置不触发任何动作
	buf.Reset()
	require.NoError(t, d.apply(ctx, map[string]xsink.Options{"a": a, "b": b}))
	assert.Empty(t, buf.String())

	// a 改格式，b 移除，c 新增
	a2 := xsink.Options{Dir: a.Dir, Format: xsink.Ptr("> $message\n")}
	c := xsink.Options{Dir: xsink.PlainDir(filepath.Join(dir, "c"))}
	require.NoError(t, d.apply(ctx, map[string]xsink.Options{"a": a2, "c": c}))
	assert.Equal(t, []string{"a", "c"}, d.reg.Names())

	logs := buf.String()
	assert.Contains(t, logs, "sink stopped")
	assert.Contains(t, logs, "sink reconfigured")
	assert.Contains(t, logs, "sink started")
	assert.Equal(t, map[string]xsink.Options{"a": a2, "c": c}, d.current)

	require.NoError(t, d.reg.Log(ctx, "a", xsink.Event{Message: xsink.Text("hi")}))
	s, ok := d.reg.Get("a")
	require.True(t, ok)
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, "> hi\n", onlyLog(t, filepath.Join(dir, "a")))
}

func TestDaemon_ReloadFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	d, buf := newTestDaemon(t, "sinks:\n  app:\n    path: "+t.TempDir()+"\n    bogus: 1\n")

	d.reload(ctx)
	assert.Contains(t, buf.String(), "config reload failed")
	assert.Empty(t, d.reg.Names())
	assert.Empty(t, d.current)
}

func TestDaemon_Ingest(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	d, buf := newTestDaemon(t, "other: 1\n")
	require.NoError(t, d.apply(ctx, map[string]xsink.Options{
		"app": {Dir: xsink.PlainDir(dir), Format: xsink.Ptr("$message\n")},
	}))

	input := "{\"sink\":\"app\",\"msg\":\"one\"}\n{bad\n{\"msg\":\"two\"}\n"
	err := d.ingest(ctx, strings.NewReader(input))
	require.ErrorIs(t, err, errInputDone)

	s, _ := d.reg.Get("app")
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, "one\ntwo\n", onlyLog(t, dir))
	assert.Contains(t, buf.String(), "line=2")
}

func TestDaemon_IngestCanceled(t *testing.T) {
	d, _ := newTestDaemon(t, "other: 1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// 读端永远阻塞在空管道上时 ingest 仍能返回
	r := blockingReader{done: make(chan struct{})}
	defer close(r.done)
	assert.ErrorIs(t, d.ingest(ctx, r), context.Canceled)
}

type blockingReader struct {
	done chan struct{}
}

func (r blockingReader) Read([]byte) (int, error) {
	<-r.done
	return 0, context.Canceled
}
