package xsink

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// day1 测试基准时间，UTC 偏移为 0
var day1 = time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)

// fakeClock 可手动调整的时钟
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	offset time.Duration
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) LocalOffset() (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset, nil
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// errorSink 收集 WithOnError 上报的错误
type errorSink struct {
	mu   sync.Mutex
	errs []error
}

func (e *errorSink) report(_ string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs = append(e.errs, err)
}

func (e *errorSink) all() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]error(nil), e.errs...)
}

// openConfigured 以 fakeClock 打开并配置 sink，测试结束时停止
func openConfigured(t *testing.T, clock Clock, o Options, extra ...Option) *Sink {
	t.Helper()
	opts := append([]Option{WithClock(clock)}, extra...)
	s, err := Open("test", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	require.NoError(t, s.Configure(context.Background(), o))
	return s
}

// plain 返回只输出消息的配置
func plain(dir string) Options {
	return Options{
		Dir:      PlainDir(dir),
		Filename: Ptr("test"),
		Format:   Ptr("$message\n"),
	}
}

func logText(t *testing.T, s *Sink, msg string, md ...Field) {
	t.Helper()
	require.NoError(t, s.Log(context.Background(), Event{
		Level:    slog.LevelInfo,
		Message:  Text(msg),
		Metadata: md,
	}))
}

func flush(t *testing.T, s *Sink) {
	t.Helper()
	require.NoError(t, s.Flush(context.Background()))
}

func currentPath(t *testing.T, s *Sink) string {
	t.Helper()
	p, err := s.Path(context.Background())
	require.NoError(t, err)
	return p
}

func pathFor(t *testing.T, s *Sink, gen int) string {
	t.Helper()
	p, err := s.PathFor(context.Background(), gen)
	require.NoError(t, err)
	return p
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
