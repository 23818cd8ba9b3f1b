package xsink

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/omeyang/xsink/pkg/observability/xmetrics"
	"github.com/omeyang/xsink/pkg/observability/xrotate"
	"github.com/omeyang/xsink/pkg/util/xproc"
)

// DefaultMailboxSize 默认邮箱容量
const DefaultMailboxSize = 1024

type config struct {
	clock    Clock
	recorder xmetrics.Recorder
	onError  func(name string, err error)
	mailbox  int
}

// Option Open 的配置选项
type Option func(*config)

// WithClock 设置时间来源，默认 [SystemClock]
func WithClock(c Clock) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.clock = c
		}
	}
}

// WithRecorder 设置指标记录器，默认不记录
func WithRecorder(r xmetrics.Recorder) Option {
	return func(cfg *config) {
		cfg.recorder = xmetrics.OrNoop(r)
	}
}

// WithOnError 设置内部错误回调。
//
// 写入失败、文件关闭失败等不会返回给调用方的错误通过此回调上报。
// 回调在 sink goroutine 中同步执行，panic 会被吞掉。
// 回调中不要再向同一个 sink 写日志，否则可能阻塞在满邮箱上。
func WithOnError(fn func(name string, err error)) Option {
	return func(cfg *config) {
		cfg.onError = fn
	}
}

// WithMailboxSize 设置邮箱容量，<= 0 时使用默认值
func WithMailboxSize(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.mailbox = n
		}
	}
}

// Sink 单写者的滚动文件日志。
//
// 所有状态由一个 goroutine 独占，外部调用都以消息形式投递到邮箱并串行处理。
// 状态流转：未配置 → 已配置 → 已停止（终态）。
// 未配置时接收的事件会被丢弃。
type Sink struct {
	name string
	id   string
	cfg  config
	node string

	mailbox chan message
	done    chan struct{}

	// 以下字段只由 run goroutine 访问
	configured bool
	opts       Options
	res        resolved
	format     formatter
	gen        *xrotate.Generation
	timer      *time.Timer
	buf        []byte
}

// Open 创建 sink 并启动其 goroutine。调用 [Sink.Configure] 后才会写文件。
func Open(name string, opts ...Option) (*Sink, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	cfg := config{
		clock:    SystemClock,
		recorder: xmetrics.NoopRecorder{},
		mailbox:  DefaultMailboxSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	s := &Sink{
		name:    name,
		id:      uuid.NewString(),
		cfg:     cfg,
		node:    sanitizeString(xproc.Hostname()),
		mailbox: make(chan message, cfg.mailbox),
		done:    make(chan struct{}),
	}
	go s.run()
	return s, nil
}

// Name sink 名称
func (s *Sink) Name() string { return s.name }

// ID 本次运行的实例标识，每次 Open 生成
func (s *Sink) ID() string { return s.id }

// Done 在 sink goroutine 退出后关闭
func (s *Sink) Done() <-chan struct{} { return s.done }

// =============================================================================
// 消息
// =============================================================================

type message any

type logMsg struct {
	ctx context.Context
	ev  Event
}

type configureMsg struct {
	opts  Options
	reply chan error
}

type pathMsg struct {
	gen     int
	current bool
	reply   chan string
}

type flushMsg struct{ reply chan error }

type rotateMsg struct{ reply chan error }

// tickMsg 跨天检查；定时器投递时 reply 为 nil
type tickMsg struct{ reply chan error }

type stopMsg struct{ reply chan error }

// send 投递消息，邮箱满时阻塞直到有空位、sink 停止或 ctx 结束
func (s *Sink) send(ctx context.Context, m message) error {
	select {
	case <-s.done:
		return ErrStopped
	default:
	}
	select {
	case s.mailbox <- m:
		return nil
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func request[T any](ctx context.Context, s *Sink, m message, reply <-chan T) (T, error) {
	var zero T
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.send(ctx, m); err != nil {
		return zero, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-s.done:
		// 停止前可能刚好写入了回复
		select {
		case v := <-reply:
			return v, nil
		default:
			return zero, ErrStopped
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// =============================================================================
// 公开操作
// =============================================================================

// Log 投递一条事件，不等待写入完成。
//
// 写入失败不会返回给调用方；只有 sink 已停止（[ErrStopped]）或 ctx 在邮箱满时结束才返回错误。
// ev.Time 为零值时使用当前时间。
func (s *Sink) Log(ctx context.Context, ev Event) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if ev.Time.IsZero() {
		ev.Time = s.cfg.clock.Now()
	}
	ev.Metadata = slices.Clone(ev.Metadata)
	return s.send(ctx, logMsg{ctx: ctx, ev: ev})
}

// Configure 把 opts 合并到已有配置上，并重新扫描目录确定日期与代号。
//
// 配置无效时返回错误且保持原状态；无法确定本地时间时返回 [ErrLocalTime]。
func (s *Sink) Configure(ctx context.Context, opts Options) error {
	reply := make(chan error, 1)
	err, callErr := request(ctx, s, configureMsg{opts: opts, reply: reply}, reply)
	if callErr != nil {
		return callErr
	}
	return err
}

// Path 当前活跃文件路径，未配置或禁用写入时为 ""
func (s *Sink) Path(ctx context.Context) (string, error) {
	reply := make(chan string, 1)
	return request(ctx, s, pathMsg{current: true, reply: reply}, reply)
}

// PathFor 当前日期下第 gen 代文件的路径，未配置或禁用写入时为 ""
func (s *Sink) PathFor(ctx context.Context, gen int) (string, error) {
	reply := make(chan string, 1)
	return request(ctx, s, pathMsg{gen: gen, reply: reply}, reply)
}

// Flush 等待此前投递的事件全部处理完毕并把文件刷到磁盘
func (s *Sink) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	err, callErr := request(ctx, s, flushMsg{reply: reply}, reply)
	if callErr != nil {
		return callErr
	}
	return err
}

// Rotate 立即切换到下一代文件，清理规则与按大小轮转相同
func (s *Sink) Rotate(ctx context.Context) error {
	reply := make(chan error, 1)
	err, callErr := request(ctx, s, rotateMsg{reply: reply}, reply)
	if callErr != nil {
		return callErr
	}
	return err
}

// Stop 处理完此前投递的消息后关闭文件并退出，重复调用返回 [ErrStopped]
func (s *Sink) Stop(ctx context.Context) error {
	reply := make(chan error, 1)
	err, callErr := request(ctx, s, stopMsg{reply: reply}, reply)
	if callErr != nil {
		return callErr
	}
	return err
}

// =============================================================================
// sink goroutine
// =============================================================================

func (s *Sink) run() {
	defer close(s.done)
	for m := range s.mailbox {
		switch m := m.(type) {
		case logMsg:
			s.handleLog(m.ctx, m.ev)
		case configureMsg:
			m.reply <- s.handleConfigure(m.opts)
		case pathMsg:
			m.reply <- s.handlePath(m.gen, m.current)
		case flushMsg:
			m.reply <- s.handleFlush()
		case rotateMsg:
			m.reply <- s.handleRotate()
		case tickMsg:
			err := s.handleTick()
			if m.reply != nil {
				m.reply <- err
			}
			if err != nil {
				// 无法计算本地时间，继续运行会写错日期
				s.reportError(err)
				s.shutdown()
				return
			}
		case stopMsg:
			m.reply <- s.shutdown()
			return
		}
	}
}

func (s *Sink) handleLog(ctx context.Context, ev Event) {
	if !Accepts(ev, s.res.level, s.res.filter) {
		s.cfg.recorder.Dropped(ctx, s.name, xmetrics.DropFiltered)
		return
	}
	if !s.configured || s.gen.Path() == "" {
		s.cfg.recorder.Dropped(ctx, s.name, xmetrics.DropNoPath)
		return
	}
	s.write(ctx, ev)
}

func (s *Sink) handleConfigure(opts Options) error {
	merged := Merge(s.opts, opts)
	res, err := resolve(s.name, merged)
	if err != nil {
		return err
	}
	loc, err := localLocation(s.cfg.clock)
	if err != nil {
		return err
	}
	now := s.cfg.clock.Now().In(loc)

	s.closeGeneration()
	s.gen = xrotate.NewGeneration(res.dir, res.filename, xrotate.DateOf(now),
		xrotate.WithMaxBytes(res.maxBytes),
		xrotate.WithKeep(res.keep),
		xrotate.WithOnRotate(s.onRotate),
	)
	s.opts = merged
	s.res = res
	s.format = formatter{tmpl: res.tmpl, metadata: res.metadata, loc: loc, node: s.node}
	s.configured = true
	s.scheduleRollover(now)
	return nil
}

func (s *Sink) handlePath(gen int, current bool) string {
	if !s.configured {
		return ""
	}
	if current {
		return s.gen.Path()
	}
	return s.gen.PathFor(gen)
}

func (s *Sink) handleFlush() error {
	if !s.configured {
		return nil
	}
	return s.gen.Sync()
}

func (s *Sink) handleRotate() error {
	if !s.configured {
		return xrotate.ErrNoPath
	}
	return s.gen.Rotate()
}

// handleTick 本地日期前进时切换到新日期的第 0 代，然后安排下一次检查
func (s *Sink) handleTick() error {
	if !s.configured {
		return nil
	}
	loc, err := localLocation(s.cfg.clock)
	if err != nil {
		return err
	}
	now := s.cfg.clock.Now().In(loc)
	s.format.loc = loc
	s.gen.RollDay(xrotate.DateOf(now))
	s.scheduleRollover(now)
	return nil
}

// scheduleRollover 在下一个本地零点向自己投递 tickMsg
func (s *Sink) scheduleRollover(now time.Time) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(max(untilMidnight(now), 0), s.postTick)
}

func (s *Sink) postTick() {
	select {
	case s.mailbox <- tickMsg{}:
	case <-s.done:
	}
}

func (s *Sink) onRotate(ev xrotate.RotateEvent) {
	s.cfg.recorder.Rotated(context.Background(), s.name, string(ev.Trigger), ev.Pruned)
}

func (s *Sink) shutdown() error {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.gen == nil {
		return nil
	}
	err := s.gen.Close()
	s.gen = nil
	s.configured = false
	return err
}

func (s *Sink) closeGeneration() {
	if s.gen == nil {
		return
	}
	if err := s.gen.Close(); err != nil {
		s.reportError(err)
	}
	s.gen = nil
}

// reportError 调用错误回调，回调 panic 不影响 sink goroutine
func (s *Sink) reportError(err error) {
	if s.cfg.onError == nil || err == nil {
		return
	}
	defer func() {
		_ = recover() //nolint:errcheck // 回调 panic 只能丢弃
	}()
	s.cfg.onError(s.name, err)
}
