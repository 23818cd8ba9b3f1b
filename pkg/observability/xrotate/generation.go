package xrotate

import (
	"fmt"
	"os"

	"github.com/omeyang/xsink/pkg/util/xfile"
)

// 编译时断言：Generation 实现 Rotator
var _ Rotator = (*Generation)(nil)

// DefaultFileMode 日志文件默认权限
const DefaultFileMode os.FileMode = 0o644

// Trigger 轮转触发原因
type Trigger string

const (
	// TriggerSize 文件大小达到阈值
	TriggerSize Trigger = "size"
	// TriggerDay 本地日期前进
	TriggerDay Trigger = "day"
	// TriggerManual 调用方显式调用 Rotate
	TriggerManual Trigger = "manual"
)

// RotateEvent 描述一次轮转
type RotateEvent struct {
	Trigger Trigger
	// From/To 轮转前后的日期与代号
	FromDate Date
	FromGen  int
	ToDate   Date
	ToGen    int
	// Pruned 本次轮转清理掉的文件数
	Pruned int
}

type generationConfig struct {
	maxBytes int64
	keep     int
	fileMode os.FileMode
	onRotate func(RotateEvent)
}

// GenerationOption Generation 配置选项函数
type GenerationOption func(*generationConfig)

// WithMaxBytes 设置按大小轮转的阈值（字节）
//
// 仅当 maxBytes > 0 且 keep > 0 时启用按大小轮转。
func WithMaxBytes(maxBytes int64) GenerationOption {
	return func(c *generationConfig) {
		c.maxBytes = maxBytes
	}
}

// WithKeep 设置每天保留的代数
//
// keep <= 0 表示不清理。
func WithKeep(keep int) GenerationOption {
	return func(c *generationConfig) {
		c.keep = keep
	}
}

// WithGenerationFileMode 设置新建日志文件的权限（仅权限位生效）
func WithGenerationFileMode(mode os.FileMode) GenerationOption {
	return func(c *generationConfig) {
		if mode != 0 {
			c.fileMode = mode.Perm()
		}
	}
}

// WithOnRotate 设置轮转回调，在每次轮转完成后同步调用
func WithOnRotate(fn func(RotateEvent)) GenerationOption {
	return func(c *generationConfig) {
		c.onRotate = fn
	}
}

// Generation 按日期与代号命名的日志文件。
//
// 不是并发安全的：所有方法必须由同一个所有者串行调用（xsink 的 sink goroutine）。
// 文件句柄延迟打开；句柄失效（文件被外部移走、删除或替换）时在下一次 Write 中自动重新打开。
type Generation struct {
	dir      string
	filename string
	cfg      generationConfig

	date Date
	gen  int
	path string // dir 为空时为 ""

	file     *os.File
	filePath string // file 打开时对应的路径

	closed bool
}

// NewGeneration 创建日期+代号轮转文件。
//
// 通过 [NextGeneration] 扫描 dir 确定起始代号，避免覆盖已有文件。
// dir 为空表示禁用写入：Path 返回 ""，Write 返回 [ErrNoPath]。
func NewGeneration(dir, filename string, date Date, opts ...GenerationOption) *Generation {
	cfg := generationConfig{fileMode: DefaultFileMode}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	g := &Generation{
		dir:      dir,
		filename: filename,
		cfg:      cfg,
		date:     date,
		gen:      NextGeneration(dir, filename, date),
	}
	g.path, _ = Path(dir, filename, date, g.gen)
	return g
}

// Date 当前日期
func (g *Generation) Date() Date { return g.date }

// Generation 当前代号
func (g *Generation) Generation() int { return g.gen }

// Path 当前活跃文件路径，未配置目录时为 ""
func (g *Generation) Path() string { return g.path }

// PathFor 当前日期下任意代号的路径
func (g *Generation) PathFor(generation int) string {
	p, _ := Path(g.dir, g.filename, g.date, generation)
	return p
}

// sizeRotation 是否启用按大小轮转
func (g *Generation) sizeRotation() bool {
	return g.cfg.maxBytes > 0 && g.cfg.keep > 0
}

// RotateIfFull 当前文件大小达到阈值时前进到下一代号。
//
// 文件不存在（stat 失败）或未达阈值时不做任何改变。
// 前进前清理低于 gen+1-keep 的旧代号。返回是否发生了轮转。
func (g *Generation) RotateIfFull() bool {
	if g.path == "" || !g.sizeRotation() {
		return false
	}
	info, err := os.Stat(g.path)
	if err != nil || info.Size() < g.cfg.maxBytes {
		return false
	}
	g.advance(TriggerSize)
	return true
}

// Rotate 无条件前进到下一代号（实现 Rotator）。
func (g *Generation) Rotate() error {
	if g.closed {
		return ErrClosed
	}
	if g.path == "" {
		return ErrNoPath
	}
	g.advance(TriggerManual)
	return nil
}

func (g *Generation) advance(trigger Trigger) {
	ev := RotateEvent{Trigger: trigger, FromDate: g.date, FromGen: g.gen, ToDate: g.date}
	ev.Pruned = Prune(g.dir, g.filename, g.date, g.gen+1, g.cfg.keep)
	g.gen++
	g.path, _ = Path(g.dir, g.filename, g.date, g.gen)
	ev.ToGen = g.gen
	// 句柄在下一次 Write 时按新路径重新打开
	g.notify(ev)
}

// RollDay 本地日期前进时切换到新日期的第 0 代。
//
// today 不晚于当前日期（时钟回拨或提前触发）时不修改任何状态，返回 false。
// 切换前清理前一天的旧代号，只保留最后 keep 代。
func (g *Generation) RollDay(today Date) bool {
	if !today.After(g.date) {
		return false
	}
	ev := RotateEvent{Trigger: TriggerDay, FromDate: g.date, FromGen: g.gen, ToDate: today}
	ev.Pruned = Prune(g.dir, g.filename, g.date, g.gen, g.cfg.keep)
	g.closeFile()
	g.date = today
	g.gen = 0
	g.path, _ = Path(g.dir, g.filename, g.date, g.gen)
	g.notify(ev)
	return true
}

func (g *Generation) notify(ev RotateEvent) {
	if g.cfg.onRotate != nil {
		g.cfg.onRotate(ev)
	}
}

// Write 追加写入当前活跃文件。
//
// 流程：确保句柄已打开 → 检查按大小轮转 → 句柄与路径上的文件不一致时重新打开 → 写入。
// 写入失败时关闭句柄，下一次调用会重新打开。
func (g *Generation) Write(p []byte) (int, error) {
	if g.closed {
		return 0, ErrClosed
	}
	if g.path == "" {
		return 0, ErrNoPath
	}
	if err := g.ensureOpen(); err != nil {
		return 0, err
	}

	g.RotateIfFull()
	if !g.fresh() {
		g.closeFile()
		if err := g.ensureOpen(); err != nil {
			return 0, err
		}
	}

	n, err := g.file.Write(p)
	if err != nil {
		g.closeFile()
		return n, fmt.Errorf("xrotate: write %s: %w", g.filePath, err)
	}
	return n, nil
}

// ensureOpen 句柄为空时创建父目录并以追加方式打开当前路径
func (g *Generation) ensureOpen() error {
	if g.file != nil {
		return nil
	}
	if err := xfile.EnsureDir(g.path); err != nil {
		return fmt.Errorf("xrotate: create dir for %s: %w", g.path, err)
	}
	//#nosec G304 -- 路径由配置目录与固定命名规则生成
	f, err := os.OpenFile(g.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, g.cfg.fileMode)
	if err != nil {
		return fmt.Errorf("xrotate: open %s: %w", g.path, err)
	}
	g.file = f
	g.filePath = g.path
	return nil
}

// fresh 句柄是否仍指向当前路径上的同一个文件
func (g *Generation) fresh() bool {
	if g.file == nil || g.filePath != g.path {
		return false
	}
	held, err := g.file.Stat()
	if err != nil {
		return false
	}
	onDisk, err := os.Stat(g.path)
	if err != nil {
		return false
	}
	return os.SameFile(held, onDisk)
}

// Sync 把已写入内容刷到磁盘，未打开句柄时直接返回
func (g *Generation) Sync() error {
	if g.file == nil {
		return nil
	}
	if err := g.file.Sync(); err != nil {
		return fmt.Errorf("xrotate: sync %s: %w", g.filePath, err)
	}
	return nil
}

// Invalidate 关闭当前句柄，下一次 Write 重新打开
func (g *Generation) Invalidate() {
	g.closeFile()
}

// Opened 当前是否持有打开的句柄
func (g *Generation) Opened() bool {
	return g.file != nil
}

func (g *Generation) closeFile() {
	if g.file == nil {
		return
	}
	_ = g.file.Close() //nolint:errcheck // 句柄已失效或即将替换，关闭失败无需处理
	g.file = nil
	g.filePath = ""
}

// Close 关闭句柄并拒绝后续写入
//
// 重复调用返回 [ErrClosed]。
func (g *Generation) Close() error {
	if g.closed {
		return ErrClosed
	}
	g.closed = true
	if g.file == nil {
		return nil
	}
	err := g.file.Close()
	g.file = nil
	g.filePath = ""
	return err
}
