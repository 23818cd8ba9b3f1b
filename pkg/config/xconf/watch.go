package xconf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce 默认防抖时间
const DefaultDebounce = 100 * time.Millisecond

// WatchCallback 每次重载后调用，err 非 nil 表示重载失败（配置保持旧值）或监视出错
type WatchCallback func(cfg Config, err error)

// WatchOption 监视器选项
type WatchOption func(*Watcher)

// WithDebounce 设置防抖时间，窗口内的多次变更只触发一次重载
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher 配置文件监视器
type Watcher struct {
	cfg      Config
	fs       *fsnotify.Watcher
	callback WatchCallback
	debounce time.Duration

	// mu 保护 timer 与 stopped；重载与回调在持有 fire 时执行
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	fire    sync.Mutex
}

// Watch 监视 cfg 对应的配置文件。
//
// 监视的是文件所在目录，这样 rename 式的原子写入不会丢失事件。
func Watch(cfg Config, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	if cfg.Path() == "" {
		return nil, ErrNotReloadable
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xconf: create watcher: %w", err)
	}
	dir := filepath.Dir(cfg.Path())
	if err := fs.Add(dir); err != nil {
		return nil, errors.Join(fmt.Errorf("xconf: watch %s: %w", dir, err), fs.Close())
	}

	w := &Watcher{cfg: cfg, fs: fs, callback: callback, debounce: DefaultDebounce}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Run 处理文件事件直到 ctx 取消。
//
// 返回前关闭 fsnotify 并等待正在执行的回调结束，之后不会再有回调。
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	name := filepath.Base(w.cfg.Path())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if relevant(ev, name) {
				w.schedule()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.notify(func() error { return fmt.Errorf("xconf: watch error: %w", err) })
		}
	}
}

// relevant 只关心目标文件的写入、创建与 rename
func relevant(ev fsnotify.Event, name string) bool {
	if filepath.Base(ev.Name) != name {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.notify(w.cfg.Reload)
	})
}

// notify 在 fire 保护下执行 op 并回调，监视已停止时什么都不做
func (w *Watcher) notify(op func() error) {
	w.fire.Lock()
	defer w.fire.Unlock()
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}
	err := op()
	if w.callback != nil {
		w.callback(w.cfg, err)
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	_ = w.fs.Close() //nolint:errcheck // 监视结束，关闭失败无需处理
	// 等待已经开始的回调
	w.fire.Lock()
	w.fire.Unlock() //nolint:staticcheck // 空临界区用于等待
}
