package xsink

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Registry 按名称管理多个 sink。
//
// 锁只保护名称表；各 sink 的状态仍由各自的 goroutine 独占，互不共享。
type Registry struct {
	mu    sync.Mutex
	sinks map[string]*Sink
	opts  []Option
}

// NewRegistry 创建注册表，opts 应用于之后启动的每个 sink
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		sinks: make(map[string]*Sink),
		opts:  opts,
	}
}

// Start 打开并配置一个新 sink。同名 sink 已存在时返回 [ErrExists]。
func (r *Registry) Start(ctx context.Context, name string, o Options) (*Sink, error) {
	r.mu.Lock()
	if _, ok := r.sinks[name]; ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrExists, name)
	}
	s, err := Open(name, r.opts...)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.sinks[name] = s
	r.mu.Unlock()

	if err := s.Configure(ctx, o); err != nil {
		r.remove(name, s)
		return nil, errors.Join(err, ignoreStopped(s.Stop(context.WithoutCancel(ctx))))
	}
	return s, nil
}

// Get 按名称查找 sink
func (r *Registry) Get(name string) (*Sink, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sinks[name]
	return s, ok
}

func (r *Registry) lookup(name string) (*Sink, error) {
	s, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s, nil
}

// Log 投递事件到指定 sink
func (r *Registry) Log(ctx context.Context, name string, ev Event) error {
	s, err := r.lookup(name)
	if err != nil {
		return err
	}
	return s.Log(ctx, ev)
}

// Broadcast 投递事件到所有 sink，返回各 sink 投递错误的合并
func (r *Registry) Broadcast(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range r.snapshot() {
		if err := s.Log(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Configure 重新配置指定 sink
func (r *Registry) Configure(ctx context.Context, name string, o Options) error {
	s, err := r.lookup(name)
	if err != nil {
		return err
	}
	return s.Configure(ctx, o)
}

// Stop 停止并移除指定 sink
func (r *Registry) Stop(ctx context.Context, name string) error {
	s, err := r.lookup(name)
	if err != nil {
		return err
	}
	r.remove(name, s)
	return ignoreStopped(s.Stop(ctx))
}

// Close 停止所有 sink 并清空注册表
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	sinks := r.sinks
	r.sinks = make(map[string]*Sink)
	r.mu.Unlock()

	var errs []error
	for name, s := range sinks {
		if err := ignoreStopped(s.Stop(ctx)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Names 已注册的 sink 名称，按字典序
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.sinks))
	for name := range r.sinks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) snapshot() []*Sink {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Sink, 0, len(r.sinks))
	for _, s := range r.sinks {
		out = append(out, s)
	}
	return out
}

// remove 仅当名称仍指向 s 时删除，避免误删并发启动的同名新 sink
func (r *Registry) remove(name string, s *Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sinks[name] == s {
		delete(r.sinks, name)
	}
}

// 因内部错误（如无法获取本地时间）已自行停止的 sink 视为停止成功
func ignoreStopped(err error) error {
	if errors.Is(err, ErrStopped) {
		return nil
	}
	return err
}
