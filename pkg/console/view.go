package console

import (
	"context"
	"sync"
)

// View holds the latest loaded state of a page. Each Load cancels the one
// before it, and only the newest load may publish its result. Once the view
// is closed nothing is published anymore.
type View[T any] struct {
	mu     sync.Mutex
	parent context.Context
	gen    uint64
	cancel context.CancelFunc
	closed bool

	value  T
	err    error
	loaded bool
}

// NewView creates a View whose loads derive from parent.
func NewView[T any](parent context.Context) *View[T] {
	return &View[T]{parent: parent}
}

// Begin starts a new load generation and cancels the previous one. The
// returned context is canceled when a newer load starts or the view closes.
func (v *View[T]) Begin() (context.Context, uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithCancel(v.parent)
	if v.closed {
		cancel()
	}
	v.gen++
	v.cancel = cancel
	return ctx, v.gen
}

// Commit publishes the result of generation gen. It reports false, and
// drops the result, when gen is stale or the view is closed.
func (v *View[T]) Commit(gen uint64, value T, err error) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || gen != v.gen {
		return false
	}
	v.value, v.err, v.loaded = value, err, true
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	return true
}

// Load runs fetch as a new generation and commits its result.
func (v *View[T]) Load(fetch func(ctx context.Context) (T, error)) (T, bool, error) {
	ctx, gen := v.Begin()
	value, err := fetch(ctx)
	if !v.Commit(gen, value, err) {
		var zero T
		return zero, false, nil
	}
	return value, true, err
}

// Snapshot returns the last committed result and whether one exists.
func (v *View[T]) Snapshot() (T, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value, v.loaded, v.err
}

// Close cancels any in-flight load. It is safe to call more than once.
func (v *View[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.closed = true
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}
