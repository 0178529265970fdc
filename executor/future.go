package executor

import (
	"sync"

	jsruntime "github.com/wippyai/js-runtime"
)

// Future is the poll side of a computation running on its own goroutine.
// Poll either returns the completed result or registers a waker to fire
// when the result lands; registering replaces any previously stored waker.
type Future[T any] struct {
	mu    sync.Mutex
	done  bool
	val   T
	err   error
	waker jsruntime.Waker
}

// Go runs fn on a new goroutine and returns a Future for its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{}
	go func() {
		v, err := fn()
		f.complete(v, err)
	}()
	return f
}

// NewFuture returns an unresolved future completed manually via Complete.
// Used by tests to control completion order.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{}
}

// Complete stores the result and fires the registered waker. Later calls
// are no-ops.
func (f *Future[T]) Complete(v T, err error) {
	f.complete(v, err)
}

func (f *Future[T]) complete(v T, err error) {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return
	}
	f.val, f.err, f.done = v, err, true
	w := f.waker
	f.waker = nil
	f.mu.Unlock()
	if w != nil {
		w.Wake()
	}
}

// Poll reports the result if present, otherwise stores w for a later wake.
func (f *Future[T]) Poll(w jsruntime.Waker) (T, error, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done {
		return f.val, f.err, true
	}
	f.waker = w
	var zero T
	return zero, nil, false
}
