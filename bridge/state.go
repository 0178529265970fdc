package bridge

import (
	"sync"

	jsruntime "github.com/wippyai/js-runtime"
)

type outcome[T any] struct {
	value T
	err   error
}

// completionState is the synchronization cell shared between a polled
// awaitable and the two engine callbacks that eventually supply its result.
// It has its own lock, independent of the engine exclusivity lock: either
// side may touch it without having entered the engine.
type completionState[T any] struct {
	mu     sync.Mutex
	result *outcome[T]
	waker  jsruntime.Waker
}

// resolve stores the outcome if none is stored yet and fires the registered
// waker exactly once. Later calls are no-ops: the result transitions from
// absent to present exactly once per instance.
func (s *completionState[T]) resolve(o outcome[T]) {
	s.mu.Lock()
	if s.result != nil {
		s.mu.Unlock()
		return
	}
	s.result = &o
	w := s.waker
	s.waker = nil
	s.mu.Unlock()
	if w != nil {
		w.Wake()
	}
}

// poll takes the stored result, ending the wait, or registers w (replacing
// any previous waker) and reports not ready. The result is handed out at
// most once.
func (s *completionState[T]) poll(w jsruntime.Waker) (outcome[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil {
		o := *s.result
		s.result = nil
		return o, true
	}
	s.waker = w
	return outcome[T]{}, false
}
