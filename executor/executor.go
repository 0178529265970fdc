package executor

import (
	"context"
	"sync"

	jsruntime "github.com/wippyai/js-runtime"
)

// Task is a host-pollable unit of work. Poll advances the task and reports
// whether it completed. A task that returns false must have arranged for the
// supplied waker to fire when it can make progress again.
type Task interface {
	Poll(w jsruntime.Waker) (done bool)
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc func(w jsruntime.Waker) bool

func (f TaskFunc) Poll(w jsruntime.Waker) bool { return f(w) }

// Executor runs spawned tasks cooperatively on a single goroutine. Tasks
// suspend by returning false from Poll; the waker handed to Poll reschedules
// exactly that task. Wakes are safe from any goroutine, including from
// inside engine callbacks.
type Executor struct {
	mu     sync.Mutex
	ready  []*taskHandle
	wake   chan struct{}
	closed bool
}

type taskHandle struct {
	exec *Executor
	task Task

	mu          sync.Mutex
	queued      bool
	running     bool
	wakePending bool
	done        bool
}

// New creates an idle executor. Call Run to start processing.
func New() *Executor {
	return &Executor{wake: make(chan struct{}, 1)}
}

// Spawn registers a task and schedules its first poll. Spawning never
// blocks; after Shutdown it is a no-op.
func (e *Executor) Spawn(t Task) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	h := &taskHandle{exec: e, task: t}
	h.schedule()
}

// Run processes tasks until ctx is cancelled or Shutdown is called. It is
// typically run on its own goroutine.
func (e *Executor) Run(ctx context.Context) {
	for {
		e.mu.Lock()
		var h *taskHandle
		if len(e.ready) > 0 {
			h = e.ready[0]
			e.ready = e.ready[1:]
		}
		closed := e.closed
		e.mu.Unlock()

		if h == nil {
			if closed {
				return
			}
			select {
			case <-e.wake:
			case <-ctx.Done():
				return
			}
			continue
		}

		h.run()
	}
}

// Shutdown stops accepting tasks and unblocks Run once the ready queue
// drains.
func (e *Executor) Shutdown() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.signal()
}

func (e *Executor) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Wake implements jsruntime.Waker for the task's own handle.
func (h *taskHandle) Wake() { h.schedule() }

func (h *taskHandle) schedule() {
	h.mu.Lock()
	if h.done || h.queued {
		h.mu.Unlock()
		return
	}
	if h.running {
		// Woken while its own Poll is still on the stack; re-queue after.
		h.wakePending = true
		h.mu.Unlock()
		return
	}
	h.queued = true
	h.mu.Unlock()

	e := h.exec
	e.mu.Lock()
	e.ready = append(e.ready, h)
	e.mu.Unlock()
	e.signal()
}

func (h *taskHandle) run() {
	h.mu.Lock()
	h.queued = false
	h.running = true
	h.mu.Unlock()

	done := h.task.Poll(h)

	h.mu.Lock()
	h.running = false
	h.done = done
	rewake := h.wakePending && !done
	h.wakePending = false
	h.mu.Unlock()

	if rewake {
		h.schedule()
	}
}
