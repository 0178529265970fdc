package executor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	jsruntime "github.com/wippyai/js-runtime"
)

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func TestExecutor_RunsSpawnedTask(t *testing.T) {
	exec := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go exec.Run(ctx)

	var polls atomic.Int32
	exec.Spawn(TaskFunc(func(w jsruntime.Waker) bool {
		polls.Add(1)
		return true
	}))

	waitFor(t, func() bool { return polls.Load() == 1 }, "task to be polled")
}

func TestExecutor_WakeReschedulesTask(t *testing.T) {
	exec := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go exec.Run(ctx)

	var polls atomic.Int32
	var saved atomic.Value
	exec.Spawn(TaskFunc(func(w jsruntime.Waker) bool {
		n := polls.Add(1)
		if n == 1 {
			saved.Store(w)
			return false
		}
		return true
	}))

	waitFor(t, func() bool { return polls.Load() == 1 }, "first poll")
	saved.Load().(jsruntime.Waker).Wake()
	waitFor(t, func() bool { return polls.Load() == 2 }, "second poll")

	// Task completed; a further wake must not poll again.
	saved.Load().(jsruntime.Waker).Wake()
	time.Sleep(20 * time.Millisecond)
	if got := polls.Load(); got != 2 {
		t.Errorf("polls after wake-on-done = %d, want 2", got)
	}
}

func TestExecutor_WakeDuringOwnPoll(t *testing.T) {
	exec := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go exec.Run(ctx)

	var polls atomic.Int32
	exec.Spawn(TaskFunc(func(w jsruntime.Waker) bool {
		n := polls.Add(1)
		if n == 1 {
			// Waking from inside Poll must re-queue after this poll returns.
			w.Wake()
			return false
		}
		return true
	}))

	waitFor(t, func() bool { return polls.Load() == 2 }, "re-poll after self-wake")
}

func TestExecutor_SpawnAfterShutdown(t *testing.T) {
	exec := New()
	exec.Shutdown()

	var polls atomic.Int32
	exec.Spawn(TaskFunc(func(w jsruntime.Waker) bool {
		polls.Add(1)
		return true
	}))

	done := make(chan struct{})
	go func() {
		exec.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after Shutdown")
	}
	if polls.Load() != 0 {
		t.Errorf("task spawned after shutdown was polled")
	}
}

func TestExecutor_RunStopsOnContextCancel(t *testing.T) {
	exec := New()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		exec.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after context cancellation")
	}
}

func TestFuture_PollBeforeComplete(t *testing.T) {
	f := NewFuture[int]()

	var woken atomic.Bool
	_, _, ready := f.Poll(jsruntime.WakerFunc(func() { woken.Store(true) }))
	if ready {
		t.Fatalf("future ready before completion")
	}

	f.Complete(42, nil)
	if !woken.Load() {
		t.Fatalf("waker not fired on completion")
	}

	v, err, ready := f.Poll(jsruntime.WakerFunc(func() {}))
	if !ready {
		t.Fatalf("future not ready after completion")
	}
	if err != nil || v != 42 {
		t.Errorf("Poll() = (%v, %v), want (42, nil)", v, err)
	}
}

func TestFuture_CompleteIsFirstWins(t *testing.T) {
	f := NewFuture[string]()
	f.Complete("first", nil)
	f.Complete("second", errors.New("late"))

	v, err, ready := f.Poll(jsruntime.WakerFunc(func() {}))
	if !ready || v != "first" || err != nil {
		t.Errorf("Poll() = (%q, %v, %v), want (first, nil, true)", v, err, ready)
	}
}

func TestFuture_Go(t *testing.T) {
	release := make(chan struct{})
	f := Go(func() (int, error) {
		<-release
		return 7, nil
	})

	woken := make(chan struct{})
	if _, _, ready := f.Poll(jsruntime.WakerFunc(func() { close(woken) })); ready {
		t.Fatalf("future ready before goroutine finished")
	}

	close(release)
	select {
	case <-woken:
	case <-time.After(2 * time.Second):
		t.Fatalf("waker not fired")
	}

	v, err, ready := f.Poll(jsruntime.WakerFunc(func() {}))
	if !ready || v != 7 || err != nil {
		t.Errorf("Poll() = (%v, %v, %v), want (7, nil, true)", v, err, ready)
	}
}
