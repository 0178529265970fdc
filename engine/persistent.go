package engine

import (
	"sync"

	"github.com/dop251/goja"

	"github.com/wippyai/js-runtime/errors"
)

// Handle is an opaque reference to a pinned engine value.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Persistent is a durable cross-call handle: it keeps an engine value
// reachable after the Ctx that produced it has exited, so the value can be
// restored on a later engine entry. Restore fails once the engine has been
// torn down or the handle released.
type Persistent struct {
	eng *Engine
	h   Handle
}

type handleTable struct {
	mu      sync.Mutex
	entries map[Handle]goja.Value
	free    []Handle
	next    Handle
	closed  bool
}

func (t *handleTable) insert(v goja.Value) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0
	}
	if t.entries == nil {
		t.entries = make(map[Handle]goja.Value)
	}
	var h Handle
	if n := len(t.free); n > 0 {
		h = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.next++
		h = t.next
	}
	t.entries[h] = v
	return h
}

func (t *handleTable) get(h Handle) (goja.Value, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.entries[h]
	return v, ok
}

func (t *handleTable) drop(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[h]; !ok {
		return
	}
	delete(t.entries, h)
	t.free = append(t.free, h)
}

func (t *handleTable) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.entries = nil
	t.free = nil
}

func (t *handleTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Persist pins an engine value beyond the current engine entry.
func (c *Ctx) Persist(v goja.Value) Persistent {
	return Persistent{eng: c.eng, h: c.eng.handles.insert(v)}
}

// Restore returns the pinned value under a live engine entry. It fails with
// KindUnavailable if the engine was torn down in the interim, and with
// KindNotFound if the handle was already released.
func (p Persistent) Restore(c *Ctx) (goja.Value, error) {
	if p.eng == nil || p.h == 0 {
		return nil, errors.NotInitialized(errors.PhaseRuntime, "persistent handle")
	}
	if c.eng != p.eng {
		return nil, errors.InvalidInput(errors.PhaseRuntime, "persistent handle restored on a different engine")
	}
	if p.eng.closed.Load() {
		return nil, errors.Unavailable("engine")
	}
	v, ok := p.eng.handles.get(p.h)
	if !ok {
		return nil, errors.NotFound(errors.PhaseRuntime, "persistent handle", "")
	}
	return v, nil
}

// Release drops the pin without requiring an engine entry. Safe to call
// more than once.
func (p Persistent) Release() {
	if p.eng == nil || p.h == 0 {
		return
	}
	p.eng.handles.drop(p.h)
}

// PinnedValues reports the number of live persistent handles. Intended for
// leak checks in tests.
func (e *Engine) PinnedValues() int {
	return e.handles.len()
}
