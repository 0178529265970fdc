package engine

import (
	"context"
	"sync/atomic"

	"github.com/dop251/goja"

	"github.com/wippyai/js-runtime/errors"
)

// Engine owns a single goja runtime together with the process-wide
// exclusivity lock guarding all access to it. The runtime is strictly
// single-threaded: creating values, calling functions and draining the job
// queue all require the lock to be held.
//
// Engine handles are shared freely between goroutines; all mutation goes
// through Enter/Exit.
type Engine struct {
	vm      *goja.Runtime
	sem     chan struct{}
	closed  atomic.Bool
	jobs    jobQueue
	handles handleTable
}

// Ctx represents one entry into the engine: the exclusivity lock is held
// from Enter until Exit. A Ctx must not be retained past Exit and must not
// cross goroutines.
type Ctx struct {
	eng *Engine
	vm  *goja.Runtime
}

// New creates an engine with a fresh goja runtime.
func New() *Engine {
	return &Engine{
		vm:  goja.New(),
		sem: make(chan struct{}, 1),
	}
}

// Enter acquires the exclusivity lock and returns a Ctx for engine access.
// It fails with KindUnavailable once the engine has been closed, and with
// KindInterrupted if ctx is cancelled while waiting for the lock.
func (e *Engine) Enter(ctx context.Context) (*Ctx, error) {
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, errors.Interrupted("waiting for engine lock", ctx.Err())
	}
	if e.closed.Load() {
		<-e.sem
		return nil, errors.Unavailable("engine")
	}
	return &Ctx{eng: e, vm: e.vm}, nil
}

// Exit releases the exclusivity lock. The Ctx is invalid afterwards.
func (c *Ctx) Exit() {
	<-c.eng.sem
}

// Reentered returns a Ctx for use inside engine callbacks, where the
// exclusivity lock is already held by the outer engine entry. It must never
// be used from code that has not been invoked by the engine.
func (e *Engine) Reentered() *Ctx {
	return &Ctx{eng: e, vm: e.vm}
}

// Close tears the engine down. It waits for the current holder of the
// exclusivity lock; afterwards Enter fails with KindUnavailable and all
// persistent handles are dropped.
func (e *Engine) Close(ctx context.Context) error {
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return errors.Interrupted("waiting for engine lock", ctx.Err())
	}
	e.closed.Store(true)
	e.handles.clear()
	e.jobs.clear()
	<-e.sem
	return nil
}

// Closed reports whether the engine has been torn down.
func (e *Engine) Closed() bool {
	return e.closed.Load()
}

// Engine returns the engine this Ctx belongs to.
func (c *Ctx) Engine() *Engine {
	return c.eng
}

// Runtime exposes the underlying goja runtime for direct use. Only valid
// while the Ctx is live.
func (c *Ctx) Runtime() *goja.Runtime {
	return c.vm
}

// NativeFunc wraps a Go closure as an engine-callable function. The name is
// set as the function's name property where the engine allows it.
func (c *Ctx) NativeFunc(name string, fn func(goja.FunctionCall) goja.Value) goja.Value {
	v := c.vm.ToValue(fn)
	if obj, ok := v.(*goja.Object); ok && name != "" {
		// Best effort: native function objects may refuse redefinition.
		_ = obj.DefineDataProperty("name", c.vm.ToValue(name),
			goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE)
	}
	return v
}

// NewPromiseTriple creates an engine promise together with its resolve and
// reject entry points, exposed as engine function values so they can be
// pinned as persistent handles and invoked through the job queue.
func (c *Ctx) NewPromiseTriple() (promise *goja.Object, resolveFn, rejectFn goja.Value) {
	p, resolve, reject := c.vm.NewPromise()
	promise = c.vm.ToValue(p).ToObject(c.vm)
	resolveFn = c.NativeFunc("resolve", func(call goja.FunctionCall) goja.Value {
		resolve(call.Argument(0))
		return goja.Undefined()
	})
	rejectFn = c.NativeFunc("reject", func(call goja.FunctionCall) goja.Value {
		reject(call.Argument(0))
		return goja.Undefined()
	})
	return promise, resolveFn, rejectFn
}
