package bridge

import (
	"context"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	jsruntime "github.com/wippyai/js-runtime"
	"github.com/wippyai/js-runtime/engine"
	"github.com/wippyai/js-runtime/executor"
)

// Task is a host computation: an asynchronous unit of work defined and
// driven entirely by the host, independent of the engine.
type Task[T any] func(ctx context.Context) (T, error)

// NewPromise exposes a host computation to script code as an engine promise.
//
// The promise triple is created under the caller's engine entry; resolve and
// reject are pinned as persistent handles owned by the spawned task. The
// task runs the computation with no engine lock held, re-enters the engine
// once the outcome is in, converts it to an engine value, releases the
// unused handle uninvoked and delivers through the configured strategy.
//
// The promise object is returned immediately, without waiting for the
// computation. If the task is never polled to completion the promise stays
// pending forever; there is no cancellation primitive.
func NewPromise[T any](ctx context.Context, c *engine.Ctx, exec *executor.Executor, s Strategy, task Task[T]) *goja.Object {
	promise, resolveFn, rejectFn := c.NewPromiseTriple()

	resolveH := c.Persist(resolveFn)
	rejectH := c.Persist(rejectFn)
	eng := c.Engine()

	fut := executor.Go(func() (T, error) {
		return task(ctx)
	})

	exec.Spawn(executor.TaskFunc(func(w jsruntime.Waker) bool {
		val, terr, ready := fut.Poll(w)
		if !ready {
			return false
		}

		jc, err := eng.Enter(ctx)
		if err != nil {
			// The engine was torn down (or ctx cancelled) before the
			// outcome could be delivered; the promise stays pending.
			Logger().Error("engine unavailable for promise settlement", zap.Error(err))
			resolveH.Release()
			rejectH.Release()
			return true
		}
		defer jc.Exit()

		settle(jc, s, resolveH, rejectH, val, terr)
		return true
	}))

	return promise
}

// settle converts the computation outcome to an engine value and drives the
// matching half of the promise triple. An outcome that fails conversion is
// rerouted to the reject function; conversion never silently drops a result.
func settle[T any](c *engine.Ctx, s Strategy, resolveH, rejectH engine.Persistent, val T, terr error) {
	vm := c.Runtime()

	if terr == nil {
		jsVal, convErr := engine.ToScript(vm, val)
		if convErr == nil {
			rejectH.Release()
			fn, err := resolveH.Restore(c)
			resolveH.Release()
			if err != nil {
				Logger().Error("restore resolve function", zap.Error(err))
				return
			}
			deliver(c, s, fn, jsVal)
			return
		}
		terr = convErr
	}

	resolveH.Release()
	fn, err := rejectH.Restore(c)
	rejectH.Release()
	if err != nil {
		Logger().Error("restore reject function", zap.Error(err))
		return
	}
	deliver(c, s, fn, vm.NewGoError(terr))
}
