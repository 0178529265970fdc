package bridge

import (
	"context"

	"github.com/dop251/goja"

	jsruntime "github.com/wippyai/js-runtime"
	"github.com/wippyai/js-runtime/engine"
	"github.com/wippyai/js-runtime/errors"
)

// Awaitable adapts an engine promise into a host-pollable value of type T.
// It completes when the engine's job processing, driven externally, invokes
// one of the two callbacks subscribed at construction. Without engine
// progress it never completes; no result is ever synthesized from a timeout.
type Awaitable[T any] struct {
	state *completionState[T]
}

// FromPromise subscribes to an engine value expected to behave as a promise:
// an object with a callable then property. A success payload is converted to
// T (a conversion failure becomes the awaited error outcome); a rejection
// payload is carried through as a script error without conversion. A failure
// invoking then is returned immediately and no polling occurs.
func FromPromise[T any](c *engine.Ctx, v goja.Value) (*Awaitable[T], error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, errors.New(errors.PhaseSubscribe, errors.KindTypeMismatch).
			JSType(engine.JSTypeName(v)).
			Detail("promise value is not an object").
			Build()
	}
	vm := c.Runtime()
	obj := v.ToObject(vm)
	then, ok := goja.AssertFunction(obj.Get("then"))
	if !ok {
		return nil, errors.New(errors.PhaseSubscribe, errors.KindTypeMismatch).
			JSType(engine.JSTypeName(v)).
			Detail(`value has no callable "then" property`).
			Build()
	}

	state := &completionState[T]{}

	// Both callbacks close over a shared handle to the state cell, not over
	// the Awaitable: the engine may keep them alive longer than the host
	// keeps the awaitable.
	onSuccess := c.NativeFunc("onSuccess", func(call goja.FunctionCall) goja.Value {
		val, err := engine.ToNative[T](vm, call.Argument(0))
		if err != nil {
			state.resolve(outcome[T]{err: err})
		} else {
			state.resolve(outcome[T]{value: val})
		}
		return goja.Undefined()
	})
	onError := c.NativeFunc("onError", func(call goja.FunctionCall) goja.Value {
		state.resolve(outcome[T]{err: errors.Script(call.Argument(0).Export(), "promise rejected")})
		return goja.Undefined()
	})

	if _, err := then(obj, onSuccess, onError); err != nil {
		return nil, errors.CallFailed("then", err)
	}

	return &Awaitable[T]{state: state}, nil
}

// Poll reports the awaited outcome once it is available. While pending it
// stores w, replacing any previously registered waker, and returns
// ready=false. The outcome is delivered exactly once; polling after delivery
// pends forever.
func (a *Awaitable[T]) Poll(w jsruntime.Waker) (val T, err error, ready bool) {
	o, ok := a.state.poll(w)
	return o.value, o.err, ok
}

// Await drives Poll with a channel-backed waker until the outcome arrives or
// ctx is cancelled. Cancellation abandons the wait; the shared state simply
// outlives it and any later engine-side resolution lands in the cell
// unobserved.
func (a *Awaitable[T]) Await(ctx context.Context) (T, error) {
	w := make(wakeChan, 1)
	for {
		if val, err, ready := a.Poll(w); ready {
			return val, err
		}
		select {
		case <-w:
		case <-ctx.Done():
			var zero T
			return zero, errors.Interrupted("awaiting promise", ctx.Err())
		}
	}
}

type wakeChan chan struct{}

func (w wakeChan) Wake() {
	select {
	case w <- struct{}{}:
	default:
	}
}
