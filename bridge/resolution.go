package bridge

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/wippyai/js-runtime/engine"
)

// Strategy selects how a settled host computation drives the promise's
// resolve or reject function.
type Strategy int

const (
	// Immediate calls the function directly within the re-entered engine
	// context. Simple, but the reaction runs inline during foreign-call
	// completion rather than as a microtask.
	Immediate Strategy = iota

	// Deferred packages the function and argument as a job on the engine
	// job queue, invoked later by the external job-drain loop. Multiple
	// pending resolutions surface to script code in enqueue order.
	Deferred
)

func (s Strategy) String() string {
	switch s {
	case Immediate:
		return "immediate"
	case Deferred:
		return "deferred"
	}
	return "unknown"
}

// deliver is the single logical operation behind both strategies: eventually
// call fn(value) exactly once. An engine-level failure invoking fn has no
// caller left to receive it, so it is logged rather than propagated.
func deliver(c *engine.Ctx, s Strategy, fn, value goja.Value) {
	if s == Deferred {
		c.Engine().EnqueueJob(func(jc *engine.Ctx) {
			invoke(jc.Runtime(), fn, value)
		})
		return
	}
	invoke(c.Runtime(), fn, value)
}

func invoke(vm *goja.Runtime, fn, value goja.Value) {
	call, ok := goja.AssertFunction(fn)
	if !ok {
		Logger().Error("promise resolution target is not callable")
		return
	}
	if _, err := call(goja.Undefined(), value); err != nil {
		Logger().Error("promise resolution failed", zap.Error(err))
	}
}
