// Package engine wraps the goja JavaScript runtime with the primitives the
// rest of the library builds on: the process-wide exclusivity lock, value
// conversion in both directions, host-callable function wrapping, promise
// triple creation, durable cross-call handles, and the job queue.
//
// # Exclusivity
//
// goja runtimes are not safe for concurrent use. Every engine access is
// bracketed by Enter/Exit on the owning Engine:
//
//	c, err := eng.Enter(ctx)
//	if err != nil {
//	    return err
//	}
//	defer c.Exit()
//	v, err := c.Runtime().RunString("1 + 2")
//
// The lock must never be held across a host-side await; release it before
// suspending and re-acquire it for the next engine call.
//
// # Persistent Handles
//
// Values obtained during one engine entry are pinned with Ctx.Persist and
// restored under a later entry with Persistent.Restore; restoring fails once
// the engine has been closed. This is how the bridge keeps resolve/reject
// functions alive between creating a promise and settling it.
//
// # Job Queue
//
// EnqueueJob appends deferred work; Ctx.DrainJobs runs it FIFO under the
// held lock. Draining is driven externally, normally by the job-drain task
// that package runtime spawns; nothing in this package drains on its own.
package engine
