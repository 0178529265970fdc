// Package jsruntime provides an embedded JavaScript runtime for Go with
// bidirectional promise bridging between script code and host tasks.
//
// The engine is goja, a pure Go ECMAScript implementation. On top of it this
// library adds the two adapters that make async interop work: host code can
// await a script promise as an ordinary poll/wake value, and a host
// computation can be handed to script code as a native promise that settles
// through the engine's own job queue.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	jsruntime/       Root package with the poll/wake Waker contract
//	├── runtime/     High-level API: script evaluation and host registration
//	├── engine/      goja embedding: exclusivity lock, value conversion,
//	│                promise triples, persistent handles, job queue
//	├── bridge/      Promise <-> future adapters and resolution strategies
//	├── executor/    Cooperative poll/wake task executor
//	└── errors/      Structured error types for debugging
//
// # Quick Start
//
// Evaluate script and await a promise result:
//
//	rt, err := runtime.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	rt.RegisterFunc(ctx, "", "mul2", func(ctx context.Context, a, b int) (int, error) {
//	    return a * b, nil
//	})
//
//	n, err := runtime.EvalAwait[int](ctx, rt, "mul2(2, 3)")
//	fmt.Println(n) // 6
//
// Functions whose first parameter is a context.Context are exposed to script
// as promise-returning: the call spawns the Go function on the host executor
// and returns a pending promise immediately.
//
// # Threading Model
//
// The goja runtime is strictly single-threaded. All engine access goes
// through a single process-wide exclusivity lock owned by engine.Engine;
// the lock is never held while a host computation is awaited. The host side
// is a cooperative poll/wake task system (package executor): suspension only
// happens at a poll that finds no result, and the paired Waker reschedules
// the poll when a result arrives.
//
// # Promise Resolution
//
// Two resolution strategies are available (package bridge): Immediate calls
// the resolve/reject function inline once the host computation completes,
// Deferred enqueues the call on the engine job queue so that resolutions
// surface to script code in job order, matching native microtask ordering.
package jsruntime
