// Package runtime provides the high-level API for the embedded JavaScript
// runtime.
//
// # Quick Start
//
//	ctx := context.Background()
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
// # Host Functions
//
// Register Go functions as script-callable host implementations:
//
//	// Register a single function on globalThis
//	rt.RegisterFunc(ctx, "", "now", func() int64 { return time.Now().Unix() })
//
//	// Or implement the Host interface for a full namespace
//	rt.RegisterHost(ctx, myHost)
//
// A function whose first parameter is a context.Context is exposed as
// async: the script call returns a pending promise immediately and the Go
// function runs on the host executor. Any other function is called inline
// during script execution.
//
// # Job Draining
//
// New starts the job-drain driver, an executor task that runs queued engine
// jobs whenever they appear. Under the Deferred resolution strategy this
// driver is what makes promise settlements script-visible; without it (or
// an explicit Ctx.DrainJobs) deferred resolutions never run.
//
// # Thread Safety
//
// Runtime methods are safe for concurrent use; every engine access goes
// through the engine exclusivity lock. Values of type goja.Value returned
// by Eval must only be touched under an engine entry.
package runtime
