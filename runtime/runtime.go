package runtime

import (
	"context"
	stderrors "errors"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
	"go.uber.org/zap"

	jsruntime "github.com/wippyai/js-runtime"
	"github.com/wippyai/js-runtime/bridge"
	"github.com/wippyai/js-runtime/engine"
	"github.com/wippyai/js-runtime/errors"
	"github.com/wippyai/js-runtime/executor"
)

// Runtime bundles an engine, a host executor and the job-drain driver into
// the high-level evaluation API.
type Runtime struct {
	engine   *engine.Engine
	exec     *executor.Executor
	registry *require.Registry
	strategy bridge.Strategy
	baseCtx  context.Context
	cancel   context.CancelFunc
	runDone  chan struct{}
}

// Option configures a Runtime during construction.
type Option func(*Runtime)

// WithStrategy selects the promise resolution strategy. The default is
// bridge.Immediate.
func WithStrategy(s bridge.Strategy) Option {
	return func(r *Runtime) { r.strategy = s }
}

// WithLogger routes engine and bridge diagnostics to l.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) {
		engine.SetLogger(l)
		bridge.SetLogger(l)
	}
}

// New creates a runtime, starts the executor loop and the job-drain driver,
// and enables the require/console modules for scripts.
func New(ctx context.Context, opts ...Option) (*Runtime, error) {
	r := &Runtime{
		engine:   engine.New(),
		exec:     executor.New(),
		registry: require.NewRegistry(),
		strategy: bridge.Immediate,
		runDone:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	c, err := r.engine.Enter(ctx)
	if err != nil {
		return nil, err
	}
	r.registry.Enable(c.Runtime())
	console.Enable(c.Runtime())
	c.Exit()

	runCtx, cancel := context.WithCancel(context.Background())
	r.baseCtx, r.cancel = runCtx, cancel

	go func() {
		r.exec.Run(runCtx)
		close(r.runDone)
	}()
	r.pumpJobs(runCtx)

	return r, nil
}

// pumpJobs spawns the external job-drain driver: an executor task that
// enters the engine, drains the job queue and re-suspends until the engine
// reports new jobs. Engine promises never progress without it.
func (r *Runtime) pumpJobs(ctx context.Context) {
	eng := r.engine
	r.exec.Spawn(executor.TaskFunc(func(w jsruntime.Waker) bool {
		if ctx.Err() != nil {
			return true
		}
		c, err := eng.Enter(ctx)
		if err != nil {
			return true
		}
		c.DrainJobs()
		c.Exit()
		eng.SetJobWaker(w)
		return false
	}))
}

// Close stops the executor and tears the engine down. Spawned tasks that
// have not reached their settlement step leave their promises forever
// pending; this is the documented cancellation behavior.
func (r *Runtime) Close(ctx context.Context) error {
	r.cancel()
	r.exec.Shutdown()
	err := r.engine.Close(ctx)
	select {
	case <-r.runDone:
	case <-ctx.Done():
		return errors.Interrupted("waiting for executor shutdown", ctx.Err())
	}
	return err
}

// Engine returns the underlying engine for direct access.
func (r *Runtime) Engine() *engine.Engine {
	return r.engine
}

// Executor returns the host task executor.
func (r *Runtime) Executor() *executor.Executor {
	return r.exec
}

// Eval runs a script and returns its completion value. Script exceptions
// come back as KindScriptError with the thrown value attached.
func (r *Runtime) Eval(ctx context.Context, src string) (goja.Value, error) {
	c, err := r.engine.Enter(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Exit()
	return runScript(c, src)
}

// EvalAwait evaluates a script expression expected to produce a promise and
// awaits its result as a T. The engine lock is released before awaiting.
func EvalAwait[T any](ctx context.Context, r *Runtime, src string) (T, error) {
	var zero T
	c, err := r.engine.Enter(ctx)
	if err != nil {
		return zero, err
	}
	v, err := runScript(c, src)
	if err != nil {
		c.Exit()
		return zero, err
	}
	aw, err := bridge.FromPromise[T](c, v)
	c.Exit()
	if err != nil {
		return zero, err
	}
	return aw.Await(ctx)
}

// Await resolves an evaluation result to a plain Go value: promises are
// awaited through the bridge, anything else is exported as-is.
func (r *Runtime) Await(ctx context.Context, v goja.Value) (any, error) {
	c, err := r.engine.Enter(ctx)
	if err != nil {
		return nil, err
	}
	aw, serr := bridge.FromPromise[any](c, v)
	var plain any
	if serr != nil && v != nil {
		plain = v.Export()
	}
	c.Exit()

	if serr != nil {
		var e *errors.Error
		if stderrors.As(serr, &e) && e.Kind == errors.KindTypeMismatch {
			return plain, nil
		}
		return nil, serr
	}
	return aw.Await(ctx)
}

func runScript(c *engine.Ctx, src string) (goja.Value, error) {
	v, err := c.Runtime().RunString(src)
	if err != nil {
		var exc *goja.Exception
		if stderrors.As(err, &exc) {
			var thrown any
			if ev := exc.Value(); ev != nil {
				thrown = ev.Export()
			}
			return nil, errors.Script(thrown, "uncaught exception")
		}
		return nil, errors.Wrap(errors.PhaseEval, errors.KindInvalidInput, err, "run script")
	}
	return v, nil
}
