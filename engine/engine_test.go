package engine

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/dop251/goja"

	"github.com/wippyai/js-runtime/errors"
)

func TestEngine_EnterExit(t *testing.T) {
	eng := New()
	ctx := context.Background()

	c, err := eng.Enter(ctx)
	if err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	v, err := c.Runtime().RunString("1 + 2")
	if err != nil {
		t.Fatalf("RunString failed: %v", err)
	}
	if got := v.ToInteger(); got != 3 {
		t.Errorf("result = %d, want 3", got)
	}
	c.Exit()

	// Lock must be free again.
	c2, err := eng.Enter(ctx)
	if err != nil {
		t.Fatalf("second Enter failed: %v", err)
	}
	c2.Exit()
}

func TestEngine_EnterAfterClose(t *testing.T) {
	eng := New()
	ctx := context.Background()

	if err := eng.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !eng.Closed() {
		t.Fatalf("Closed() = false after Close")
	}

	_, err := eng.Enter(ctx)
	if err == nil {
		t.Fatalf("Enter succeeded on closed engine")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindUnavailable}) {
		t.Errorf("err = %v, want unavailable", err)
	}
}

func TestEngine_EnterInterrupted(t *testing.T) {
	eng := New()
	c, err := eng.Enter(context.Background())
	if err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	defer c.Exit()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = eng.Enter(ctx)
	if err == nil {
		t.Fatalf("Enter succeeded while lock held")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindInterrupted}) {
		t.Errorf("err = %v, want interrupted", err)
	}
}

func TestEngine_CloseWaitsForHolder(t *testing.T) {
	eng := New()
	c, err := eng.Enter(context.Background())
	if err != nil {
		t.Fatalf("Enter failed: %v", err)
	}

	closed := make(chan error, 1)
	go func() {
		closed <- eng.Close(context.Background())
	}()

	select {
	case <-closed:
		t.Fatalf("Close returned while lock was held")
	case <-time.After(20 * time.Millisecond):
	}

	c.Exit()
	select {
	case err := <-closed:
		if err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Close did not complete after Exit")
	}
}

func TestCtx_NewPromiseTriple(t *testing.T) {
	eng := New()
	c, err := eng.Enter(context.Background())
	if err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	defer c.Exit()

	promise, resolveFn, _ := c.NewPromiseTriple()

	p, ok := promise.Export().(*goja.Promise)
	if !ok {
		t.Fatalf("promise object does not export *goja.Promise, got %T", promise.Export())
	}
	if p.State() != goja.PromiseStatePending {
		t.Fatalf("new promise state = %v, want pending", p.State())
	}

	var got int64 = -1
	then, ok := goja.AssertFunction(promise.Get("then"))
	if !ok {
		t.Fatalf("promise has no callable then")
	}
	onFulfilled := c.NativeFunc("", func(call goja.FunctionCall) goja.Value {
		got = call.Argument(0).ToInteger()
		return goja.Undefined()
	})
	if _, err := then(promise, onFulfilled); err != nil {
		t.Fatalf("then failed: %v", err)
	}

	resolve, ok := goja.AssertFunction(resolveFn)
	if !ok {
		t.Fatalf("resolveFn is not callable")
	}
	if _, err := resolve(goja.Undefined(), c.ToValue(5)); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if p.State() != goja.PromiseStateFulfilled {
		t.Errorf("promise state = %v, want fulfilled", p.State())
	}
	if got != 5 {
		t.Errorf("then callback received %d, want 5", got)
	}
}

func TestCtx_NewPromiseTripleReject(t *testing.T) {
	eng := New()
	c, err := eng.Enter(context.Background())
	if err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	defer c.Exit()

	promise, _, rejectFn := c.NewPromiseTriple()
	p := promise.Export().(*goja.Promise)

	reject, _ := goja.AssertFunction(rejectFn)
	if _, err := reject(goja.Undefined(), c.ToValue("boom")); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	if p.State() != goja.PromiseStateRejected {
		t.Errorf("promise state = %v, want rejected", p.State())
	}
	if reason := p.Result().Export(); reason != "boom" {
		t.Errorf("rejection reason = %v, want boom", reason)
	}
}

func TestToNative(t *testing.T) {
	eng := New()
	c, err := eng.Enter(context.Background())
	if err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	defer c.Exit()
	vm := c.Runtime()

	n, err := ToNative[int](vm, c.ToValue(42))
	if err != nil {
		t.Fatalf("ToNative[int] failed: %v", err)
	}
	if n != 42 {
		t.Errorf("ToNative[int] = %d, want 42", n)
	}

	s, err := ToNative[string](vm, c.ToValue("hello"))
	if err != nil || s != "hello" {
		t.Errorf("ToNative[string] = (%q, %v), want (hello, nil)", s, err)
	}

	// A number is not callable, so converting to a func type must fail.
	_, err = ToNative[func()](vm, c.ToValue(42))
	if err == nil {
		t.Fatalf("ToNative[func()] succeeded on a number")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseConvert, Kind: errors.KindTypeMismatch}) {
		t.Errorf("err = %v, want type_mismatch", err)
	}

	// nil value is treated as undefined.
	if _, err := ToNative[func()](vm, nil); err == nil {
		t.Errorf("ToNative[func()] succeeded on nil value")
	}
}

func TestJSTypeName(t *testing.T) {
	eng := New()
	c, err := eng.Enter(context.Background())
	if err != nil {
		t.Fatalf("Enter failed: %v", err)
	}
	defer c.Exit()

	tests := []struct {
		name string
		v    goja.Value
		want string
	}{
		{"nil", nil, "undefined"},
		{"undefined", goja.Undefined(), "undefined"},
		{"null", goja.Null(), "null"},
		{"number", c.ToValue(1), "int64"},
		{"string", c.ToValue("x"), "string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JSTypeName(tt.v); got != tt.want {
				t.Errorf("JSTypeName = %q, want %q", got, tt.want)
			}
		})
	}
}
