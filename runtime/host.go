package runtime

import (
	"context"
	"reflect"
	"unicode"

	"github.com/dop251/goja"

	"github.com/wippyai/js-runtime/bridge"
	"github.com/wippyai/js-runtime/engine"
	"github.com/wippyai/js-runtime/errors"
)

// Host is the interface for struct-based host modules.
// All exported methods (except Namespace) are registered as script-callable
// functions under the namespace object.
type Host interface {
	// Namespace returns the global object name the host's functions are
	// published under. An empty namespace publishes directly on globalThis.
	Namespace() string
}

var (
	errType = reflect.TypeOf((*error)(nil)).Elem()
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
)

// RegisterHost registers all exported methods of h as script-callable
// functions. Method names are converted from PascalCase to camelCase
// (GetValue -> getValue). Methods whose first parameter is a context.Context
// are async: script sees a promise-returning function backed by the bridge.
func (r *Runtime) RegisterHost(ctx context.Context, h Host) error {
	ns := h.Namespace()
	rv := reflect.ValueOf(h)
	rt := rv.Type()

	for i := 0; i < rt.NumMethod(); i++ {
		method := rt.Method(i)
		if !method.IsExported() || method.Name == "Namespace" {
			continue
		}
		name := toCamelCase(method.Name)
		if err := r.RegisterFunc(ctx, ns, name, rv.Method(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// RegisterFunc registers a single Go function. With an empty namespace the
// function lands on globalThis, otherwise on a (created if needed) global
// namespace object. fn must not be variadic; its results must be none, a
// single value, an error, or (value, error).
func (r *Runtime) RegisterFunc(ctx context.Context, namespace, name string, fn any) error {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return errors.Registration(namespace, name,
			errors.InvalidInput(errors.PhaseHost, "handler is not a function"))
	}
	ft := fv.Type()
	if err := validateSignature(ft); err != nil {
		return errors.Registration(namespace, name, err)
	}

	c, err := r.engine.Enter(ctx)
	if err != nil {
		return err
	}
	defer c.Exit()

	wrapper := c.NativeFunc(name, r.wrapFunc(fv, ft))
	if err := bindName(c.Runtime(), namespace, name, wrapper); err != nil {
		return errors.Registration(namespace, name, err)
	}
	return nil
}

func validateSignature(ft reflect.Type) error {
	if ft.IsVariadic() {
		return errors.InvalidInput(errors.PhaseHost, "variadic handlers are not supported")
	}
	switch ft.NumOut() {
	case 0, 1:
	case 2:
		if ft.Out(1) != errType {
			return errors.InvalidInput(errors.PhaseHost, "second result must be error")
		}
		if ft.Out(0) == errType {
			return errors.InvalidInput(errors.PhaseHost, "first result must not be error")
		}
	default:
		return errors.InvalidInput(errors.PhaseHost, "handlers may return at most two values")
	}
	return nil
}

// wrapFunc builds the script-side wrapper. It runs inside an engine call,
// with the exclusivity lock held by the outer entry. Async handlers (first
// parameter context.Context) convert their arguments up front and hand the
// actual invocation to the bridge as a host computation.
func (r *Runtime) wrapFunc(fv reflect.Value, ft reflect.Type) func(goja.FunctionCall) goja.Value {
	isAsync := ft.NumIn() > 0 && ft.In(0) == ctxType

	return func(call goja.FunctionCall) goja.Value {
		c := r.engine.Reentered()
		vm := c.Runtime()

		skip := 0
		if isAsync {
			skip = 1
		}
		args, err := convertArgs(vm, ft, skip, call.Arguments)
		if err != nil {
			panic(vm.NewGoError(err))
		}

		if isAsync {
			task := func(tctx context.Context) (any, error) {
				full := append([]reflect.Value{reflect.ValueOf(tctx)}, args...)
				return splitResults(ft, fv.Call(full))
			}
			return bridge.NewPromise(r.baseCtx, c, r.exec, r.strategy, task)
		}

		out, err := splitResults(ft, fv.Call(args))
		if err != nil {
			panic(vm.NewGoError(err))
		}
		if ft.NumOut() == 0 || (ft.NumOut() == 1 && ft.Out(0) == errType) {
			return goja.Undefined()
		}
		return vm.ToValue(out)
	}
}

func convertArgs(vm *goja.Runtime, ft reflect.Type, skip int, jsArgs []goja.Value) ([]reflect.Value, error) {
	n := ft.NumIn() - skip
	args := make([]reflect.Value, 0, n)
	for i := 0; i < n; i++ {
		pt := ft.In(i + skip)
		src := goja.Undefined()
		if i < len(jsArgs) {
			src = jsArgs[i]
		}
		target := reflect.New(pt)
		if err := vm.ExportTo(src, target.Interface()); err != nil {
			return nil, errors.TypeConversion(errors.PhaseConvert, pt.String(), engine.JSTypeName(src), err)
		}
		args = append(args, target.Elem())
	}
	return args, nil
}

func splitResults(ft reflect.Type, out []reflect.Value) (any, error) {
	switch ft.NumOut() {
	case 0:
		return nil, nil
	case 1:
		if ft.Out(0) == errType {
			if !out[0].IsNil() {
				return nil, out[0].Interface().(error)
			}
			return nil, nil
		}
		return out[0].Interface(), nil
	default:
		var err error
		if !out[1].IsNil() {
			err = out[1].Interface().(error)
		}
		return out[0].Interface(), err
	}
}

func bindName(vm *goja.Runtime, namespace, name string, fn goja.Value) error {
	global := vm.GlobalObject()
	if namespace == "" {
		return global.Set(name, fn)
	}
	nsVal := global.Get(namespace)
	var nsObj *goja.Object
	if nsVal == nil || goja.IsUndefined(nsVal) || goja.IsNull(nsVal) {
		nsObj = vm.NewObject()
		if err := global.Set(namespace, nsObj); err != nil {
			return err
		}
	} else {
		nsObj = nsVal.ToObject(vm)
	}
	return nsObj.Set(name, fn)
}

// toCamelCase lowers the leading uppercase run of a method name, leaving the
// last capital of an acronym in place when a lowercase letter follows
// (HTTPGet -> httpGet).
func toCamelCase(s string) string {
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if !unicode.IsUpper(runes[i]) {
			break
		}
		if i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
			break
		}
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
