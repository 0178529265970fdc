package engine

import (
	"fmt"
	"reflect"

	"github.com/dop251/goja"

	"github.com/wippyai/js-runtime/errors"
)

// ToNative converts an engine value to the Go type T. Conversion failures
// are reported as KindTypeMismatch with both type names attached.
func ToNative[T any](vm *goja.Runtime, v goja.Value) (T, error) {
	var out T
	if v == nil {
		v = goja.Undefined()
	}
	if err := vm.ExportTo(v, &out); err != nil {
		goType := reflect.TypeOf(&out).Elem().String()
		return out, errors.TypeConversion(errors.PhaseConvert, goType, JSTypeName(v), err)
	}
	return out, nil
}

// ToScript converts a Go value to an engine value. goja panics on values it
// cannot represent; the panic is captured and reported as a conversion error
// so callers can reroute it instead of crashing.
func ToScript(vm *goja.Runtime, v any) (out goja.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
				GoType(fmt.Sprintf("%T", v)).
				Detail("%v", r).
				Build()
		}
	}()
	return vm.ToValue(v), nil
}

// ToValue is the unguarded conversion for values known to be representable.
func (c *Ctx) ToValue(v any) goja.Value {
	return c.vm.ToValue(v)
}

// JSTypeName returns a short description of an engine value's type for error
// messages.
func JSTypeName(v goja.Value) string {
	switch {
	case v == nil, goja.IsUndefined(v):
		return "undefined"
	case goja.IsNull(v):
		return "null"
	}
	if t := v.ExportType(); t != nil {
		return t.String()
	}
	return "unknown"
}
