package stackproxy

import (
	"reflect"
	"unsafe"

	"github.com/wippyai/rttr/errors"
)

// Value returns a writer that copies v into the slot. v must be assignable
// to the slot type.
func Value(v any) ParamWriter {
	return func(dst Slot) (HolderType, unsafe.Pointer) {
		rv := reflect.ValueOf(v)
		if !rv.IsValid() {
			dst.Value().SetZero()
			return HolderValue, nil
		}
		if !rv.Type().AssignableTo(dst.Type) {
			panic(errors.TypeMismatch(errors.PhaseInvoke, nil, rv.Type().String(), dst.Type.String()))
		}
		dst.Value().Set(rv)
		return HolderValue, nil
	}
}

// XValue returns a writer that hands p to the holder as a temporary. Value
// holders copy from it; reference holders bind to it.
func XValue(p unsafe.Pointer) ParamWriter {
	return func(Slot) (HolderType, unsafe.Pointer) {
		return HolderXValue, p
	}
}

// Args builds value-written parameters for vs.
func Args(vs ...any) []ParamBuilder {
	params := make([]ParamBuilder, len(vs))
	for i, v := range vs {
		params[i] = ParamBuilder{Write: Value(v)}
	}
	return params
}

// Capture returns a reader that copies the slot into dst.
func Capture[T any](dst *T) func(Slot) {
	want := reflect.TypeFor[T]()
	return func(src Slot) {
		if src.Type != want {
			panic(errors.TypeMismatch(errors.PhaseInvoke, nil, want.String(), src.Type.String()))
		}
		*dst = *(*T)(src.Ptr)
	}
}

// CaptureAny returns a reader that stores a copy of the slot value in dst.
func CaptureAny(dst *any) func(Slot) {
	return func(src Slot) {
		*dst = src.Value().Interface()
	}
}
