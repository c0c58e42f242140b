package stackproxy

import (
	"reflect"
	"unsafe"
)

// HolderType reports how a parameter was supplied.
type HolderType uint8

const (
	// HolderValue means the writer filled the staging slot.
	HolderValue HolderType = iota
	// HolderXValue means the writer built a temporary elsewhere and returned
	// its address.
	HolderXValue
)

func (h HolderType) String() string {
	if h == HolderXValue {
		return "xvalue"
	}
	return "value"
}

// Slot is the storage a writer fills or a reader inspects. Type is the
// storage type with Const wrappers removed; Const[T] shares T's layout.
type Slot struct {
	Ptr    unsafe.Pointer
	Type   reflect.Type
	Size   uintptr
	Align  uintptr
	Holder HolderType
}

// Value returns the slot contents as an addressable reflect.Value.
func (s Slot) Value() reflect.Value {
	return reflect.NewAt(s.Type, s.Ptr).Elem()
}

func newSlot(t reflect.Type, p unsafe.Pointer, h HolderType) Slot {
	return Slot{Ptr: p, Type: t, Size: t.Size(), Align: uintptr(t.Align()), Holder: h}
}

// ParamWriter supplies one argument. Returning HolderXValue with a nil
// pointer fails the call.
type ParamWriter func(dst Slot) (HolderType, unsafe.Pointer)

// ParamReader observes a parameter after the call.
type ParamReader func(src Slot)

// RetReader receives the return value.
type RetReader func(src Slot)

// ParamBuilder pairs a writer with an optional reader.
type ParamBuilder struct {
	Write ParamWriter
	Read  ParamReader
}

// StackProxy is the caller's side of one invocation.
type StackProxy struct {
	Ret    RetReader
	Params []ParamBuilder
}

// Invoker calls a reflected callable. obj is the receiver (methods) or the
// storage to construct into (ctors); functions ignore it.
type Invoker func(obj unsafe.Pointer, proxy StackProxy) error
