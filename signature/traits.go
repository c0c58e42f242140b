package signature

import (
	"fmt"
	"math"
	"reflect"

	"github.com/wippyai/rttr"
	"github.com/wippyai/rttr/errors"
	"github.com/wippyai/rttr/typeid"
)

var errorType = reflect.TypeFor[error]()

// Only unnamed pointer, array and slice types are decomposed into modifiers.
// Named types, including named pointers and slices, are opaque and encode as
// a single TypeId.
func modifierOf(t reflect.Type) (Signal, reflect.Type) {
	if kind, elem, ok := rttr.ModifierOf(t); ok {
		switch kind {
		case rttr.ModifierConst:
			return SignalConst, elem
		case rttr.ModifierRef:
			return SignalRef, elem
		case rttr.ModifierRValueRef:
			return SignalRValueRef, elem
		}
	}
	if t.Name() != "" {
		return SignalNone, nil
	}
	switch t.Kind() {
	case reflect.Pointer:
		return SignalPointer, t.Elem()
	case reflect.Array, reflect.Slice:
		return SignalArrayDim, t.Elem()
	default:
		return SignalNone, nil
	}
}

// SizeOf returns the encoded size of t's signature. A nil type is void.
func SizeOf(t reflect.Type) int {
	size := 0
	for t != nil {
		s, elem := modifierOf(t)
		if s == SignalNone {
			break
		}
		size += s.Size()
		t = elem
	}
	return size + TypeIDSize
}

func writeType(c *Cursor, t reflect.Type) {
	for t != nil {
		s, elem := modifierOf(t)
		switch s {
		case SignalNone:
			c.WriteTypeID(typeid.Of(t))
			return
		case SignalArrayDim:
			n := 0
			if t.Kind() == reflect.Array {
				n = t.Len()
			}
			if uint64(n) > math.MaxUint32 {
				panic(errors.Overflow(errors.PhaseEncode, nil, n, "uint32"))
			}
			c.WriteArrayDim(uint32(n))
		default:
			c.WriteSignal(s)
		}
		t = elem
	}
	c.WriteTypeID(typeid.Void)
}

// Of encodes the signature of t. A nil type encodes as void.
func Of(t reflect.Type) TypeSignature {
	buf := make([]byte, SizeOf(t))
	c := NewCursor(buf)
	writeType(c, t)
	mustFill(c, buf, t)
	return TypeSignature{data: buf}
}

// TypeOf returns the cached signature of T.
func TypeOf[T any]() TypeSignature {
	return Typed[T]{}.Signature()
}

// FuncOf encodes FunctionSignature, ret, params... . A nil ret is void.
func FuncOf(ret reflect.Type, params ...reflect.Type) TypeSignature {
	size := 1 + SizeOf(ret)
	for _, p := range params {
		size += SizeOf(p)
	}
	buf := make([]byte, size)
	c := NewCursor(buf)
	c.WriteSignal(SignalFunctionSignature)
	writeType(c, ret)
	for _, p := range params {
		writeType(c, p)
	}
	mustFill(c, buf, ret)
	return TypeSignature{data: buf}
}

func mustFill(c *Cursor, buf []byte, t reflect.Type) {
	if c.Pos() != len(buf) {
		panic(errors.New(errors.PhaseEncode, errors.KindInvalidData).
			GoType(fmt.Sprint(t)).
			Detail("signature wrote %d bytes, sized %d", c.Pos(), len(buf)).
			Build())
	}
}

// Shape is the callable view of a Go func type: parameters after the skipped
// receiver, the single value result (nil for none) and whether a trailing
// error result follows it.
type Shape struct {
	Params       []reflect.Type
	Ret          reflect.Type
	ReturnsError bool
	Variadic     bool
}

// ShapeOf inspects fn, dropping its first skip parameters (receivers). Funcs
// with more than one non-error result are rejected.
func ShapeOf(fn reflect.Type, skip int) (Shape, error) {
	if fn == nil || fn.Kind() != reflect.Func {
		return Shape{}, errors.InvalidInput(errors.PhaseRegister, fmt.Sprintf("%v is not a func", fn))
	}
	if fn.NumIn() < skip {
		return Shape{}, errors.InvalidInput(errors.PhaseRegister,
			fmt.Sprintf("%v has %d params, need at least %d", fn, fn.NumIn(), skip))
	}

	sh := Shape{Variadic: fn.IsVariadic()}
	for i := skip; i < fn.NumIn(); i++ {
		sh.Params = append(sh.Params, fn.In(i))
	}

	out := fn.NumOut()
	if out > 0 && fn.Out(out-1) == errorType {
		sh.ReturnsError = true
		out--
	}
	switch out {
	case 0:
	case 1:
		sh.Ret = fn.Out(0)
	default:
		return Shape{}, errors.New(errors.PhaseRegister, errors.KindUnsupported).
			GoType(fn.String()).
			Detail("multiple results").
			Build()
	}
	return sh, nil
}

// Signature encodes the shape as a function signature.
func (s Shape) Signature() TypeSignature {
	return FuncOf(s.Ret, s.Params...)
}
