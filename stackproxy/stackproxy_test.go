package stackproxy

import (
	stderrors "errors"
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/rttr"
	"github.com/wippyai/rttr/errors"
)

type counter struct {
	n     int32
	scale float32
}

func (c *counter) Combine(a int32, b float32) float64 { return float64(a+c.n) + float64(b*c.scale) }

func (c counter) Peek() int32 { return c.n }

func (c *counter) Absorb(o rttr.RValueRef[counter]) {
	c.n += o.Take().n
}

func (c *counter) Store(dst rttr.Ref[int32]) { *dst.Get() = c.n }

func newCounter(n int32) counter { return counter{n: n, scale: 1} }

func add(a int32, b float32) float64 { return float64(a) + float64(b) }

type labelled struct {
	rttr.Const[int32]
	Extra int32
}

func sumLabelled(l labelled) int32 { return l.Get() + l.Extra }

func TestFuncRoundTrip(t *testing.T) {
	inv, shape, err := NewFunc(add, "add")
	require.NoError(t, err)
	require.Len(t, shape.Params, 2)

	var got float64
	err = inv(nil, StackProxy{Params: Args(int32(3), float32(2.5)), Ret: Capture(&got)})
	require.NoError(t, err)
	assert.Equal(t, add(3, 2.5), got)
	assert.Equal(t, 5.5, got)
}

func TestMethodRoundTrip(t *testing.T) {
	inv, shape, valueRecv, err := NewMethod((*counter).Combine, "counter", "Combine")
	require.NoError(t, err)
	assert.False(t, valueRecv)
	assert.Len(t, shape.Params, 2)

	c := counter{n: 1, scale: 2}
	var got float64
	err = inv(unsafe.Pointer(&c), StackProxy{Params: Args(int32(3), float32(2.5)), Ret: Capture(&got)})
	require.NoError(t, err)
	assert.Equal(t, c.Combine(3, 2.5), got)
}

func TestValueReceiver(t *testing.T) {
	inv, _, valueRecv, err := NewMethod(counter.Peek)
	require.NoError(t, err)
	assert.True(t, valueRecv)

	c := counter{n: 42}
	var got int32
	require.NoError(t, inv(unsafe.Pointer(&c), StackProxy{Ret: Capture(&got)}))
	assert.Equal(t, int32(42), got)

	assert.Error(t, inv(nil, StackProxy{}))
}

func TestRefBindsToXValue(t *testing.T) {
	inv, _, _, err := NewMethod((*counter).Store)
	require.NoError(t, err)

	c := counter{n: 9}
	var out int32
	var seen HolderType = HolderValue
	err = inv(unsafe.Pointer(&c), StackProxy{Params: []ParamBuilder{{
		Write: XValue(unsafe.Pointer(&out)),
		Read:  func(s Slot) { seen = s.Holder },
	}}})
	require.NoError(t, err)
	assert.Equal(t, int32(9), out)
	assert.Equal(t, HolderXValue, seen)
}

func TestRefOutParamThroughStaging(t *testing.T) {
	inv, _, _, err := NewMethod((*counter).Store)
	require.NoError(t, err)

	c := counter{n: 5}
	var out int32
	err = inv(unsafe.Pointer(&c), StackProxy{Params: []ParamBuilder{{
		Write: Value(int32(0)),
		Read:  Capture(&out),
	}}})
	require.NoError(t, err)
	assert.Equal(t, int32(5), out)
}

func TestRValueRefMovesFromXValue(t *testing.T) {
	inv, _, _, err := NewMethod((*counter).Absorb)
	require.NoError(t, err)

	dst := counter{n: 1}
	src := counter{n: 4, scale: 3}
	err = inv(unsafe.Pointer(&dst), StackProxy{Params: []ParamBuilder{{Write: XValue(unsafe.Pointer(&src))}}})
	require.NoError(t, err)
	assert.Equal(t, int32(5), dst.n)
	assert.Equal(t, counter{}, src, "source is moved from")
}

func TestValueHolderCopiesXValue(t *testing.T) {
	inv, _, err := NewFunc(func(c counter) int32 { c.n++; return c.n })
	require.NoError(t, err)

	src := counter{n: 7}
	var got int32
	err = inv(nil, StackProxy{Params: []ParamBuilder{{Write: XValue(unsafe.Pointer(&src))}}, Ret: Capture(&got)})
	require.NoError(t, err)
	assert.Equal(t, int32(8), got)
	assert.Equal(t, int32(7), src.n, "value parameter must not alias the xvalue")
}

func TestConstDelegates(t *testing.T) {
	inv, _, err := NewFunc(func(a rttr.Const[int32], b rttr.Ref[rttr.Const[float32]]) float64 {
		return float64(a.Get()) + float64(b.Get().Get())
	})
	require.NoError(t, err)

	var slotTypes []reflect.Type
	record := func(s Slot) { slotTypes = append(slotTypes, s.Type) }

	f := float32(0.5)
	var got float64
	err = inv(nil, StackProxy{
		Params: []ParamBuilder{
			{Write: Value(int32(2)), Read: record},
			{Write: XValue(unsafe.Pointer(&f)), Read: record},
		},
		Ret: Capture(&got),
	})
	require.NoError(t, err)
	assert.Equal(t, 2.5, got)
	assert.Equal(t, []reflect.Type{reflect.TypeFor[int32](), reflect.TypeFor[float32]()}, slotTypes)
}

func TestEmbeddedMarkerPassedByValue(t *testing.T) {
	inv, _, err := NewFunc(sumLabelled, "sumLabelled")
	require.NoError(t, err)

	var got int32
	arg := labelled{Const: rttr.MakeConst(int32(40)), Extra: 2}
	err = inv(nil, StackProxy{Params: Args(arg), Ret: Capture(&got)})
	require.NoError(t, err)
	assert.Equal(t, int32(42), got)
}

func TestCtor(t *testing.T) {
	typ := reflect.TypeFor[counter]()

	inv, shape, err := NewCtor(typ, newCounter)
	require.NoError(t, err)
	assert.Nil(t, shape.Ret)

	var c counter
	require.NoError(t, inv(unsafe.Pointer(&c), StackProxy{Params: Args(int32(3))}))
	assert.Equal(t, counter{n: 3, scale: 1}, c)

	inv, _, err = NewCtor(typ, func() *counter { return &counter{n: 11} })
	require.NoError(t, err)
	require.NoError(t, inv(unsafe.Pointer(&c), StackProxy{}))
	assert.Equal(t, int32(11), c.n)

	def, _, err := NewCtor(typ, nil)
	require.NoError(t, err)
	require.NoError(t, def(unsafe.Pointer(&c), StackProxy{}))
	assert.Equal(t, counter{}, c)
	assert.Error(t, def(unsafe.Pointer(&c), StackProxy{Params: Args(1)}))

	_, _, err = NewCtor(typ, func() int { return 0 })
	assert.Error(t, err)
}

func TestInvokeFailures(t *testing.T) {
	sentinel := stderrors.New("boom")
	inv, shape, err := NewFunc(func(x int) (int, error) {
		if x < 0 {
			return 0, sentinel
		}
		if x == 0 {
			panic("zero")
		}
		return x, nil
	}, "check")
	require.NoError(t, err)
	assert.True(t, shape.ReturnsError)

	kindOf := func(err error) errors.Kind {
		var e *errors.Error
		require.True(t, stderrors.As(err, &e), "%v", err)
		return e.Kind
	}

	t.Run("returned error", func(t *testing.T) {
		called := false
		err := inv(nil, StackProxy{Params: Args(-1), Ret: func(Slot) { called = true }})
		assert.ErrorIs(t, err, sentinel)
		assert.False(t, called)
	})
	t.Run("panic", func(t *testing.T) {
		err := inv(nil, StackProxy{Params: Args(0)})
		assert.Equal(t, errors.KindPanic, kindOf(err))
	})
	t.Run("arity", func(t *testing.T) {
		err := inv(nil, StackProxy{Params: Args(1, 2)})
		assert.Equal(t, errors.KindInvalidInput, kindOf(err))
	})
	t.Run("missing writer", func(t *testing.T) {
		err := inv(nil, StackProxy{Params: make([]ParamBuilder, 1)})
		assert.Equal(t, errors.KindInvalidInput, kindOf(err))
	})
	t.Run("nil xvalue", func(t *testing.T) {
		err := inv(nil, StackProxy{Params: []ParamBuilder{{Write: XValue(nil)}}})
		assert.Equal(t, errors.KindNilPointer, kindOf(err))
	})
	t.Run("wrong argument type", func(t *testing.T) {
		err := inv(nil, StackProxy{Params: Args("nope")})
		assert.Equal(t, errors.KindPanic, kindOf(err))
		var e *errors.Error
		require.True(t, stderrors.As(err, &e))
		assert.Equal(t, errors.KindTypeMismatch, kindOf(e.Cause))
	})
	t.Run("panicking reader", func(t *testing.T) {
		err := inv(nil, StackProxy{Params: Args(1), Ret: func(Slot) { panic("reader") }})
		assert.Equal(t, errors.KindPanic, kindOf(err))
	})
}

func TestVariadic(t *testing.T) {
	inv, shape, err := NewFunc(func(xs ...int32) int32 {
		var s int32
		for _, x := range xs {
			s += x
		}
		return s
	})
	require.NoError(t, err)
	assert.True(t, shape.Variadic)

	var got int32
	require.NoError(t, inv(nil, StackProxy{Params: Args([]int32{1, 2, 3}), Ret: Capture(&got)}))
	assert.Equal(t, int32(6), got)
}

func TestNotAFunc(t *testing.T) {
	_, _, err := NewFunc(42)
	assert.Error(t, err)
	_, _, _, err = NewMethod(nil)
	assert.Error(t, err)
}
