package signature

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/rttr"
	"github.com/wippyai/rttr/typeid"
)

type handle *int

type vec2 struct{ X, Y float32 }

// tagged embeds a marker but is an ordinary record.
type tagged struct {
	rttr.Const[int32]
	Extra int32
}

func typeFor[T any]() reflect.Type { return reflect.TypeFor[T]() }

// decode splits a type signature into its signals and terminal id.
func decode(t *testing.T, v View) ([]Signal, []uint32, typeid.ID) {
	t.Helper()
	var mods []Signal
	var dims []uint32
	c := NewCursor(v)
	for c.Peek().IsModifier() {
		s := c.Peek()
		mods = append(mods, s)
		if s == SignalArrayDim {
			dims = append(dims, c.ReadArrayDim())
			continue
		}
		c.ReadSignal(s)
	}
	id := c.ReadTypeID()
	require.Equal(t, len(v), c.Pos(), "trailing bytes")
	return mods, dims, id
}

func TestSignatureShapes(t *testing.T) {
	i32 := typeid.For[int32]()
	tests := []struct {
		typ  reflect.Type
		mods []Signal
		dims []uint32
		id   typeid.ID
	}{
		{typeFor[int32](), nil, nil, i32},
		{typeFor[rttr.Const[int32]](), []Signal{SignalConst}, nil, i32},
		{typeFor[*int32](), []Signal{SignalPointer}, nil, i32},
		{typeFor[rttr.Ref[int32]](), []Signal{SignalRef}, nil, i32},
		{typeFor[rttr.RValueRef[int32]](), []Signal{SignalRValueRef}, nil, i32},
		{typeFor[[4]int32](), []Signal{SignalArrayDim}, []uint32{4}, i32},
		{typeFor[rttr.Const[[4]int32]](), []Signal{SignalConst, SignalArrayDim}, []uint32{4}, i32},
		{typeFor[rttr.Ref[rttr.Const[int32]]](), []Signal{SignalRef, SignalConst}, nil, i32},
		{typeFor[*rttr.Const[*int32]](), []Signal{SignalPointer, SignalConst, SignalPointer}, nil, i32},
		{typeFor[[2][3]int32](), []Signal{SignalArrayDim, SignalArrayDim}, []uint32{2, 3}, i32},
		{typeFor[[]int32](), []Signal{SignalArrayDim}, []uint32{0}, i32},
		{typeFor[handle](), nil, nil, typeid.For[handle]()},
		{typeFor[*vec2](), []Signal{SignalPointer}, nil, typeid.For[vec2]()},
		{typeFor[tagged](), nil, nil, typeid.For[tagged]()},
		{typeFor[*tagged](), []Signal{SignalPointer}, nil, typeid.For[tagged]()},
		{nil, nil, nil, typeid.Void},
	}

	for _, tt := range tests {
		name := "void"
		if tt.typ != nil {
			name = tt.typ.String()
		}
		t.Run(name, func(t *testing.T) {
			sig := Of(tt.typ)
			assert.Equal(t, SizeOf(tt.typ), sig.Len())

			mods, dims, id := decode(t, sig.View())
			assert.Equal(t, tt.mods, mods)
			assert.Equal(t, tt.dims, dims)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestEmbeddedMarkerIsNotAModifier(t *testing.T) {
	assert.False(t, TypeOf[tagged]().EqualFlags(TypeOf[rttr.Const[int32]](), CompareStrict))
	assert.False(t, TypeOf[tagged]().Equal(TypeOf[int32]()))
}

func TestTypedCache(t *testing.T) {
	a := TypeOf[rttr.Ref[vec2]]()
	b := Typed[rttr.Ref[vec2]]{}.Signature()
	assert.Equal(t, a.View(), b.View())
	assert.Equal(t, SizeOf(typeFor[rttr.Ref[vec2]]()), Typed[rttr.Ref[vec2]]{}.BufferSize())
}

func TestFuncOf(t *testing.T) {
	sig := FuncOf(typeFor[float64](), typeFor[int32](), typeFor[float32]())
	v := sig.View()
	require.True(t, v.IsFunction())
	assert.True(t, v.Return().Equal(TypeOf[float64]().View()))

	params := v.Params()
	require.Len(t, params, 2)
	assert.True(t, params[0].Equal(TypeOf[int32]().View()))
	assert.True(t, params[1].Equal(TypeOf[float32]().View()))

	void := FuncOf(nil).View()
	assert.True(t, void.Return().Equal(Of(nil).View()))
	assert.Empty(t, void.Params())
}

func TestShapeOf(t *testing.T) {
	tests := []struct {
		name      string
		fn        any
		skip      int
		params    int
		ret       reflect.Type
		returnErr bool
		wantErr   bool
	}{
		{"plain", func(int32, float32) float64 { return 0 }, 0, 2, typeFor[float64](), false, false},
		{"receiver", func(*vec2, float32) {}, 1, 1, nil, false, false},
		{"error only", func() error { return nil }, 0, 0, nil, true, false},
		{"value and error", func(string) (int, error) { return 0, nil }, 0, 1, typeFor[int](), true, false},
		{"two values", func() (int, int) { return 0, 0 }, 0, 0, nil, false, true},
		{"skip too many", func() {}, 1, 0, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh, err := ShapeOf(reflect.TypeOf(tt.fn), tt.skip)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, sh.Params, tt.params)
			assert.Equal(t, tt.ret, sh.Ret)
			assert.Equal(t, tt.returnErr, sh.ReturnsError)
		})
	}

	_, err := ShapeOf(typeFor[int](), 0)
	assert.Error(t, err)
}
