package builder

import (
	stderrors "errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/rttr"
	"github.com/wippyai/rttr/errors"
	"github.com/wippyai/rttr/export"
	"github.com/wippyai/rttr/signature"
	"github.com/wippyai/rttr/stackproxy"
	"github.com/wippyai/rttr/typeid"
)

type shape struct {
	Kind int32
}

type point struct {
	shape
	X, Y   float32
	hidden int
	closed *bool
}

func newPoint(x, y float32) point { return point{X: x, Y: y} }

func (p *point) Test() { p.X = -1 }

func (p *point) TestArgs(dx int32, dy float32) { p.X += float32(dx); p.Y += dy }

func (p point) Len2() float32 { return p.X*p.X + p.Y*p.Y }

func (p *point) Scale(f float32) (point, error) {
	if f == 0 {
		return point{}, stderrors.New("zero scale")
	}
	return point{X: p.X * f, Y: p.Y * f}, nil
}

func (p *point) Close() error {
	if p.closed != nil {
		*p.closed = true
	}
	return nil
}

var origin = point{}

type guarded struct {
	mu sync.Mutex
	n  int
}

type counted struct {
	hits atomic.Int64
}

type locks [2]sync.RWMutex

type tagged struct {
	Names []string
}

func TestCopyable(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want bool
	}{
		{reflect.TypeFor[point](), true},
		{reflect.TypeFor[guarded](), false},
		{reflect.TypeFor[counted](), false},
		{reflect.TypeFor[locks](), false},
		{reflect.TypeFor[*guarded](), true},
		{reflect.TypeFor[sync.Mutex](), false},
		{reflect.TypeFor[int](), true},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Copyable(tt.typ))
		})
	}
}

func TestBasicInfoGating(t *testing.T) {
	copyCtor := func(r *export.RecordData) *export.CtorData {
		return export.FindCtorOf[func(rttr.Ref[rttr.Const[guarded]])](r, signature.CompareStrict)
	}

	g, err := NewRecord[guarded]().BasicInfo().Build()
	require.NoError(t, err)
	assert.Nil(t, copyCtor(g), "lock holder must not export a copy constructor")
	assert.Nil(t, export.FindCtorOf[func(rttr.RValueRef[guarded])](g, signature.CompareStrict))
	assert.NotNil(t, export.FindCtorOf[func()](g, signature.CompareStrict))
	require.Len(t, g.ExternMethods, 1, "only == may remain")
	assert.Equal(t, "==", g.ExternMethods[0].Name)
	assert.NotNil(t, g.Dtor)

	tg, err := NewRecord[tagged]().BasicInfo().Build()
	require.NoError(t, err)
	assert.Len(t, tg.Ctors, 3)
	for _, m := range tg.ExternMethods {
		assert.NotEqual(t, "==", m.Name, "slices are not comparable")
	}
}

func TestBasicInfoOperations(t *testing.T) {
	r, err := NewRecord[point]().BasicInfo().Build()
	require.NoError(t, err)

	require.Len(t, r.Ctors, 3)
	cp := export.FindCtorOf[func(rttr.Ref[rttr.Const[point]])](r, signature.CompareStrict)
	require.NotNil(t, cp)

	src := point{X: 1, Y: 2}
	var dst point
	err = cp.Invoke(unsafe.Pointer(&dst), stackproxy.StackProxy{Params: []stackproxy.ParamBuilder{
		{Write: stackproxy.XValue(unsafe.Pointer(&src))},
	}})
	require.NoError(t, err)
	assert.Equal(t, src, dst)

	mv := export.FindCtorOf[func(rttr.RValueRef[point])](r, signature.CompareStrict)
	require.NotNil(t, mv)
	var moved point
	require.NoError(t, mv.Invoke(unsafe.Pointer(&moved), stackproxy.StackProxy{Params: []stackproxy.ParamBuilder{
		{Write: stackproxy.XValue(unsafe.Pointer(&src))},
	}}))
	assert.Equal(t, float32(2), moved.Y)
	assert.Equal(t, point{}, src)

	eq := r.FindExternMethod("==", signature.FuncOf(reflect.TypeFor[bool](),
		reflect.TypeFor[*point](), reflect.TypeFor[*point]()).View(), signature.CompareDefault)
	require.NotNil(t, eq)
	a, c := point{X: 3}, point{X: 3}
	var same bool
	require.NoError(t, eq.Invoke(nil, stackproxy.StackProxy{
		Params: []stackproxy.ParamBuilder{
			{Write: stackproxy.XValue(unsafe.Pointer(&a))},
			{Write: stackproxy.XValue(unsafe.Pointer(&c))},
		},
		Ret: stackproxy.Capture(&same),
	}))
	assert.True(t, same)

	assign := r.FindExternMethod("=", signature.FuncOf(nil,
		reflect.TypeFor[rttr.Ref[point]](), reflect.TypeFor[rttr.Ref[rttr.Const[point]]]()).View(), signature.CompareStrict)
	require.NotNil(t, assign)
	assert.True(t, assign.Flags.Has(export.MethodFlagOperator))

	closed := false
	p := point{X: 5, closed: &closed}
	require.NoError(t, r.Dtor.Invoke(unsafe.Pointer(&p)))
	assert.True(t, closed)
	assert.Equal(t, point{}, p)
}

func TestMethodOverloads(t *testing.T) {
	r, err := NewRecord[point]().
		Method("test", (*point).Test).Done().
		Method("test", (*point).TestArgs).Param(0, "dx").Param(1, "dy").Done().
		Method("len2", point.Len2).Done().
		Build()
	require.NoError(t, err)

	two := export.FindMethodOf[func(int32, float32)](r, "test", signature.CompareDefault)
	require.NotNil(t, two)
	assert.Same(t, r.Methods[1], two)
	assert.Equal(t, "dx", two.Params[0].Name)

	zero := export.FindMethodOf[func()](r, "test", signature.CompareDefault)
	require.NotNil(t, zero)
	assert.Same(t, r.Methods[0], zero)

	p := point{X: 1}
	require.NoError(t, two.Invoke(unsafe.Pointer(&p), stackproxy.StackProxy{Params: stackproxy.Args(int32(2), float32(0.5))}))
	assert.Equal(t, point{X: 3, Y: 0.5}, p)

	len2 := export.FindMethodOf[func() float32](r, "len2", signature.CompareDefault)
	require.NotNil(t, len2)
	assert.True(t, len2.Flags.Has(export.MethodFlagConst))
	assert.False(t, two.Flags.Has(export.MethodFlagConst))
}

func TestMembers(t *testing.T) {
	r, err := NewRecord[point]().
		Ctor(newPoint).Param(0, "x").ParamDefault(1, float32(0)).Done().
		Method("scale", (*point).Scale).Done().
		StaticMethod("new", newPoint).Done().
		StaticField("origin", &origin).Flag(export.FieldFlagReadOnly).Done().
		Field("X").Done().
		FieldAs("kind", "Kind").Done().
		Field("hidden").Done().
		Bases(reflect.TypeFor[shape]()).
		Build()
	require.NoError(t, err)

	require.Len(t, r.Ctors, 1)
	assert.True(t, r.Ctors[0].Params[1].HasDefault())
	assert.False(t, r.Ctors[0].Params[0].HasDefault())

	scale := r.Methods[0]
	assert.True(t, scale.Flags.Has(export.FlagReturnsError))
	assert.True(t, scale.Ret.Equal(signature.TypeOf[point]()))

	kind := r.FieldNamed("kind")
	require.NotNil(t, kind)
	p := point{shape: shape{Kind: 7}}
	assert.Equal(t, int32(7), kind.Value(unsafe.Pointer(&p)).Interface())
	assert.Equal(t, export.AccessPrivate, r.FieldNamed("hidden").Access)
	assert.Equal(t, export.AccessPublic, r.FieldNamed("X").Access)

	sf := r.FindStaticField("origin", signature.TypeOf[point]().View(), signature.CompareStrict)
	require.NotNil(t, sf)
	assert.True(t, sf.Flags.Has(export.FieldFlagReadOnly))
	assert.Equal(t, unsafe.Pointer(&origin), sf.Address())

	base := r.FindBase(typeid.For[shape]())
	require.NotNil(t, base)
	assert.Equal(t, unsafe.Pointer(&p.shape), base.Upcast(unsafe.Pointer(&p)))
}

func TestStickyError(t *testing.T) {
	kindOf := func(t *testing.T, err error) errors.Kind {
		t.Helper()
		var e *errors.Error
		require.True(t, stderrors.As(err, &e))
		require.Equal(t, errors.KindRegistration, e.Kind)
		var cause *errors.Error
		require.True(t, stderrors.As(e.Cause, &cause))
		return cause.Kind
	}

	tests := []struct {
		name  string
		build func() error
		kind  errors.Kind
	}{
		{"missing field", func() error {
			_, err := NewRecord[point]().Field("Z").Done().Build()
			return err
		}, errors.KindNotFound},
		{"foreign receiver", func() error {
			_, err := NewRecord[shape]().Method("test", (*point).Test).Done().Build()
			return err
		}, errors.KindTypeMismatch},
		{"param out of range", func() error {
			_, err := NewRecord[point]().Method("test", (*point).Test).Param(0, "x").Done().Build()
			return err
		}, errors.KindOutOfBounds},
		{"bad default", func() error {
			_, err := NewRecord[point]().Ctor(newPoint).ParamDefault(0, "x").Done().Build()
			return err
		}, errors.KindTypeMismatch},
		{"not embedded", func() error {
			_, err := NewRecord[point]().Bases(reflect.TypeFor[tagged]()).Build()
			return err
		}, errors.KindNotFound},
		{"extern without self", func() error {
			_, err := NewRecord[point]().ExternMethod("f", func(int) {}).Done().Build()
			return err
		}, errors.KindInvalidInput},
		{"bad ctor", func() error {
			_, err := NewRecord[point]().Ctor(func() int { return 0 }).Done().Build()
			return err
		}, errors.KindTypeMismatch},
		{"first error wins", func() error {
			_, err := NewRecord[point]().Field("Z").Done().Ctor(42).Done().Build()
			return err
		}, errors.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()
			require.Error(t, err)
			assert.Equal(t, tt.kind, kindOf(t, err))
		})
	}

	assert.Panics(t, func() { NewRecord[point]().Field("Z").Done().MustBuild() })
}

type level uint8

const (
	levelLow level = iota + 1
	levelHigh
)

func TestEnum(t *testing.T) {
	e, err := NewEnum[level]().
		Item("low", levelLow).
		Item("high", levelHigh).ItemAttr("loud").
		ExternMethod("==", func(a, b level) bool { return a == b }).Done().
		Build()
	require.NoError(t, err)

	assert.Equal(t, "level", e.Name)
	assert.Equal(t, export.EnumUInt8, e.Kind)
	assert.Equal(t, typeid.For[uint8](), e.Underlying)
	require.Len(t, e.Items, 2)

	v, ok := export.CastTo[int32](e.FindItem("high").Value)
	assert.True(t, ok)
	assert.Equal(t, int32(2), v)
	assert.Same(t, e.Items[0], e.ItemOf(export.EnumValueOf(levelLow)))
	assert.Len(t, e.ExternMethods, 1)

	_, err = NewEnum[level]().Item("low", levelLow).Item("low", levelHigh).Build()
	assert.Error(t, err)
}
