package typeid

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct{ A int }

type pinned struct{}

func TestOf_Deterministic(t *testing.T) {
	a := Of(reflect.TypeFor[sample]())
	b := For[sample]()
	assert.Equal(t, a, b)
	assert.NotEqual(t, Nil, a)

	want := uuid.NewSHA1(Namespace, []byte("github.com/wippyai/rttr/typeid.sample"))
	assert.Equal(t, want, a)
}

func TestOf_DistinctTypes(t *testing.T) {
	seen := map[ID]string{}
	for _, typ := range []reflect.Type{
		reflect.TypeFor[int](),
		reflect.TypeFor[int32](),
		reflect.TypeFor[uint32](),
		reflect.TypeFor[float32](),
		reflect.TypeFor[string](),
		reflect.TypeFor[sample](),
	} {
		id := Of(typ)
		prev, dup := seen[id]
		require.False(t, dup, "%s collides with %s", typ, prev)
		seen[id] = typ.String()
	}
}

func TestOf_NilIsVoid(t *testing.T) {
	assert.Equal(t, Void, Of(nil))
	name, ok := Name(Void)
	require.True(t, ok)
	assert.Equal(t, "void", name)
}

func TestName(t *testing.T) {
	id := For[sample]()
	name, ok := Name(id)
	require.True(t, ok)
	assert.Equal(t, "typeid.sample", name)

	_, ok = Name(uuid.New())
	assert.False(t, ok)
}

func TestRegister(t *testing.T) {
	typ := reflect.TypeFor[pinned]()
	id := uuid.MustParse("0d7f6a0e-1111-4222-8333-944455556666")

	require.NoError(t, Register(typ, id))
	assert.Equal(t, id, Of(typ))
	require.NoError(t, Register(typ, id), "re-registering the same pair is fine")

	err := Register(typ, uuid.New())
	assert.Error(t, err, "type already resolved to another id")

	err = Register(reflect.TypeFor[sample](), id)
	assert.Error(t, err, "id already names another type")

	assert.Error(t, Register(nil, id))
	assert.Error(t, Register(typ, Nil))
}

func TestQualifiedName(t *testing.T) {
	assert.Equal(t, "int32", QualifiedName(reflect.TypeFor[int32]()))
	assert.Equal(t, "github.com/wippyai/rttr/typeid.sample", QualifiedName(reflect.TypeFor[sample]()))
	assert.Equal(t, "map[string]int", QualifiedName(reflect.TypeFor[map[string]int]()))
}
