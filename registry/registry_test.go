package registry

import (
	"context"
	stderrors "errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/rttr/builder"
	"github.com/wippyai/rttr/errors"
	"github.com/wippyai/rttr/export"
	"github.com/wippyai/rttr/typeid"
)

type alpha struct{ A int }

type beta struct {
	alpha
	B int
}

type gamma struct{ G int }

type mode uint8

func TestAddAndLookup(t *testing.T) {
	r := New()
	a := builder.NewRecord[alpha]().BasicInfo().MustBuild()
	b := builder.NewRecord[beta]().BasicInfo().Bases(reflect.TypeFor[alpha]()).MustBuild()
	m := builder.NewEnum[mode]().Item("on", 1).MustBuild()

	require.NoError(t, r.AddRecord(b))
	require.NoError(t, r.AddRecord(a))
	require.NoError(t, r.AddEnum(m))
	assert.Equal(t, 3, r.Len())

	got, ok := r.Record(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)

	got, ok = r.RecordByName("registry.beta")
	require.True(t, ok)
	assert.Same(t, b, got)

	got, ok = r.RecordByName(b.QualifiedName())
	require.True(t, ok)
	assert.Same(t, b, got)

	got, ok = RecordOf[alpha](r)
	require.True(t, ok)
	assert.Same(t, a, got)

	e, ok := r.EnumByName("registry.mode")
	require.True(t, ok)
	assert.Same(t, m, e)
	_, ok = r.Enum(m.ID)
	assert.True(t, ok)

	_, ok = r.Record(typeid.For[gamma]())
	assert.False(t, ok)

	names := []string{}
	for _, rec := range r.Records() {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"alpha", "beta"}, names)
	assert.Len(t, r.Enums(), 1)

	// registry resolves bases for export lookups
	assert.True(t, b.IsA(a.ID, r))
}

func TestDuplicate(t *testing.T) {
	r := New()
	a := builder.NewRecord[alpha]().MustBuild()
	require.NoError(t, r.AddRecord(a))

	err := r.AddRecord(builder.NewRecord[alpha]().MustBuild())
	require.Error(t, err)
	var e *errors.Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, errors.KindRegistration, e.Kind)

	assert.Error(t, r.AddRecord(nil))
	assert.Error(t, r.AddEnum(&export.EnumData{}))
	assert.Panics(t, func() { r.MustAddRecord(a, nil) })
	assert.Panics(t, func() { r.MustAddRecord(nil, stderrors.New("build failed")) })
}

func TestAmbiguousShortName(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	prev := Logger()
	SetLogger(zap.New(core))
	defer SetLogger(prev)

	r := New()
	first := builder.NewRecord[alpha]().BasicInfo().MustBuild()
	// same Go type name, different package
	second := builder.NewRecord[alpha]().BasicInfo().MustBuild()
	second.Namespace = "example.com/other/registry"
	second.ID = typeid.For[gamma]()
	third := builder.NewRecord[alpha]().BasicInfo().MustBuild()
	third.Namespace = "example.com/third/registry"
	third.ID = typeid.For[beta]()

	require.NoError(t, r.AddRecord(first))
	got, ok := r.RecordByName("registry.alpha")
	require.True(t, ok)
	assert.Same(t, first, got)

	require.NoError(t, r.AddRecord(second))
	_, ok = r.RecordByName("registry.alpha")
	assert.False(t, ok, "short name shared by two types must not resolve")
	assert.Equal(t, 1, logs.FilterMessage("ambiguous short name, use the qualified name").Len())

	require.NoError(t, r.AddRecord(third))
	_, ok = r.RecordByName("registry.alpha")
	assert.False(t, ok, "a dropped short name stays dropped")

	for _, rec := range []*export.RecordData{first, second, third} {
		got, ok := r.RecordByName(rec.QualifiedName())
		require.True(t, ok, rec.QualifiedName())
		assert.Same(t, rec, got)
	}

	m1 := builder.NewEnum[mode]().Item("on", 1).MustBuild()
	m2 := builder.NewEnum[mode]().Item("on", 1).MustBuild()
	m2.Namespace = "example.com/other/registry"
	m2.ID = typeid.For[gamma]()
	require.NoError(t, r.AddEnum(m1))
	require.Error(t, r.AddEnum(m2), "id already used by a record")
	m2.ID = typeid.For[*gamma]()
	require.NoError(t, r.AddEnum(m2))
	_, ok = r.EnumByName("registry.mode")
	assert.False(t, ok)
	e, ok := r.EnumByName(m2.QualifiedName())
	require.True(t, ok)
	assert.Same(t, m2, e)
}

func TestRegisterAll(t *testing.T) {
	r := New()
	var calls atomic.Int32

	reg := func(rec *export.RecordData) RegisterFunc {
		return func(ctx context.Context, r *Registry) error {
			calls.Add(1)
			return r.AddRecord(rec)
		}
	}

	err := r.RegisterAll(context.Background(),
		reg(builder.NewRecord[alpha]().BasicInfo().MustBuild()),
		reg(builder.NewRecord[beta]().BasicInfo().MustBuild()),
		reg(builder.NewRecord[gamma]().BasicInfo().MustBuild()),
	)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 3, r.Len())

	err = r.RegisterAll(context.Background(), reg(builder.NewRecord[alpha]().MustBuild()))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = r.RegisterAll(ctx, func(context.Context, *Registry) error {
		t.Error("must not run after cancellation")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := Logger()
	SetLogger(zap.New(core))
	defer SetLogger(prev)

	r := New()
	require.NoError(t, r.AddRecord(builder.NewRecord[gamma]().BasicInfo().MustBuild()))

	entries := logs.FilterMessage("record registered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "github.com/wippyai/rttr/registry.gamma", entries[0].ContextMap()["name"])
}
