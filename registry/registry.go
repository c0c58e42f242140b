// Package registry is the process-wide index of reflected types.
//
// Packages register their descriptors at init time, usually into Default.
// Registration of different types may run concurrently (see RegisterAll);
// lookups are safe at any time.
package registry

import (
	"context"
	"reflect"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/rttr/errors"
	"github.com/wippyai/rttr/export"
	"github.com/wippyai/rttr/typeid"
)

// Registry indexes records and enums by id and by name.
type Registry struct {
	mu          sync.RWMutex
	records     map[typeid.ID]*export.RecordData
	recordNames map[string]*export.RecordData
	enums       map[typeid.ID]*export.EnumData
	enumNames   map[string]*export.EnumData

	// ambiguous holds short names shared by more than one type. They only
	// resolve through the qualified name.
	ambiguous map[string]struct{}
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		records:     make(map[typeid.ID]*export.RecordData),
		recordNames: make(map[string]*export.RecordData),
		enums:       make(map[typeid.ID]*export.EnumData),
		enumNames:   make(map[string]*export.EnumData),
		ambiguous:   make(map[string]struct{}),
	}
}

var defaultRegistry = New()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

func (r *Registry) taken(id typeid.ID) bool {
	_, rec := r.records[id]
	_, enum := r.enums[id]
	return rec || enum
}

type named interface {
	comparable
	QualifiedName() string
}

// indexShort maps a package-qualified name to v. A name claimed by two
// different types is dropped and stays unresolvable.
func indexShort[V named](names map[string]V, ambiguous map[string]struct{}, short string, v V) {
	if short == v.QualifiedName() {
		return
	}
	if _, gone := ambiguous[short]; gone {
		return
	}
	prev, ok := names[short]
	if !ok {
		names[short] = v
		return
	}
	if prev == v || prev.QualifiedName() == short {
		return
	}
	delete(names, short)
	ambiguous[short] = struct{}{}
	Logger().Warn("ambiguous short name, use the qualified name",
		zap.String("name", short),
		zap.String("first", prev.QualifiedName()),
		zap.String("second", v.QualifiedName()))
}

// AddRecord registers rec. Ids must be unique across records and enums.
func (r *Registry) AddRecord(rec *export.RecordData) error {
	if rec == nil || rec.GoType == nil {
		return errors.InvalidInput(errors.PhaseRegister, "record descriptor without a type")
	}
	name := rec.QualifiedName()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(rec.ID) {
		return errors.Registration(rec.DisplayName(), "", errors.Duplicate("type id", rec.ID.String()))
	}
	r.records[rec.ID] = rec
	r.recordNames[name] = rec
	indexShort(r.recordNames, r.ambiguous, rec.DisplayName(), rec)

	Logger().Debug("record registered",
		zap.String("name", name),
		zap.Stringer("id", rec.ID),
		zap.Int("ctors", len(rec.Ctors)),
		zap.Int("methods", len(rec.Methods)),
		zap.Int("fields", len(rec.Fields)))
	return nil
}

// AddEnum registers e.
func (r *Registry) AddEnum(e *export.EnumData) error {
	if e == nil || e.GoType == nil {
		return errors.InvalidInput(errors.PhaseRegister, "enum descriptor without a type")
	}
	name := e.QualifiedName()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(e.ID) {
		return errors.Registration(e.DisplayName(), "", errors.Duplicate("type id", e.ID.String()))
	}
	r.enums[e.ID] = e
	r.enumNames[name] = e
	indexShort(r.enumNames, r.ambiguous, e.DisplayName(), e)

	Logger().Debug("enum registered",
		zap.String("name", name),
		zap.Stringer("id", e.ID),
		zap.Int("items", len(e.Items)))
	return nil
}

// MustAddRecord is AddRecord for package init code.
func (r *Registry) MustAddRecord(rec *export.RecordData, err error) *export.RecordData {
	if err == nil {
		err = r.AddRecord(rec)
	}
	if err != nil {
		panic(err)
	}
	return rec
}

// MustAddEnum is AddEnum for package init code.
func (r *Registry) MustAddEnum(e *export.EnumData, err error) *export.EnumData {
	if err == nil {
		err = r.AddEnum(e)
	}
	if err != nil {
		panic(err)
	}
	return e
}

// Record returns the record with id. It satisfies export.Resolver.
func (r *Registry) Record(id typeid.ID) (*export.RecordData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	return rec, ok
}

func (r *Registry) Enum(id typeid.ID) (*export.EnumData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enums[id]
	return e, ok
}

// RecordByName accepts the import-path qualified name
// ("github.com/x/geometry.Vec2") or the package-qualified one
// ("geometry.Vec2").
func (r *Registry) RecordByName(name string) (*export.RecordData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recordNames[name]
	return rec, ok
}

func (r *Registry) EnumByName(name string) (*export.EnumData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enumNames[name]
	return e, ok
}

// RecordOf returns the record registered for T.
func RecordOf[T any](r *Registry) (*export.RecordData, bool) {
	return r.Record(typeid.Of(reflect.TypeFor[T]()))
}

// Records returns every record sorted by qualified name.
func (r *Registry) Records() []*export.RecordData {
	r.mu.RLock()
	out := maps.Values(r.records)
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *export.RecordData) int {
		return strings.Compare(a.QualifiedName(), b.QualifiedName())
	})
	return out
}

// Enums returns every enum sorted by qualified name.
func (r *Registry) Enums() []*export.EnumData {
	r.mu.RLock()
	out := maps.Values(r.enums)
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *export.EnumData) int {
		return strings.Compare(a.QualifiedName(), b.QualifiedName())
	})
	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records) + len(r.enums)
}

// RegisterFunc registers one or more types into r.
type RegisterFunc func(ctx context.Context, r *Registry) error

// RegisterAll runs fns concurrently and returns the first error. Each fn
// should register distinct types.
func (r *Registry) RegisterAll(ctx context.Context, fns ...RegisterFunc) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, r)
		})
	}
	return g.Wait()
}
