// Package typeid assigns 128-bit identifiers to Go types.
//
// Identifiers are name-based (SHA-1) UUIDs of the type's fully qualified name,
// so the same type gets the same id in every process and build. Register pins
// an explicit id for types whose identity must survive a rename.
package typeid

import (
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/wippyai/rttr/errors"
)

// ID identifies a type.
type ID = uuid.UUID

// Namespace is the UUID namespace all derived ids live in.
var Namespace = uuid.MustParse("6f1c2a3e-6a1b-4d0e-9b7a-52e1c0a7d3f4")

var (
	// Nil is the zero id. No type maps to it.
	Nil = uuid.Nil
	// Void stands for "no value", e.g. the return type of a func without results.
	Void = uuid.NewSHA1(Namespace, []byte("void"))
)

type table struct {
	byType sync.Map // reflect.Type -> ID
	mu     sync.RWMutex
	names  map[ID]string
	pinned map[reflect.Type]ID
}

var ids = &table{
	names:  map[ID]string{Void: "void"},
	pinned: map[reflect.Type]ID{},
}

// Of returns the id of t. A nil type maps to Void.
func Of(t reflect.Type) ID {
	if t == nil {
		return Void
	}
	if id, ok := ids.byType.Load(t); ok {
		return id.(ID)
	}

	ids.mu.Lock()
	defer ids.mu.Unlock()

	id, ok := ids.pinned[t]
	if !ok {
		id = uuid.NewSHA1(Namespace, []byte(QualifiedName(t)))
	}
	if _, named := ids.names[id]; !named {
		ids.names[id] = t.String()
	}
	ids.byType.Store(t, id)
	return id
}

// For returns the id of T.
func For[T any]() ID {
	return Of(reflect.TypeFor[T]())
}

// Register pins id for t. It fails if t already resolved to a different id or
// id already names another type.
func Register(t reflect.Type, id ID) error {
	if t == nil || id == Nil {
		return errors.InvalidInput(errors.PhaseRegister, "type and id must be set")
	}

	ids.mu.Lock()
	defer ids.mu.Unlock()

	if prev, ok := ids.byType.Load(t); ok && prev.(ID) != id {
		return errors.New(errors.PhaseRegister, errors.KindDuplicate).
			GoType(t.String()).
			Detail("type already has id %s", prev.(ID)).
			Build()
	}
	if name, ok := ids.names[id]; ok && name != t.String() {
		return errors.Duplicate("type id", id.String()+" ("+name+")")
	}

	ids.pinned[t] = id
	ids.names[id] = t.String()
	ids.byType.Store(t, id)
	return nil
}

// Name returns the display name recorded for id.
func Name(id ID) (string, bool) {
	ids.mu.RLock()
	defer ids.mu.RUnlock()
	name, ok := ids.names[id]
	return name, ok
}

// QualifiedName returns the import-path qualified name used to derive ids:
// "github.com/x/geometry.Vec2" for named types, "int32" for predeclared ones,
// and the type literal for unnamed composites.
func QualifiedName(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
