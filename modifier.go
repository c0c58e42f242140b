package rttr

import (
	"reflect"
	"strings"
	"unsafe"
)

// ModifierKind names the signature modifier a marker type stands for.
type ModifierKind uint8

const (
	ModifierConst ModifierKind = iota + 1
	ModifierRef
	ModifierRValueRef
)

func (k ModifierKind) String() string {
	switch k {
	case ModifierConst:
		return "const"
	case ModifierRef:
		return "ref"
	case ModifierRValueRef:
		return "rvalue-ref"
	default:
		return "unknown"
	}
}

// Modifier is implemented by the marker types Const, Ref and RValueRef.
// All methods work on the zero value.
type Modifier interface {
	// TypeModifier reports which signature modifier the marker encodes.
	TypeModifier() ModifierKind
	// Elem returns the wrapped type.
	Elem() reflect.Type
	// Bind builds a marker value over storage of the wrapped type at p.
	// Const copies the value out, Ref and RValueRef keep the address.
	Bind(p unsafe.Pointer) any
}

var (
	modifierType = reflect.TypeFor[Modifier]()
	pkgPath      = reflect.TypeFor[Const[int]]().PkgPath()
)

// ModifierOf reports whether t is one of the marker types and returns its kind
// and wrapped type. Types that merely embed a marker, and so inherit its
// methods, are not markers.
func ModifierOf(t reflect.Type) (ModifierKind, reflect.Type, bool) {
	if t == nil || t.Kind() != reflect.Struct || t.PkgPath() != pkgPath || !isMarkerName(t.Name()) {
		return 0, nil, false
	}
	if !t.Implements(modifierType) {
		return 0, nil, false
	}
	m := reflect.Zero(t).Interface().(Modifier)
	return m.TypeModifier(), m.Elem(), true
}

func isMarkerName(name string) bool {
	for _, prefix := range []string{"Const[", "Ref[", "RValueRef["} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Const marks a read-only value.
type Const[T any] struct {
	v T
}

// MakeConst wraps v.
func MakeConst[T any](v T) Const[T] {
	return Const[T]{v: v}
}

// Get returns a copy of the wrapped value.
func (c Const[T]) Get() T {
	return c.v
}

func (Const[T]) TypeModifier() ModifierKind { return ModifierConst }

func (Const[T]) Elem() reflect.Type { return reflect.TypeFor[T]() }

func (Const[T]) Bind(p unsafe.Pointer) any { return Const[T]{v: *(*T)(p)} }

// Ref is an lvalue reference: the callee may read and write through it.
type Ref[T any] struct {
	p *T
}

// RefTo builds a reference to *p.
func RefTo[T any](p *T) Ref[T] {
	return Ref[T]{p: p}
}

// ConstRefTo builds a read-only reference to *p.
func ConstRefTo[T any](p *T) Ref[Const[T]] {
	return Ref[Const[T]]{p: (*Const[T])(unsafe.Pointer(p))}
}

// Get returns the referenced address.
func (r Ref[T]) Get() *T {
	return r.p
}

// IsNil reports whether the reference is unbound.
func (r Ref[T]) IsNil() bool {
	return r.p == nil
}

func (Ref[T]) TypeModifier() ModifierKind { return ModifierRef }

func (Ref[T]) Elem() reflect.Type { return reflect.TypeFor[T]() }

func (Ref[T]) Bind(p unsafe.Pointer) any { return Ref[T]{p: (*T)(p)} }

// RValueRef is an rvalue reference: the callee may take ownership of the value.
type RValueRef[T any] struct {
	p *T
}

// Move builds an rvalue reference to *p.
func Move[T any](p *T) RValueRef[T] {
	return RValueRef[T]{p: p}
}

// Get returns the referenced address.
func (r RValueRef[T]) Get() *T {
	return r.p
}

// Take moves the value out and leaves the zero value behind.
func (r RValueRef[T]) Take() T {
	v := *r.p
	var zero T
	*r.p = zero
	return v
}

func (RValueRef[T]) TypeModifier() ModifierKind { return ModifierRValueRef }

func (RValueRef[T]) Elem() reflect.Type { return reflect.TypeFor[T]() }

func (RValueRef[T]) Bind(p unsafe.Pointer) any { return RValueRef[T]{p: (*T)(p)} }
