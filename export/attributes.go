package export

import (
	"reflect"

	"github.com/wippyai/rttr/typeid"
)

// Attributes maps an attribute's type id to the attribute value. One value
// per attribute type.
type Attributes map[typeid.ID]any

// Set stores a under its dynamic type's id, replacing any previous value.
func (a Attributes) Set(v any) {
	a[typeid.Of(reflect.TypeOf(v))] = v
}

// Get returns the attribute stored under id.
func (a Attributes) Get(id typeid.ID) (any, bool) {
	v, ok := a[id]
	return v, ok
}

// AttrOf returns the attribute of type A.
func AttrOf[A any](attrs Attributes) (A, bool) {
	v, ok := attrs[typeid.For[A]()]
	if !ok {
		var zero A
		return zero, false
	}
	a, ok := v.(A)
	return a, ok
}
