package builder

import (
	"reflect"

	"golang.org/x/exp/constraints"

	"github.com/wippyai/rttr/errors"
	"github.com/wippyai/rttr/export"
	"github.com/wippyai/rttr/typeid"
)

// EnumBuilder populates the descriptor of the integer type E.
type EnumBuilder[E constraints.Integer] struct {
	enum *export.EnumData
	st   *state
}

type EnumCallable[E constraints.Integer] = CallableBuilder[*EnumBuilder[E]]

var underlyingTypes = map[reflect.Kind]reflect.Type{
	reflect.Int:     reflect.TypeFor[int](),
	reflect.Int8:    reflect.TypeFor[int8](),
	reflect.Int16:   reflect.TypeFor[int16](),
	reflect.Int32:   reflect.TypeFor[int32](),
	reflect.Int64:   reflect.TypeFor[int64](),
	reflect.Uint:    reflect.TypeFor[uint](),
	reflect.Uint8:   reflect.TypeFor[uint8](),
	reflect.Uint16:  reflect.TypeFor[uint16](),
	reflect.Uint32:  reflect.TypeFor[uint32](),
	reflect.Uint64:  reflect.TypeFor[uint64](),
	reflect.Uintptr: reflect.TypeFor[uintptr](),
}

// NewEnum starts a descriptor for E.
func NewEnum[E constraints.Integer]() *EnumBuilder[E] {
	t := reflect.TypeFor[E]()
	return &EnumBuilder[E]{
		enum: &export.EnumData{
			Name:       t.Name(),
			Namespace:  t.PkgPath(),
			ID:         typeid.Of(t),
			GoType:     t,
			Size:       t.Size(),
			Align:      uintptr(t.Align()),
			Underlying: typeid.Of(underlyingTypes[t.Kind()]),
			Kind:       export.KindOf(t),
			Attrs:      export.Attributes{},
		},
		st: &state{typeName: t.String()},
	}
}

// Item appends a named value. Names must be unique; values need not be.
func (b *EnumBuilder[E]) Item(name string, v E) *EnumBuilder[E] {
	if !b.st.ok() {
		return b
	}
	if b.enum.FindItem(name) != nil {
		b.st.fail(name, errors.Duplicate("enum item", name))
		return b
	}
	b.enum.Items = append(b.enum.Items, &export.EnumItemData{
		Name:  name,
		Value: export.EnumValueOf(v),
		Attrs: export.Attributes{},
	})
	return b
}

// ItemAttr attaches an attribute to the most recently added item.
func (b *EnumBuilder[E]) ItemAttr(a any) *EnumBuilder[E] {
	if !b.st.ok() {
		return b
	}
	if len(b.enum.Items) == 0 {
		b.st.fail("item", errors.InvalidInput(errors.PhaseRegister, "ItemAttr before any Item"))
		return b
	}
	b.enum.Items[len(b.enum.Items)-1].Attrs.Set(a)
	return b
}

// ExternMethod registers a free func whose first parameter refers to E.
func (b *EnumBuilder[E]) ExternMethod(name string, fn any) *EnumCallable[E] {
	c := &EnumCallable[E]{parent: b, st: b.st, member: name}
	if !b.st.ok() {
		return c
	}
	m, err := newExtern(b.enum.GoType, b.st.typeName, name, fn)
	if err != nil {
		b.st.fail(name, err)
		return c
	}
	b.enum.ExternMethods = append(b.enum.ExternMethods, m)
	c.fn = &m.FunctionData
	return c
}

func (b *EnumBuilder[E]) Flag(f export.Flag) *EnumBuilder[E] {
	if b.st.ok() {
		b.enum.Flags |= f
	}
	return b
}

func (b *EnumBuilder[E]) Attr(a any) *EnumBuilder[E] {
	if b.st.ok() {
		b.enum.Attrs.Set(a)
	}
	return b
}

func (b *EnumBuilder[E]) Build() (*export.EnumData, error) {
	if b.st.err != nil {
		return nil, b.st.err
	}
	return b.enum, nil
}

func (b *EnumBuilder[E]) MustBuild() *export.EnumData {
	e, err := b.Build()
	if err != nil {
		panic(err)
	}
	return e
}
