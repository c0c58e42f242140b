package builder

import (
	"fmt"
	"reflect"

	"github.com/wippyai/rttr/errors"
	"github.com/wippyai/rttr/export"
)

// CallableBuilder decorates a constructor, method, static method or extern
// method.
type CallableBuilder[P any] struct {
	parent P
	fn     *export.FunctionData
	st     *state
	member string
}

// Done returns to the owning builder.
func (b *CallableBuilder[P]) Done() P { return b.parent }

func (b *CallableBuilder[P]) param(i int) *export.ParamData {
	if !b.st.ok() {
		return nil
	}
	if b.fn == nil {
		return nil
	}
	if i < 0 || i >= len(b.fn.Params) {
		b.st.fail(b.member, errors.OutOfBounds(errors.PhaseRegister, []string{"param"}, i, len(b.fn.Params)))
		return nil
	}
	return b.fn.Params[i]
}

// Param names parameter i.
func (b *CallableBuilder[P]) Param(i int, name string) *CallableBuilder[P] {
	if p := b.param(i); p != nil {
		p.Name = name
	}
	return b
}

// ParamDefault attaches a default value to parameter i. v must be assignable
// to the type the parameter refers to.
func (b *CallableBuilder[P]) ParamDefault(i int, v any) *CallableBuilder[P] {
	p := b.param(i)
	if p == nil {
		return b
	}
	want := storageOf(p.GoType)
	if got := reflect.TypeOf(v); got == nil || !got.AssignableTo(want) {
		b.st.fail(b.member, errors.TypeMismatch(errors.PhaseRegister,
			[]string{fmt.Sprintf("param[%d]", i)}, fmt.Sprint(got), want.String()))
		return b
	}
	p.Default = v
	p.Flags |= export.ParamFlagOptional
	return b
}

func (b *CallableBuilder[P]) ParamFlag(i int, f export.Flag) *CallableBuilder[P] {
	if p := b.param(i); p != nil {
		p.Flags |= f
	}
	return b
}

func (b *CallableBuilder[P]) ParamAttr(i int, a any) *CallableBuilder[P] {
	if p := b.param(i); p != nil {
		if p.Attrs == nil {
			p.Attrs = export.Attributes{}
		}
		p.Attrs.Set(a)
	}
	return b
}

func (b *CallableBuilder[P]) Flag(f export.Flag) *CallableBuilder[P] {
	if b.fn != nil && b.st.ok() {
		b.fn.Flags |= f
	}
	return b
}

func (b *CallableBuilder[P]) Attr(a any) *CallableBuilder[P] {
	if b.fn != nil && b.st.ok() {
		b.fn.Attrs.Set(a)
	}
	return b
}

func (b *CallableBuilder[P]) Access(a export.Access) *CallableBuilder[P] {
	if b.fn != nil && b.st.ok() {
		b.fn.Access = a
	}
	return b
}

// FieldBuilder decorates a field or static field.
type FieldBuilder[P any] struct {
	parent P
	flags  *export.Flag
	access *export.Access
	attrs  export.Attributes
	st     *state
}

func (b *FieldBuilder[P]) Done() P { return b.parent }

func (b *FieldBuilder[P]) Flag(f export.Flag) *FieldBuilder[P] {
	if b.flags != nil && b.st.ok() {
		*b.flags |= f
	}
	return b
}

func (b *FieldBuilder[P]) Attr(a any) *FieldBuilder[P] {
	if b.attrs != nil && b.st.ok() {
		b.attrs.Set(a)
	}
	return b
}

func (b *FieldBuilder[P]) Access(a export.Access) *FieldBuilder[P] {
	if b.access != nil && b.st.ok() {
		*b.access = a
	}
	return b
}
