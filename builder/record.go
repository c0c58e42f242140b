package builder

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/wippyai/rttr/errors"
	"github.com/wippyai/rttr/export"
	"github.com/wippyai/rttr/signature"
	"github.com/wippyai/rttr/stackproxy"
	"github.com/wippyai/rttr/typeid"
)

// RecordBuilder populates the descriptor of T.
type RecordBuilder[T any] struct {
	rec *export.RecordData
	st  *state
}

type (
	RecordCallable[T any] = CallableBuilder[*RecordBuilder[T]]
	RecordField[T any]    = FieldBuilder[*RecordBuilder[T]]
)

// NewRecord starts a descriptor for T. Name, namespace (import path), id,
// size and alignment are taken from T.
func NewRecord[T any]() *RecordBuilder[T] {
	t := reflect.TypeFor[T]()
	return &RecordBuilder[T]{
		rec: &export.RecordData{
			Name:      t.Name(),
			Namespace: t.PkgPath(),
			ID:        typeid.Of(t),
			GoType:    t,
			Size:      t.Size(),
			Align:     uintptr(t.Align()),
			Attrs:     export.Attributes{},
		},
		st: &state{typeName: t.String()},
	}
}

// Build returns the descriptor or the first registration error.
func (b *RecordBuilder[T]) Build() (*export.RecordData, error) {
	if b.st.err != nil {
		return nil, b.st.err
	}
	return b.rec, nil
}

// MustBuild is Build for package init code.
func (b *RecordBuilder[T]) MustBuild() *export.RecordData {
	rec, err := b.Build()
	if err != nil {
		panic(err)
	}
	return rec
}

func (b *RecordBuilder[T]) Flag(f export.Flag) *RecordBuilder[T] {
	if b.st.ok() {
		b.rec.Flags |= f
	}
	return b
}

func (b *RecordBuilder[T]) Attr(a any) *RecordBuilder[T] {
	if b.st.ok() {
		b.rec.Attrs.Set(a)
	}
	return b
}

func newFunctionData(name string, fn any, inv stackproxy.Invoker, sh signature.Shape) export.FunctionData {
	fd := export.FunctionData{
		Name:             name,
		Signature:        sh.Signature(),
		Ret:              signature.Of(sh.Ret),
		RetGoType:        sh.Ret,
		NativeInvoke:     fn,
		StackProxyInvoke: inv,
		Attrs:            export.Attributes{},
	}
	for _, pt := range sh.Params {
		fd.Params = append(fd.Params, &export.ParamData{Type: signature.Of(pt), GoType: pt})
	}
	if sh.ReturnsError {
		fd.Flags |= export.FlagReturnsError
	}
	if sh.Variadic {
		fd.Flags |= export.FlagVariadic
	}
	return fd
}

func (b *RecordBuilder[T]) callable(fd *export.FunctionData, member string) *RecordCallable[T] {
	return &RecordCallable[T]{parent: b, fn: fd, st: b.st, member: member}
}

// Ctor registers a constructor. fn returns T or *T.
func (b *RecordBuilder[T]) Ctor(fn any) *RecordCallable[T] {
	if !b.st.ok() {
		return b.callable(nil, "ctor")
	}
	inv, sh, err := stackproxy.NewCtor(b.rec.GoType, fn, b.st.typeName, "ctor")
	if err != nil {
		b.st.fail("ctor", err)
		return b.callable(nil, "ctor")
	}
	c := &export.CtorData{FunctionData: newFunctionData("", fn, inv, sh)}
	b.rec.Ctors = append(b.rec.Ctors, c)
	return b.callable(&c.FunctionData, "ctor")
}

// Method registers a method expression such as (*T).Add or T.Len.
func (b *RecordBuilder[T]) Method(name string, fn any) *RecordCallable[T] {
	if !b.st.ok() {
		return b.callable(nil, name)
	}
	inv, sh, valueRecv, err := stackproxy.NewMethod(fn, b.st.typeName, name)
	if err != nil {
		b.st.fail(name, err)
		return b.callable(nil, name)
	}
	recv := reflect.TypeOf(fn).In(0)
	if recv != b.rec.GoType && recv != reflect.PointerTo(b.rec.GoType) {
		b.st.fail(name, errors.TypeMismatch(errors.PhaseRegister, []string{"receiver"}, recv.String(), b.rec.GoType.String()))
		return b.callable(nil, name)
	}
	m := &export.MethodData{FunctionData: newFunctionData(name, fn, inv, sh)}
	if valueRecv {
		m.Flags |= export.MethodFlagConst
	}
	b.rec.Methods = append(b.rec.Methods, m)
	return b.callable(&m.FunctionData, name)
}

// StaticMethod registers a plain func under the record.
func (b *RecordBuilder[T]) StaticMethod(name string, fn any) *RecordCallable[T] {
	if !b.st.ok() {
		return b.callable(nil, name)
	}
	inv, sh, err := stackproxy.NewFunc(fn, b.st.typeName, name)
	if err != nil {
		b.st.fail(name, err)
		return b.callable(nil, name)
	}
	m := &export.StaticMethodData{FunctionData: newFunctionData(name, fn, inv, sh)}
	b.rec.StaticMethods = append(b.rec.StaticMethods, m)
	return b.callable(&m.FunctionData, name)
}

// ExternMethod registers a free func whose first parameter refers to T.
func (b *RecordBuilder[T]) ExternMethod(name string, fn any) *RecordCallable[T] {
	if !b.st.ok() {
		return b.callable(nil, name)
	}
	m, err := newExtern(b.rec.GoType, b.st.typeName, name, fn)
	if err != nil {
		b.st.fail(name, err)
		return b.callable(nil, name)
	}
	b.rec.ExternMethods = append(b.rec.ExternMethods, m)
	return b.callable(&m.FunctionData, name)
}

func newExtern(self reflect.Type, typeName, name string, fn any) (*export.ExternMethodData, error) {
	inv, sh, err := stackproxy.NewFunc(fn, typeName, name)
	if err != nil {
		return nil, err
	}
	if len(sh.Params) == 0 || storageOf(sh.Params[0]) != self {
		return nil, errors.InvalidInput(errors.PhaseRegister,
			fmt.Sprintf("extern method %s must take %s first", name, self))
	}
	return &export.ExternMethodData{FunctionData: newFunctionData(name, fn, inv, sh)}, nil
}

// Field registers the struct field called goName under the same name.
func (b *RecordBuilder[T]) Field(goName string) *RecordField[T] {
	return b.FieldAs(goName, goName)
}

// FieldAs registers the struct field goName under name. Promoted fields are
// accepted as long as no embedded pointer lies on the path.
func (b *RecordBuilder[T]) FieldAs(name, goName string) *RecordField[T] {
	if !b.st.ok() {
		return &RecordField[T]{parent: b, st: b.st}
	}
	t := b.rec.GoType
	if t.Kind() != reflect.Struct {
		b.st.fail(name, errors.Unsupported(errors.PhaseRegister, "fields on non-struct "+t.String()))
		return &RecordField[T]{parent: b, st: b.st}
	}
	sf, ok := t.FieldByName(goName)
	if !ok {
		b.st.fail(name, errors.NotFound(errors.PhaseRegister, "field", goName))
		return &RecordField[T]{parent: b, st: b.st}
	}
	off, ok := offsetOf(t, sf.Index)
	if !ok {
		b.st.fail(name, errors.Unsupported(errors.PhaseRegister, "field "+goName+" is promoted through a pointer"))
		return &RecordField[T]{parent: b, st: b.st}
	}

	f := &export.FieldData{
		Name:   name,
		Type:   signature.Of(sf.Type),
		GoType: sf.Type,
		Offset: off,
		Attrs:  export.Attributes{},
	}
	if !sf.IsExported() {
		f.Access = export.AccessPrivate
	}
	b.rec.Fields = append(b.rec.Fields, f)
	return &RecordField[T]{parent: b, flags: &f.Flags, access: &f.Access, attrs: f.Attrs, st: b.st}
}

func offsetOf(t reflect.Type, index []int) (uintptr, bool) {
	var off uintptr
	for i, idx := range index {
		if t.Kind() == reflect.Pointer {
			return 0, false
		}
		sf := t.Field(idx)
		off += sf.Offset
		if i < len(index)-1 {
			t = sf.Type
		}
	}
	return off, true
}

// StaticField registers a package variable; ptr must be a non-nil pointer
// to it.
func (b *RecordBuilder[T]) StaticField(name string, ptr any) *RecordField[T] {
	if !b.st.ok() {
		return &RecordField[T]{parent: b, st: b.st}
	}
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		b.st.fail(name, errors.InvalidInput(errors.PhaseRegister, fmt.Sprintf("static field needs a non-nil pointer, got %T", ptr)))
		return &RecordField[T]{parent: b, st: b.st}
	}
	f := &export.StaticFieldData{
		Name:   name,
		Type:   signature.Of(v.Type().Elem()),
		GoType: v.Type().Elem(),
		Ptr:    v.UnsafePointer(),
		Attrs:  export.Attributes{},
	}
	b.rec.StaticFields = append(b.rec.StaticFields, f)
	return &RecordField[T]{parent: b, flags: &f.Flags, access: &f.Access, attrs: f.Attrs, st: b.st}
}

// Bases records embedded bases. Each type must be embedded directly in T,
// by value or by pointer.
func (b *RecordBuilder[T]) Bases(bases ...reflect.Type) *RecordBuilder[T] {
	for _, bt := range bases {
		if !b.st.ok() {
			return b
		}
		base, err := embeddedBase(b.rec.GoType, bt)
		if err != nil {
			b.st.fail("base "+fmt.Sprint(bt), err)
			return b
		}
		b.rec.Bases = append(b.rec.Bases, base)
	}
	return b
}

func embeddedBase(t, bt reflect.Type) (*export.BaseData, error) {
	if t.Kind() == reflect.Struct && bt != nil {
		for i := range t.NumField() {
			sf := t.Field(i)
			if !sf.Anonymous {
				continue
			}
			off := sf.Offset
			switch sf.Type {
			case bt:
				return &export.BaseData{
					ID:     typeid.Of(bt),
					GoType: bt,
					Upcast: func(obj unsafe.Pointer) unsafe.Pointer { return unsafe.Add(obj, off) },
				}, nil
			case reflect.PointerTo(bt):
				return &export.BaseData{
					ID:     typeid.Of(bt),
					GoType: bt,
					Upcast: func(obj unsafe.Pointer) unsafe.Pointer { return *(*unsafe.Pointer)(unsafe.Add(obj, off)) },
				}, nil
			}
		}
	}
	return nil, errors.NotFound(errors.PhaseRegister, "embedded base", fmt.Sprint(bt))
}
