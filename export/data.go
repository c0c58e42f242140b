package export

import (
	"reflect"
	"unsafe"

	"github.com/wippyai/rttr/signature"
	"github.com/wippyai/rttr/stackproxy"
	"github.com/wippyai/rttr/typeid"
)

// ParamData describes one parameter of a callable.
type ParamData struct {
	Name    string
	Type    signature.TypeSignature
	GoType  reflect.Type
	Default any
	Flags   Flag
	Attrs   Attributes
}

// HasDefault reports whether a default value was attached.
func (p *ParamData) HasDefault() bool { return p.Flags.Has(ParamFlagOptional) }

// FunctionData is the common shape of every callable descriptor.
type FunctionData struct {
	Name      string
	Signature signature.TypeSignature // FunctionSignature, ret, params...
	Ret       signature.TypeSignature
	RetGoType reflect.Type // nil for void
	Params    []*ParamData

	// NativeInvoke is the Go func value itself, for statically typed callers.
	NativeInvoke any
	// StackProxyInvoke is the type-erased entry point.
	StackProxyInvoke stackproxy.Invoker

	Access Access
	Flags  Flag
	Attrs  Attributes
}

// SignatureEqual matches sig against the descriptor's function signature.
func (f *FunctionData) SignatureEqual(sig signature.View, flags signature.CompareFlag) bool {
	return f.Signature.View().EqualFlags(sig, flags)
}

// Arity returns the number of parameters.
func (f *FunctionData) Arity() int { return len(f.Params) }

// Invoke calls through the stack proxy.
func (f *FunctionData) Invoke(obj unsafe.Pointer, proxy stackproxy.StackProxy) error {
	return f.StackProxyInvoke(obj, proxy)
}

// MethodData is an instance method; the receiver is not part of Signature.
type MethodData struct{ FunctionData }

// StaticMethodData is a package-level func attached to a record.
type StaticMethodData struct{ FunctionData }

// ExternMethodData is a free func treated as a method of the record, used for
// operators such as "=" and "==". Its first parameter is the record.
type ExternMethodData struct{ FunctionData }

// CtorData constructs into caller-provided storage. Ret is always void.
type CtorData struct{ FunctionData }

// DtorData releases an object in place. The storage is zeroed afterwards
// even when Invoke returns an error.
type DtorData struct {
	Invoke func(obj unsafe.Pointer) error
	Attrs  Attributes
}

// FieldData is a struct field addressed by offset.
type FieldData struct {
	Name   string
	Type   signature.TypeSignature
	GoType reflect.Type
	Offset uintptr
	Access Access
	Flags  Flag
	Attrs  Attributes
}

// Address returns the field's address inside obj.
func (f *FieldData) Address(obj unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(obj, f.Offset)
}

// Value returns the field inside obj as an addressable value.
func (f *FieldData) Value(obj unsafe.Pointer) reflect.Value {
	return reflect.NewAt(f.GoType, f.Address(obj)).Elem()
}

// StaticFieldData wraps a package variable.
type StaticFieldData struct {
	Name   string
	Type   signature.TypeSignature
	GoType reflect.Type
	Ptr    unsafe.Pointer
	Access Access
	Flags  Flag
	Attrs  Attributes
}

func (f *StaticFieldData) Address() unsafe.Pointer { return f.Ptr }

func (f *StaticFieldData) Value() reflect.Value {
	return reflect.NewAt(f.GoType, f.Ptr).Elem()
}

// BaseData records an embedded base and how to reach it.
type BaseData struct {
	ID     typeid.ID
	GoType reflect.Type
	Upcast func(obj unsafe.Pointer) unsafe.Pointer
}

// RecordData describes one reflected type.
type RecordData struct {
	Name      string
	Namespace string // import path
	ID        typeid.ID
	GoType    reflect.Type
	Size      uintptr
	Align     uintptr

	Bases         []*BaseData
	Ctors         []*CtorData
	Dtor          *DtorData
	Methods       []*MethodData
	StaticMethods []*StaticMethodData
	ExternMethods []*ExternMethodData
	Fields        []*FieldData
	StaticFields  []*StaticFieldData

	Flags Flag
	Attrs Attributes
}

// QualifiedName is the import path qualified name, e.g.
// "github.com/x/geometry.Vec2".
func (r *RecordData) QualifiedName() string { return qualify(r.Namespace, r.Name) }

// DisplayName is the package-qualified name, e.g. "geometry.Vec2".
func (r *RecordData) DisplayName() string { return r.GoType.String() }

// Alloc returns zeroed storage for one object.
func (r *RecordData) Alloc() unsafe.Pointer {
	return reflect.New(r.GoType).UnsafePointer()
}

// EnumItemData is one named constant of an enum.
type EnumItemData struct {
	Name  string
	Value EnumValue
	Attrs Attributes
}

// EnumData describes a named integer type.
type EnumData struct {
	Name       string
	Namespace  string
	ID         typeid.ID
	GoType     reflect.Type
	Size       uintptr
	Align      uintptr
	Underlying typeid.ID
	Kind       EnumKind

	Items         []*EnumItemData
	ExternMethods []*ExternMethodData

	Flags Flag
	Attrs Attributes
}

func (e *EnumData) QualifiedName() string { return qualify(e.Namespace, e.Name) }

func (e *EnumData) DisplayName() string { return e.GoType.String() }

// FindItem returns the item called name.
func (e *EnumData) FindItem(name string) *EnumItemData {
	for _, it := range e.Items {
		if it.Name == name {
			return it
		}
	}
	return nil
}

// ItemOf returns the first item whose value equals v.
func (e *EnumData) ItemOf(v EnumValue) *EnumItemData {
	for _, it := range e.Items {
		if it.Value == v {
			return it
		}
	}
	return nil
}

func qualify(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "." + name
}
