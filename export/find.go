package export

import (
	"reflect"
	"unsafe"

	"github.com/wippyai/rttr/signature"
	"github.com/wippyai/rttr/typeid"
)

// Resolver finds records by id. It lets base walks cross record boundaries.
type Resolver interface {
	Record(id typeid.ID) (*RecordData, bool)
}

func findByName[D any](list []*D, fn func(*D) *FunctionData, name string, sig signature.View, flags signature.CompareFlag) *D {
	for _, d := range list {
		f := fn(d)
		if f.Name == name && f.SignatureEqual(sig, flags) {
			return d
		}
	}
	return nil
}

func methodFn(m *MethodData) *FunctionData { return &m.FunctionData }
func staticFn(m *StaticMethodData) *FunctionData { return &m.FunctionData }
func externFn(m *ExternMethodData) *FunctionData { return &m.FunctionData }

// FindCtor returns the constructor whose signature matches sig.
func (r *RecordData) FindCtor(sig signature.View, flags signature.CompareFlag) *CtorData {
	for _, c := range r.Ctors {
		if c.SignatureEqual(sig, flags) {
			return c
		}
	}
	return nil
}

// FindMethod returns the overload of name whose signature matches sig.
func (r *RecordData) FindMethod(name string, sig signature.View, flags signature.CompareFlag) *MethodData {
	return findByName(r.Methods, methodFn, name, sig, flags)
}

func (r *RecordData) FindStaticMethod(name string, sig signature.View, flags signature.CompareFlag) *StaticMethodData {
	return findByName(r.StaticMethods, staticFn, name, sig, flags)
}

func (r *RecordData) FindExternMethod(name string, sig signature.View, flags signature.CompareFlag) *ExternMethodData {
	return findByName(r.ExternMethods, externFn, name, sig, flags)
}

// MethodsNamed returns every overload of name in declaration order.
func (r *RecordData) MethodsNamed(name string) []*MethodData {
	var out []*MethodData
	for _, m := range r.Methods {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

// FindField matches by name and type.
func (r *RecordData) FindField(name string, typ signature.View, flags signature.CompareFlag) *FieldData {
	for _, f := range r.Fields {
		if f.Name == name && f.Type.View().EqualFlags(typ, flags) {
			return f
		}
	}
	return nil
}

// FieldNamed matches by name only.
func (r *RecordData) FieldNamed(name string) *FieldData {
	for _, f := range r.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (r *RecordData) FindStaticField(name string, typ signature.View, flags signature.CompareFlag) *StaticFieldData {
	for _, f := range r.StaticFields {
		if f.Name == name && f.Type.View().EqualFlags(typ, flags) {
			return f
		}
	}
	return nil
}

// FindMethodOf looks up name with the signature of the Go func type F, which
// excludes the receiver: FindMethodOf[func(int32, float32)](r, "test", flags).
func FindMethodOf[F any](r *RecordData, name string, flags signature.CompareFlag) *MethodData {
	sig, ok := funcSignature[F]()
	if !ok {
		return nil
	}
	return r.FindMethod(name, sig.View(), flags)
}

// FindCtorOf looks up the constructor taking the parameters of F. F's results
// are ignored.
func FindCtorOf[F any](r *RecordData, flags signature.CompareFlag) *CtorData {
	sh, err := signature.ShapeOf(reflect.TypeFor[F](), 0)
	if err != nil {
		return nil
	}
	return r.FindCtor(signature.FuncOf(nil, sh.Params...).View(), flags)
}

func funcSignature[F any]() (signature.TypeSignature, bool) {
	sh, err := signature.ShapeOf(reflect.TypeFor[F](), 0)
	if err != nil {
		return signature.TypeSignature{}, false
	}
	return sh.Signature(), true
}

// FindBase returns the direct base with id.
func (r *RecordData) FindBase(id typeid.ID) *BaseData {
	for _, b := range r.Bases {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// UpcastTo converts obj, a pointer to r's type, into a pointer to the base
// with id. Indirect bases are reached through res; a nil res only considers
// direct bases.
func (r *RecordData) UpcastTo(obj unsafe.Pointer, id typeid.ID, res Resolver) (unsafe.Pointer, bool) {
	if id == r.ID {
		return obj, true
	}
	for _, b := range r.Bases {
		p := b.Upcast(obj)
		if b.ID == id {
			return p, true
		}
		if res == nil || p == nil {
			continue
		}
		if base, ok := res.Record(b.ID); ok {
			if q, ok := base.UpcastTo(p, id, res); ok {
				return q, true
			}
		}
	}
	return nil, false
}

// IsA reports whether r is id or derives from it.
func (r *RecordData) IsA(id typeid.ID, res Resolver) bool {
	if id == r.ID {
		return true
	}
	for _, b := range r.Bases {
		if b.ID == id {
			return true
		}
		if res == nil {
			continue
		}
		if base, ok := res.Record(b.ID); ok && base.IsA(id, res) {
			return true
		}
	}
	return false
}
