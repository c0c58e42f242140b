package wasmhost

import (
	"reflect"
	"unsafe"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/rttr"
	"github.com/wippyai/rttr/errors"
	"github.com/wippyai/rttr/export"
	"github.com/wippyai/rttr/resource"
	"github.com/wippyai/rttr/stackproxy"
	"github.com/wippyai/rttr/typeid"
)

// scalar converts between a Go value of some basic kind and one core value.
type scalar struct {
	vt    api.ValueType
	wit   wit.Type
	load  func(dst reflect.Value, raw uint64)
	store func(src reflect.Value) uint64
}

func signed32(w wit.Type) *scalar {
	return &scalar{
		vt:    api.ValueTypeI32,
		wit:   w,
		load:  func(dst reflect.Value, raw uint64) { dst.SetInt(int64(api.DecodeI32(raw))) },
		store: func(src reflect.Value) uint64 { return api.EncodeI32(int32(src.Int())) },
	}
}

func unsigned32(w wit.Type) *scalar {
	return &scalar{
		vt:    api.ValueTypeI32,
		wit:   w,
		load:  func(dst reflect.Value, raw uint64) { dst.SetUint(uint64(api.DecodeU32(raw))) },
		store: func(src reflect.Value) uint64 { return api.EncodeU32(uint32(src.Uint())) },
	}
}

var scalars = map[reflect.Kind]*scalar{
	reflect.Bool: {
		vt:  api.ValueTypeI32,
		wit: wit.Bool{},
		load: func(dst reflect.Value, raw uint64) {
			dst.SetBool(api.DecodeU32(raw) != 0)
		},
		store: func(src reflect.Value) uint64 {
			if src.Bool() {
				return 1
			}
			return 0
		},
	},
	reflect.Int8:   signed32(wit.S8{}),
	reflect.Int16:  signed32(wit.S16{}),
	reflect.Int32:  signed32(wit.S32{}),
	reflect.Uint8:  unsigned32(wit.U8{}),
	reflect.Uint16: unsigned32(wit.U16{}),
	reflect.Uint32: unsigned32(wit.U32{}),
	reflect.Int: {
		vt:    api.ValueTypeI64,
		wit:   wit.S64{},
		load:  func(dst reflect.Value, raw uint64) { dst.SetInt(int64(raw)) },
		store: func(src reflect.Value) uint64 { return api.EncodeI64(src.Int()) },
	},
	reflect.Uint: {
		vt:    api.ValueTypeI64,
		wit:   wit.U64{},
		load:  func(dst reflect.Value, raw uint64) { dst.SetUint(raw) },
		store: func(src reflect.Value) uint64 { return src.Uint() },
	},
	reflect.Float32: {
		vt:    api.ValueTypeF32,
		wit:   wit.F32{},
		load:  func(dst reflect.Value, raw uint64) { dst.SetFloat(float64(api.DecodeF32(raw))) },
		store: func(src reflect.Value) uint64 { return api.EncodeF32(float32(src.Float())) },
	},
	reflect.Float64: {
		vt:    api.ValueTypeF64,
		wit:   wit.F64{},
		load:  func(dst reflect.Value, raw uint64) { dst.SetFloat(api.DecodeF64(raw)) },
		store: func(src reflect.Value) uint64 { return api.EncodeF64(src.Float()) },
	},
}

func init() {
	scalars[reflect.Int64] = scalars[reflect.Int]
	scalars[reflect.Uint64] = scalars[reflect.Uint]
}

type valueKind uint8

const (
	valueScalar valueKind = iota
	// valueRef binds to the object: Ref[T], RValueRef[T] and Const forms.
	valueRef
	// valuePtr passes the object's address: *T.
	valuePtr
	// valueCopy copies the object: T.
	valueCopy
)

// value describes how one parameter or result crosses the boundary.
type value struct {
	kind   valueKind
	scalar *scalar
	rec    *export.RecordData
}

func (v value) valueType() api.ValueType {
	if v.kind == valueScalar {
		return v.scalar.vt
	}
	return api.ValueTypeI32
}

func stripConst(t reflect.Type) reflect.Type {
	for {
		kind, elem, ok := rttr.ModifierOf(t)
		if !ok || kind != rttr.ModifierConst {
			return t
		}
		t = elem
	}
}

// classify maps a declared Go type to its boundary representation.
func classify(res export.Resolver, t reflect.Type) (value, error) {
	t = stripConst(t)
	if _, elem, ok := rttr.ModifierOf(t); ok {
		if rec, ok := res.Record(typeid.Of(stripConst(elem))); ok {
			return value{kind: valueRef, rec: rec}, nil
		}
		return value{}, unsupported(t)
	}
	if t.Kind() == reflect.Pointer {
		if rec, ok := res.Record(typeid.Of(t.Elem())); ok && rec.GoType == t.Elem() {
			return value{kind: valuePtr, rec: rec}, nil
		}
		return value{}, unsupported(t)
	}
	if rec, ok := res.Record(typeid.Of(t)); ok && rec.GoType == t {
		return value{kind: valueCopy, rec: rec}, nil
	}
	if s, ok := scalars[t.Kind()]; ok {
		return value{kind: valueScalar, scalar: s}, nil
	}
	return value{}, unsupported(t)
}

// classifyResult is classify for return types; references cannot be
// returned.
func classifyResult(res export.Resolver, t reflect.Type) (*value, error) {
	if t == nil {
		return nil, nil
	}
	v, err := classify(res, t)
	if err != nil {
		return nil, err
	}
	if v.kind == valueRef {
		return nil, unsupported(t)
	}
	return &v, nil
}

func unsupported(t reflect.Type) error {
	return errors.New(errors.PhaseBind, errors.KindUnsupported).
		GoType(t.String()).
		Detail("no core value mapping").
		Build()
}

func handleOf(raw uint64) resource.Handle {
	return resource.Handle(api.DecodeU32(raw))
}

// writer builds the parameter writer for raw. Object handles resolve to the
// storage of want, upcasting through bases when the object is derived.
func (h *Host) writer(v value, raw uint64, pins *pinSet) (stackproxy.ParamWriter, error) {
	if v.kind == valueScalar {
		return func(dst stackproxy.Slot) (stackproxy.HolderType, unsafe.Pointer) {
			v.scalar.load(dst.Value(), raw)
			return stackproxy.HolderValue, nil
		}, nil
	}

	ptr, err := h.pin(handleOf(raw), v.rec, pins)
	if err != nil {
		return nil, err
	}
	if v.kind == valuePtr {
		return func(dst stackproxy.Slot) (stackproxy.HolderType, unsafe.Pointer) {
			*(*unsafe.Pointer)(dst.Ptr) = ptr
			return stackproxy.HolderValue, nil
		}, nil
	}
	return stackproxy.XValue(ptr), nil
}

// result turns a returned slot into a core value. Records returned by value
// become owned objects; pointers are inserted unowned.
func (h *Host) result(v value, src stackproxy.Slot) uint64 {
	switch v.kind {
	case valueScalar:
		return v.scalar.store(src.Value())
	case valueCopy:
		p := v.rec.Alloc()
		reflect.NewAt(v.rec.GoType, p).Elem().Set(src.Value())
		return api.EncodeU32(uint32(h.table.Insert(resource.Object{Type: v.rec, Ptr: p, Owned: true})))
	case valuePtr:
		p := *(*unsafe.Pointer)(src.Ptr)
		if p == nil {
			return 0
		}
		return api.EncodeU32(uint32(h.table.Insert(resource.Object{Type: v.rec, Ptr: p})))
	}
	return 0
}
