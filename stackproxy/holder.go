package stackproxy

import (
	"reflect"
	"unsafe"

	"github.com/wippyai/rttr"
	"github.com/wippyai/rttr/errors"
)

type holder interface {
	write(w ParamWriter, path []string) error
	arg() reflect.Value
	read(r ParamReader)
}

// newHolder picks the holder for a declared parameter type.
func newHolder(t reflect.Type) holder {
	kind, elem, ok := rttr.ModifierOf(t)
	if !ok {
		return &valueHolder{typ: t}
	}
	m := reflect.Zero(t).Interface().(rttr.Modifier)
	if kind == rttr.ModifierConst {
		return &constHolder{inner: newHolder(elem), wrap: m}
	}
	return &refHolder{elem: elem, bind: m}
}

// bare strips Const wrappers. The wrappers are layout-identical to what they
// wrap, so storage of either type can be viewed as the other.
func bare(t reflect.Type) reflect.Type {
	for {
		kind, elem, ok := rttr.ModifierOf(t)
		if !ok || kind != rttr.ModifierConst {
			return t
		}
		t = elem
	}
}

type valueHolder struct {
	typ     reflect.Type
	staging reflect.Value
	kind    HolderType
}

func (h *valueHolder) write(w ParamWriter, path []string) error {
	h.staging = reflect.New(h.typ)
	t := bare(h.typ)
	kind, xp := w(newSlot(t, h.staging.UnsafePointer(), HolderValue))
	h.kind = kind
	if kind == HolderXValue {
		if xp == nil {
			return errors.NilPointer(errors.PhaseInvoke, path, t.String())
		}
		h.staging.Elem().Set(reflect.NewAt(h.typ, xp).Elem())
	}
	return nil
}

func (h *valueHolder) arg() reflect.Value { return h.staging.Elem() }

func (h *valueHolder) read(r ParamReader) {
	r(newSlot(bare(h.typ), h.staging.UnsafePointer(), h.kind))
}

// refHolder serves Ref and RValueRef: the argument binds to staging storage,
// or to the writer's temporary when it reports an xvalue.
type refHolder struct {
	elem  reflect.Type
	bind  rttr.Modifier
	bound unsafe.Pointer
	kind  HolderType
}

func (h *refHolder) write(w ParamWriter, path []string) error {
	staging := reflect.New(h.elem).UnsafePointer()
	t := bare(h.elem)
	kind, xp := w(newSlot(t, staging, HolderValue))
	h.kind = kind
	h.bound = staging
	if kind == HolderXValue {
		if xp == nil {
			return errors.NilPointer(errors.PhaseInvoke, path, t.String())
		}
		h.bound = xp
	}
	return nil
}

func (h *refHolder) arg() reflect.Value { return reflect.ValueOf(h.bind.Bind(h.bound)) }

func (h *refHolder) read(r ParamReader) {
	r(newSlot(bare(h.elem), h.bound, h.kind))
}

type constHolder struct {
	inner holder
	wrap  rttr.Modifier
}

func (h *constHolder) write(w ParamWriter, path []string) error { return h.inner.write(w, path) }

func (h *constHolder) arg() reflect.Value {
	v := h.inner.arg()
	tmp := reflect.New(v.Type())
	tmp.Elem().Set(v)
	return reflect.ValueOf(h.wrap.Bind(tmp.UnsafePointer()))
}

func (h *constHolder) read(r ParamReader) { h.inner.read(r) }
