// Package reexport builds a core WebAssembly module that imports a set of
// host functions and exports each one again under the same name.
//
// wazero does not hand out callable exports of host modules, so calls from
// Go go through this module instead.
package reexport

import (
	"github.com/tetratelabs/wazero/api"
)

const (
	sectionType     = 0x01
	sectionImport   = 0x02
	sectionFunction = 0x03
	sectionExport   = 0x07
	sectionCode     = 0x0a

	kindFunc = 0x00

	opLocalGet = 0x20
	opCall     = 0x10
	opEnd      = 0x0b
)

var header = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// Builder collects the functions to forward.
type Builder struct {
	module string
	funcs  []fn
}

type fn struct {
	name    string
	params  []api.ValueType
	results []api.ValueType
}

// New returns a builder importing from the host module named module.
func New(module string) *Builder {
	return &Builder{module: module}
}

// AddFunc forwards the host function name with the given core signature.
func (b *Builder) AddFunc(name string, params, results []api.ValueType) {
	b.funcs = append(b.funcs, fn{name: name, params: params, results: results})
}

// Len returns the number of forwarded functions.
func (b *Builder) Len() int { return len(b.funcs) }

// Build encodes the module. Without functions the result is an empty module.
func (b *Builder) Build() []byte {
	out := append([]byte(nil), header...)
	if len(b.funcs) == 0 {
		return out
	}
	out = appendSection(out, sectionType, b.typeSection())
	out = appendSection(out, sectionImport, b.importSection())
	out = appendSection(out, sectionFunction, b.functionSection())
	out = appendSection(out, sectionExport, b.exportSection())
	out = appendSection(out, sectionCode, b.codeSection())
	return out
}

func appendSection(out []byte, id byte, body []byte) []byte {
	out = append(out, id)
	out = AppendULEB128(out, uint32(len(body)))
	return append(out, body...)
}

func appendName(out []byte, s string) []byte {
	out = AppendULEB128(out, uint32(len(s)))
	return append(out, s...)
}

// typeSection declares one function type per forwarded function.
func (b *Builder) typeSection() []byte {
	s := AppendULEB128(nil, uint32(len(b.funcs)))
	for _, f := range b.funcs {
		s = append(s, 0x60)
		s = AppendULEB128(s, uint32(len(f.params)))
		for _, t := range f.params {
			s = append(s, ValType(t))
		}
		s = AppendULEB128(s, uint32(len(f.results)))
		for _, t := range f.results {
			s = append(s, ValType(t))
		}
	}
	return s
}

// importSection imports function i with type i.
func (b *Builder) importSection() []byte {
	s := AppendULEB128(nil, uint32(len(b.funcs)))
	for i, f := range b.funcs {
		s = appendName(s, b.module)
		s = appendName(s, f.name)
		s = append(s, kindFunc)
		s = AppendULEB128(s, uint32(i))
	}
	return s
}

func (b *Builder) functionSection() []byte {
	s := AppendULEB128(nil, uint32(len(b.funcs)))
	for i := range b.funcs {
		s = AppendULEB128(s, uint32(i))
	}
	return s
}

// exportSection exports the local wrappers, which follow the imports in the
// function index space.
func (b *Builder) exportSection() []byte {
	n := len(b.funcs)
	s := AppendULEB128(nil, uint32(n))
	for i, f := range b.funcs {
		s = appendName(s, f.name)
		s = append(s, kindFunc)
		s = AppendULEB128(s, uint32(n+i))
	}
	return s
}

func (b *Builder) codeSection() []byte {
	s := AppendULEB128(nil, uint32(len(b.funcs)))
	for i, f := range b.funcs {
		body := []byte{0x00} // no locals
		for p := range f.params {
			body = append(body, opLocalGet)
			body = AppendULEB128(body, uint32(p))
		}
		body = append(body, opCall)
		body = AppendULEB128(body, uint32(i))
		body = append(body, opEnd)

		s = AppendULEB128(s, uint32(len(body)))
		s = append(s, body...)
	}
	return s
}

// AppendULEB128 appends v in unsigned LEB128 form.
func AppendULEB128(out []byte, v uint32) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, c|0x80)
			continue
		}
		return append(out, c)
	}
}

// ValType returns the binary encoding of a core value type.
func ValType(t api.ValueType) byte {
	switch t {
	case api.ValueTypeI64:
		return 0x7e
	case api.ValueTypeF32:
		return 0x7d
	case api.ValueTypeF64:
		return 0x7c
	default:
		return 0x7f
	}
}
