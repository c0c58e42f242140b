// Package rttr provides run-time type reflection for Go types that need to be
// reached from code which only learns their shape at run time: script
// bindings, serializers, editors.
//
// The library is organized into several packages with distinct responsibilities:
//
//	rttr/                Root package with the Const, Ref and RValueRef modifier markers
//	├── typeid/          128-bit type identifiers and the id -> name table
//	├── signature/       Binary type-signature codec, views, traits and hashing
//	├── stackproxy/      Type-erased calling convention (writers, readers, invokers)
//	├── export/          Descriptor data model (records, enums, methods, fields, ...)
//	├── builder/         Fluent builders that populate descriptors from Go types
//	├── registry/        Process-wide descriptor registry
//	├── resource/        Handle table for live reflected objects
//	├── binding/wasmhost WebAssembly host binding built on the registry
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Describe a type once, usually from an init function:
//
//	b := builder.NewRecord[Vec2]().BasicInfo()
//	b.Field("X")
//	b.Field("Y")
//	b.Method("Add", (*Vec2).Add).Param(0, "other")
//	b.Method("Scale", (*Vec2).Scale).Param(0, "k")
//	rd, err := b.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	registry.Default().MustAddRecord(rd)
//
// Then call it without knowing its Go signature:
//
//	m := rd.FindMethod("Scale", sig, signature.CompareDefault)
//	err := m.StackProxyInvoke(unsafe.Pointer(&v), stackproxy.StackProxy{...})
//
// # Type Signatures
//
// Every parameter, return value and field carries a compact byte signature:
// zero or more modifiers followed by one type id. Go pointers, arrays and
// slices map to Pointer and ArrayDim; const, lvalue and rvalue references have
// no Go spelling and are expressed with the marker types in this package:
//
//	func (v *Vec2) Set(src rttr.Ref[rttr.Const[Vec2]])   // Ref, Const, TypeId(Vec2)
//	func Swap(a, b rttr.Ref[Vec2])                       // Ref, TypeId(Vec2)
//	func Consume(v rttr.RValueRef[Buffer])               // RValueRef, TypeId(Buffer)
//
// # Thread Safety
//
// Descriptors are built once and never mutated afterwards. Queries on a built
// descriptor are safe for any number of goroutines. The registry guards its own
// maps; nothing else locks.
package rttr
