// Package export holds the descriptor tree a reflected type is built into.
//
// A RecordData describes one Go struct (or other named type): its
// constructors, destructor, methods, static methods, extern methods, fields,
// static fields and embedded bases. An EnumData describes a named integer
// type and its items. Every callable descriptor carries the encoded function
// signature, the native Go func for statically typed callers and a
// stackproxy.Invoker for dynamically typed ones.
//
// Lookups are linear scans in declaration order. Descriptors are built once,
// normally by package builder, and are read-only afterwards.
package export
