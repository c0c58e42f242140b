// Package stackproxy bridges reflected Go callables to callers that only know
// their signature at run time.
//
// A caller describes one call as a StackProxy: a writer and an optional reader
// per parameter plus an optional return reader. The invoker stages every
// parameter through a holder:
//
//  1. The holder hands the writer a Slot over its staging storage. The writer
//     either fills the slot and reports HolderValue, or reports HolderXValue
//     together with the address of a temporary it owns.
//  2. The native callable runs with the staged arguments. Ref and RValueRef
//     parameters bind to the staging slot, or to the xvalue address when one
//     was reported.
//  3. Each parameter reader sees the slot after the call so out-parameters
//     can be propagated back.
//  4. A non-void result is placed in a slot and handed to the return reader.
//
// The first write's reported HolderType is authoritative for every holder.
// Const parameters delegate to the holder of the wrapped type.
//
// Panics raised by the callable, a writer or a reader are recovered and
// returned as PhaseInvoke errors. A trailing error result of the callable is
// returned unchanged.
package stackproxy
