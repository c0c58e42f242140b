// Package signature implements the binary type-signature format.
//
// A signature is a byte stream of signals. Each signal is one tag byte,
// optionally followed by a fixed-size little-endian payload:
//
//	Signal              Tag  Payload
//	─────────────────────────────────────────
//	None                0    -
//	Separator           1    -
//	TypeId              2    16-byte type id
//	GenericTypeId       3    16-byte type id
//	FunctionSignature   4    -
//	Const               5    -
//	Pointer             6    -
//	Ref                 7    -
//	RValueRef           8    -
//	ArrayDim            9    uint32 element count (0 = unbounded)
//	Bool .. Double      10+  the literal's bytes
//
// A type signature is zero or more modifiers followed by exactly one TypeId or
// GenericTypeId, outermost modifier first:
//
//	*rttr.Const[int32]   Pointer, Const, TypeId(int32)
//	rttr.Ref[[4]float32] Ref, ArrayDim(4), TypeId(float32)
//	[]byte               ArrayDim(0), TypeId(uint8)
//
// A function signature is FunctionSignature, the return type signature, then
// one signature per parameter. The parameter count is not encoded; readers
// know it from the descriptor or consume until the end of the buffer.
//
// # Layers
//
//	codec.go      Write*/Read*/Jump* over ([]byte, pos)
//	compare.go    SignalEqual, SignatureEqual with CompareFlag folding
//	normalize.go  in-place canonicalization
//	format.go     human-readable rendering
//	traits.go     Go type -> signature (Of, TypeOf, FuncOf)
//	typed.go      Typed[T], a per-type frozen signature
//
// Writing past the end of a buffer or reading a signal of the wrong kind is a
// programming error and panics with an *errors.Error. Comparison, formatting
// and lookups report through return values.
package signature
