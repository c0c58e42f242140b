package signature

import "github.com/wippyai/rttr/typeid"

// TypeSignature owns an immutable encoded signature.
type TypeSignature struct {
	data []byte
}

// New copies data into a TypeSignature.
func New(data []byte) TypeSignature {
	return TypeSignature{data: append([]byte(nil), data...)}
}

// View returns a non-owning window over the signature bytes. The bytes must
// not be modified through it.
func (s TypeSignature) View() View { return View(s.data) }

// Bytes returns a copy of the encoded signature.
func (s TypeSignature) Bytes() []byte { return append([]byte(nil), s.data...) }

func (s TypeSignature) Len() int      { return len(s.data) }
func (s TypeSignature) IsEmpty() bool { return len(s.data) == 0 }

// Equal compares under CompareDefault.
func (s TypeSignature) Equal(o TypeSignature) bool {
	return SignatureEqual(s.data, o.data, CompareDefault)
}

// EqualFlags compares under flags.
func (s TypeSignature) EqualFlags(o TypeSignature, flags CompareFlag) bool {
	return SignatureEqual(s.data, o.data, flags)
}

// Normalized returns the canonical form of s under flags.
func (s TypeSignature) Normalized(flags CompareFlag) TypeSignature {
	buf := s.Bytes()
	n := Normalize(buf, flags)
	return TypeSignature{data: buf[:n]}
}

func (s TypeSignature) Hash(flags CompareFlag) uint64 { return Hash(s.View(), flags) }

func (s TypeSignature) String() string { return s.View().String() }

// View is a non-owning window over an encoded signature.
type View []byte

func (v View) Len() int { return len(v) }

func (v View) IsEmpty() bool { return len(v) == 0 }

// Clone copies v into an owning TypeSignature.
func (v View) Clone() TypeSignature { return New(v) }

// Equal compares under CompareDefault.
func (v View) Equal(o View) bool { return SignatureEqual(v, o, CompareDefault) }

// EqualFlags compares under flags.
func (v View) EqualFlags(o View, flags CompareFlag) bool { return SignatureEqual(v, o, flags) }

// IsFunction reports whether v starts with a FunctionSignature mark.
func (v View) IsFunction() bool { return PeekSignal(v, 0) == SignalFunctionSignature }

// Return returns the return type of a function signature, or nil if v is not
// one.
func (v View) Return() View {
	if !v.IsFunction() {
		return nil
	}
	return v[1:JumpTypeSignature(v, 1)]
}

// Params splits a function signature into its parameter types.
func (v View) Params() []View {
	if !v.IsFunction() {
		return nil
	}
	end := usedLen(v)
	pos := JumpTypeSignature(v[:end], 1)
	var params []View
	for pos < end {
		next := JumpTypeSignature(v[:end], pos)
		params = append(params, v[pos:next])
		pos = next
	}
	return params
}

// Format renders v; see the package-level Format.
func (v View) Format() (string, error) { return Format(v) }

// String renders v, falling back to the raw signals when v cannot be
// formatted.
func (v View) String() string {
	if s, err := Format(v); err == nil {
		return s
	}
	return v.dump()
}

func (v View) dump() string {
	out := "<"
	for pos := 0; pos < len(v); {
		s := Signal(v[pos])
		if pos > 0 {
			out += " "
		}
		out += s.String()
		if !s.Valid() || pos+s.Size() > len(v) {
			break
		}
		pos += s.Size()
	}
	return out + ">"
}

// Cursor reads and writes signals at a moving position over a fixed buffer.
// Out-of-bounds writes and kind mismatches panic with *errors.Error.
type Cursor struct {
	buf []byte
	pos int
}

func NewCursor(buf []byte) *Cursor { return &Cursor{buf: buf} }

func (c *Cursor) Pos() int { return c.pos }

// Done reports whether the cursor reached the end or a None signal.
func (c *Cursor) Done() bool { return done(c.buf, c.pos) }

func (c *Cursor) Peek() Signal { return PeekSignal(c.buf, c.pos) }

func (c *Cursor) WriteSignal(s Signal) { c.pos = WriteSignal(c.buf, c.pos, s) }

func (c *Cursor) WriteTypeID(id typeid.ID) { c.pos = WriteTypeID(c.buf, c.pos, id) }

func (c *Cursor) WriteArrayDim(n uint32) { c.pos = WriteArrayDim(c.buf, c.pos, n) }

func (c *Cursor) ReadSignal(want Signal) { c.pos = ReadSignal(c.buf, c.pos, want) }

func (c *Cursor) ReadTypeID() typeid.ID {
	id, next := ReadTypeID(c.buf, c.pos)
	c.pos = next
	return id
}

func (c *Cursor) ReadArrayDim() uint32 {
	n, next := ReadArrayDim(c.buf, c.pos)
	c.pos = next
	return n
}

func (c *Cursor) Jump()              { c.pos = JumpSignal(c.buf, c.pos) }
func (c *Cursor) JumpModifiers()     { c.pos = JumpModifiers(c.buf, c.pos) }
func (c *Cursor) JumpTypeSignature() { c.pos = JumpTypeSignature(c.buf, c.pos) }
