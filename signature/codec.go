package signature

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/rttr/errors"
	"github.com/wippyai/rttr/typeid"
)

// All codec functions work on buf[pos:len(buf)]; len(buf) is the end bound.
// They return the position just past what they consumed or produced.

func mustFit(buf []byte, pos, n int, phase errors.Phase) {
	if pos < 0 || pos+n > len(buf) {
		panic(errors.New(phase, errors.KindOutOfBounds).
			Detail("signal needs %d bytes at %d, buffer ends at %d", n, pos, len(buf)).
			Value(pos).
			Build())
	}
}

func expect(buf []byte, pos int, want Signal) {
	mustFit(buf, pos, 1, errors.PhaseDecode)
	if got := Signal(buf[pos]); got != want {
		panic(errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			Detail("expected %s signal at %d, found %s", want, pos, got).
			Value(got).
			Build())
	}
	mustFit(buf, pos, want.Size(), errors.PhaseDecode)
}

// PeekSignal returns the tag at pos without advancing. Positions at or past
// the end read as SignalNone.
func PeekSignal(buf []byte, pos int) Signal {
	if pos < 0 || pos >= len(buf) {
		return SignalNone
	}
	return Signal(buf[pos])
}

// WriteSignal writes a payload-less signal (a mark or a modifier other than
// ArrayDim).
func WriteSignal(buf []byte, pos int, s Signal) int {
	if s.PayloadSize() != 0 || !s.Valid() {
		panic(errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Detail("%s carries a payload, use its dedicated writer", s).
			Build())
	}
	mustFit(buf, pos, 1, errors.PhaseEncode)
	buf[pos] = byte(s)
	return pos + 1
}

// ReadSignal consumes a payload-less signal of kind want.
func ReadSignal(buf []byte, pos int, want Signal) int {
	expect(buf, pos, want)
	return pos + want.Size()
}

func writeID(buf []byte, pos int, s Signal, id typeid.ID) int {
	mustFit(buf, pos, TypeIDSize, errors.PhaseEncode)
	buf[pos] = byte(s)
	copy(buf[pos+1:pos+TypeIDSize], id[:])
	return pos + TypeIDSize
}

func readID(buf []byte, pos int, s Signal) (typeid.ID, int) {
	expect(buf, pos, s)
	var id typeid.ID
	copy(id[:], buf[pos+1:pos+TypeIDSize])
	return id, pos + TypeIDSize
}

// WriteTypeID writes TypeId(id).
func WriteTypeID(buf []byte, pos int, id typeid.ID) int {
	return writeID(buf, pos, SignalTypeID, id)
}

// ReadTypeID reads TypeId and returns its id.
func ReadTypeID(buf []byte, pos int) (typeid.ID, int) {
	return readID(buf, pos, SignalTypeID)
}

// WriteGenericTypeID writes GenericTypeId(id). Generic arguments, if any, are
// written by the caller right after it.
func WriteGenericTypeID(buf []byte, pos int, id typeid.ID) int {
	return writeID(buf, pos, SignalGenericTypeID, id)
}

// ReadGenericTypeID reads GenericTypeId and returns its id.
func ReadGenericTypeID(buf []byte, pos int) (typeid.ID, int) {
	return readID(buf, pos, SignalGenericTypeID)
}

// WriteArrayDim writes ArrayDim(n). n == 0 means unbounded.
func WriteArrayDim(buf []byte, pos int, n uint32) int {
	mustFit(buf, pos, ArrayDimSize, errors.PhaseEncode)
	buf[pos] = byte(SignalArrayDim)
	binary.LittleEndian.PutUint32(buf[pos+1:], n)
	return pos + ArrayDimSize
}

// ReadArrayDim reads ArrayDim and returns its element count.
func ReadArrayDim(buf []byte, pos int) (uint32, int) {
	expect(buf, pos, SignalArrayDim)
	return binary.LittleEndian.Uint32(buf[pos+1:]), pos + ArrayDimSize
}

func writeBits(buf []byte, pos int, s Signal, bits uint64) int {
	size := s.Size()
	mustFit(buf, pos, size, errors.PhaseEncode)
	buf[pos] = byte(s)
	switch size - 1 {
	case 1:
		buf[pos+1] = byte(bits)
	case 2:
		binary.LittleEndian.PutUint16(buf[pos+1:], uint16(bits))
	case 4:
		binary.LittleEndian.PutUint32(buf[pos+1:], uint32(bits))
	case 8:
		binary.LittleEndian.PutUint64(buf[pos+1:], bits)
	}
	return pos + size
}

func readBits(buf []byte, pos int, s Signal) (uint64, int) {
	expect(buf, pos, s)
	var bits uint64
	switch s.PayloadSize() {
	case 1:
		bits = uint64(buf[pos+1])
	case 2:
		bits = uint64(binary.LittleEndian.Uint16(buf[pos+1:]))
	case 4:
		bits = uint64(binary.LittleEndian.Uint32(buf[pos+1:]))
	case 8:
		bits = binary.LittleEndian.Uint64(buf[pos+1:])
	}
	return bits, pos + s.Size()
}

func WriteBool(buf []byte, pos int, v bool) int {
	var b uint64
	if v {
		b = 1
	}
	return writeBits(buf, pos, SignalBool, b)
}

func ReadBool(buf []byte, pos int) (bool, int) {
	bits, next := readBits(buf, pos, SignalBool)
	return bits != 0, next
}

func WriteInt8(buf []byte, pos int, v int8) int {
	return writeBits(buf, pos, SignalInt8, uint64(uint8(v)))
}

func ReadInt8(buf []byte, pos int) (int8, int) {
	bits, next := readBits(buf, pos, SignalInt8)
	return int8(uint8(bits)), next
}

func WriteInt16(buf []byte, pos int, v int16) int {
	return writeBits(buf, pos, SignalInt16, uint64(uint16(v)))
}

func ReadInt16(buf []byte, pos int) (int16, int) {
	bits, next := readBits(buf, pos, SignalInt16)
	return int16(uint16(bits)), next
}

func WriteInt32(buf []byte, pos int, v int32) int {
	return writeBits(buf, pos, SignalInt32, uint64(uint32(v)))
}

func ReadInt32(buf []byte, pos int) (int32, int) {
	bits, next := readBits(buf, pos, SignalInt32)
	return int32(uint32(bits)), next
}

func WriteInt64(buf []byte, pos int, v int64) int {
	return writeBits(buf, pos, SignalInt64, uint64(v))
}

func ReadInt64(buf []byte, pos int) (int64, int) {
	bits, next := readBits(buf, pos, SignalInt64)
	return int64(bits), next
}

func WriteUInt8(buf []byte, pos int, v uint8) int {
	return writeBits(buf, pos, SignalUInt8, uint64(v))
}

func ReadUInt8(buf []byte, pos int) (uint8, int) {
	bits, next := readBits(buf, pos, SignalUInt8)
	return uint8(bits), next
}

func WriteUInt16(buf []byte, pos int, v uint16) int {
	return writeBits(buf, pos, SignalUInt16, uint64(v))
}

func ReadUInt16(buf []byte, pos int) (uint16, int) {
	bits, next := readBits(buf, pos, SignalUInt16)
	return uint16(bits), next
}

func WriteUInt32(buf []byte, pos int, v uint32) int {
	return writeBits(buf, pos, SignalUInt32, uint64(v))
}

func ReadUInt32(buf []byte, pos int) (uint32, int) {
	bits, next := readBits(buf, pos, SignalUInt32)
	return uint32(bits), next
}

func WriteUInt64(buf []byte, pos int, v uint64) int {
	return writeBits(buf, pos, SignalUInt64, v)
}

func ReadUInt64(buf []byte, pos int) (uint64, int) {
	return readBits(buf, pos, SignalUInt64)
}

func WriteFloat(buf []byte, pos int, v float32) int {
	return writeBits(buf, pos, SignalFloat, uint64(math.Float32bits(v)))
}

func ReadFloat(buf []byte, pos int) (float32, int) {
	bits, next := readBits(buf, pos, SignalFloat)
	return math.Float32frombits(uint32(bits)), next
}

func WriteDouble(buf []byte, pos int, v float64) int {
	return writeBits(buf, pos, SignalDouble, math.Float64bits(v))
}

func ReadDouble(buf []byte, pos int) (float64, int) {
	bits, next := readBits(buf, pos, SignalDouble)
	return math.Float64frombits(bits), next
}

// ReadLiteral decodes any literal signal into its Go value.
func ReadLiteral(buf []byte, pos int) (any, int) {
	switch s := PeekSignal(buf, pos); s {
	case SignalBool:
		return ReadBool(buf, pos)
	case SignalInt8:
		return ReadInt8(buf, pos)
	case SignalInt16:
		return ReadInt16(buf, pos)
	case SignalInt32:
		return ReadInt32(buf, pos)
	case SignalInt64:
		return ReadInt64(buf, pos)
	case SignalUInt8:
		return ReadUInt8(buf, pos)
	case SignalUInt16:
		return ReadUInt16(buf, pos)
	case SignalUInt32:
		return ReadUInt32(buf, pos)
	case SignalUInt64:
		return ReadUInt64(buf, pos)
	case SignalFloat:
		return ReadFloat(buf, pos)
	case SignalDouble:
		return ReadDouble(buf, pos)
	default:
		panic(errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			Detail("expected literal signal at %d, found %s", pos, s).
			Build())
	}
}

// Jump skips the signal at pos, asserting it is of kind want.
func Jump(buf []byte, pos int, want Signal) int {
	expect(buf, pos, want)
	return pos + want.Size()
}

// JumpSignal skips whatever signal sits at pos, payload included.
func JumpSignal(buf []byte, pos int) int {
	mustFit(buf, pos, 1, errors.PhaseDecode)
	s := Signal(buf[pos])
	if !s.Valid() {
		panic(errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Detail("unknown signal 0x%02x at %d", buf[pos], pos).
			Build())
	}
	mustFit(buf, pos, s.Size(), errors.PhaseDecode)
	return pos + s.Size()
}

// JumpModifiers skips a maximal run of modifier signals.
func JumpModifiers(buf []byte, pos int) int {
	for pos < len(buf) && Signal(buf[pos]).IsModifier() {
		pos = JumpSignal(buf, pos)
	}
	return pos
}

// JumpTypeSignature skips one complete type signature: its modifiers and the
// terminal TypeId or GenericTypeId.
func JumpTypeSignature(buf []byte, pos int) int {
	pos = JumpModifiers(buf, pos)
	s := PeekSignal(buf, pos)
	if !s.IsTerminal() {
		panic(errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Detail("type signature must end with TypeId, found %s at %d", s, pos).
			Build())
	}
	return JumpSignal(buf, pos)
}
