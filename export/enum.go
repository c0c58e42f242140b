package export

import (
	"reflect"
	"strconv"

	"golang.org/x/exp/constraints"
)

// EnumKind is the integer kind an EnumValue was stored from.
type EnumKind uint8

const (
	EnumInvalid EnumKind = iota
	EnumInt8
	EnumInt16
	EnumInt32
	EnumInt64
	EnumUInt8
	EnumUInt16
	EnumUInt32
	EnumUInt64
)

var enumKindNames = [...]string{"invalid", "int8", "int16", "int32", "int64", "uint8", "uint16", "uint32", "uint64"}

func (k EnumKind) String() string {
	if int(k) < len(enumKindNames) {
		return enumKindNames[k]
	}
	return "unknown"
}

func (k EnumKind) Signed() bool { return k >= EnumInt8 && k <= EnumInt64 }

// Bits is the width of the kind.
func (k EnumKind) Bits() int {
	switch k {
	case EnumInt8, EnumUInt8:
		return 8
	case EnumInt16, EnumUInt16:
		return 16
	case EnumInt32, EnumUInt32:
		return 32
	case EnumInt64, EnumUInt64:
		return 64
	default:
		return 0
	}
}

// Holds reports whether every value of kind src is representable in k.
func (k EnumKind) Holds(src EnumKind) bool {
	if k == EnumInvalid || src == EnumInvalid {
		return false
	}
	switch {
	case k.Signed() == src.Signed():
		return k.Bits() >= src.Bits()
	case k.Signed():
		return k.Bits() > src.Bits()
	default:
		return false
	}
}

// KindOf maps a Go integer kind to an EnumKind. int, uint and uintptr map by
// their size on the current platform.
func KindOf(t reflect.Type) EnumKind {
	signed := true
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		signed = false
	default:
		return EnumInvalid
	}
	k := EnumKind(0)
	switch t.Size() {
	case 1:
		k = EnumInt8
	case 2:
		k = EnumInt16
	case 4:
		k = EnumInt32
	case 8:
		k = EnumInt64
	default:
		return EnumInvalid
	}
	if !signed {
		k += EnumUInt8 - EnumInt8
	}
	return k
}

// EnumValue is an integer tagged with the kind it was stored from.
type EnumValue struct {
	kind EnumKind
	bits uint64
}

// EnumValueOf stores v with the kind of T.
func EnumValueOf[T constraints.Integer](v T) EnumValue {
	k := KindOf(reflect.TypeFor[T]())
	if k.Signed() {
		return EnumValue{kind: k, bits: uint64(int64(v))}
	}
	return EnumValue{kind: k, bits: uint64(v)}
}

// EnumValueFrom stores an integer reflect.Value.
func EnumValueFrom(v reflect.Value) (EnumValue, bool) {
	k := KindOf(v.Type())
	switch {
	case k == EnumInvalid:
		return EnumValue{}, false
	case k.Signed():
		return EnumValue{kind: k, bits: uint64(v.Int())}, true
	default:
		return EnumValue{kind: k, bits: v.Uint()}, true
	}
}

func (e EnumValue) Kind() EnumKind { return e.kind }

func (e EnumValue) IsValid() bool { return e.kind != EnumInvalid }

// Int64 returns the value sign-extended from its stored kind.
func (e EnumValue) Int64() int64 { return int64(e.bits) }

// Uint64 returns the raw bits.
func (e EnumValue) Uint64() uint64 { return e.bits }

func (e EnumValue) String() string {
	if e.kind.Signed() {
		return strconv.FormatInt(int64(e.bits), 10)
	}
	return strconv.FormatUint(e.bits, 10)
}

// CastTo converts e to T when T can represent every value of e's stored kind.
// It never inspects the value itself: a stored int64 does not cast to int8
// even when it is small.
func CastTo[T constraints.Integer](e EnumValue) (T, bool) {
	if !KindOf(reflect.TypeFor[T]()).Holds(e.kind) {
		var zero T
		return zero, false
	}
	if e.kind.Signed() {
		return T(int64(e.bits)), true
	}
	return T(e.bits), true
}
