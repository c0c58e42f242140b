package signature

// Signal is one tagged unit of a type signature.
type Signal uint8

const (
	SignalNone Signal = iota
	SignalSeparator
	SignalTypeID
	SignalGenericTypeID
	SignalFunctionSignature
	SignalConst
	SignalPointer
	SignalRef
	SignalRValueRef
	SignalArrayDim
	SignalBool
	SignalInt8
	SignalInt16
	SignalInt32
	SignalInt64
	SignalUInt8
	SignalUInt16
	SignalUInt32
	SignalUInt64
	SignalFloat
	SignalDouble
)

const (
	// TypeIDSize is the encoded size of a TypeId or GenericTypeId signal.
	TypeIDSize = 1 + 16
	// ArrayDimSize is the encoded size of an ArrayDim signal.
	ArrayDimSize = 1 + 4
	// ModifierSize is the encoded size of Const, Pointer, Ref and RValueRef.
	ModifierSize = 1
)

var signalNames = [...]string{
	SignalNone:              "None",
	SignalSeparator:         "Separator",
	SignalTypeID:            "TypeId",
	SignalGenericTypeID:     "GenericTypeId",
	SignalFunctionSignature: "FunctionSignature",
	SignalConst:             "Const",
	SignalPointer:           "Pointer",
	SignalRef:               "Ref",
	SignalRValueRef:         "RValueRef",
	SignalArrayDim:          "ArrayDim",
	SignalBool:              "Bool",
	SignalInt8:              "Int8",
	SignalInt16:             "Int16",
	SignalInt32:             "Int32",
	SignalInt64:             "Int64",
	SignalUInt8:             "UInt8",
	SignalUInt16:            "UInt16",
	SignalUInt32:            "UInt32",
	SignalUInt64:            "UInt64",
	SignalFloat:             "Float",
	SignalDouble:            "Double",
}

var payloadSizes = [...]int{
	SignalTypeID:        16,
	SignalGenericTypeID: 16,
	SignalArrayDim:      4,
	SignalBool:          1,
	SignalInt8:          1,
	SignalInt16:         2,
	SignalInt32:         4,
	SignalInt64:         8,
	SignalUInt8:         1,
	SignalUInt16:        2,
	SignalUInt32:        4,
	SignalUInt64:        8,
	SignalFloat:         4,
	SignalDouble:        8,
}

func (s Signal) String() string {
	if s.Valid() {
		return signalNames[s]
	}
	return "unknown"
}

// Valid reports whether s is a known tag.
func (s Signal) Valid() bool {
	return s <= SignalDouble
}

// IsModifier reports whether s modifies the type that follows it.
func (s Signal) IsModifier() bool {
	switch s {
	case SignalConst, SignalPointer, SignalRef, SignalRValueRef, SignalArrayDim:
		return true
	default:
		return false
	}
}

// IsLiteral reports whether s carries literal data (generic arguments only).
func (s Signal) IsLiteral() bool {
	return s >= SignalBool && s <= SignalDouble
}

// IsTerminal reports whether s ends a type signature.
func (s Signal) IsTerminal() bool {
	return s == SignalTypeID || s == SignalGenericTypeID
}

// PayloadSize returns the number of bytes that follow the tag.
func (s Signal) PayloadSize() int {
	if int(s) < len(payloadSizes) {
		return payloadSizes[s]
	}
	return 0
}

// Size returns the encoded size of the signal, tag included.
func (s Signal) Size() int {
	return 1 + s.PayloadSize()
}
