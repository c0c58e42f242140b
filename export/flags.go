package export

import "strings"

// Access mirrors member visibility. Go has only exported and unexported
// identifiers; the builder maps them to AccessPublic and AccessPrivate.
type Access uint8

const (
	AccessPublic Access = iota
	AccessProtected
	AccessPrivate
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	default:
		return "unknown"
	}
}

// Flag is the capability bitset shared by all descriptors.
type Flag uint32

const (
	// FlagReturnsError marks callables whose Go func has a trailing error
	// result. The error is not part of the signature.
	FlagReturnsError Flag = 1 << iota
	// FlagVariadic marks callables whose last parameter is variadic.
	FlagVariadic
	// FlagHidden keeps a member out of bindings and listings.
	FlagHidden
	FlagDeprecated
	// MethodFlagConst marks methods with a value receiver.
	MethodFlagConst
	// MethodFlagOperator marks extern methods that implement an operator.
	MethodFlagOperator
	// FieldFlagReadOnly forbids setters in bindings.
	FieldFlagReadOnly
	// ParamFlagOut marks parameters the callee writes through.
	ParamFlagOut
	// ParamFlagOptional marks parameters that carry a default.
	ParamFlagOptional
)

var flagNames = []struct {
	f    Flag
	name string
}{
	{FlagReturnsError, "returns-error"},
	{FlagVariadic, "variadic"},
	{FlagHidden, "hidden"},
	{FlagDeprecated, "deprecated"},
	{MethodFlagConst, "const"},
	{MethodFlagOperator, "operator"},
	{FieldFlagReadOnly, "readonly"},
	{ParamFlagOut, "out"},
	{ParamFlagOptional, "optional"},
}

func (f Flag) Has(o Flag) bool { return f&o == o }

func (f Flag) String() string {
	var parts []string
	for _, n := range flagNames {
		if f.Has(n.f) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
