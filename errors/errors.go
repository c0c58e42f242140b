package errors

import (
	"fmt"
	"strings"
)

// Phase names the stage of the reflection pipeline that failed.
type Phase string

const (
	PhaseRegister Phase = "register" // descriptor construction
	PhaseEncode   Phase = "encode"   // signature writing
	PhaseDecode   Phase = "decode"   // signature reading
	PhaseLookup   Phase = "lookup"   // registry and descriptor queries
	PhaseInvoke   Phase = "invoke"   // stack-proxy calls
	PhaseBind     Phase = "bind"     // downstream bindings
	PhaseConfig   Phase = "config"   // configuration loading
)

// Kind says what went wrong, independent of the phase.
type Kind string

const (
	KindTypeMismatch   Kind = "type_mismatch"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindInvalidData    Kind = "invalid_data"
	KindUnsupported    Kind = "unsupported"
	KindOverflow       Kind = "overflow"
	KindNilPointer     Kind = "nil_pointer"
	KindInvalidEnum    Kind = "invalid_enum"
	KindNotFound       Kind = "not_found"
	KindInvalidInput   Kind = "invalid_input"
	KindRegistration   Kind = "registration"
	KindDuplicate      Kind = "duplicate"
	KindPanic          Kind = "panic"
	KindNotInitialized Kind = "not_initialized"
)

// Error carries a phase, a kind and whatever context the failing site had:
// the member path ("geometry", "Vec2", "Add"), the Go type involved and the
// rendered type signature it was checked against.
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	GoType  string
	SigType string
	Detail  string
	Path    []string
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Phase, e.Kind)

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	types := e.types()
	if types != "" {
		b.WriteString(": ")
		b.WriteString(types)
	}
	if e.Detail != "" {
		if types != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		fmt.Fprintf(&b, " (caused by: %v)", e.Cause)
	}
	return b.String()
}

func (e *Error) types() string {
	var parts []string
	if e.GoType != "" {
		parts = append(parts, "Go type "+e.GoType)
	}
	if e.SigType != "" {
		parts = append(parts, "signature "+e.SigType)
	}
	return strings.Join(parts, ", ")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on phase and kind only, so errors.Is(err, &Error{Phase:
// PhaseInvoke, Kind: KindPanic}) works as a category test.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder assembles an Error field by field.
type Builder struct {
	err Error
}

func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

func (b *Builder) SigType(t string) *Builder {
	b.err.SigType = t
	return b
}

func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail formats msg with args when any are given.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	b.err.Detail = msg
	return b
}

func (b *Builder) Build() *Error {
	return &b.err
}

// TypeMismatch reports a Go type that does not fit the expected signature.
func TypeMismatch(phase Phase, path []string, goType, sigType string) *Error {
	return &Error{Phase: phase, Kind: KindTypeMismatch, Path: path, GoType: goType, SigType: sigType}
}

func Unsupported(phase Phase, what string) *Error {
	return &Error{Phase: phase, Kind: KindUnsupported, Detail: what}
}

// OutOfBounds reports a cursor or parameter index past the end.
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Value:  index,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
	}
}

func NilPointer(phase Phase, path []string, goType string) *Error {
	return &Error{Phase: phase, Kind: KindNilPointer, Path: path, GoType: goType, Detail: "nil pointer"}
}

// Overflow reports a value that does not fit targetType, for example an enum
// item wider than the enum's underlying integer.
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindOverflow,
		Path:    path,
		SigType: targetType,
		Value:   value,
		Detail:  fmt.Sprintf("value %v overflows %s", value, targetType),
	}
}

func InvalidEnum(phase Phase, path []string, value any, enumType string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindInvalidEnum,
		Path:    path,
		SigType: enumType,
		Value:   value,
		Detail:  fmt.Sprintf("invalid enum value %v for %s", value, enumType),
	}
}

// InvalidData reports a malformed signature buffer.
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{Phase: phase, Kind: KindInvalidData, Path: path, Detail: detail}
}

func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{Phase: phase, Kind: kind, Detail: detail, Cause: cause}
}

func NotInitialized(phase Phase, component string) *Error {
	return &Error{Phase: phase, Kind: KindNotInitialized, Detail: component + " not initialized"}
}

// NotFound reports a failed lookup of a record, enum, member or export.
func NotFound(phase Phase, what, name string) *Error {
	return &Error{Phase: phase, Kind: KindNotFound, Detail: fmt.Sprintf("%s %q not found", what, name)}
}

func InvalidInput(phase Phase, detail string) *Error {
	return &Error{Phase: phase, Kind: KindInvalidInput, Detail: detail}
}

// Registration wraps the failure to describe one member of a reflected type.
func Registration(typeName, member string, cause error) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindRegistration,
		Path:   []string{typeName, member},
		Detail: fmt.Sprintf("register %s.%s", typeName, member),
		Cause:  cause,
	}
}

func Duplicate(what, name string) *Error {
	return &Error{Phase: PhaseRegister, Kind: KindDuplicate, Detail: fmt.Sprintf("%s %q already registered", what, name)}
}

// Panicked converts a value recovered from a native call. Error values
// become the cause.
func Panicked(path []string, r any) *Error {
	e := &Error{
		Phase:  PhaseInvoke,
		Kind:   KindPanic,
		Path:   path,
		Value:  r,
		Detail: fmt.Sprintf("native call panicked: %v", r),
	}
	if err, ok := r.(error); ok {
		e.Cause = err
	}
	return e
}

func ConfigFailed(what string, cause error) *Error {
	return &Error{Phase: PhaseConfig, Kind: KindInvalidData, Detail: "load " + what, Cause: cause}
}
