// Package errors is the structured error type shared by every rttr package.
//
// An *Error records the Phase that failed (register, encode, decode, lookup,
// invoke, bind, config) and a Kind, plus optional member path, Go type,
// rendered signature and cause. errors.Is compares phase and kind, so callers
// can test for a category without matching messages:
//
//	if errors.Is(err, &rttrerrors.Error{Phase: rttrerrors.PhaseInvoke, Kind: rttrerrors.KindPanic}) {
//		// the native function panicked
//	}
//
// Sites with a lot of context use the Builder:
//
//	err := errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
//		Path("geometry.Vec2", "Add").
//		GoType("func(geometry.Vec2) float64").
//		Detail("receiver must be geometry.Vec2 or *geometry.Vec2").
//		Build()
//
// The signature codec treats buffer overflow and reading the wrong signal as
// programming errors and panics with an *Error. Everything else is returned.
package errors
