package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:   PhaseInvoke,
				Kind:    KindTypeMismatch,
				Path:    []string{"geometry", "Vec2", "Scale"},
				GoType:  "string",
				SigType: "float32",
				Detail:  "cannot convert",
			},
			contains: []string{"[invoke]", "type_mismatch", "geometry.Vec2.Scale", "string", "float32", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[decode]", "out_of_bounds"},
		},
		{
			name: "signature only",
			err: &Error{
				Phase:   PhaseLookup,
				Kind:    KindNotFound,
				SigType: "func(int32)",
				Detail:  "no overload",
			},
			contains: []string{"[lookup]", "signature func(int32)", " - no overload"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseRegister,
				Kind:   KindRegistration,
				Detail: "bad method",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[register]", "registration", "bad method", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindTypeMismatch,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseEncode, Kind: KindTypeMismatch}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindTypeMismatch}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseEncode, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseEncode, Kind: KindTypeMismatch}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}

	var asErr *Error
	wrapped := Wrap(PhaseBind, KindInvalidInput, err, "outer")
	if !errors.As(wrapped, &asErr) || asErr.Phase != PhaseBind {
		t.Error("errors.As should find the outer error")
	}
	if !errors.Is(wrapped, target) {
		t.Error("errors.Is should see the wrapped cause")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseRegister, KindTypeMismatch).
		Path("Vec2", "Add").
		GoType("func(int)").
		SigType("func(float32)").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "float32", "int").
		Build()

	if err.Phase != PhaseRegister {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseRegister)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "Vec2" || err.Path[1] != "Add" {
		t.Errorf("Path = %v, want [Vec2 Add]", err.Path)
	}
	if err.GoType != "func(int)" {
		t.Errorf("GoType = %v", err.GoType)
	}
	if err.SigType != "func(float32)" {
		t.Errorf("SigType = %v", err.SigType)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected float32, got int" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseInvoke, []string{"arg0"}, "int", "string")
		if err.Kind != KindTypeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
		}
		if err.GoType != "int" || err.SigType != "string" {
			t.Errorf("GoType=%v SigType=%v", err.GoType, err.SigType)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseDecode, "generic type ids")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseDecode, []string{"sig"}, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("NilPointer", func(t *testing.T) {
		err := NilPointer(PhaseInvoke, []string{"obj"}, "*Vec2")
		if err.Kind != KindNilPointer || err.GoType != "*Vec2" {
			t.Errorf("got %v", err)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseEncode, []string{"val"}, 300, "uint8")
		if err.Kind != KindOverflow || err.Value != 300 {
			t.Errorf("got %v", err)
		}
	})

	t.Run("InvalidEnum", func(t *testing.T) {
		err := InvalidEnum(PhaseLookup, []string{"shape"}, 9, "Shape")
		if err.Kind != KindInvalidEnum {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidEnum)
		}
	})

	t.Run("Registration", func(t *testing.T) {
		cause := errors.New("not a func")
		err := Registration("Vec2", "Add", cause)
		if err.Phase != PhaseRegister || err.Kind != KindRegistration {
			t.Errorf("got %v", err)
		}
		if !strings.Contains(err.Error(), "Vec2.Add") {
			t.Errorf("message %q should name the member", err.Error())
		}
		if !errors.Is(err, cause) {
			t.Error("cause should be reachable")
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		err := Duplicate("record", "geometry.Vec2")
		if err.Kind != KindDuplicate {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDuplicate)
		}
	})

	t.Run("Panicked", func(t *testing.T) {
		inner := errors.New("boom")
		err := Panicked([]string{"Vec2", "Div"}, inner)
		if err.Kind != KindPanic || !errors.Is(err, inner) {
			t.Errorf("got %v", err)
		}
		if e := Panicked(nil, "text"); e.Cause != nil {
			t.Error("non-error panic value should not set Cause")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseLookup, "record", "Nope")
		if err.Kind != KindNotFound || !strings.Contains(err.Detail, `"Nope"`) {
			t.Errorf("got %v", err)
		}
	})
}
