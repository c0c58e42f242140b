package builder

import (
	"reflect"

	"github.com/wippyai/rttr"
	"github.com/wippyai/rttr/errors"
)

type state struct {
	typeName string
	err      error
}

func (s *state) ok() bool { return s.err == nil }

func (s *state) fail(member string, cause error) {
	if s.err == nil {
		s.err = errors.Registration(s.typeName, member, cause)
	}
}

// storageOf strips every modifier marker: the type whose storage a parameter
// ultimately refers to.
func storageOf(t reflect.Type) reflect.Type {
	for {
		_, elem, ok := rttr.ModifierOf(t)
		if !ok {
			return t
		}
		t = elem
	}
}
