package signature

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/rttr"
	"github.com/wippyai/rttr/errors"
	"github.com/wippyai/rttr/typeid"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		sig  TypeSignature
		want string
	}{
		{TypeOf[int32](), "int32"},
		{TypeOf[*rttr.Const[int32]](), "*const int32"},
		{TypeOf[rttr.Ref[[4]float32]](), "&[4]float32"},
		{TypeOf[rttr.RValueRef[vec2]](), "&&signature.vec2"},
		{TypeOf[[]uint8](), "[]uint8"},
		{FuncOf(typeFor[float64](), typeFor[int32](), typeFor[float32]()), "func(int32, float32) float64"},
		{FuncOf(nil, typeFor[*vec2]()), "func(*signature.vec2)"},
		{FuncOf(nil), "func()"},
		{TypeSignature{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := tt.sig.View().Format()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, tt.sig.String())
		})
	}
}

func TestFormatLiteral(t *testing.T) {
	buf := make([]byte, 5)
	WriteFloat(buf, 0, 2.5)
	got, err := Format(buf)
	require.NoError(t, err)
	assert.Equal(t, "2.5", got)
}

func TestFormatFailures(t *testing.T) {
	generic := make([]byte, TypeIDSize)
	WriteGenericTypeID(generic, 0, typeid.For[vec2]())

	nested := append([]byte{byte(SignalPointer)}, FuncOf(nil).Bytes()...)

	truncated := TypeOf[*int32]().Bytes()
	truncated = truncated[:len(truncated)-4]

	trailing := append(TypeOf[int32]().Bytes(), byte(SignalPointer))

	tests := []struct {
		name string
		buf  []byte
		kind errors.Kind
	}{
		{"generic", generic, errors.KindUnsupported},
		{"nested function", nested, errors.KindUnsupported},
		{"separator", []byte{byte(SignalSeparator)}, errors.KindUnsupported},
		{"truncated", truncated, errors.KindInvalidData},
		{"unknown tag", []byte{0xee}, errors.KindInvalidData},
		{"modifiers only", []byte{byte(SignalConst)}, errors.KindInvalidData},
		{"trailing signal", trailing, errors.KindInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Format(tt.buf)
			require.Error(t, err)
			var e *errors.Error
			require.True(t, stderrors.As(err, &e))
			assert.Equal(t, tt.kind, e.Kind)
		})
	}
}

func TestStringFallsBackToDump(t *testing.T) {
	assert.Equal(t, "<Separator>", View{byte(SignalSeparator)}.String())
}
