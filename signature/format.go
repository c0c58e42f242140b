package signature

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/rttr/errors"
	"github.com/wippyai/rttr/typeid"
)

// Format renders a signature in Go-like prefix syntax, reading the buffer
// front to back: Const is "const ", Pointer "*", Ref "&", RValueRef "&&",
// ArrayDim "[N]" (or "[]" when unbounded) and TypeId the registered type name.
// Function signatures render as "func(p0, p1) ret".
//
// GenericTypeId, Separator and function signatures nested inside a type are
// not rendered; they yield a KindUnsupported error. Malformed input yields a
// KindInvalidData error. Format never panics.
func Format(buf []byte) (string, error) {
	end := usedLen(buf)
	if end == 0 {
		return "", nil
	}
	buf = buf[:end]

	if Signal(buf[0]) == SignalFunctionSignature {
		return formatFunction(buf)
	}

	s, next, err := formatType(buf, 0)
	if err != nil {
		return "", err
	}
	if next != len(buf) {
		return "", errors.InvalidData(errors.PhaseDecode, nil,
			fmt.Sprintf("trailing %s signal at %d", Signal(buf[next]), next))
	}
	return s, nil
}

// usedLen walks signals up to the first None. Malformed tails are left for
// the caller to report.
func usedLen(buf []byte) int {
	for pos := 0; pos < len(buf); {
		s := Signal(buf[pos])
		if s == SignalNone {
			return pos
		}
		if !s.Valid() || pos+s.Size() > len(buf) {
			return len(buf)
		}
		pos += s.Size()
	}
	return len(buf)
}

func formatFunction(buf []byte) (string, error) {
	pos := 1
	if pos >= len(buf) {
		return "", errors.InvalidData(errors.PhaseDecode, nil, "function signature without return type")
	}
	voidRet := isVoid(buf, pos)
	ret, pos, err := formatType(buf, pos)
	if err != nil {
		return "", err
	}

	var params []string
	for pos < len(buf) {
		var p string
		p, pos, err = formatType(buf, pos)
		if err != nil {
			return "", err
		}
		params = append(params, p)
	}

	var b strings.Builder
	b.WriteString("func(")
	b.WriteString(strings.Join(params, ", "))
	b.WriteByte(')')
	if !voidRet {
		b.WriteByte(' ')
		b.WriteString(ret)
	}
	return b.String(), nil
}

func isVoid(buf []byte, pos int) bool {
	if PeekSignal(buf, pos) != SignalTypeID || pos+TypeIDSize > len(buf) {
		return false
	}
	id, _ := ReadTypeID(buf, pos)
	return id == typeid.Void
}

func formatType(buf []byte, pos int) (string, int, error) {
	var b strings.Builder
	for {
		if pos >= len(buf) {
			return "", pos, errors.InvalidData(errors.PhaseDecode, nil,
				fmt.Sprintf("type signature truncated at %d", pos))
		}
		s := Signal(buf[pos])
		if !s.Valid() {
			return "", pos, errors.InvalidData(errors.PhaseDecode, nil,
				fmt.Sprintf("unknown signal 0x%02x at %d", buf[pos], pos))
		}
		if pos+s.Size() > len(buf) {
			return "", pos, errors.InvalidData(errors.PhaseDecode, nil,
				fmt.Sprintf("%s payload truncated at %d", s, pos))
		}

		switch {
		case s == SignalConst:
			b.WriteString("const ")
		case s == SignalPointer:
			b.WriteByte('*')
		case s == SignalRef:
			b.WriteByte('&')
		case s == SignalRValueRef:
			b.WriteString("&&")
		case s == SignalArrayDim:
			n, _ := ReadArrayDim(buf, pos)
			b.WriteByte('[')
			if n != 0 {
				b.WriteString(strconv.FormatUint(uint64(n), 10))
			}
			b.WriteByte(']')
		case s == SignalTypeID:
			id, next := ReadTypeID(buf, pos)
			b.WriteString(typeName(id))
			return b.String(), next, nil
		case s.IsLiteral():
			v, next := ReadLiteral(buf, pos)
			b.WriteString(fmt.Sprint(v))
			return b.String(), next, nil
		default:
			return "", pos, errors.Unsupported(errors.PhaseDecode,
				fmt.Sprintf("formatting %s signal", s))
		}
		pos += s.Size()
	}
}

func typeName(id typeid.ID) string {
	if name, ok := typeid.Name(id); ok {
		return name
	}
	return id.String()
}
