package signature

import "bytes"

// CompareFlag relaxes signature comparison.
type CompareFlag uint8

const (
	// CompareRefAsPointer folds Ref into Pointer before comparing.
	CompareRefAsPointer CompareFlag = 1 << iota
	// CompareRValueRefAsPointer folds RValueRef into Pointer before comparing.
	CompareRValueRefAsPointer
	// CompareIgnoreConst skips Const signals on both sides.
	CompareIgnoreConst

	// CompareStrict compares byte for byte.
	CompareStrict CompareFlag = 0
	// CompareDefault is what dynamically typed callers want: references and
	// pointers are interchangeable and constness is ignored.
	CompareDefault = CompareRefAsPointer | CompareRValueRefAsPointer | CompareIgnoreConst
)

func (f CompareFlag) fold(s Signal) Signal {
	switch {
	case s == SignalRef && f&CompareRefAsPointer != 0:
		return SignalPointer
	case s == SignalRValueRef && f&CompareRValueRefAsPointer != 0:
		return SignalPointer
	default:
		return s
	}
}

// SignalEqual compares exactly one signal at each cursor, folding references
// according to flags, and returns the positions past both signals.
// CompareIgnoreConst is not applied here; see SignatureEqual.
func SignalEqual(lhs []byte, lpos int, rhs []byte, rpos int, flags CompareFlag) (bool, int, int) {
	ls := flags.fold(PeekSignal(lhs, lpos))
	rs := flags.fold(PeekSignal(rhs, rpos))
	lnext := JumpSignal(lhs, lpos)
	rnext := JumpSignal(rhs, rpos)
	if ls != rs {
		return false, lnext, rnext
	}
	return bytes.Equal(lhs[lpos+1:lnext], rhs[rpos+1:rnext]), lnext, rnext
}

func skipConst(buf []byte, pos int) int {
	for pos < len(buf) && Signal(buf[pos]) == SignalConst {
		pos++
	}
	return pos
}

func done(buf []byte, pos int) bool {
	return pos >= len(buf) || Signal(buf[pos]) == SignalNone
}

// SignatureEqual compares two whole signatures signal by signal. Both sides
// must run out (end of buffer or a None signal) at the same time; a length
// mismatch is inequality.
func SignatureEqual(lhs, rhs []byte, flags CompareFlag) bool {
	l, r := 0, 0
	for {
		if flags&CompareIgnoreConst != 0 {
			l = skipConst(lhs, l)
			r = skipConst(rhs, r)
		}
		ldone, rdone := done(lhs, l), done(rhs, r)
		if ldone || rdone {
			return ldone && rdone
		}
		var eq bool
		eq, l, r = SignalEqual(lhs, l, rhs, r, flags)
		if !eq {
			return false
		}
	}
}
