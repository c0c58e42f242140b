package signature

// Normalize rewrites buf in place into its canonical form under flags:
// Const signals are dropped when CompareIgnoreConst is set (later bytes shift
// left), Ref and RValueRef become Pointer when the matching fold flag is set.
// Processing stops at the first None signal. The bytes freed by compaction are
// zeroed and the new used length is returned.
//
// Normalize is idempotent: running it on its own output changes nothing.
func Normalize(buf []byte, flags CompareFlag) int {
	end := len(buf)
	for i := 0; i < len(buf); i = JumpSignal(buf, i) {
		if Signal(buf[i]) == SignalNone {
			end = i
			break
		}
	}

	oldEnd := end
	pos := 0
	for pos < end {
		s := Signal(buf[pos])
		if s == SignalConst && flags&CompareIgnoreConst != 0 {
			copy(buf[pos:end-1], buf[pos+1:end])
			end--
			continue
		}
		if folded := flags.fold(s); folded != s {
			buf[pos] = byte(folded)
		}
		pos = JumpSignal(buf[:end], pos)
	}

	clear(buf[end:oldEnd])
	return end
}
