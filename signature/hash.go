package signature

import "github.com/cespare/xxhash/v2"

// Hash returns a 64-bit hash of v's normal form under flags. Signatures that
// compare equal under flags hash equal.
func Hash(v View, flags CompareFlag) uint64 {
	buf := append([]byte(nil), v...)
	n := Normalize(buf, flags)
	return xxhash.Sum64(buf[:n])
}
