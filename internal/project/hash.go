package project

import (
	"crypto/sha256"
)

// Digest is a 256-bit configuration fingerprint.
type Digest [32]byte

// Combine hashes the parts in order: H(len || part || len || part ...).
// Length prefixes keep ("ab", "c") and ("a", "bc") apart.
func Combine(parts ...string) Digest {
	h := sha256.New()
	var n [4]byte
	for _, p := range parts {
		l := len(p)
		n[0], n[1], n[2], n[3] = byte(l>>24), byte(l>>16), byte(l>>8), byte(l)
		_, _ = h.Write(n[:])
		_, _ = h.Write([]byte(p))
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
