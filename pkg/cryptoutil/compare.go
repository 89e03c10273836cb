package cryptoutil

import "crypto/subtle"

// ConstantTimeEquals reports whether a and b are byte-identical without
// leaking the position of the first mismatch through timing. A length
// mismatch returns false immediately; length is not secret here.
func ConstantTimeEquals(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
