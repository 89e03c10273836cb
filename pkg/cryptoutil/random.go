package cryptoutil

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
)

// RandomBytes returns n cryptographically secure random bytes read from
// the operating system entropy source.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.Join(ErrRandomSourceFailed, err)
	}
	return b, nil
}

// randomIndex returns a uniform random integer in [0, n) using rejection
// sampling so no index is favored by modulo bias.
func randomIndex(n int) (int, error) {
	if n <= 0 {
		return 0, ErrRandomSourceFailed
	}
	max := uint64(n)
	// Largest multiple of n that fits in a uint64.
	limit := (^uint64(0) / max) * max
	var buf [8]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, errors.Join(ErrRandomSourceFailed, err)
		}
		v := binary.BigEndian.Uint64(buf[:])
		if v < limit {
			return int(v % max), nil
		}
	}
}
