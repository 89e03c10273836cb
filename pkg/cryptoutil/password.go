package cryptoutil

import (
	"encoding/binary"
	"errors"
)

// Stored password hash layout: BE32 iteration count, 16-byte salt,
// 32-byte PBKDF2 output. Embedding the round count lets the default be
// raised later without invalidating existing hashes.
const passwordHashLen = 4 + SaltSize + KeySize

// HashPassword derives a verifier for the given password using a fresh
// random salt. The result is a single opaque value suitable for storage.
func HashPassword(password string) ([]byte, error) {
	return hashPasswordWithIterations(password, DefaultIterations)
}

func hashPasswordWithIterations(password string, iterations int) ([]byte, error) {
	if iterations <= 0 {
		return nil, errors.Join(ErrKeyDerivationFailed, ErrInvalidIterations)
	}

	salt, err := RandomBytes(SaltSize)
	if err != nil {
		return nil, err
	}

	hash, err := DeriveKey([]byte(password), salt, iterations, KeySize)
	if err != nil {
		return nil, err
	}
	defer Zero(hash)

	out := make([]byte, 0, passwordHashLen)
	out = binary.BigEndian.AppendUint32(out, uint32(iterations))
	out = append(out, salt...)
	out = append(out, hash...)
	return out, nil
}

// VerifyPassword re-derives the candidate password with the stored salt
// and iteration count and compares in constant time. Any malformed stored
// value verifies as false; no signal distinguishes close guesses.
func VerifyPassword(password string, stored []byte) bool {
	if len(stored) != passwordHashLen {
		return false
	}

	iterations := int(binary.BigEndian.Uint32(stored[:4]))
	if iterations <= 0 {
		return false
	}
	salt := stored[4 : 4+SaltSize]
	want := stored[4+SaltSize:]

	got, err := DeriveKey([]byte(password), salt, iterations, KeySize)
	if err != nil {
		return false
	}
	defer Zero(got)

	return ConstantTimeEquals(got, want)
}
