package cryptoutil

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the key length produced for AES-256.
	KeySize = 32

	// SaltSize is the salt length used for password-based derivation.
	SaltSize = 16

	// DefaultIterations is the default PBKDF2 round count. Kept
	// configurable so it can be raised as hardware improves.
	DefaultIterations = 100_000
)

// DeriveKey expands a password and salt into keyLen bytes using
// PBKDF2-HMAC-SHA-256. The result is deterministic for identical inputs,
// which password verification depends on. The caller owns the returned
// slice and must Zero it when done.
func DeriveKey(password, salt []byte, iterations, keyLen int) ([]byte, error) {
	if iterations <= 0 {
		return nil, errors.Join(ErrKeyDerivationFailed, ErrInvalidIterations)
	}
	return pbkdf2.Key(password, salt, iterations, keyLen, sha256.New), nil
}

// SubKey derives an independent purpose-bound key from a master key using
// HKDF-SHA-256. Distinct info strings yield unrelated keys, giving domain
// separation between e.g. the vault file key and the keyring file key.
// The caller owns the returned slice and must Zero it when done.
func SubKey(master []byte, info string) ([]byte, error) {
	r := hkdf.New(sha256.New, master, nil, []byte(info))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}
