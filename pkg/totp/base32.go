package totp

import (
	"encoding/base32"
	"errors"
	"strings"
)

// EncodeBase32 renders raw bytes in the RFC 4648 alphabet, padded with
// '=' to a multiple of 8 characters so the output interoperates with
// strict decoders.
func EncodeBase32(b []byte) string {
	return base32.StdEncoding.EncodeToString(b)
}

// DecodeBase32 decodes a human-typed base32 secret. Lowercase input and
// trailing padding are accepted; spaces are stripped since authenticator
// exports often group the secret in blocks of four. Any character outside
// the RFC 4648 alphabet is a hard failure, never silently skipped.
func DecodeBase32(s string) ([]byte, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(s, " ", ""))
	normalized = strings.TrimRight(normalized, "=")

	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(normalized)
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return raw, nil
}
