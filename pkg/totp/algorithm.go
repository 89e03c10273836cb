package totp

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"strings"
)

// Algorithm selects the HMAC hash function used for code generation. The
// choice only changes the hash; the truncation scheme is identical.
type Algorithm string

const (
	AlgorithmSHA1   Algorithm = "SHA1" // RFC 6238 default
	AlgorithmSHA256 Algorithm = "SHA256"
	AlgorithmSHA512 Algorithm = "SHA512"
)

// ParseAlgorithm maps a case-insensitive algorithm name to an Algorithm.
// An empty name resolves to the SHA1 default.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", string(AlgorithmSHA1):
		return AlgorithmSHA1, nil
	case string(AlgorithmSHA256):
		return AlgorithmSHA256, nil
	case string(AlgorithmSHA512):
		return AlgorithmSHA512, nil
	default:
		return "", ErrInvalidAlgorithm
	}
}

func (a Algorithm) hashFunc() func() hash.Hash {
	switch a {
	case AlgorithmSHA256:
		return sha256.New
	case AlgorithmSHA512:
		return sha512.New
	default:
		return sha1.New
	}
}

func (a Algorithm) valid() bool {
	switch a {
	case AlgorithmSHA1, AlgorithmSHA256, AlgorithmSHA512:
		return true
	default:
		return false
	}
}
