// Package cryptoutil is the key and cipher toolkit of the steek security
// core: secure randomness, salted password-based key derivation,
// authenticated symmetric encryption, constant-time comparison, secure
// memory erasure, password/passphrase generation and strength scoring.
//
// # Architecture
//
//   - derivation – DeriveKey wraps PBKDF2-HMAC-SHA-256 with a
//     configurable round count (DefaultIterations = 100000); SubKey uses
//     HKDF-SHA-256 for domain separation between consumers of a master
//     key.
//   - cipher – Encrypt/Decrypt seal data with AES-256-GCM, nonce
//     prepended so the ciphertext is self-contained.
//   - verifier – HashPassword emits a single opaque value embedding the
//     iteration count and salt; VerifyPassword re-derives and compares in
//     constant time.
//   - generation – GeneratePassword and GeneratePassphrase draw from the
//     OS entropy source with rejection sampling, never math/rand.
//   - analysis – AnalyzeStrength produces a StrengthReport with a 0-100
//     score and a five-level ordinal classification.
//
// Secret material handling rule: every []byte holding a key, password or
// derived hash has exactly one owner, and that owner calls Zero on every
// exit path once the value is no longer needed.
//
// # Error Handling
//
// Operations return descriptive errors wrapped with errors.Join. Match
// with errors.Is against package sentinels such as ErrDecryptionFailed
// or ErrInvalidKeyLength.
package cryptoutil
