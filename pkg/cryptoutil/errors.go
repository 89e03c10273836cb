package cryptoutil

import "errors"

var (
	// Randomness errors
	ErrRandomSourceFailed = errors.New("failed to read from system entropy source")

	// Key and cipher errors
	ErrInvalidKeyLength  = errors.New("invalid key length: must be 32 bytes")
	ErrEncryptionFailed  = errors.New("encryption failed")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")

	// Key derivation errors
	ErrInvalidIterations   = errors.New("invalid iteration count: must be positive")
	ErrKeyDerivationFailed = errors.New("key derivation failed")

	// Password hash errors
	ErrInvalidPasswordHash = errors.New("invalid password hash format")

	// Generation errors
	ErrPasswordTooShort     = errors.New("password length must be at least 4")
	ErrNoCharacterClasses   = errors.New("at least one character class must be enabled")
	ErrInvalidWordCount     = errors.New("passphrase word count must be greater than 0")
	ErrFailedToGeneratePass = errors.New("failed to generate password")
)
