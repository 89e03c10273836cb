package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

// Encrypt seals data with AES-256-GCM under a 32-byte key. The random
// nonce is prepended to the ciphertext so the result is self-contained.
func Encrypt(data, key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, errors.Join(ErrEncryptionFailed, ErrInvalidKeyLength)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	return aesGCM.Seal(nonce, nonce, data, nil), nil
}

// Decrypt opens ciphertext produced by Encrypt. Authentication failure,
// truncation and a wrong key all surface as ErrDecryptionFailed.
func Decrypt(data, key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, errors.Join(ErrDecryptionFailed, ErrInvalidKeyLength)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.Join(ErrDecryptionFailed, ErrInvalidCiphertext)
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
