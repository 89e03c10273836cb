package totp

import (
	"crypto/hmac"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/dowelhq/steek/pkg/cryptoutil"
)

const (
	DefaultDigits = 6
	DefaultPeriod = 30 // seconds, RFC 6238 standard window

	MinDigits = 4
	MaxDigits = 10
)

// GenerateSecret creates a new random 160-bit secret encoded in base32,
// the size RFC 4226 recommends for HMAC-SHA1 keys.
func GenerateSecret() (string, error) {
	raw, err := cryptoutil.RandomBytes(20)
	if err != nil {
		return "", err
	}
	defer cryptoutil.Zero(raw)
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw), nil
}

// GenerateCode computes the one-time code for the current time step.
func GenerateCode(secret string, alg Algorithm, digits, period int) (string, error) {
	return GenerateCodeAt(secret, alg, digits, period, time.Now())
}

// GenerateCodeAt computes the one-time code for the time step containing
// at. The code is a pure function of (secret, algorithm, digits, period,
// time); there is no internal state.
func GenerateCodeAt(secret string, alg Algorithm, digits, period int, at time.Time) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	if digits < MinDigits || digits > MaxDigits {
		return "", ErrInvalidDigits
	}
	if period <= 0 {
		return "", ErrInvalidPeriod
	}
	if !alg.valid() {
		return "", ErrInvalidAlgorithm
	}

	key, err := DecodeBase32(secret)
	if err != nil {
		return "", err
	}
	defer cryptoutil.Zero(key)

	counter := uint64(at.Unix() / int64(period))
	return hotp(key, counter, alg, digits), nil
}

// hotp implements the RFC 4226 dynamic truncation over an 8-byte
// big-endian counter.
func hotp(key []byte, counter uint64, alg Algorithm, digits int) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(alg.hashFunc(), key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	truncated := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	mod := uint64(1)
	for i := 0; i < digits; i++ {
		mod *= 10
	}
	return fmt.Sprintf("%0*d", digits, uint64(truncated)%mod)
}

// ValidateCode reports whether candidate matches the code of any time
// step within window steps of now, tolerating clock drift between the
// device and the issuer. Comparison is constant time.
func ValidateCode(secret, candidate string, alg Algorithm, digits, period, window int) (bool, error) {
	return ValidateCodeAt(secret, candidate, alg, digits, period, window, time.Now())
}

// ValidateCodeAt is ValidateCode against an explicit reference time.
func ValidateCodeAt(secret, candidate string, alg Algorithm, digits, period, window int, at time.Time) (bool, error) {
	if window < 0 {
		return false, ErrInvalidWindow
	}

	ok := false
	for step := -window; step <= window; step++ {
		code, err := GenerateCodeAt(secret, alg, digits, period, at.Add(time.Duration(step*period)*time.Second))
		if err != nil {
			return false, err
		}
		// No early exit: every window is checked so timing does not
		// reveal which step matched.
		if cryptoutil.ConstantTimeEquals([]byte(code), []byte(candidate)) {
			ok = true
		}
	}
	return ok, nil
}

// RemainingSeconds returns how long the current code stays valid.
// Display only; code validity is decided by ValidateCode.
func RemainingSeconds(period int, now time.Time) (int, error) {
	if period <= 0 {
		return 0, ErrInvalidPeriod
	}
	return period - int(now.Unix()%int64(period)), nil
}

// Progress returns the elapsed fraction of the current time step in
// [0, 1). Display only.
func Progress(period int, now time.Time) (float64, error) {
	if period <= 0 {
		return 0, ErrInvalidPeriod
	}
	return float64(now.Unix()%int64(period)) / float64(period), nil
}

// ValidateSecret reports whether s decodes as a non-empty base32 secret.
func ValidateSecret(s string) error {
	if s == "" {
		return ErrMissingSecret
	}
	raw, err := DecodeBase32(s)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return errors.Join(ErrInvalidSecret, errors.New("secret decodes to zero bytes"))
	}
	cryptoutil.Zero(raw)
	return nil
}
