package totp

import "errors"

var (
	ErrMissingSecret    = errors.New("missing secret")
	ErrInvalidSecret    = errors.New("invalid base32 secret")
	ErrInvalidDigits    = errors.New("invalid digits: must be between 4 and 10")
	ErrInvalidPeriod    = errors.New("invalid period: must be positive")
	ErrInvalidWindow    = errors.New("invalid window: must not be negative")
	ErrInvalidAlgorithm = errors.New("invalid algorithm: must be SHA1, SHA256 or SHA512")
	ErrInvalidURI       = errors.New("invalid otpauth URI")
)
