package keyring

import "errors"

var (
	ErrInvalidEntry     = errors.New("invalid entry: service and account are required")
	ErrNoBackend        = errors.New("no secret-storage backend available")
	ErrBackendFailed    = errors.New("secret-storage backend operation failed")
	ErrCorruptEntry     = errors.New("stored entry failed to decrypt or parse")
	ErrProbeUnavailable = errors.New("backend not available on this system")
)
