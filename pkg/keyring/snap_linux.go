//go:build linux

package keyring

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
)

// Snap confinement denies access to both the Secret Service and the host
// filesystem. Entries live in an encrypted file store under the snap's
// own writable data directory, which survives refreshes.
func snapProbe() probe {
	return probe{name: "confined", open: func(cfg Config, log *slog.Logger) (Store, error) {
		if os.Getenv("SNAP_NAME") == "" {
			return nil, ErrProbeUnavailable
		}
		base := os.Getenv("SNAP_USER_COMMON")
		if base == "" {
			return nil, errors.Join(ErrProbeUnavailable, errors.New("SNAP_USER_COMMON not set"))
		}
		return newFileStore("confined", filepath.Join(base, "steek-keyring"), nil, log)
	}}
}
