//go:build linux

package keyring

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// kernelStore keeps entries as "user" type keys on the session user
// keyring. Secrets never touch disk; the kernel enforces per-key
// expiration natively, so Entry.Timeout maps straight onto
// KEYCTL_SET_TIMEOUT. Entries vanish on reboot, which suits short-lived
// material like an unlocked master key.
type kernelStore struct {
	ring int
}

const kernelKeyPrefix = "steek;"

func kernelProbe() probe {
	return probe{name: "kernel", open: func(cfg Config, log *slog.Logger) (Store, error) {
		ring, err := unix.KeyctlGetKeyringID(unix.KEY_SPEC_USER_KEYRING, true)
		if err != nil {
			return nil, errors.Join(ErrProbeUnavailable, err)
		}
		return &kernelStore{ring: ring}, nil
	}}
}

func (s *kernelStore) Name() string { return "kernel" }

func kernelKeyDesc(service, account string) string {
	return kernelKeyPrefix + service + ";" + account
}

// kernelPayload is the JSON value stored in the key; the kernel owns the
// timeout so only the remaining metadata is serialized.
type kernelPayload struct {
	Secret      []byte `json:"secret"`
	Description string `json:"description,omitempty"`
	TimeoutSec  int64  `json:"timeout_sec,omitempty"`
	RequireAuth bool   `json:"require_auth,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

func (s *kernelStore) Set(e Entry) error {
	if !e.valid() {
		return ErrInvalidEntry
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(kernelPayload{
		Secret:      e.Secret,
		Description: e.Description,
		TimeoutSec:  int64(e.Timeout / time.Second),
		RequireAuth: e.RequireAuth,
		CreatedAt:   e.CreatedAt.Unix(),
	})
	if err != nil {
		return errors.Join(ErrBackendFailed, err)
	}

	// add_key atomically replaces an existing key with the same
	// description, giving the overwrite-on-duplicate contract for free.
	id, err := unix.AddKey("user", kernelKeyDesc(e.Service, e.Account), payload, s.ring)
	if err != nil {
		return errors.Join(ErrBackendFailed, err)
	}

	if e.Timeout > 0 {
		if _, err := unix.KeyctlInt(unix.KEYCTL_SET_TIMEOUT, id, int(e.Timeout/time.Second), 0, 0); err != nil {
			return errors.Join(ErrBackendFailed, err)
		}
	}
	return nil
}

func (s *kernelStore) lookup(service, account string) (int, error) {
	id, err := unix.KeyctlSearch(s.ring, "user", kernelKeyDesc(service, account), 0)
	if err != nil {
		if errors.Is(err, unix.ENOKEY) || errors.Is(err, unix.EKEYEXPIRED) || errors.Is(err, unix.EKEYREVOKED) {
			return 0, nil
		}
		return 0, errors.Join(ErrBackendFailed, err)
	}
	return id, nil
}

func (s *kernelStore) Get(service, account string) (*Entry, error) {
	id, err := s.lookup(service, account)
	if err != nil || id == 0 {
		return nil, err
	}

	size, err := unix.KeyctlBuffer(unix.KEYCTL_READ, id, nil, 0)
	if err != nil {
		return nil, errors.Join(ErrBackendFailed, err)
	}
	buf := make([]byte, size)
	if _, err := unix.KeyctlBuffer(unix.KEYCTL_READ, id, buf, 0); err != nil {
		return nil, errors.Join(ErrBackendFailed, err)
	}

	var p kernelPayload
	if err := json.Unmarshal(buf, &p); err != nil {
		return nil, errors.Join(ErrCorruptEntry, err)
	}

	return &Entry{
		Service:     service,
		Account:     account,
		Secret:      p.Secret,
		Description: p.Description,
		Timeout:     time.Duration(p.TimeoutSec) * time.Second,
		RequireAuth: p.RequireAuth,
		CreatedAt:   time.Unix(p.CreatedAt, 0),
	}, nil
}

func (s *kernelStore) Delete(service, account string) error {
	id, err := s.lookup(service, account)
	if err != nil || id == 0 {
		return err
	}
	if _, err := unix.KeyctlInt(unix.KEYCTL_UNLINK, id, s.ring, 0, 0); err != nil {
		return errors.Join(ErrBackendFailed, err)
	}
	return nil
}

func (s *kernelStore) List() ([]string, error) {
	size, err := unix.KeyctlBuffer(unix.KEYCTL_READ, s.ring, nil, 0)
	if err != nil {
		return nil, errors.Join(ErrBackendFailed, err)
	}
	buf := make([]byte, size)
	n, err := unix.KeyctlBuffer(unix.KEYCTL_READ, s.ring, buf, 0)
	if err != nil {
		return nil, errors.Join(ErrBackendFailed, err)
	}

	var keys []string
	// The keyring payload is an array of native-endian int32 key IDs.
	for off := 0; off+4 <= n; off += 4 {
		id := int(int32(binary.NativeEndian.Uint32(buf[off : off+4])))
		desc, err := unix.KeyctlString(unix.KEYCTL_DESCRIBE, id)
		if err != nil {
			continue // best-effort
		}
		// Describe format: type;uid;gid;perm;description
		parts := strings.SplitN(desc, ";", 5)
		if len(parts) != 5 || !strings.HasPrefix(parts[4], kernelKeyPrefix) {
			continue
		}
		fields := strings.SplitN(strings.TrimPrefix(parts[4], kernelKeyPrefix), ";", 2)
		if len(fields) == 2 {
			keys = append(keys, fields[0]+"/"+fields[1])
		}
	}
	return keys, nil
}
