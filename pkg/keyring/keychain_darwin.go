//go:build darwin

package keyring

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// keychainStore uses the macOS Keychain through the security(1) CLI, the
// same approach the common Go keyring libraries take to avoid cgo.
// Entries are generic passwords; metadata is folded into the payload
// because the Keychain only stores one blob per item.
type keychainStore struct {
	securityPath string
}

const keychainLabel = "steek"

type keychainPayload struct {
	Secret      []byte `json:"secret"`
	Description string `json:"description,omitempty"`
	TimeoutSec  int64  `json:"timeout_sec,omitempty"`
	RequireAuth bool   `json:"require_auth,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

func keychainProbe() probe {
	return probe{name: "keychain", open: func(cfg Config, log *slog.Logger) (Store, error) {
		const path = "/usr/bin/security"
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Join(ErrProbeUnavailable, err)
		}
		return &keychainStore{securityPath: path}, nil
	}}
}

func (s *keychainStore) Name() string { return "keychain" }

func (s *keychainStore) service(name string) string {
	return keychainLabel + ":" + name
}

func (s *keychainStore) Set(e Entry) error {
	if !e.valid() {
		return ErrInvalidEntry
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(keychainPayload{
		Secret:      e.Secret,
		Description: e.Description,
		TimeoutSec:  int64(e.Timeout / time.Second),
		RequireAuth: e.RequireAuth,
		CreatedAt:   e.CreatedAt.Unix(),
	})
	if err != nil {
		return errors.Join(ErrBackendFailed, err)
	}

	// -U updates in place on a duplicate (service, account) item.
	cmd := exec.Command(s.securityPath, "add-generic-password",
		"-s", s.service(e.Service),
		"-a", e.Account,
		"-l", keychainLabel+": "+e.Service+"/"+e.Account,
		"-w", base64.StdEncoding.EncodeToString(payload),
		"-U",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Join(ErrBackendFailed, errors.New(strings.TrimSpace(string(out))))
	}
	return nil
}

func (s *keychainStore) Get(service, account string) (*Entry, error) {
	cmd := exec.Command(s.securityPath, "find-generic-password",
		"-s", s.service(service),
		"-a", account,
		"-w",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		// "The specified item could not be found in the keychain."
		if strings.Contains(stderr.String(), "could not be found") {
			return nil, nil
		}
		return nil, errors.Join(ErrBackendFailed, errors.New(strings.TrimSpace(stderr.String())))
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(stdout.String()))
	if err != nil {
		return nil, errors.Join(ErrCorruptEntry, err)
	}
	var p keychainPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errors.Join(ErrCorruptEntry, err)
	}

	e := &Entry{
		Service:     service,
		Account:     account,
		Secret:      p.Secret,
		Description: p.Description,
		Timeout:     time.Duration(p.TimeoutSec) * time.Second,
		RequireAuth: p.RequireAuth,
		CreatedAt:   time.Unix(p.CreatedAt, 0),
	}

	if e.Timeout > 0 && time.Now().After(e.CreatedAt.Add(e.Timeout)) {
		_ = s.Delete(service, account)
		return nil, nil
	}
	return e, nil
}

func (s *keychainStore) Delete(service, account string) error {
	cmd := exec.Command(s.securityPath, "delete-generic-password",
		"-s", s.service(service),
		"-a", account,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if strings.Contains(stderr.String(), "could not be found") {
			return nil
		}
		return errors.Join(ErrBackendFailed, errors.New(strings.TrimSpace(stderr.String())))
	}
	return nil
}

// List is not supported: dumping the login keychain triggers a user
// prompt per item. The Store contract allows an empty best-effort result.
func (s *keychainStore) List() ([]string, error) {
	return nil, nil
}
