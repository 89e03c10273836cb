//go:build windows

package keyring

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/danieljoos/wincred"
)

// wincredStore keeps entries as generic credentials in the Windows
// Credential Manager. Metadata is folded into the credential blob.
type wincredStore struct{}

const wincredPrefix = "steek:"

type wincredPayload struct {
	Secret      []byte `json:"secret"`
	Description string `json:"description,omitempty"`
	TimeoutSec  int64  `json:"timeout_sec,omitempty"`
	RequireAuth bool   `json:"require_auth,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

func wincredProbe() probe {
	return probe{name: "wincred", open: func(cfg Config, log *slog.Logger) (Store, error) {
		// Listing verifies the Credential Manager is reachable in this
		// session (it is absent in some service contexts).
		if _, err := wincred.List(); err != nil {
			return nil, errors.Join(ErrProbeUnavailable, err)
		}
		return &wincredStore{}, nil
	}}
}

func (s *wincredStore) Name() string { return "wincred" }

func target(service, account string) string {
	return wincredPrefix + service + "/" + account
}

func (s *wincredStore) Set(e Entry) error {
	if !e.valid() {
		return ErrInvalidEntry
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	blob, err := json.Marshal(wincredPayload{
		Secret:      e.Secret,
		Description: e.Description,
		TimeoutSec:  int64(e.Timeout / time.Second),
		RequireAuth: e.RequireAuth,
		CreatedAt:   e.CreatedAt.Unix(),
	})
	if err != nil {
		return errors.Join(ErrBackendFailed, err)
	}

	cred := wincred.NewGenericCredential(target(e.Service, e.Account))
	cred.CredentialBlob = blob
	cred.UserName = e.Account
	cred.Comment = e.Description
	cred.Persist = wincred.PersistLocalMachine
	if err := cred.Write(); err != nil {
		return errors.Join(ErrBackendFailed, err)
	}
	return nil
}

func (s *wincredStore) Get(service, account string) (*Entry, error) {
	cred, err := wincred.GetGenericCredential(target(service, account))
	if err != nil {
		// ERROR_NOT_FOUND surfaces as a generic error; absent is not a
		// failure under the Store contract.
		return nil, nil
	}

	var p wincredPayload
	if err := json.Unmarshal(cred.CredentialBlob, &p); err != nil {
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

func (s *wincredStore) Delete(service, account string) error {
	cred, err := wincred.GetGenericCredential(target(service, account))
	if err != nil {
		return nil
	}
	if err := cred.Delete(); err != nil {
		return errors.Join(ErrBackendFailed, err)
	}
	return nil
}

func (s *wincredStore) List() ([]string, error) {
	creds, err := wincred.List()
	if err != nil {
		return nil, errors.Join(ErrBackendFailed, err)
	}
	var keys []string
	for _, c := range creds {
		if strings.HasPrefix(c.TargetName, wincredPrefix) {
			keys = append(keys, strings.TrimPrefix(c.TargetName, wincredPrefix))
		}
	}
	return keys, nil
}
