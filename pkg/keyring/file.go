package keyring

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dowelhq/steek/pkg/cryptoutil"
	"github.com/dowelhq/steek/pkg/logger"
)

// fileStore is the encrypted-file fallback: one file per entry, owner-only
// permissions, AES-256-GCM under a machine-local key. It is also the
// storage engine behind the portal and confinement backends, which differ
// only in where the directory lives and where the key comes from.
type fileStore struct {
	name string
	dir  string
	key  []byte
	log  *slog.Logger
}

const keyFileName = "key.bin"

// fileEntry is the on-disk plaintext layout, sealed before writing.
type fileEntry struct {
	Service     string        `json:"service"`
	Account     string        `json:"account"`
	Secret      []byte        `json:"secret"`
	Description string        `json:"description,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty"`
	RequireAuth bool          `json:"require_auth,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// newFileStore opens (creating if needed) a file-backed store in dir. A
// nil key loads or generates the machine-local key file.
func newFileStore(name, dir string, key []byte, log *slog.Logger) (*fileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Join(ErrBackendFailed, err)
	}

	if key == nil {
		var err error
		key, err = loadOrCreateKey(filepath.Join(dir, keyFileName))
		if err != nil {
			return nil, err
		}
	}
	if len(key) != cryptoutil.KeySize {
		return nil, errors.Join(ErrBackendFailed, cryptoutil.ErrInvalidKeyLength)
	}

	return &fileStore{name: name, dir: dir, key: key, log: log}, nil
}

func loadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, errors.Join(ErrBackendFailed, err)
	}

	key, err = cryptoutil.RandomBytes(cryptoutil.KeySize)
	if err != nil {
		return nil, errors.Join(ErrBackendFailed, err)
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, errors.Join(ErrBackendFailed, err)
	}
	return key, nil
}

func (s *fileStore) Name() string { return s.name }

// entryPath derives a stable filename from the key pair so a repeated Set
// lands on the same file and overwrites.
func (s *fileStore) entryPath(service, account string) string {
	sum := sha256.Sum256([]byte(service + "\x00" + account))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:16])+".enc")
}

func (s *fileStore) Set(e Entry) error {
	if !e.valid() {
		return ErrInvalidEntry
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	plain, err := json.Marshal(fileEntry{
		Service:     e.Service,
		Account:     e.Account,
		Secret:      e.Secret,
		Description: e.Description,
		Timeout:     e.Timeout,
		RequireAuth: e.RequireAuth,
		CreatedAt:   e.CreatedAt,
	})
	if err != nil {
		return errors.Join(ErrBackendFailed, err)
	}
	defer cryptoutil.Zero(plain)

	sealed, err := cryptoutil.Encrypt(plain, s.key)
	if err != nil {
		return errors.Join(ErrBackendFailed, err)
	}

	path := s.entryPath(e.Service, e.Account)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return errors.Join(ErrBackendFailed, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Join(ErrBackendFailed, err)
	}
	return nil
}

func (s *fileStore) Get(service, account string) (*Entry, error) {
	path := s.entryPath(service, account)
	sealed, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrBackendFailed, err)
	}

	fe, err := s.decode(sealed)
	if err != nil {
		return nil, err
	}

	if fe.Timeout > 0 && time.Now().After(fe.CreatedAt.Add(fe.Timeout)) {
		// Expired entries read as absent. Removal is opportunistic.
		cryptoutil.Zero(fe.Secret)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Debug("failed to remove expired entry",
				logger.Component("keyring"), logger.Service(service), logger.Error(err))
		}
		return nil, nil
	}

	return &Entry{
		Service:     fe.Service,
		Account:     fe.Account,
		Secret:      fe.Secret,
		Description: fe.Description,
		Timeout:     fe.Timeout,
		RequireAuth: fe.RequireAuth,
		CreatedAt:   fe.CreatedAt,
	}, nil
}

func (s *fileStore) decode(sealed []byte) (*fileEntry, error) {
	plain, err := cryptoutil.Decrypt(sealed, s.key)
	if err != nil {
		return nil, errors.Join(ErrCorruptEntry, err)
	}
	defer cryptoutil.Zero(plain)

	var fe fileEntry
	if err := json.Unmarshal(plain, &fe); err != nil {
		return nil, errors.Join(ErrCorruptEntry, err)
	}
	return &fe, nil
}

func (s *fileStore) Delete(service, account string) error {
	err := os.Remove(s.entryPath(service, account))
	if err != nil && !os.IsNotExist(err) {
		return errors.Join(ErrBackendFailed, err)
	}
	return nil
}

func (s *fileStore) List() ([]string, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Join(ErrBackendFailed, err)
	}

	var keys []string
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".enc" {
			continue
		}
		sealed, err := os.ReadFile(filepath.Join(s.dir, de.Name()))
		if err != nil {
			continue // best-effort
		}
		fe, err := s.decode(sealed)
		if err != nil {
			continue
		}
		keys = append(keys, fmt.Sprintf("%s/%s", fe.Service, fe.Account))
		cryptoutil.Zero(fe.Secret)
	}
	return keys, nil
}

func fileProbe() probe {
	return probe{name: "file", open: func(cfg Config, log *slog.Logger) (Store, error) {
		return newFileStore("file", cfg.Dir, nil, log)
	}}
}
