package vault

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dowelhq/steek/pkg/cryptoutil"
	"github.com/dowelhq/steek/pkg/logger"
	"github.com/dowelhq/steek/pkg/totp"
)

// File layout: 16-byte salt, big-endian uint32 iteration count, then the
// AES-GCM ciphertext of the JSON document. The header is plaintext so a
// locked vault can still be opened with nothing but the password.
const (
	formatVersion = 1

	headerSize = cryptoutil.SaltSize + 4

	tempSuffix   = ".tmp"
	backupSuffix = ".bak"
)

// document is the serialized registry, also the backup interchange
// format produced by ExportBackup.
type document struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Accounts   []record  `json:"accounts"`
}

type record struct {
	ID         string    `json:"id"`
	Issuer     string    `json:"issuer,omitempty"`
	Label      string    `json:"label"`
	Secret     string    `json:"secret"`
	Algorithm  string    `json:"algorithm"`
	Digits     int       `json:"digits"`
	Period     int       `json:"period"`
	Icon       string    `json:"icon,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	Favorite   bool      `json:"favorite,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
	UsageCount int       `json:"usage_count"`
}

func toRecord(a Account) record {
	return record{
		ID:         a.ID.String(),
		Issuer:     a.Issuer,
		Label:      a.Label,
		Secret:     a.secretBase32(),
		Algorithm:  string(a.Algorithm),
		Digits:     a.Digits,
		Period:     a.Period,
		Icon:       a.Icon,
		Tags:       a.Tags,
		Favorite:   a.Favorite,
		CreatedAt:  a.CreatedAt,
		LastUsedAt: a.LastUsedAt,
		UsageCount: a.UsageCount,
	}
}

func toAccount(r record) (Account, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return Account{}, fmt.Errorf("account id %q: %w", r.ID, err)
	}
	alg, err := totp.ParseAlgorithm(r.Algorithm)
	if err != nil {
		return Account{}, err
	}
	secret, err := totp.DecodeBase32(r.Secret)
	if err != nil {
		return Account{}, err
	}
	acc := Account{
		ID:         id,
		Issuer:     r.Issuer,
		Label:      r.Label,
		Secret:     secret,
		Algorithm:  alg,
		Digits:     r.Digits,
		Period:     r.Period,
		Icon:       r.Icon,
		Tags:       r.Tags,
		Favorite:   r.Favorite,
		CreatedAt:  r.CreatedAt,
		LastUsedAt: r.LastUsedAt,
		UsageCount: r.UsageCount,
	}
	if err := acc.Validate(); err != nil {
		cryptoutil.Zero(acc.Secret)
		return Account{}, err
	}
	return acc, nil
}

// snapshotLocked serializes the registry. Caller holds the mutex and
// must Zero the returned bytes.
func (v *Vault) snapshotLocked() ([]byte, error) {
	doc := document{
		Version:    formatVersion,
		ExportedAt: v.now().UTC(),
		Accounts:   make([]record, 0, len(v.accounts)),
	}
	for _, acc := range v.accounts {
		doc.Accounts = append(doc.Accounts, toRecord(acc))
	}
	return json.Marshal(doc)
}

// decodeDocument parses a serialized registry back into accounts.
func decodeDocument(plaintext []byte) ([]Account, error) {
	var doc document
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		return nil, err
	}
	if doc.Version != formatVersion {
		return nil, fmt.Errorf("unsupported format version %d", doc.Version)
	}
	accounts := make([]Account, 0, len(doc.Accounts))
	for _, r := range doc.Accounts {
		acc, err := toAccount(r)
		if err != nil {
			for i := range accounts {
				cryptoutil.Zero(accounts[i].Secret)
			}
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// saveLocked writes the registry atomically: encrypt to a temp file,
// rotate the current file to the backup path, rename the temp file into
// place. A crash at any point leaves either the previous file or its
// backup readable. Caller holds the mutex.
func (v *Vault) saveLocked() error {
	plaintext, err := v.snapshotLocked()
	if err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	defer cryptoutil.Zero(plaintext)

	ciphertext, err := cryptoutil.Encrypt(plaintext, v.key)
	if err != nil {
		return errors.Join(ErrSaveFailed, err)
	}

	buf := make([]byte, 0, headerSize+len(ciphertext))
	buf = append(buf, v.salt...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(v.iters))
	buf = append(buf, ciphertext...)

	if err := os.MkdirAll(filepath.Dir(v.path), 0o700); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}

	temp := v.path + tempSuffix
	if err := os.WriteFile(temp, buf, 0o600); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	if v.fileExists() {
		if err := os.Rename(v.path, v.path+backupSuffix); err != nil {
			os.Remove(temp)
			return errors.Join(ErrSaveFailed, err)
		}
	}
	if err := os.Rename(temp, v.path); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}

	v.dirty = false
	v.log.Debug("vault saved", logger.Path(v.path), slog.Int("accounts", len(v.accounts)))
	return nil
}

// readFile loads and splits the vault file into its header fields and
// ciphertext.
func (v *Vault) readFile() (salt []byte, iterations int, ciphertext []byte, err error) {
	data, err := os.ReadFile(v.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil, ErrNotInitialized
		}
		return nil, 0, nil, errors.Join(ErrLoadFailed, err)
	}
	if len(data) <= headerSize {
		return nil, 0, nil, ErrVaultCorrupt
	}
	salt = data[:cryptoutil.SaltSize]
	iterations = int(binary.BigEndian.Uint32(data[cryptoutil.SaltSize:headerSize]))
	if iterations <= 0 {
		return nil, 0, nil, ErrVaultCorrupt
	}
	return salt, iterations, data[headerSize:], nil
}

func (v *Vault) fileExists() bool {
	_, err := os.Stat(v.path)
	return err == nil
}

// ExportBackup serializes the registry into the plaintext backup
// document. The document contains every secret; the caller is
// responsible for protecting it.
func (v *Vault) ExportBackup() ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.unlocked {
		return nil, ErrLocked
	}
	return v.snapshotLocked()
}

// ImportBackup merges a backup document into the registry. Accounts are
// matched by ID; an incoming account replaces an existing one with the
// same ID (last write wins), unknown IDs are appended. The merged
// registry persists immediately.
func (v *Vault) ImportBackup(data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.unlocked {
		return ErrLocked
	}

	incoming, err := decodeDocument(data)
	if err != nil {
		return errors.Join(ErrInvalidBackup, err)
	}

	for _, acc := range incoming {
		if i := v.indexLocked(acc.ID); i >= 0 {
			cryptoutil.Zero(v.accounts[i].Secret)
			v.accounts[i] = acc
		} else {
			v.accounts = append(v.accounts, acc)
		}
	}

	if err := v.saveLocked(); err != nil {
		return err
	}
	v.log.Info("backup imported", slog.Int("accounts", len(incoming)))
	return nil
}
