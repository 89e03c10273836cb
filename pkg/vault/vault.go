package vault

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dowelhq/steek/pkg/cryptoutil"
	"github.com/dowelhq/steek/pkg/keyring"
	"github.com/dowelhq/steek/pkg/logger"
	"github.com/dowelhq/steek/pkg/qrcode"
	"github.com/dowelhq/steek/pkg/totp"
)

const (
	verifierService = "steek-vault"
	verifierAccount = "password-verifier"
)

// Vault owns the account registry, the lock state and the derived master
// key. All mutation is serialized through one mutex; code generation,
// add/remove and disk persistence share the same in-memory collection.
type Vault struct {
	mu sync.Mutex

	path  string
	iters int
	log   *slog.Logger
	now   func() time.Time
	ring  keyring.Store

	unlocked bool
	key      []byte
	salt     []byte
	accounts []Account
	dirty    bool
}

// Option configures New.
type Option func(*Vault)

// WithLogger sets a logger for persistence and lifecycle diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(v *Vault) {
		if log != nil {
			v.log = log
		}
	}
}

// WithIterations overrides the PBKDF2 round count used by Initialize.
// Existing vault files keep the count recorded in their header.
func WithIterations(n int) Option {
	return func(v *Vault) {
		if n > 0 {
			v.iters = n
		}
	}
}

// WithKeyring stores a password verifier in the given secret store, so a
// wrong password is distinguishable from a corrupt vault file.
func WithKeyring(ring keyring.Store) Option {
	return func(v *Vault) { v.ring = ring }
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(v *Vault) {
		if now != nil {
			v.now = now
		}
	}
}

// New creates a vault handle for the file at path. An empty path falls
// back to configuration from the environment. The vault starts locked;
// call Initialize for a new file or Unlock for an existing one.
func New(path string, opts ...Option) (*Vault, error) {
	v := &Vault{
		path:  path,
		iters: cryptoutil.DefaultIterations,
		log:   logger.Discard(),
		now:   time.Now,
	}
	if path == "" {
		cfg, err := LoadConfig()
		if err != nil {
			return nil, err
		}
		v.path = cfg.Path
		v.iters = cfg.Iterations
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Initialize creates a new empty vault file protected by password and
// leaves the vault unlocked. It refuses to overwrite an existing file.
func (v *Vault) Initialize(password string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.fileExists() {
		return ErrAlreadyInitialized
	}

	salt, err := cryptoutil.RandomBytes(cryptoutil.SaltSize)
	if err != nil {
		return err
	}
	key, err := cryptoutil.DeriveKey([]byte(password), salt, v.iters, cryptoutil.KeySize)
	if err != nil {
		return err
	}

	v.salt = salt
	v.key = key
	v.accounts = nil
	v.unlocked = true

	if err := v.saveLocked(); err != nil {
		v.wipeLocked()
		return err
	}
	if err := v.storeVerifier(password); err != nil {
		v.log.Warn("password verifier not stored", logger.Error(err))
	}

	v.log.Info("vault initialized", logger.Path(v.path))
	return nil
}

// Unlock opens the vault with password. A wrong password is reported
// without any signal about how close the guess was. A file that fails to
// decrypt or parse under a password the stored verifier confirms is
// surfaced as ErrVaultCorrupt and never deleted.
func (v *Vault) Unlock(password string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.unlocked {
		return nil
	}

	salt, iterations, ciphertext, err := v.readFile()
	if err != nil {
		return err
	}

	key, err := cryptoutil.DeriveKey([]byte(password), salt, iterations, cryptoutil.KeySize)
	if err != nil {
		return err
	}

	plaintext, err := cryptoutil.Decrypt(ciphertext, key)
	if err != nil {
		cryptoutil.Zero(key)
		if v.verifierConfirms(password) {
			return ErrVaultCorrupt
		}
		return ErrInvalidPassword
	}
	defer cryptoutil.Zero(plaintext)

	accounts, err := decodeDocument(plaintext)
	if err != nil {
		cryptoutil.Zero(key)
		return errors.Join(ErrVaultCorrupt, err)
	}

	v.salt = salt
	v.iters = iterations
	v.key = key
	v.accounts = accounts
	v.unlocked = true
	v.dirty = false

	v.log.Info("vault unlocked", slog.Int("accounts", len(accounts)))
	return nil
}

// Lock flushes pending changes, zeroes the master key and every
// in-memory secret, and returns the vault to the locked state. Locking
// an already-locked vault is a no-op.
func (v *Vault) Lock() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.unlocked {
		return nil
	}
	if v.dirty {
		if err := v.saveLocked(); err != nil {
			return err
		}
	}
	v.wipeLocked()
	v.log.Info("vault locked")
	return nil
}

// IsLocked reports whether the vault is locked.
func (v *Vault) IsLocked() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.unlocked
}

// wipeLocked zeroes all secret material and drops the registry. Caller
// holds the mutex.
func (v *Vault) wipeLocked() {
	cryptoutil.Zero(v.key)
	v.key = nil
	v.salt = nil
	for i := range v.accounts {
		cryptoutil.Zero(v.accounts[i].Secret)
	}
	v.accounts = nil
	v.unlocked = false
	v.dirty = false
}

// AddAccount registers a new account from manually entered fields with
// the 6-digit, 30-second, SHA1 defaults and persists immediately.
func (v *Vault) AddAccount(issuer, label, secret string) (uuid.UUID, error) {
	raw, err := decodeSecret(secret)
	if err != nil {
		return uuid.Nil, err
	}
	return v.add(Account{
		Issuer:    issuer,
		Label:     label,
		Secret:    raw,
		Algorithm: totp.AlgorithmSHA1,
		Digits:    totp.DefaultDigits,
		Period:    totp.DefaultPeriod,
	})
}

// AddAccountFromURI registers a new account from an otpauth://totp
// provisioning URI and persists immediately.
func (v *Vault) AddAccountFromURI(uri string) (uuid.UUID, error) {
	p, err := totp.ParseURI(uri)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInvalidAccount, err)
	}
	raw, err := decodeSecret(p.Secret)
	if err != nil {
		return uuid.Nil, err
	}
	return v.add(Account{
		Issuer:    p.Issuer,
		Label:     p.Account,
		Secret:    raw,
		Algorithm: p.Algorithm,
		Digits:    p.Digits,
		Period:    p.Period,
		Icon:      p.Image,
	})
}

func decodeSecret(secret string) ([]byte, error) {
	raw, err := totp.DecodeBase32(secret)
	if err != nil {
		return nil, errors.Join(ErrInvalidAccount, err)
	}
	if len(raw) == 0 {
		return nil, errors.Join(ErrInvalidAccount, totp.ErrMissingSecret)
	}
	return raw, nil
}

func (v *Vault) add(acc Account) (uuid.UUID, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.unlocked {
		cryptoutil.Zero(acc.Secret)
		return uuid.Nil, ErrLocked
	}

	acc.ID = uuid.New()
	acc.CreatedAt = v.now()
	if err := acc.Validate(); err != nil {
		cryptoutil.Zero(acc.Secret)
		return uuid.Nil, err
	}

	v.accounts = append(v.accounts, acc)
	if err := v.saveLocked(); err != nil {
		return uuid.Nil, err
	}
	v.log.Info("account added", logger.AccountID(acc.ID))
	return acc.ID, nil
}

// RemoveAccount deletes the account, zeroing its secret before the
// memory is released, and persists immediately.
func (v *Vault) RemoveAccount(id uuid.UUID) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.unlocked {
		return ErrLocked
	}

	i := v.indexLocked(id)
	if i < 0 {
		return ErrNotFound
	}

	cryptoutil.Zero(v.accounts[i].Secret)
	v.accounts = append(v.accounts[:i], v.accounts[i+1:]...)
	if err := v.saveLocked(); err != nil {
		return err
	}
	v.log.Info("account removed", logger.AccountID(id))
	return nil
}

// GetAccount returns a deep copy of the account with the given ID.
func (v *Vault) GetAccount(id uuid.UUID) (Account, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.unlocked {
		return Account{}, ErrLocked
	}
	i := v.indexLocked(id)
	if i < 0 {
		return Account{}, ErrNotFound
	}
	return v.accounts[i].clone(), nil
}

// ListAccounts returns deep copies of all accounts, sorted by issuer
// then label.
func (v *Vault) ListAccounts() ([]Account, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.unlocked {
		return nil, ErrLocked
	}
	out := make([]Account, 0, len(v.accounts))
	for _, acc := range v.accounts {
		out = append(out, acc.clone())
	}
	sortAccounts(out)
	return out, nil
}

// SearchAccounts returns accounts whose issuer, label or tags contain
// query as a case-insensitive substring, sorted by issuer then label.
func (v *Vault) SearchAccounts(query string) ([]Account, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.unlocked {
		return nil, ErrLocked
	}
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]Account, 0)
	for _, acc := range v.accounts {
		if acc.matches(query) {
			out = append(out, acc.clone())
		}
	}
	sortAccounts(out)
	return out, nil
}

// GenerateCode computes the current one-time code for the account and
// bumps its usage statistics. The bump is flushed on the next save or on
// Lock; code generation itself performs no I/O.
func (v *Vault) GenerateCode(id uuid.UUID) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.unlocked {
		return "", ErrLocked
	}
	i := v.indexLocked(id)
	if i < 0 {
		return "", ErrNotFound
	}

	acc := &v.accounts[i]
	code, err := totp.GenerateCodeAt(acc.secretBase32(), acc.Algorithm, acc.Digits, acc.Period, v.now())
	if err != nil {
		return "", err
	}

	acc.UsageCount++
	acc.LastUsedAt = v.now()
	v.dirty = true
	return code, nil
}

// RemainingSeconds returns how long the account's current code stays
// valid. Display only.
func (v *Vault) RemainingSeconds(id uuid.UUID) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.unlocked {
		return 0, ErrLocked
	}
	i := v.indexLocked(id)
	if i < 0 {
		return 0, ErrNotFound
	}
	return totp.RemainingSeconds(v.accounts[i].Period, v.now())
}

// ExportURI renders the account as an otpauth://totp provisioning URI
// understood by third-party authenticator apps. The URI contains the
// secret; treat it like the secret itself.
func (v *Vault) ExportURI(id uuid.UUID) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.exportURILocked(id)
}

func (v *Vault) exportURILocked(id uuid.UUID) (string, error) {
	if !v.unlocked {
		return "", ErrLocked
	}
	i := v.indexLocked(id)
	if i < 0 {
		return "", ErrNotFound
	}
	acc := v.accounts[i]
	return totp.BuildURI(totp.Params{
		Secret:    acc.secretBase32(),
		Account:   acc.Label,
		Issuer:    acc.Issuer,
		Algorithm: acc.Algorithm,
		Digits:    acc.Digits,
		Period:    acc.Period,
		Image:     acc.Icon,
	})
}

// QRCode renders the account's provisioning URI as a PNG QR code of the
// given edge length in pixels (0 for the default size).
func (v *Vault) QRCode(id uuid.UUID, size int) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	uri, err := v.exportURILocked(id)
	if err != nil {
		return nil, err
	}
	return qrcode.Generate(uri, size)
}

// indexLocked returns the position of the account with the given ID, or
// -1. Caller holds the mutex.
func (v *Vault) indexLocked(id uuid.UUID) int {
	for i := range v.accounts {
		if v.accounts[i].ID == id {
			return i
		}
	}
	return -1
}

// storeVerifier saves a password hash in the keyring so later unlocks
// can tell a wrong password from a corrupt file.
func (v *Vault) storeVerifier(password string) error {
	if v.ring == nil {
		return nil
	}
	hash, err := cryptoutil.HashPassword(password)
	if err != nil {
		return err
	}
	return v.ring.Set(keyring.Entry{
		Service:     verifierService,
		Account:     verifierAccount,
		Secret:      hash,
		Description: "vault master password verifier",
	})
}

// verifierConfirms reports whether a stored verifier proves the password
// correct. Absence of a verifier never confirms anything.
func (v *Vault) verifierConfirms(password string) bool {
	if v.ring == nil {
		return false
	}
	entry, err := v.ring.Get(verifierService, verifierAccount)
	if err != nil || entry == nil {
		return false
	}
	return cryptoutil.VerifyPassword(password, entry.Secret)
}
