package vault

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dowelhq/steek/pkg/totp"
)

// Account is one registered authenticator entry. The Secret holds the
// raw decoded key bytes while the vault is unlocked; Lock and
// RemoveAccount zero it before releasing the memory. Values handed out
// by the registry are deep copies, so the caller owns (and must wipe)
// any copy it keeps.
type Account struct {
	ID         uuid.UUID
	Issuer     string
	Label      string
	Secret     []byte
	Algorithm  totp.Algorithm
	Digits     int
	Period     int
	Icon       string
	Tags       []string
	Favorite   bool
	CreatedAt  time.Time
	LastUsedAt time.Time
	UsageCount int
}

// Validate checks the invariants every registered account must satisfy.
func (a Account) Validate() error {
	if len(a.Secret) == 0 {
		return errors.Join(ErrInvalidAccount, totp.ErrMissingSecret)
	}
	if strings.TrimSpace(a.Label) == "" {
		return errors.Join(ErrInvalidAccount, errors.New("label cannot be empty"))
	}
	if a.Digits < totp.MinDigits || a.Digits > totp.MaxDigits {
		return errors.Join(ErrInvalidAccount, totp.ErrInvalidDigits)
	}
	if a.Period <= 0 {
		return errors.Join(ErrInvalidAccount, totp.ErrInvalidPeriod)
	}
	if _, err := totp.ParseAlgorithm(string(a.Algorithm)); err != nil {
		return errors.Join(ErrInvalidAccount, err)
	}
	return nil
}

// secretBase32 renders the secret in the text form the code generator
// and provisioning URIs consume.
func (a Account) secretBase32() string {
	return strings.TrimRight(totp.EncodeBase32(a.Secret), "=")
}

// matches reports whether the account is a hit for a search query. The
// query is expected lowercased; issuer, label and tags are matched by
// substring.
func (a Account) matches(query string) bool {
	if strings.Contains(strings.ToLower(a.Issuer), query) {
		return true
	}
	if strings.Contains(strings.ToLower(a.Label), query) {
		return true
	}
	for _, tag := range a.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// clone deep-copies the account so callers never alias vault-owned
// secret memory.
func (a Account) clone() Account {
	a.Secret = slices.Clone(a.Secret)
	a.Tags = slices.Clone(a.Tags)
	return a
}

// sortAccounts orders accounts by issuer then label, case-insensitively.
// This is the only ordering the registry guarantees.
func sortAccounts(accounts []Account) {
	slices.SortStableFunc(accounts, func(a, b Account) int {
		if c := strings.Compare(strings.ToLower(a.Issuer), strings.ToLower(b.Issuer)); c != 0 {
			return c
		}
		return strings.Compare(strings.ToLower(a.Label), strings.ToLower(b.Label))
	})
}
