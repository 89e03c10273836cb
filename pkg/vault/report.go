package vault

import (
	"bytes"
	"time"

	"github.com/dowelhq/steek/pkg/totp"
)

// SecurityReport is an aggregate health snapshot of the registry,
// recomputed on demand and never persisted.
type SecurityReport struct {
	TotalAccounts int

	// Weak counts accounts with a secret under 80 bits or fewer digits
	// than the 6-digit default, both below the RFC 4226 recommendations.
	Weak int
	// Old counts accounts whose secret has been in use for over a year.
	Old int
	// Compromised counts accounts whose secret is a published example
	// seed and therefore known to anyone.
	Compromised int
	// NoTwoFactor counts entries carrying no usable one-time-password
	// secret.
	NoTwoFactor int

	// Score is an overall 0-100 health rating.
	Score int
}

// minSecretBytes is the 80-bit minimum shared-secret size of RFC 4226.
const minSecretBytes = 10

const maxSecretAge = 365 * 24 * time.Hour

// Seeds published in RFC test vectors and vendor demos. A production
// account using one offers no security.
var publishedSeeds = [][]byte{
	[]byte("12345678901234567890"),
	[]byte("12345678901234567890123456789012"),
	[]byte("1234567890123456789012345678901234567890123456789012345678901234"),
	{0x48, 0x65, 0x6c, 0x6c, 0x6f, 0x21, 0xde, 0xad, 0xbe, 0xef}, // "JBSWY3DPEHPK3PXP"
}

// SecurityReport scores the registry. Each weak account costs 10 points,
// each stale one 5, each published seed 25 and each missing secret 15,
// clamped to [0, 100].
func (v *Vault) SecurityReport() (SecurityReport, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.unlocked {
		return SecurityReport{}, ErrLocked
	}

	r := SecurityReport{TotalAccounts: len(v.accounts)}
	now := v.now()

	for _, acc := range v.accounts {
		if len(acc.Secret) == 0 {
			r.NoTwoFactor++
			continue
		}
		if len(acc.Secret) < minSecretBytes || acc.Digits < totp.DefaultDigits {
			r.Weak++
		}
		if !acc.CreatedAt.IsZero() && now.Sub(acc.CreatedAt) > maxSecretAge {
			r.Old++
		}
		for _, seed := range publishedSeeds {
			if bytes.Equal(acc.Secret, seed) {
				r.Compromised++
				break
			}
		}
	}

	score := 100 - r.Weak*10 - r.Old*5 - r.Compromised*25 - r.NoTwoFactor*15
	if score < 0 {
		score = 0
	}
	r.Score = score
	return r, nil
}
