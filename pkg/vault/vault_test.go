package vault_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dowelhq/steek/pkg/keyring"
	"github.com/dowelhq/steek/pkg/totp"
	"github.com/dowelhq/steek/pkg/vault"
)

const (
	testPassword = "correct horse battery staple"
	testSecret   = "JBSWY3DPEHPK3PXP"
)

func newVault(t *testing.T, opts ...vault.Option) (*vault.Vault, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vault.steek")
	opts = append([]vault.Option{vault.WithIterations(1000)}, opts...)
	v, err := vault.New(path, opts...)
	require.NoError(t, err)
	return v, path
}

func openVault(t *testing.T, path string, opts ...vault.Option) *vault.Vault {
	t.Helper()
	opts = append([]vault.Option{vault.WithIterations(1000)}, opts...)
	v, err := vault.New(path, opts...)
	require.NoError(t, err)
	return v
}

func TestVault_InitializeUnlockLock(t *testing.T) {
	t.Parallel()

	v, path := newVault(t)
	require.NoError(t, v.Initialize(testPassword))
	assert.False(t, v.IsLocked())

	id, err := v.AddAccount("GitHub", "alice@example.com", testSecret)
	require.NoError(t, err)
	require.NoError(t, v.Lock())
	assert.True(t, v.IsLocked())

	reopened := openVault(t, path)
	require.NoError(t, reopened.Unlock(testPassword))

	acc, err := reopened.GetAccount(id)
	require.NoError(t, err)
	assert.Equal(t, "GitHub", acc.Issuer)
	assert.Equal(t, "alice@example.com", acc.Label)
	assert.Equal(t, totp.AlgorithmSHA1, acc.Algorithm)
	assert.Equal(t, totp.DefaultDigits, acc.Digits)
	assert.Equal(t, totp.DefaultPeriod, acc.Period)
	assert.False(t, acc.CreatedAt.IsZero())
}

func TestVault_UnlockWrongPassword(t *testing.T) {
	t.Parallel()

	v, path := newVault(t)
	require.NoError(t, v.Initialize(testPassword))
	require.NoError(t, v.Lock())

	reopened := openVault(t, path)
	assert.ErrorIs(t, reopened.Unlock("wrong"), vault.ErrInvalidPassword)
}

func TestVault_UnlockNotInitialized(t *testing.T) {
	t.Parallel()

	v, _ := newVault(t)
	assert.ErrorIs(t, v.Unlock(testPassword), vault.ErrNotInitialized)
}

func TestVault_InitializeTwice(t *testing.T) {
	t.Parallel()

	v, path := newVault(t)
	require.NoError(t, v.Initialize(testPassword))
	require.NoError(t, v.Lock())

	assert.ErrorIs(t, openVault(t, path).Initialize("other"), vault.ErrAlreadyInitialized)
}

func TestVault_OperationsFailWhileLocked(t *testing.T) {
	t.Parallel()

	v, _ := newVault(t)
	id := uuid.New()

	_, err := v.AddAccount("x", "y", testSecret)
	assert.ErrorIs(t, err, vault.ErrLocked)
	_, err = v.AddAccountFromURI("otpauth://totp/x?secret=" + testSecret)
	assert.ErrorIs(t, err, vault.ErrLocked)
	assert.ErrorIs(t, v.RemoveAccount(id), vault.ErrLocked)
	_, err = v.GetAccount(id)
	assert.ErrorIs(t, err, vault.ErrLocked)
	_, err = v.ListAccounts()
	assert.ErrorIs(t, err, vault.ErrLocked)
	_, err = v.SearchAccounts("x")
	assert.ErrorIs(t, err, vault.ErrLocked)
	_, err = v.GenerateCode(id)
	assert.ErrorIs(t, err, vault.ErrLocked)
	_, err = v.RemainingSeconds(id)
	assert.ErrorIs(t, err, vault.ErrLocked)
	_, err = v.ExportURI(id)
	assert.ErrorIs(t, err, vault.ErrLocked)
	_, err = v.QRCode(id, 0)
	assert.ErrorIs(t, err, vault.ErrLocked)
	_, err = v.ExportBackup()
	assert.ErrorIs(t, err, vault.ErrLocked)
	assert.ErrorIs(t, v.ImportBackup([]byte("{}")), vault.ErrLocked)
	_, err = v.SecurityReport()
	assert.ErrorIs(t, err, vault.ErrLocked)
}

func TestVault_AddAccountRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	v, _ := newVault(t)
	require.NoError(t, v.Initialize(testPassword))

	_, err := v.AddAccount("GitHub", "alice", "not!base32")
	assert.ErrorIs(t, err, vault.ErrInvalidAccount)

	_, err = v.AddAccount("GitHub", "   ", testSecret)
	assert.ErrorIs(t, err, vault.ErrInvalidAccount)

	_, err = v.AddAccountFromURI("otpauth://totp/alice")
	assert.ErrorIs(t, err, vault.ErrInvalidAccount)
}

func TestVault_AddAccountFromURI(t *testing.T) {
	t.Parallel()

	v, _ := newVault(t)
	require.NoError(t, v.Initialize(testPassword))

	id, err := v.AddAccountFromURI("otpauth://totp/Example:bob?secret=" + testSecret + "&issuer=Example&digits=8&period=60&algorithm=SHA256")
	require.NoError(t, err)

	acc, err := v.GetAccount(id)
	require.NoError(t, err)
	assert.Equal(t, "Example", acc.Issuer)
	assert.Equal(t, "bob", acc.Label)
	assert.Equal(t, totp.AlgorithmSHA256, acc.Algorithm)
	assert.Equal(t, 8, acc.Digits)
	assert.Equal(t, 60, acc.Period)
}

func TestVault_RemoveAccount(t *testing.T) {
	t.Parallel()

	v, _ := newVault(t)
	require.NoError(t, v.Initialize(testPassword))

	id, err := v.AddAccount("GitHub", "alice", testSecret)
	require.NoError(t, err)

	require.NoError(t, v.RemoveAccount(id))

	_, err = v.GetAccount(id)
	assert.ErrorIs(t, err, vault.ErrNotFound)
	assert.ErrorIs(t, v.RemoveAccount(id), vault.ErrNotFound)
}

func TestVault_ListAccountsSorted(t *testing.T) {
	t.Parallel()

	v, _ := newVault(t)
	require.NoError(t, v.Initialize(testPassword))

	for _, pair := range [][2]string{
		{"zeta", "a"},
		{"Alpha", "b"},
		{"alpha", "A"},
		{"", "standalone"},
	} {
		_, err := v.AddAccount(pair[0], pair[1], testSecret)
		require.NoError(t, err)
	}

	accounts, err := v.ListAccounts()
	require.NoError(t, err)
	require.Len(t, accounts, 4)

	assert.Equal(t, "standalone", accounts[0].Label)
	assert.Equal(t, "A", accounts[1].Label)
	assert.Equal(t, "b", accounts[2].Label)
	assert.Equal(t, "zeta", accounts[3].Issuer)
}

func TestVault_SearchAccounts(t *testing.T) {
	t.Parallel()

	v, _ := newVault(t)
	require.NoError(t, v.Initialize(testPassword))

	_, err := v.AddAccount("GitHub", "alice@example.com", testSecret)
	require.NoError(t, err)
	_, err = v.AddAccount("GitLab", "bob@example.com", testSecret)
	require.NoError(t, err)
	_, err = v.AddAccount("AWS", "carol", testSecret)
	require.NoError(t, err)

	hits, err := v.SearchAccounts("github")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "GitHub", hits[0].Issuer)

	hits, err = v.SearchAccounts("EXAMPLE.COM")
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = v.SearchAccounts("nothing matches this")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestVault_GenerateCode(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	v, _ := newVault(t, vault.WithClock(func() time.Time { return now }))
	require.NoError(t, v.Initialize(testPassword))

	id, err := v.AddAccount("GitHub", "alice", testSecret)
	require.NoError(t, err)

	code, err := v.GenerateCode(id)
	require.NoError(t, err)

	want, err := totp.GenerateCodeAt(testSecret, totp.AlgorithmSHA1, totp.DefaultDigits, totp.DefaultPeriod, now)
	require.NoError(t, err)
	assert.Equal(t, want, code)

	acc, err := v.GetAccount(id)
	require.NoError(t, err)
	assert.Equal(t, 1, acc.UsageCount)
	assert.Equal(t, now, acc.LastUsedAt)

	remaining, err := v.RemainingSeconds(id)
	require.NoError(t, err)
	assert.Greater(t, remaining, 0)
	assert.LessOrEqual(t, remaining, totp.DefaultPeriod)
}

func TestVault_LockFlushesPendingUsage(t *testing.T) {
	t.Parallel()

	v, path := newVault(t)
	require.NoError(t, v.Initialize(testPassword))

	id, err := v.AddAccount("GitHub", "alice", testSecret)
	require.NoError(t, err)

	_, err = v.GenerateCode(id)
	require.NoError(t, err)
	require.NoError(t, v.Lock())

	reopened := openVault(t, path)
	require.NoError(t, reopened.Unlock(testPassword))

	acc, err := reopened.GetAccount(id)
	require.NoError(t, err)
	assert.Equal(t, 1, acc.UsageCount)
}

func TestVault_ExportImportBackup(t *testing.T) {
	t.Parallel()

	src, _ := newVault(t)
	require.NoError(t, src.Initialize(testPassword))

	idA, err := src.AddAccount("GitHub", "alice", testSecret)
	require.NoError(t, err)
	idB, err := src.AddAccount("AWS", "bob", testSecret)
	require.NoError(t, err)

	doc, err := src.ExportBackup()
	require.NoError(t, err)

	dst, _ := newVault(t)
	require.NoError(t, dst.Initialize("another password"))

	// Pre-seed dst with a diverging copy of idA; the import must
	// replace it rather than duplicate.
	preSeed, err := src.ExportBackup()
	require.NoError(t, err)
	require.NoError(t, dst.ImportBackup(preSeed))
	require.NoError(t, dst.RemoveAccount(idB))

	require.NoError(t, dst.ImportBackup(doc))

	accounts, err := dst.ListAccounts()
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	accA, err := dst.GetAccount(idA)
	require.NoError(t, err)
	assert.Equal(t, "alice", accA.Label)
	accB, err := dst.GetAccount(idB)
	require.NoError(t, err)
	assert.Equal(t, "bob", accB.Label)
}

func TestVault_ImportBackupRejectsGarbage(t *testing.T) {
	t.Parallel()

	v, _ := newVault(t)
	require.NoError(t, v.Initialize(testPassword))

	assert.ErrorIs(t, v.ImportBackup([]byte("not json")), vault.ErrInvalidBackup)
	assert.ErrorIs(t, v.ImportBackup([]byte(`{"version":99,"accounts":[]}`)), vault.ErrInvalidBackup)
}

func TestVault_ExportURIRoundTrip(t *testing.T) {
	t.Parallel()

	v, _ := newVault(t)
	require.NoError(t, v.Initialize(testPassword))

	id, err := v.AddAccount("GitHub", "alice", testSecret)
	require.NoError(t, err)

	uri, err := v.ExportURI(id)
	require.NoError(t, err)

	p, err := totp.ParseURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "GitHub", p.Issuer)
	assert.Equal(t, "alice", p.Account)
	assert.Equal(t, testSecret, p.Secret)
}

func TestVault_QRCode(t *testing.T) {
	t.Parallel()

	v, _ := newVault(t)
	require.NoError(t, v.Initialize(testPassword))

	id, err := v.AddAccount("GitHub", "alice", testSecret)
	require.NoError(t, err)

	png, err := v.QRCode(id, 0)
	require.NoError(t, err)
	require.Greater(t, len(png), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, png[:8])
}

func TestVault_CrashLeavesPriorFileReadable(t *testing.T) {
	t.Parallel()

	v, path := newVault(t)
	require.NoError(t, v.Initialize(testPassword))

	id, err := v.AddAccount("GitHub", "alice", testSecret)
	require.NoError(t, err)
	require.NoError(t, v.Lock())

	// Simulate a crash between temp-write and rename.
	require.NoError(t, os.WriteFile(path+".tmp", []byte("half-written garbage"), 0o600))

	reopened := openVault(t, path)
	require.NoError(t, reopened.Unlock(testPassword))

	acc, err := reopened.GetAccount(id)
	require.NoError(t, err)
	assert.Equal(t, "alice", acc.Label)
}

func TestVault_SaveRotatesBackup(t *testing.T) {
	t.Parallel()

	v, path := newVault(t)
	require.NoError(t, v.Initialize(testPassword))

	_, err := v.AddAccount("GitHub", "alice", testSecret)
	require.NoError(t, err)

	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err)
}

func TestVault_CorruptionDetectedWithVerifier(t *testing.T) {
	t.Parallel()

	ring, err := keyring.Open(keyring.WithConfig(keyring.Config{ForceBackend: "file", Dir: t.TempDir()}))
	require.NoError(t, err)

	v, path := newVault(t, vault.WithKeyring(ring))
	require.NoError(t, v.Initialize(testPassword))
	require.NoError(t, v.Lock())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0x01
	require.NoError(t, os.WriteFile(path, data, 0o600))

	reopened := openVault(t, path, vault.WithKeyring(ring))
	assert.ErrorIs(t, reopened.Unlock(testPassword), vault.ErrVaultCorrupt)
	assert.ErrorIs(t, reopened.Unlock("wrong"), vault.ErrInvalidPassword)

	// The corrupt file is surfaced, never deleted.
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestVault_NoReadSucceedsAfterLock(t *testing.T) {
	t.Parallel()

	v, _ := newVault(t)
	require.NoError(t, v.Initialize(testPassword))

	id, err := v.AddAccount("GitHub", "alice", testSecret)
	require.NoError(t, err)
	require.NoError(t, v.Lock())

	_, err = v.GetAccount(id)
	assert.ErrorIs(t, err, vault.ErrLocked)

	require.NoError(t, v.Unlock(testPassword))
	_, err = v.GetAccount(id)
	assert.NoError(t, err)
}

func TestVault_SecurityReport(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	v, _ := newVault(t, vault.WithClock(func() time.Time { return now }))
	require.NoError(t, v.Initialize(testPassword))

	// Healthy: 20-byte random secret, default parameters.
	strong, err := totp.GenerateSecret()
	require.NoError(t, err)
	_, err = v.AddAccount("GitHub", "alice", strong)
	require.NoError(t, err)

	// Published demo seed.
	_, err = v.AddAccount("Demo", "demo", testSecret)
	require.NoError(t, err)

	// Under the 80-bit minimum secret size.
	_, err = v.AddAccount("Legacy", "short", "JBSWY3DP")
	require.NoError(t, err)

	// Stale: created two years ago, injected via backup import.
	oldID := uuid.New()
	old := `{"version":1,"accounts":[{
		"id":"` + oldID.String() + `",
		"label":"ancient",
		"secret":"` + strong + `",
		"algorithm":"SHA1","digits":6,"period":30,
		"created_at":"2021-11-14T22:13:20Z",
		"last_used_at":"0001-01-01T00:00:00Z","usage_count":0}]}`
	require.NoError(t, v.ImportBackup([]byte(old)))

	report, err := v.SecurityReport()
	require.NoError(t, err)
	assert.Equal(t, 4, report.TotalAccounts)
	assert.Equal(t, 1, report.Weak)
	assert.Equal(t, 1, report.Old)
	assert.Equal(t, 1, report.Compromised)
	assert.Equal(t, 0, report.NoTwoFactor)
	assert.Equal(t, 100-10-5-25, report.Score)
}
