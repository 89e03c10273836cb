package vault

import "errors"

var (
	// ErrLocked is returned by every registry operation while the vault
	// is locked. Unlock and IsLocked are the only exceptions.
	ErrLocked = errors.New("vault is locked")

	// ErrNotInitialized is returned by Unlock when no vault file exists
	// at the configured path.
	ErrNotInitialized = errors.New("vault is not initialized")

	// ErrAlreadyInitialized is returned by Initialize when a vault file
	// already exists at the configured path.
	ErrAlreadyInitialized = errors.New("vault is already initialized")

	// ErrInvalidPassword is returned when the unlock password does not
	// open the vault. It carries no detail about how close the guess was.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrVaultCorrupt means the vault file failed to decrypt or parse
	// under a password proven correct. It is never recovered from
	// automatically and the file is never deleted.
	ErrVaultCorrupt = errors.New("vault file is corrupt")

	// ErrNotFound is returned when no account has the requested ID.
	ErrNotFound = errors.New("account not found")

	// ErrInvalidAccount is returned when account fields fail validation.
	ErrInvalidAccount = errors.New("invalid account")

	// ErrInvalidBackup is returned when a backup document cannot be
	// parsed or carries an unsupported format version.
	ErrInvalidBackup = errors.New("invalid backup document")

	// ErrSaveFailed wraps persistence write failures. The previous file
	// and its backup are left intact.
	ErrSaveFailed = errors.New("failed to save vault")

	// ErrLoadFailed wraps persistence read failures other than a missing
	// or corrupt file.
	ErrLoadFailed = errors.New("failed to load vault")
)
