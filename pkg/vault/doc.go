// Package vault is the account registry of the authenticator: it owns
// the lock state, the derived master key and the encrypted on-disk
// store of TOTP accounts.
//
// # Architecture
//
// A Vault starts locked. Initialize creates a new encrypted file and
// Unlock opens an existing one; both derive a master key from the
// password with PBKDF2 using the salt and iteration count recorded in
// the file header. Every registry operation other than Unlock and
// IsLocked fails with ErrLocked while locked. Lock flushes pending
// changes and zeroes the master key and all in-memory secrets.
//
// Saves are atomic: the registry is encrypted to a temp file, the
// current file rotates to a ".bak" path, then the temp file renames
// into place. A crash mid-write never corrupts the last-known-good
// store. A file that fails to decrypt or parse under a password the
// stored verifier confirms surfaces ErrVaultCorrupt and is never
// deleted automatically.
//
// All mutation is serialized through one mutex; background readers such
// as a per-second code refresh never race a foreground change.
//
// # Usage
//
//	v, err := vault.New("", vault.WithLogger(log), vault.WithKeyring(ring))
//	if err != nil {
//	    return err
//	}
//	if err := v.Unlock(password); err != nil {
//	    return err
//	}
//	defer v.Lock()
//
//	id, err := v.AddAccountFromURI(scannedURI)
//	code, err := v.GenerateCode(id)
//
// # Error Handling
//
// Wrong passwords surface ErrInvalidPassword with no detail about how
// close the guess was. Validation failures reject the operation before
// any mutation. Persistence write failures leave the previous file and
// backup intact and wrap ErrSaveFailed.
package vault
