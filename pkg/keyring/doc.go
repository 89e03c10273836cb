// Package keyring persists small secrets (master keys, password
// verifiers, TOTP seeds) outside the application's own files, behind one
// Store interface keyed by (service, account).
//
// Exactly one backend is selected at startup by probing platform
// facilities in priority order: the embedded dowel keystore, the
// sandbox secret portal, snap confinement storage, the desktop Secret
// Service, the Linux kernel keyring, and the native OS credential
// manager, with an encrypted-file store as the unconditional fallback.
// Backend unavailability therefore degrades instead of failing. The
// selected backend is held for the process lifetime.
//
// Every backend honors the same contract: Set overwrites on a duplicate
// key, Get of a missing key returns absent rather than an error, Delete
// of a missing key is a no-op, and List is best-effort (possibly empty
// even when entries exist). Name identifies the backend for diagnostics
// only; it must never drive security decisions.
//
// # Usage
//
//	store, err := keyring.Open(keyring.WithLogger(log))
//	if err != nil {
//	    // only possible when even the file fallback cannot initialize
//	}
//	err = store.Set(keyring.Entry{
//	    Service: "steek-vault",
//	    Account: "master",
//	    Secret:  masterKey,
//	})
package keyring
