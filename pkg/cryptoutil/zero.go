package cryptoutil

import "runtime"

// Zero overwrites a secret buffer in place. The KeepAlive call pins the
// slice so the compiler cannot treat the wipe as a dead store. Callers
// that materialize key material must invoke Zero on every exit path.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(&b)
}
