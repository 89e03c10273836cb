//go:build darwin

package keyring

func platformProbes() []probe {
	return []probe{
		keychainProbe(),
		fileProbe(),
	}
}
