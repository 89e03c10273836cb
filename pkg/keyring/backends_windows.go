//go:build windows

package keyring

func platformProbes() []probe {
	return []probe{
		wincredProbe(),
		fileProbe(),
	}
}
