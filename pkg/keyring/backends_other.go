//go:build !linux && !darwin && !windows

package keyring

func platformProbes() []probe {
	return []probe{
		fileProbe(),
	}
}
