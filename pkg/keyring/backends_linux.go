//go:build linux

package keyring

// Probe order on Linux (including dowel devices): the embedded keystore
// outranks everything, sandbox-scoped stores outrank the shared desktop
// daemon, the kernel keyring covers headless systems, and the encrypted
// file store is the unconditional fallback.
func platformProbes() []probe {
	return []probe{
		embeddedProbe(),
		portalProbe(),
		snapProbe(),
		secretServiceProbe(),
		kernelProbe(),
		fileProbe(),
	}
}
