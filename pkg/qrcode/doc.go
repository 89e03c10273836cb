// Package qrcode renders otpauth provisioning URIs (or any string) as PNG
// QR codes for account enrollment screens.
package qrcode
