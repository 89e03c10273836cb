package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when content is empty or only whitespace.
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrGenerationFailed is returned when QR code rendering fails.
	ErrGenerationFailed = errors.New("failed to generate QR code")
)

// defaultSize is the edge length in pixels used when no size is given.
const defaultSize = 256

// Generate renders content as a PNG QR code. Provisioning URIs are scanned
// by phone cameras at arm's length, so medium error correction is enough.
func Generate(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = defaultSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrGenerationFailed, err)
	}
	return png, nil
}

// GenerateDataURI renders content as a QR code wrapped in a data: URI,
// ready to drop into an <img> tag or a webview.
func GenerateDataURI(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(png)), nil
}
