package qrcode_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dowelhq/steek/pkg/qrcode"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	png, err := qrcode.Generate("otpauth://totp/Acme:alice?secret=JBSWY3DPEHPK3PXP", 0)
	require.NoError(t, err)
	// PNG signature
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestGenerate_EmptyContent(t *testing.T) {
	t.Parallel()

	_, err := qrcode.Generate("   ", 128)
	assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
}

func TestGenerateDataURI(t *testing.T) {
	t.Parallel()

	uri, err := qrcode.GenerateDataURI("otpauth://totp/Acme:alice?secret=JBSWY3DPEHPK3PXP", 128)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}
