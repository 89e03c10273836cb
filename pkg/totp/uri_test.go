package totp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dowelhq/steek/pkg/totp"
)

func TestBuildURI_DefaultsOmitted(t *testing.T) {
	t.Parallel()

	uri, err := totp.BuildURI(totp.Params{
		Secret:  "JBSWY3DPEHPK3PXP",
		Issuer:  "Acme",
		Account: "alice@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "otpauth://totp/Acme:alice@example.com?issuer=Acme&secret=JBSWY3DPEHPK3PXP", uri)
}

func TestBuildURI_NonDefaultsIncluded(t *testing.T) {
	t.Parallel()

	uri, err := totp.BuildURI(totp.Params{
		Secret:    "JBSWY3DPEHPK3PXP",
		Issuer:    "Acme",
		Account:   "alice@example.com",
		Algorithm: totp.AlgorithmSHA256,
		Digits:    8,
		Period:    60,
	})
	require.NoError(t, err)

	assert.Contains(t, uri, "algorithm=SHA256")
	assert.Contains(t, uri, "digits=8")
	assert.Contains(t, uri, "period=60")
}

func TestBuildURI_NoIssuer(t *testing.T) {
	t.Parallel()

	uri, err := totp.BuildURI(totp.Params{
		Secret:  "JBSWY3DPEHPK3PXP",
		Account: "alice@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "otpauth://totp/alice@example.com?secret=JBSWY3DPEHPK3PXP", uri)
}

func TestParseURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		uri     string
		want    totp.Params
		wantErr error
	}{
		{
			name: "full uri",
			uri:  "otpauth://totp/Acme:alice@example.com?secret=JBSWY3DPEHPK3PXP&issuer=Acme&digits=8&period=60&algorithm=SHA256&image=https%3A%2F%2Facme.test%2Ficon.png",
			want: totp.Params{
				Secret:    "JBSWY3DPEHPK3PXP",
				Issuer:    "Acme",
				Account:   "alice@example.com",
				Algorithm: totp.AlgorithmSHA256,
				Digits:    8,
				Period:    60,
				Image:     "https://acme.test/icon.png",
			},
		},
		{
			name: "defaults applied when absent",
			uri:  "otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP",
			want: totp.Params{
				Secret:    "JBSWY3DPEHPK3PXP",
				Account:   "alice",
				Algorithm: totp.AlgorithmSHA1,
				Digits:    6,
				Period:    30,
			},
		},
		{
			name: "label split on first colon only",
			uri:  "otpauth://totp/Acme:alice:work?secret=JBSWY3DPEHPK3PXP",
			want: totp.Params{
				Secret:    "JBSWY3DPEHPK3PXP",
				Issuer:    "Acme",
				Account:   "alice:work",
				Algorithm: totp.AlgorithmSHA1,
				Digits:    6,
				Period:    30,
			},
		},
		{
			name: "issuer parameter overrides label prefix",
			uri:  "otpauth://totp/Old:alice?secret=JBSWY3DPEHPK3PXP&issuer=New",
			want: totp.Params{
				Secret:    "JBSWY3DPEHPK3PXP",
				Issuer:    "New",
				Account:   "alice",
				Algorithm: totp.AlgorithmSHA1,
				Digits:    6,
				Period:    30,
			},
		},
		{
			name: "unknown parameters ignored",
			uri:  "otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP&counter=3&foo=bar",
			want: totp.Params{
				Secret:    "JBSWY3DPEHPK3PXP",
				Account:   "alice",
				Algorithm: totp.AlgorithmSHA1,
				Digits:    6,
				Period:    30,
			},
		},
		{
			name:    "missing secret",
			uri:     "otpauth://totp/Acme:alice",
			wantErr: totp.ErrMissingSecret,
		},
		{
			name:    "wrong scheme",
			uri:     "https://totp/alice?secret=JBSWY3DPEHPK3PXP",
			wantErr: totp.ErrInvalidURI,
		},
		{
			name:    "hotp not supported",
			uri:     "otpauth://hotp/alice?secret=JBSWY3DPEHPK3PXP",
			wantErr: totp.ErrInvalidURI,
		},
		{
			name:    "digits out of range",
			uri:     "otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP&digits=12",
			wantErr: totp.ErrInvalidDigits,
		},
		{
			name:    "malformed period",
			uri:     "otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP&period=abc",
			wantErr: totp.ErrInvalidPeriod,
		},
		{
			name:    "unknown algorithm",
			uri:     "otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP&algorithm=MD5",
			wantErr: totp.ErrInvalidAlgorithm,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := totp.ParseURI(tt.uri)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestURI_RoundTrip(t *testing.T) {
	t.Parallel()

	orig := totp.Params{
		Secret:    "JBSWY3DPEHPK3PXP",
		Issuer:    "Acme Corp",
		Account:   "alice+work@example.com",
		Algorithm: totp.AlgorithmSHA512,
		Digits:    7,
		Period:    45,
		Image:     "https://acme.test/icon.png",
	}

	uri, err := totp.BuildURI(orig)
	require.NoError(t, err)

	parsed, err := totp.ParseURI(uri)
	require.NoError(t, err)
	assert.Equal(t, orig, parsed)
}
