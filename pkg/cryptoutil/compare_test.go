package cryptoutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dowelhq/steek/pkg/cryptoutil"
)

func TestConstantTimeEquals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []byte
		want bool
	}{
		{name: "identical", a: []byte("secret"), b: []byte("secret"), want: true},
		{name: "both empty", a: []byte{}, b: []byte{}, want: true},
		{name: "nil and empty", a: nil, b: []byte{}, want: true},
		{name: "different length", a: []byte("secret"), b: []byte("secrets"), want: false},
		{name: "trailing byte differs", a: []byte("secret"), b: []byte("secreT"), want: false},
		{name: "first byte differs", a: []byte("secret"), b: []byte("Secret"), want: false},
		{name: "empty vs non-empty", a: []byte{}, b: []byte("x"), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cryptoutil.ConstantTimeEquals(tt.a, tt.b))
		})
	}
}

func TestZero(t *testing.T) {
	t.Parallel()

	b := []byte("sensitive key material")
	cryptoutil.Zero(b)
	for i, v := range b {
		assert.Zerof(t, v, "byte %d not cleared", i)
	}

	cryptoutil.Zero(nil) // must not panic
}
