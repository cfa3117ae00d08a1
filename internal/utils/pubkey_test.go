package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePublicKey(t *testing.T) {
	bare := strings.Repeat("ab", 32)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare key", bare, bare, false},
		{"0x prefix", "0x" + bare, bare, false},
		{"scheme byte with 0x", "0x00" + bare, bare, false},
		{"scheme byte without 0x", "00" + bare, bare, false},
		{"uppercase hex", strings.ToUpper(bare), strings.ToUpper(bare), false},
		{"empty", "", "", true},
		{"too short", bare[:62], "", true},
		{"too long", bare + "ff", "", true},
		{"not hex", strings.Repeat("zz", 32), "", true},
		{"double scheme byte", "0x0000" + bare, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePublicKey(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePublicKeyEquivalentForms(t *testing.T) {
	bare := strings.Repeat("1f", 32)
	forms := []string{bare, "0x" + bare, "0x00" + bare, "00" + bare}

	for _, form := range forms {
		got, err := NormalizePublicKey(form)
		require.NoError(t, err, form)
		assert.Equal(t, bare, got, "form %q must normalize to the bare key", form)
	}
}

func TestIsAccountAddress(t *testing.T) {
	valid := strings.Repeat("0a", 32)

	assert.True(t, IsAccountAddress(valid))
	assert.True(t, IsAccountAddress("0x"+valid))
	assert.False(t, IsAccountAddress(""))
	assert.False(t, IsAccountAddress("0x"+valid[:10]))
	assert.False(t, IsAccountAddress(strings.Repeat("gg", 32)))
}

func TestEnsureHexPrefix(t *testing.T) {
	assert.Equal(t, "0xabc", EnsureHexPrefix("abc"))
	assert.Equal(t, "0xabc", EnsureHexPrefix("0xabc"))
}
