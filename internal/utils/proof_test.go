package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripDataURLPrefix(t *testing.T) {
	assert.Equal(t, "aGVsbG8=", StripDataURLPrefix("data:image/jpeg;base64,aGVsbG8="))
	assert.Equal(t, "aGVsbG8=", StripDataURLPrefix("data:image/png;base64,aGVsbG8="))
	assert.Equal(t, "aGVsbG8=", StripDataURLPrefix("aGVsbG8="))
}

func TestDataURLContentType(t *testing.T) {
	assert.Equal(t, "image/png", DataURLContentType("data:image/png;base64,xxxx", "image/jpeg"))
	assert.Equal(t, "image/jpeg", DataURLContentType("xxxx", "image/jpeg"))
}

func TestDecodeProofImage(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff, 0xe0}
	encoded := base64.StdEncoding.EncodeToString(payload)

	decoded, err := DecodeProofImage(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)

	decoded, err = DecodeProofImage("data:image/jpeg;base64," + encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)

	_, err = DecodeProofImage("!!not base64!!")
	assert.Error(t, err)

	_, err = DecodeProofImage("")
	assert.Error(t, err)
}
