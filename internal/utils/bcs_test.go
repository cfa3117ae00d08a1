package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteULEB128(t *testing.T) {
	tests := []struct {
		value uint64
		want  []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
		{16384, []byte{0x80, 0x80, 0x01}},
	}

	for _, tt := range tests {
		w := NewBCSWriter()
		w.WriteULEB128(tt.value)
		assert.Equal(t, tt.want, w.Bytes(), "uleb128(%d)", tt.value)
	}
}

func TestWriteU64LittleEndian(t *testing.T) {
	w := NewBCSWriter()
	w.WriteU64(1)
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, w.Bytes())

	assert.Equal(t, []byte{0x15, 0xcd, 0x5b, 0x07, 0, 0, 0, 0}, BCSEncodeU64(123456789))
}

func TestWriteBytesAndString(t *testing.T) {
	w := NewBCSWriter()
	w.WriteString("abc")
	assert.Equal(t, []byte{0x03, 'a', 'b', 'c'}, w.Bytes())

	w = NewBCSWriter()
	w.WriteBytes(nil)
	assert.Equal(t, []byte{0x00}, w.Bytes())
}

func TestWriteBool(t *testing.T) {
	w := NewBCSWriter()
	w.WriteBool(true)
	w.WriteBool(false)
	assert.Equal(t, []byte{1, 0}, w.Bytes())
}

func TestDecodeAccountAddress(t *testing.T) {
	// Short forms left-pad to 32 bytes.
	got, err := DecodeAccountAddress("0x1")
	require.NoError(t, err)
	require.Len(t, got, 32)
	assert.True(t, bytes.Equal(got[:31], make([]byte, 31)))
	assert.Equal(t, byte(0x01), got[31])

	full := "0x" + "ff" + "00" + "11" + "22" + "33" + "44" + "55" + "66" + "77" + "88" + "99" + "aa" + "bb" + "cc" + "dd" + "ee" + "ff" + "00" + "11" + "22" + "33" + "44" + "55" + "66" + "77" + "88" + "99" + "aa" + "bb" + "cc" + "dd" + "ee"
	got, err = DecodeAccountAddress(full)
	require.NoError(t, err)
	assert.Equal(t, byte(0xff), got[0])
	assert.Equal(t, byte(0xee), got[31])

	_, err = DecodeAccountAddress("")
	assert.Error(t, err)

	_, err = DecodeAccountAddress("0x" + string(make([]byte, 70)))
	assert.Error(t, err)

	_, err = DecodeAccountAddress("0xzz")
	assert.Error(t, err)
}

func TestWriteAddress(t *testing.T) {
	w := NewBCSWriter()
	require.NoError(t, w.WriteAddress("0xa"))
	assert.Len(t, w.Bytes(), 32)

	w = NewBCSWriter()
	assert.Error(t, w.WriteAddress("not-an-address"))
}
