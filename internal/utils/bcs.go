package utils

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// Minimal BCS (Binary Canonical Serialization) writer covering the subset
// the check-in transaction needs: uleb128 lengths, little-endian u64,
// fixed 32-byte addresses, length-prefixed strings and byte vectors.

// BCSWriter accumulates BCS-encoded output.
type BCSWriter struct {
	buf []byte
}

// NewBCSWriter creates an empty writer.
func NewBCSWriter() *BCSWriter {
	return &BCSWriter{}
}

// Bytes returns the accumulated encoding.
func (w *BCSWriter) Bytes() []byte {
	return w.buf
}

// WriteULEB128 writes an unsigned LEB128-encoded length/variant tag.
func (w *BCSWriter) WriteULEB128(v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			w.buf = append(w.buf, b|0x80)
			continue
		}
		w.buf = append(w.buf, b)
		return
	}
}

// WriteU8 writes one byte.
func (w *BCSWriter) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteU64 writes a little-endian u64.
func (w *BCSWriter) WriteU64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// WriteBool writes a BCS bool.
func (w *BCSWriter) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteFixedBytes writes raw bytes with no length prefix.
func (w *BCSWriter) WriteFixedBytes(data []byte) {
	w.buf = append(w.buf, data...)
}

// WriteBytes writes a uleb128 length followed by the bytes.
func (w *BCSWriter) WriteBytes(data []byte) {
	w.WriteULEB128(uint64(len(data)))
	w.buf = append(w.buf, data...)
}

// WriteString writes a uleb128 length-prefixed UTF-8 string.
func (w *BCSWriter) WriteString(s string) {
	w.WriteBytes([]byte(s))
}

// WriteAddress writes a 32-byte account address, left-padding short forms.
func (w *BCSWriter) WriteAddress(address string) error {
	data, err := DecodeAccountAddress(address)
	if err != nil {
		return err
	}
	w.buf = append(w.buf, data...)
	return nil
}

// DecodeAccountAddress decodes a hex account address (with or without 0x,
// short forms allowed) into its canonical 32-byte form.
func DecodeAccountAddress(address string) ([]byte, error) {
	clean := strings.TrimPrefix(strings.ToLower(address), "0x")
	if clean == "" {
		return nil, fmt.Errorf("account address is empty")
	}
	if len(clean) > 64 {
		return nil, fmt.Errorf("account address too long: %d hex chars", len(clean))
	}
	if len(clean)%2 != 0 {
		clean = "0" + clean
	}
	raw, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid account address %q: %w", address, err)
	}
	out := make([]byte, 32)
	copy(out[32-len(raw):], raw)
	return out, nil
}

// BCSEncodeU64 encodes a bare u64 argument (the form entry-function
// arguments are wrapped in).
func BCSEncodeU64(v uint64) []byte {
	w := NewBCSWriter()
	w.WriteU64(v)
	return w.Bytes()
}
