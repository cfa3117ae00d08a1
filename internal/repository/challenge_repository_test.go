package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnionParticipantsAddsNewAddress(t *testing.T) {
	list := []string{"0xaaa", "0xbbb"}
	got := UnionParticipants(list, "0xccc")

	assert.Equal(t, []string{"0xaaa", "0xbbb", "0xccc"}, got)
	assert.Len(t, list, 2, "input list must not be mutated")
}

func TestUnionParticipantsIsIdempotent(t *testing.T) {
	list := []string{"0xaaa", "0xbbb"}

	once := UnionParticipants(list, "0xbbb")
	twice := UnionParticipants(once, "0xbbb")

	assert.Equal(t, []string{"0xaaa", "0xbbb"}, once)
	assert.Equal(t, once, twice)
}

func TestUnionParticipantsEmptyList(t *testing.T) {
	got := UnionParticipants(nil, "0xaaa")
	assert.Equal(t, []string{"0xaaa"}, got)
}
