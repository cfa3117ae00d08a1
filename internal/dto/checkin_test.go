package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleIDAcceptsStringAndNumber(t *testing.T) {
	var req VerifyCheckinRequest

	require.NoError(t, json.Unmarshal([]byte(`{"challengeId": "7"}`), &req))
	assert.Equal(t, "7", req.ChallengeID.String())

	require.NoError(t, json.Unmarshal([]byte(`{"challengeId": 7}`), &req))
	assert.Equal(t, "7", req.ChallengeID.String())

	require.NoError(t, json.Unmarshal([]byte(`{"challengeId": null}`), &req))
	assert.Equal(t, "", req.ChallengeID.String())
}

func TestFlexibleIDPreservesNonNumericString(t *testing.T) {
	// A non-numeric string is accepted at decode time; integer validation
	// happens later, before any chain interaction.
	var req VerifyCheckinRequest
	require.NoError(t, json.Unmarshal([]byte(`{"challengeId": "abc"}`), &req))
	assert.Equal(t, "abc", req.ChallengeID.String())
}

func TestFlexibleIDRejectsObjects(t *testing.T) {
	var req VerifyCheckinRequest
	assert.Error(t, json.Unmarshal([]byte(`{"challengeId": {"id": 1}}`), &req))
}
