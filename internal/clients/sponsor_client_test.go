package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSponsorAndSubmitSuccess(t *testing.T) {
	bareKey := strings.Repeat("ab", 32)

	var captured sponsorRequest
	var apiKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/sponsorAndSubmitSignedTransaction", r.URL.Path)
		apiKey = r.Header.Get("X-Api-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(sponsorResponse{Hash: "0xfeed"})
	}))
	defer server.Close()

	client := NewSponsorClient(server.URL, "test-key", 0)
	// The wallet-prefixed form must be normalized before it reaches the relay.
	hash, err := client.SponsorAndSubmit(context.Background(), "0xdead", "0xsig", "0x00"+bareKey)

	require.NoError(t, err)
	assert.Equal(t, "0xfeed", hash)
	assert.Equal(t, "test-key", apiKey)
	assert.Equal(t, "0xdead", captured.Transaction)
	assert.Equal(t, bareKey, captured.SenderSignature.PublicKey)
	assert.Equal(t, "0xsig", captured.SenderSignature.Signature)
}

func TestSponsorAndSubmitRelayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(sponsorResponse{Error: "insufficient fund"})
	}))
	defer server.Close()

	client := NewSponsorClient(server.URL, "test-key", 0)
	_, err := client.SponsorAndSubmit(context.Background(), "0xdead", "0xsig", strings.Repeat("ab", 32))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient fund")
}

func TestSponsorAndSubmitNonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream timeout"))
	}))
	defer server.Close()

	client := NewSponsorClient(server.URL, "test-key", 0)
	_, err := client.SponsorAndSubmit(context.Background(), "0xdead", "0xsig", strings.Repeat("ab", 32))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream timeout")
}

func TestSponsorAndSubmitEmptyHash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(sponsorResponse{})
	}))
	defer server.Close()

	client := NewSponsorClient(server.URL, "test-key", 0)
	_, err := client.SponsorAndSubmit(context.Background(), "0xdead", "0xsig", strings.Repeat("ab", 32))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no transaction hash")
}

func TestSponsorAndSubmitValidation(t *testing.T) {
	client := NewSponsorClient("http://unused", "", 0)
	_, err := client.SponsorAndSubmit(context.Background(), "0xdead", "0xsig", strings.Repeat("ab", 32))
	assert.Error(t, err, "missing API key must fail before any network call")

	client = NewSponsorClient("http://unused", "key", 0)
	_, err = client.SponsorAndSubmit(context.Background(), "", "0xsig", strings.Repeat("ab", 32))
	assert.Error(t, err)

	_, err = client.SponsorAndSubmit(context.Background(), "0xdead", "0xsig", "bad-key")
	assert.Error(t, err)
}
