package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"scavnger-backend/internal/metrics"
	"scavnger-backend/internal/utils"
)

// SponsorClient submits signed transactions to the gas-sponsoring relay
// ("gas station"), which co-signs as fee payer, pays gas, and broadcasts.
// No retry is attempted on relay errors.
type SponsorClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSponsorClient creates a relay client. The API key is the relay's
// access credential and is required for every submission.
func NewSponsorClient(baseURL, apiKey string, timeout time.Duration) *SponsorClient {
	if baseURL == "" {
		baseURL = "https://api.shinami.com/aptos/gas"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SponsorClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// sponsorRequest is the relay's submission envelope.
type sponsorRequest struct {
	Transaction     string                `json:"transaction"` // BCS hex
	SenderSignature sponsorAuthentication `json:"senderSignature"`
}

type sponsorAuthentication struct {
	PublicKey string `json:"publicKey"` // bare 64 hex chars (32-byte ed25519)
	Signature string `json:"signature"`
}

// sponsorResponse is the relay's result envelope.
type sponsorResponse struct {
	Hash  string `json:"hash"`
	Error string `json:"error,omitempty"`
}

// SponsorAndSubmit assembles the signed-transaction authenticator and
// forwards it for co-signing and broadcast. The public key is normalized
// (one scheme-discriminator prefix stripped) and validated before the relay
// is called. Implements pipeline.SponsorSubmitter.
func (c *SponsorClient) SponsorAndSubmit(ctx context.Context, txBCSHex, signatureHex, publicKeyHex string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("sponsor API key is not configured")
	}
	if txBCSHex == "" || signatureHex == "" {
		return "", fmt.Errorf("transaction and signature are required")
	}

	cleanKey, err := utils.NormalizePublicKey(publicKeyHex)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(sponsorRequest{
		Transaction: txBCSHex,
		SenderSignature: sponsorAuthentication{
			PublicKey: cleanKey,
			Signature: signatureHex,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal sponsor request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/sponsorAndSubmitSignedTransaction", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.SponsorDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SponsorSubmissions.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to reach sponsorship relay: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.SponsorSubmissions.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to read relay response: %w", err)
	}

	var result sponsorResponse
	if err := json.Unmarshal(body, &result); err != nil {
		// Relay errors may arrive as empty or non-JSON bodies; carry what we got.
		metrics.SponsorSubmissions.WithLabelValues("error").Inc()
		return "", fmt.Errorf("relay returned status %d: %s", resp.StatusCode, string(body))
	}

	if resp.StatusCode != http.StatusOK || result.Error != "" {
		metrics.SponsorSubmissions.WithLabelValues("rejected").Inc()
		if result.Error != "" {
			return "", fmt.Errorf("relay rejected transaction: %s", result.Error)
		}
		return "", fmt.Errorf("relay returned status %d: %s", resp.StatusCode, string(body))
	}
	if result.Hash == "" {
		metrics.SponsorSubmissions.WithLabelValues("error").Inc()
		return "", fmt.Errorf("no transaction hash returned from relay")
	}

	metrics.SponsorSubmissions.WithLabelValues("ok").Inc()
	return result.Hash, nil
}
