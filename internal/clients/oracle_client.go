package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"scavnger-backend/internal/dto"
)

// OracleClient is the application server's client for the standalone
// verifier oracle service. The submit-proof route forwards the user's
// submission and relays the oracle's result and status code unchanged.
type OracleClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOracleClient creates a verifier oracle client. Verification plus the
// full on-chain submission can take well over a minute, so the timeout is
// generous.
func NewOracleClient(baseURL string) *OracleClient {
	if baseURL == "" {
		baseURL = "http://localhost:3001"
	}
	return &OracleClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// VerifyCheckin forwards one proof submission. The oracle's HTTP status is
// returned alongside the parsed body so the caller can relay both.
func (c *OracleClient) VerifyCheckin(ctx context.Context, req *dto.VerifyCheckinRequest) (*dto.VerifyCheckinResponse, int, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal verify request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/verify-checkin", bytes.NewBuffer(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to reach verifier oracle: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read oracle response: %w", err)
	}

	var result dto.VerifyCheckinResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("oracle returned status %d: %s", resp.StatusCode, string(body))
	}

	return &result, resp.StatusCode, nil
}

// Health fetches the oracle's health envelope, including its verifier
// address.
func (c *OracleClient) Health(ctx context.Context) (*dto.HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach verifier oracle: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oracle health check returned status %d: %s", resp.StatusCode, string(body))
	}

	var health dto.HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		return nil, fmt.Errorf("failed to parse health response: %w", err)
	}
	return &health, nil
}
