package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"scavnger-backend/internal/metrics"
	"scavnger-backend/internal/pipeline"
)

// ChainClient is a Movement fullnode REST API client. It covers the small
// surface the check-in pipeline needs: sequencing metadata, gas estimation,
// and transaction lookup/finality polling.
type ChainClient struct {
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	waitTimeout  time.Duration
}

// NewChainClient creates a fullnode client. waitTimeout bounds finality
// polling; past it the outcome is reported indeterminate, not failed.
func NewChainClient(baseURL string, waitTimeout time.Duration) *ChainClient {
	if baseURL == "" {
		baseURL = "https://testnet.movementnetwork.xyz/v1"
	}
	if waitTimeout <= 0 {
		waitTimeout = 30 * time.Second
	}
	return &ChainClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		pollInterval: time.Second,
		waitTimeout:  waitTimeout,
	}
}

// LedgerInfo is the fullnode's chain metadata.
type LedgerInfo struct {
	ChainID         uint8  `json:"chain_id"`
	LedgerVersion   string `json:"ledger_version"`
	LedgerTimestamp string `json:"ledger_timestamp"`
}

// AccountInfo carries the sender's sequencing metadata.
type AccountInfo struct {
	SequenceNumber    string `json:"sequence_number"`
	AuthenticationKey string `json:"authentication_key"`
}

// GasEstimate is the fullnode's current gas unit price estimate.
type GasEstimate struct {
	GasEstimate uint64 `json:"gas_estimate"`
}

// TransactionRecord is the fullnode's view of a committed or pending
// transaction.
type TransactionRecord struct {
	Type    string `json:"type"`
	Hash    string `json:"hash"`
	Success bool   `json:"success"`
	VMState string `json:"vm_status"`
	Events  []struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	} `json:"events"`
}

// GetLedgerInfo fetches chain metadata from the fullnode root endpoint.
func (c *ChainClient) GetLedgerInfo(ctx context.Context) (*LedgerInfo, error) {
	var info LedgerInfo
	if err := c.get(ctx, "", &info); err != nil {
		metrics.ChainRequestsFailed.WithLabelValues("ledger_info").Inc()
		return nil, fmt.Errorf("failed to fetch ledger info: %w", err)
	}
	return &info, nil
}

// GetAccountSequence fetches the sender's next sequence number.
func (c *ChainClient) GetAccountSequence(ctx context.Context, address string) (uint64, error) {
	var account AccountInfo
	if err := c.get(ctx, "/accounts/"+address, &account); err != nil {
		metrics.ChainRequestsFailed.WithLabelValues("account").Inc()
		return 0, fmt.Errorf("failed to fetch account %s: %w", address, err)
	}
	seq, err := strconv.ParseUint(account.SequenceNumber, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid sequence number %q: %w", account.SequenceNumber, err)
	}
	return seq, nil
}

// EstimateGasPrice fetches the current gas unit price estimate.
func (c *ChainClient) EstimateGasPrice(ctx context.Context) (uint64, error) {
	var estimate GasEstimate
	if err := c.get(ctx, "/estimate_gas_price", &estimate); err != nil {
		metrics.ChainRequestsFailed.WithLabelValues("gas_estimate").Inc()
		return 0, fmt.Errorf("failed to estimate gas price: %w", err)
	}
	if estimate.GasEstimate == 0 {
		return 100, nil
	}
	return estimate.GasEstimate, nil
}

// GetTransactionByHash looks one transaction up. A 404 means the fullnode
// has not seen it yet; that is returned as (nil, nil) so the caller can keep
// polling.
func (c *ChainClient) GetTransactionByHash(ctx context.Context, hash string) (*TransactionRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transactions/by_hash/"+hash, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ChainRequestsFailed.WithLabelValues("by_hash").Inc()
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.ChainRequestsFailed.WithLabelValues("by_hash").Inc()
		return nil, fmt.Errorf("fullnode returned status %d: %s", resp.StatusCode, string(body))
	}

	var record TransactionRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("failed to parse transaction: %w", err)
	}
	return &record, nil
}

// WaitForTransaction polls until the transaction leaves the pending state or
// the wait timeout elapses. Timeout yields *pipeline.IndeterminateError: the
// transaction may still land later. Poll errors are transient by the same
// reasoning; a failing fullnode is not evidence the transaction failed, so
// polling continues until the deadline. Only a committed transaction whose
// VM execution failed is a hard error.
func (c *ChainClient) WaitForTransaction(ctx context.Context, hash string) (*pipeline.ConfirmedTransaction, error) {
	start := time.Now()
	defer func() {
		metrics.FinalityWaitDuration.Observe(time.Since(start).Seconds())
	}()

	deadline := start.Add(c.waitTimeout)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	var lastPollErr error
	for {
		record, err := c.GetTransactionByHash(ctx, hash)
		if err != nil {
			lastPollErr = err
		} else if record != nil && record.Type != "pending_transaction" {
			if !record.Success {
				return nil, fmt.Errorf("transaction %s failed on chain: %s", hash, record.VMState)
			}
			confirmed := &pipeline.ConfirmedTransaction{
				Hash:    record.Hash,
				Success: record.Success,
				VMState: record.VMState,
			}
			for _, ev := range record.Events {
				confirmed.Events = append(confirmed.Events, pipeline.TransactionEvent{Type: ev.Type, Data: ev.Data})
			}
			return confirmed, nil
		}

		if time.Now().After(deadline) {
			waitErr := fmt.Errorf("no finality after %s", c.waitTimeout)
			if lastPollErr != nil {
				waitErr = fmt.Errorf("no finality after %s, last poll error: %w", c.waitTimeout, lastPollErr)
			}
			return nil, &pipeline.IndeterminateError{TxHash: hash, Err: waitErr}
		}

		select {
		case <-ctx.Done():
			return nil, &pipeline.IndeterminateError{TxHash: hash, Err: ctx.Err()}
		case <-ticker.C:
		}
	}
}

// TestConnection checks the fullnode is reachable.
func (c *ChainClient) TestConnection(ctx context.Context) error {
	_, err := c.GetLedgerInfo(ctx)
	return err
}

func (c *ChainClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fullnode returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
