package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scavnger-backend/internal/pipeline"
)

func TestGetAccountSequence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts/0xabc", r.URL.Path)
		json.NewEncoder(w).Encode(AccountInfo{SequenceNumber: "17"})
	}))
	defer server.Close()

	client := NewChainClient(server.URL, 0)
	seq, err := client.GetAccountSequence(context.Background(), "0xabc")

	require.NoError(t, err)
	assert.Equal(t, uint64(17), seq)
}

func TestEstimateGasPriceFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(GasEstimate{GasEstimate: 0})
	}))
	defer server.Close()

	client := NewChainClient(server.URL, 0)
	price, err := client.EstimateGasPrice(context.Background())

	require.NoError(t, err)
	assert.Equal(t, uint64(100), price, "a zero estimate falls back to the floor price")
}

func TestGetTransactionByHashNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewChainClient(server.URL, 0)
	record, err := client.GetTransactionByHash(context.Background(), "0x1")

	require.NoError(t, err, "a not-yet-seen transaction is not an error")
	assert.Nil(t, record)
}

func TestWaitForTransactionConfirms(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			json.NewEncoder(w).Encode(TransactionRecord{Type: "pending_transaction", Hash: "0x1"})
			return
		}
		json.NewEncoder(w).Encode(TransactionRecord{Type: "user_transaction", Hash: "0x1", Success: true, VMState: "Executed successfully"})
	}))
	defer server.Close()

	client := NewChainClient(server.URL, time.Second)
	client.pollInterval = 5 * time.Millisecond

	confirmed, err := client.WaitForTransaction(context.Background(), "0x1")

	require.NoError(t, err)
	assert.Equal(t, "0x1", confirmed.Hash)
	assert.True(t, confirmed.Success)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestWaitForTransactionVMFailureIsHardError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(TransactionRecord{Type: "user_transaction", Hash: "0x1", Success: false, VMState: "Move abort: ENOT_PARTICIPANT"})
	}))
	defer server.Close()

	client := NewChainClient(server.URL, time.Second)
	_, err := client.WaitForTransaction(context.Background(), "0x1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENOT_PARTICIPANT")

	var ierr *pipeline.IndeterminateError
	assert.False(t, errors.As(err, &ierr), "an on-chain abort is final, not indeterminate")
}

func TestWaitForTransactionSurvivesFlakyFullnode(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(TransactionRecord{Type: "user_transaction", Hash: "0x1", Success: true, VMState: "Executed successfully"})
	}))
	defer server.Close()

	client := NewChainClient(server.URL, time.Second)
	client.pollInterval = 5 * time.Millisecond

	confirmed, err := client.WaitForTransaction(context.Background(), "0x1")

	require.NoError(t, err, "a poll error does not mean the transaction failed")
	assert.True(t, confirmed.Success)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestWaitForTransactionFullnodeDownIsIndeterminate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewChainClient(server.URL, 30*time.Millisecond)
	client.pollInterval = 5 * time.Millisecond

	_, err := client.WaitForTransaction(context.Background(), "0x1")

	require.Error(t, err)
	var ierr *pipeline.IndeterminateError
	require.ErrorAs(t, err, &ierr, "an unreachable fullnode leaves the outcome unknown")
	assert.Equal(t, "0x1", ierr.TxHash)
	assert.Contains(t, err.Error(), "status 500")
}

func TestWaitForTransactionTimeoutIsIndeterminate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(TransactionRecord{Type: "pending_transaction", Hash: "0x1"})
	}))
	defer server.Close()

	client := NewChainClient(server.URL, 30*time.Millisecond)
	client.pollInterval = 5 * time.Millisecond

	_, err := client.WaitForTransaction(context.Background(), "0x1")

	require.Error(t, err)
	var ierr *pipeline.IndeterminateError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "0x1", ierr.TxHash)
}
