package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scavnger-backend/internal/clients"
)

const txnTestContract = "0x4444444444444444444444444444444444444444444444444444444444444444"
const txnTestSender = "0x5555555555555555555555555555555555555555555555555555555555555555"

func newTransactionRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fullnode := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/accounts/"):
			json.NewEncoder(w).Encode(clients.AccountInfo{SequenceNumber: "3"})
		case r.URL.Path == "/estimate_gas_price":
			json.NewEncoder(w).Encode(clients.GasEstimate{GasEstimate: 110})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(fullnode.Close)

	chain := clients.NewChainClient(fullnode.URL, time.Second)
	builder := clients.NewTxnBuilder(chain, txnTestContract, 250, true)
	handler := NewTransactionHandler(builder, nil)

	r := gin.New()
	r.POST("/api/transactions/build-join", handler.BuildJoin)
	r.POST("/api/transactions/build-create", handler.BuildCreate)
	return r
}

func postTransactionJSON(t *testing.T, r *gin.Engine, path string, payload any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestBuildJoinEndpoint(t *testing.T) {
	r := newTransactionRouter(t)

	w, resp := postTransactionJSON(t, r, "/api/transactions/build-join", gin.H{
		"senderAddress": txnTestSender,
		"challengeId":   7,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, txnTestContract+"::challenge_factory::join_challenge", resp["function"])
	assert.Equal(t, txnTestSender, resp["sender"])
	assert.True(t, strings.HasPrefix(resp["transaction"].(string), "0x"))
	assert.True(t, strings.HasPrefix(resp["signingMessage"].(string), "0x"))
}

func TestBuildJoinEndpointRejectsMissingSender(t *testing.T) {
	r := newTransactionRouter(t)

	w, resp := postTransactionJSON(t, r, "/api/transactions/build-join", gin.H{
		"challengeId": 7,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["success"])
}

func TestBuildCreateEndpointScalesBuyIn(t *testing.T) {
	r := newTransactionRouter(t)

	w, resp := postTransactionJSON(t, r, "/api/transactions/build-create", gin.H{
		"senderAddress": txnTestSender,
		"title":         "Protocol 75",
		"durationDays":  75,
		"buyIn":         2,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, txnTestContract+"::challenge_factory::create_challenge", resp["function"])
	assert.Equal(t, float64(200_000_000), resp["buyInOctas"])
	assert.Equal(t, float64(2), resp["buyInUnits"])
}
