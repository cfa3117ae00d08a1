package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	"scavnger-backend/internal/utils"
)

const (
	testContract = "0x1111111111111111111111111111111111111111111111111111111111111111"
	testSender   = "0x2222222222222222222222222222222222222222222222222222222222222222"
	testUser     = "0x3333333333333333333333333333333333333333333333333333333333333333"
)

func newTestChain(t *testing.T) *ChainClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/accounts/"):
			json.NewEncoder(w).Encode(AccountInfo{SequenceNumber: "9"})
		case r.URL.Path == "/estimate_gas_price":
			json.NewEncoder(w).Encode(GasEstimate{GasEstimate: 120})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return NewChainClient(server.URL, 0)
}

func TestBuildCheckinWithFeePayer(t *testing.T) {
	builder := NewTxnBuilder(newTestChain(t), testContract, 250, true)

	tx, err := builder.BuildCheckin(context.Background(), testSender, testUser, 5)
	require.NoError(t, err)

	assert.Equal(t, testSender, tx.Sender)
	require.True(t, strings.HasPrefix(tx.BCSHex, "0x"))

	// The raw transaction opens with the 32-byte sender, then the
	// little-endian sequence number fetched from the fullnode.
	senderBytes, err := utils.DecodeAccountAddress(testSender)
	require.NoError(t, err)

	serialized := hexMustDecode(t, tx.BCSHex)
	assert.True(t, bytes.HasPrefix(serialized, senderBytes))
	assert.Equal(t, []byte{9, 0, 0, 0, 0, 0, 0, 0}, serialized[32:40])

	// Fee sponsorship is pre-declared: the wire form ends with the
	// fee-payer option set and a zero payer address.
	tail := serialized[len(serialized)-33:]
	assert.Equal(t, byte(1), tail[0])
	assert.Equal(t, make([]byte, 32), tail[1:])

	// The signing message is domain-separated for fee-payer signing.
	salt := sha3.Sum256([]byte("APTOS::RawTransactionWithData"))
	assert.True(t, bytes.HasPrefix(tx.SigningMessage, salt[:]))
}

func TestBuildCheckinWithoutFeePayer(t *testing.T) {
	builder := NewTxnBuilder(newTestChain(t), testContract, 250, false)

	tx, err := builder.BuildCheckin(context.Background(), testSender, testUser, 5)
	require.NoError(t, err)

	serialized := hexMustDecode(t, tx.BCSHex)
	assert.Equal(t, byte(0), serialized[len(serialized)-1], "no fee-payer option")

	salt := sha3.Sum256([]byte("APTOS::RawTransaction"))
	assert.True(t, bytes.HasPrefix(tx.SigningMessage, salt[:]))
}

func TestBuildCheckinEncodesEntryFunction(t *testing.T) {
	builder := NewTxnBuilder(newTestChain(t), testContract, 250, true)

	tx, err := builder.BuildCheckin(context.Background(), testSender, testUser, 42)
	require.NoError(t, err)

	serialized := hexMustDecode(t, tx.BCSHex)
	assert.True(t, bytes.Contains(serialized, []byte(ModuleName)))
	assert.True(t, bytes.Contains(serialized, []byte(EntrySubmitCheckin)))

	userBytes, err := utils.DecodeAccountAddress(testUser)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(serialized, userBytes))
	assert.True(t, bytes.Contains(serialized, utils.BCSEncodeU64(42)))
}

func TestBuildJoinEncodesChallengeID(t *testing.T) {
	builder := NewTxnBuilder(newTestChain(t), testContract, 250, true)

	tx, err := builder.BuildJoin(context.Background(), testSender, 42)
	require.NoError(t, err)

	serialized := hexMustDecode(t, tx.BCSHex)
	assert.True(t, bytes.Contains(serialized, []byte(EntryJoinChallenge)))
	assert.True(t, bytes.Contains(serialized, utils.BCSEncodeU64(42)))
}

func TestBuildCreateScalesBuyInToOctas(t *testing.T) {
	builder := NewTxnBuilder(newTestChain(t), testContract, 250, true)

	tx, err := builder.BuildCreate(context.Background(), testSender, "75 Hard", 75, 2)
	require.NoError(t, err)

	serialized := hexMustDecode(t, tx.BCSHex)
	assert.True(t, bytes.Contains(serialized, []byte("75 Hard")))
	assert.True(t, bytes.Contains(serialized, utils.BCSEncodeU64(200_000_000)),
		"a 2-unit buy-in must be encoded as 200,000,000 octas")
}

func TestBuildRequiresContractAddress(t *testing.T) {
	builder := NewTxnBuilder(newTestChain(t), "", 250, true)
	_, err := builder.BuildCheckin(context.Background(), testSender, testUser, 1)
	assert.Error(t, err)
}

func TestEntryFunctionID(t *testing.T) {
	builder := NewTxnBuilder(nil, "abc", 250, true)
	assert.Equal(t, "0xabc::challenge_factory::submit_checkin", builder.EntryFunctionID(EntrySubmitCheckin))
}

func hexMustDecode(t *testing.T, s string) []byte {
	t.Helper()
	raw, err := hexutil.Decode(s)
	require.NoError(t, err)
	return raw
}
