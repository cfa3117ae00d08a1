package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"

	"scavnger-backend/internal/pipeline"
	"scavnger-backend/internal/utils"
)

// Entry points of the challenge_factory Move module.
const (
	ModuleName          = "challenge_factory"
	EntrySubmitCheckin  = "submit_checkin"
	EntryJoinChallenge  = "join_challenge"
	EntryCreateChall    = "create_challenge"
	defaultMaxGasAmount = 200_000
	txnExpirySeconds    = 600
)

// Domain-separation prefixes of the canonical signing message.
const (
	rawTxnSalt         = "APTOS::RawTransaction"
	rawTxnWithDataSalt = "APTOS::RawTransactionWithData"
)

// TxnBuilder constructs unsigned entry-function transactions against the
// challenge_factory contract. The only network access is fetching current
// sequencing metadata and the gas estimate; the built transaction itself is
// self-contained, serializable, and carries no signature. Gas sponsorship is
// pre-declared at build time via the fee-payer flag.
type TxnBuilder struct {
	chain           *ChainClient
	contractAddress string
	chainID         uint8
	withFeePayer    bool
}

// NewTxnBuilder creates a builder bound to one contract address.
func NewTxnBuilder(chain *ChainClient, contractAddress string, chainID uint8, withFeePayer bool) *TxnBuilder {
	return &TxnBuilder{
		chain:           chain,
		contractAddress: contractAddress,
		chainID:         chainID,
		withFeePayer:    withFeePayer,
	}
}

// entryFunction is one call into a Move module with pre-encoded arguments.
type entryFunction struct {
	module   string
	function string
	args     [][]byte
}

// BuildCheckin builds the submit_checkin call with args [userAddress,
// challengeID], bound to sender. Implements pipeline.TransactionBuilder.
func (b *TxnBuilder) BuildCheckin(ctx context.Context, sender, userAddress string, challengeID uint64) (*pipeline.UnsignedTransaction, error) {
	userBytes, err := utils.DecodeAccountAddress(userAddress)
	if err != nil {
		return nil, err
	}
	addrArg := utils.NewBCSWriter()
	addrArg.WriteFixedBytes(userBytes)

	return b.build(ctx, sender, entryFunction{
		module:   ModuleName,
		function: EntrySubmitCheckin,
		args:     [][]byte{addrArg.Bytes(), utils.BCSEncodeU64(challengeID)},
	})
}

// BuildJoin builds the join_challenge call with args [challengeID].
func (b *TxnBuilder) BuildJoin(ctx context.Context, sender string, challengeID uint64) (*pipeline.UnsignedTransaction, error) {
	return b.build(ctx, sender, entryFunction{
		module:   ModuleName,
		function: EntryJoinChallenge,
		args:     [][]byte{utils.BCSEncodeU64(challengeID)},
	})
}

// BuildCreate builds the create_challenge call. The buy-in arrives in
// display units and is scaled to octas here, at the boundary, never inside
// the encoding below.
func (b *TxnBuilder) BuildCreate(ctx context.Context, sender, title string, durationDays, buyInUnits uint64) (*pipeline.UnsignedTransaction, error) {
	titleArg := utils.NewBCSWriter()
	titleArg.WriteString(title)

	return b.build(ctx, sender, entryFunction{
		module:   ModuleName,
		function: EntryCreateChall,
		args: [][]byte{
			titleArg.Bytes(),
			utils.BCSEncodeU64(durationDays),
			utils.BCSEncodeU64(utils.UnitsToOctas(buyInUnits)),
		},
	})
}

func (b *TxnBuilder) build(ctx context.Context, sender string, fn entryFunction) (*pipeline.UnsignedTransaction, error) {
	if b.contractAddress == "" {
		return nil, fmt.Errorf("contract address is not configured")
	}

	sequence, err := b.chain.GetAccountSequence(ctx, sender)
	if err != nil {
		return nil, err
	}
	gasPrice, err := b.chain.EstimateGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := b.encodeRawTransaction(sender, fn, sequence, gasPrice)
	if err != nil {
		return nil, err
	}

	signingMessage := b.signingMessage(raw)
	serialized, err := b.serializeSimpleTransaction(raw)
	if err != nil {
		return nil, err
	}

	return &pipeline.UnsignedTransaction{
		BCSHex:         hexutil.Encode(serialized),
		SigningMessage: signingMessage,
		Sender:         sender,
	}, nil
}

// encodeRawTransaction BCS-encodes the RawTransaction:
// sender || sequence_number || payload || max_gas || gas_price || expiry || chain_id
func (b *TxnBuilder) encodeRawTransaction(sender string, fn entryFunction, sequence, gasPrice uint64) ([]byte, error) {
	w := utils.NewBCSWriter()

	if err := w.WriteAddress(sender); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	w.WriteU64(sequence)

	// payload: EntryFunction variant
	w.WriteULEB128(2)
	if err := w.WriteAddress(b.contractAddress); err != nil {
		return nil, fmt.Errorf("invalid contract address: %w", err)
	}
	w.WriteString(fn.module)
	w.WriteString(fn.function)
	w.WriteULEB128(0) // no type arguments
	w.WriteULEB128(uint64(len(fn.args)))
	for _, arg := range fn.args {
		w.WriteBytes(arg)
	}

	w.WriteU64(defaultMaxGasAmount)
	w.WriteU64(gasPrice)
	w.WriteU64(uint64(time.Now().Unix()) + txnExpirySeconds)
	w.WriteU8(b.chainID)

	return w.Bytes(), nil
}

// signingMessage prepends the domain-separation hash. A fee-payer
// transaction signs RawTransactionWithData (fee-payer variant, payer
// address zero until the sponsor substitutes itself); a plain transaction
// signs RawTransaction directly.
func (b *TxnBuilder) signingMessage(rawTxn []byte) []byte {
	if !b.withFeePayer {
		return append(saltHash(rawTxnSalt), rawTxn...)
	}

	w := utils.NewBCSWriter()
	w.WriteULEB128(1) // MultiAgentWithFeePayer variant
	w.WriteFixedBytes(rawTxn)
	w.WriteULEB128(0) // no secondary signers
	w.WriteFixedBytes(make([]byte, 32))
	return append(saltHash(rawTxnWithDataSalt), w.Bytes()...)
}

// serializeSimpleTransaction wraps the raw transaction with the optional
// fee-payer address, the wire form the sponsorship relay accepts.
func (b *TxnBuilder) serializeSimpleTransaction(rawTxn []byte) ([]byte, error) {
	w := utils.NewBCSWriter()
	w.WriteFixedBytes(rawTxn)
	if b.withFeePayer {
		w.WriteBool(true)
		w.WriteFixedBytes(make([]byte, 32))
	} else {
		w.WriteBool(false)
	}
	return w.Bytes(), nil
}

// EntryFunctionID returns the fully qualified entry-point name, e.g.
// "0xabc::challenge_factory::submit_checkin".
func (b *TxnBuilder) EntryFunctionID(function string) string {
	return fmt.Sprintf("%s::%s::%s", utils.EnsureHexPrefix(b.contractAddress), ModuleName, function)
}

func saltHash(salt string) []byte {
	h := sha3.Sum256([]byte(salt))
	return h[:]
}
