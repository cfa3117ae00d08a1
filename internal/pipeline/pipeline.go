package pipeline

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"scavnger-backend/internal/metrics"
)

// ProofSubmission is the transient value object carried through one
// verification call. Only the resulting transaction hash is persisted.
type ProofSubmission struct {
	Kind        ProofKind
	Content     string
	ContentType string
}

// Decision is the oracle's verdict for one ProofSubmission. Produced once,
// never mutated.
type Decision struct {
	Verified bool   `json:"verified"`
	Reason   string `json:"reason"`
}

// UnsignedTransaction is the builder's output: a serializable transaction
// with fee sponsorship pre-declared and no signature attached.
type UnsignedTransaction struct {
	BCSHex         string // serialized transaction, hex encoded
	SigningMessage []byte // canonical signing-message bytes
	Sender         string
}

// ConfirmedTransaction is the chain's record of a finalized transaction.
type ConfirmedTransaction struct {
	Hash    string
	Success bool
	VMState string
	Events  []TransactionEvent
}

// TransactionEvent is one event emitted by a confirmed transaction.
type TransactionEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// VerificationOracle judges a proof against the challenge's task. It is
// fail-closed: any model failure yields verified=false with a diagnostic
// reason, never an error, so ambiguous oracle state can never authorize a
// submission.
type VerificationOracle interface {
	Verify(ctx context.Context, challengeTitle, taskDescription string, proof ProofSubmission) Decision
}

// TransactionBuilder constructs the unsigned check-in call bound to sender.
type TransactionBuilder interface {
	BuildCheckin(ctx context.Context, sender, userAddress string, challengeID uint64) (*UnsignedTransaction, error)
}

// Signer produces a signature over canonical signing-message bytes. Custody
// of the key stays with the signer; the pipeline never sees key material.
type Signer interface {
	Address() string
	PublicKeyHex() string
	Sign(ctx context.Context, signingMessage []byte) (signatureHex string, err error)
}

// SponsorSubmitter forwards the signed transaction to the gas-sponsoring
// relay, which co-signs, pays gas, and broadcasts it.
type SponsorSubmitter interface {
	SponsorAndSubmit(ctx context.Context, txBCSHex, signatureHex, publicKeyHex string) (hash string, err error)
}

// FinalityWaiter blocks until the chain reports hash as finalized. A timeout
// is returned as *IndeterminateError, distinct from submission failure.
type FinalityWaiter interface {
	WaitForTransaction(ctx context.Context, hash string) (*ConfirmedTransaction, error)
}

// LedgerSync reconciles the off-chain record with the on-chain outcome.
// Must be idempotent: retries after partial failure re-invoke it.
type LedgerSync interface {
	RecordCheckin(ctx context.Context, challengeID uint64, userAddress, txHash string) error
}

// StageObserver receives stage transitions for one attempt (status push).
type StageObserver func(stage Stage, detail string)

// CheckinRequest is one validated check-in attempt.
type CheckinRequest struct {
	UserAddress     string
	ChallengeID     uint64
	ChallengeTitle  string
	TaskDescription string
	Proof           ProofSubmission
}

// Result is the terminal state of one attempt.
type Result struct {
	Stage    Stage
	Decision Decision
	TxHash   string
	Events   []TransactionEvent
}

// CheckinPipeline chains the stages with no retry policy and no
// compensation; a signed-but-unsponsored transaction is simply discarded.
type CheckinPipeline struct {
	oracle  VerificationOracle
	builder TransactionBuilder
	signer  Signer
	sponsor SponsorSubmitter
	waiter  FinalityWaiter
	ledger  LedgerSync
	logger  *logrus.Logger
}

// NewCheckinPipeline wires the pipeline from explicitly constructed stage
// implementations. ledger may be nil when the running service has no
// off-chain store configured.
func NewCheckinPipeline(
	oracle VerificationOracle,
	builder TransactionBuilder,
	signer Signer,
	sponsor SponsorSubmitter,
	waiter FinalityWaiter,
	ledger LedgerSync,
	logger *logrus.Logger,
) *CheckinPipeline {
	if logger == nil {
		logger = logrus.New()
	}
	return &CheckinPipeline{
		oracle:  oracle,
		builder: builder,
		signer:  signer,
		sponsor: sponsor,
		waiter:  waiter,
		ledger:  ledger,
		logger:  logger,
	}
}

// ParseChallengeID normalizes a string challenge identifier to a native
// integer. A string that fails integer parsing is an input-validation error,
// rejected before any building begins.
func ParseChallengeID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, NewValidationError("challengeId", "must be a valid number: "+raw)
	}
	return id, nil
}

// Run executes one attempt to its terminal state. On a rejected decision the
// returned Result carries StageRejected and no error: rejection is an
// expected outcome, not a pipeline failure.
func (p *CheckinPipeline) Run(ctx context.Context, req CheckinRequest, observe StageObserver) (*Result, error) {
	notify := func(stage Stage, detail string) {
		if observe != nil {
			observe(stage, detail)
		}
	}

	log := p.logger.WithFields(logrus.Fields{
		"user":      req.UserAddress,
		"challenge": req.ChallengeID,
	})

	// Stage 1: verification. Fail-closed inside the oracle.
	verifyStart := time.Now()
	decision := p.oracle.Verify(ctx, req.ChallengeTitle, req.TaskDescription, req.Proof)
	observeStage(StageVerified, verifyStart)
	metrics.OracleDecisions.WithLabelValues(decisionLabel(decision.Verified)).Inc()
	if !decision.Verified {
		log.WithField("reason", decision.Reason).Info("❌ Proof rejected by verification oracle")
		notify(StageRejected, decision.Reason)
		return &Result{Stage: StageRejected, Decision: decision}, nil
	}
	log.Info("✅ Proof verified, submitting check-in to blockchain")
	notify(StageVerified, decision.Reason)

	return p.Submit(ctx, req, decision, observe)
}

// Submit runs the chain-side stages for an already-verified attempt. Manual
// review approval enters here directly: the operator's decision stands in for
// the oracle's.
func (p *CheckinPipeline) Submit(ctx context.Context, req CheckinRequest, decision Decision, observe StageObserver) (*Result, error) {
	notify := func(stage Stage, detail string) {
		if observe != nil {
			observe(stage, detail)
		}
	}

	log := p.logger.WithFields(logrus.Fields{
		"user":      req.UserAddress,
		"challenge": req.ChallengeID,
	})

	// Stage 2: build.
	buildStart := time.Now()
	tx, err := p.builder.BuildCheckin(ctx, p.signer.Address(), req.UserAddress, req.ChallengeID)
	if err != nil {
		return p.fail(ctx, log, notify, StageBuilt, decision, "", err)
	}
	observeStage(StageBuilt, buildStart)
	notify(StageBuilt, "")

	// Stage 3: sign.
	signStart := time.Now()
	signatureHex, err := p.signer.Sign(ctx, tx.SigningMessage)
	if err != nil {
		return p.fail(ctx, log, notify, StageSigned, decision, "", err)
	}
	observeStage(StageSigned, signStart)
	notify(StageSigned, "")

	// Stage 4: sponsor + broadcast.
	submitStart := time.Now()
	hash, err := p.sponsor.SponsorAndSubmit(ctx, tx.BCSHex, signatureHex, p.signer.PublicKeyHex())
	if err != nil {
		return p.fail(ctx, log, notify, StageSubmitted, decision, "", err)
	}
	observeStage(StageSubmitted, submitStart)
	log.WithField("tx_hash", hash).Info("⏳ Transaction submitted, waiting for finality")
	notify(StageSubmitted, hash)

	// Stage 5: finality.
	waitStart := time.Now()
	confirmed, err := p.waiter.WaitForTransaction(ctx, hash)
	if err != nil {
		var indeterminate *IndeterminateError
		if errors.As(err, &indeterminate) {
			log.WithField("tx_hash", hash).Warn("⏱️ Finality wait timed out, outcome indeterminate")
			notify(StageIndeterminate, hash)
			metrics.CheckinOutcomes.WithLabelValues(string(StageIndeterminate)).Inc()
			return &Result{Stage: StageIndeterminate, Decision: decision, TxHash: hash}, err
		}
		return p.fail(ctx, log, notify, StageConfirmed, decision, hash, err)
	}
	observeStage(StageConfirmed, waitStart)
	log.WithField("tx_hash", hash).Info("⛓️ Transaction confirmed")
	notify(StageConfirmed, hash)

	result := &Result{
		Stage:    StageConfirmed,
		Decision: decision,
		TxHash:   hash,
		Events:   confirmed.Events,
	}

	// Stage 6: ledger sync. A confirmed transaction is never rolled back for
	// a store failure; the inconsistency is surfaced instead.
	if p.ledger != nil {
		syncStart := time.Now()
		if err := p.ledger.RecordCheckin(ctx, req.ChallengeID, req.UserAddress, hash); err != nil {
			perr := &PersistenceError{Op: "ledger sync", Err: err}
			log.WithError(perr).Error("⚠️ Off-chain record is out of sync with confirmed transaction")
			metrics.CheckinOutcomes.WithLabelValues("sync_failed").Inc()
			return result, perr
		}
		observeStage(StageSynced, syncStart)
		result.Stage = StageSynced
		notify(StageSynced, hash)
	}

	metrics.CheckinOutcomes.WithLabelValues(string(result.Stage)).Inc()
	return result, nil
}

func (p *CheckinPipeline) fail(
	_ context.Context,
	log *logrus.Entry,
	notify StageObserver,
	stage Stage,
	decision Decision,
	txHash string,
	err error,
) (*Result, error) {
	cerr := NewChainError(stage, err)
	log.WithError(cerr).Error("❌ Check-in pipeline aborted")
	notify(StageFailed, cerr.Error())
	metrics.CheckinOutcomes.WithLabelValues("failed_" + string(stage)).Inc()
	return &Result{Stage: StageFailed, Decision: decision, TxHash: txHash}, cerr
}

func observeStage(stage Stage, start time.Time) {
	metrics.PipelineStageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
}

func decisionLabel(verified bool) string {
	if verified {
		return "verified"
	}
	return "rejected"
}
