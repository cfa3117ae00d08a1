package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scavnger-backend/internal/metrics"
)

type stubOracle struct {
	decision Decision
	calls    int
}

func (s *stubOracle) Verify(_ context.Context, _, _ string, _ ProofSubmission) Decision {
	s.calls++
	return s.decision
}

type stubBuilder struct {
	calls int
	err   error
	trace *[]string
}

func (s *stubBuilder) BuildCheckin(_ context.Context, sender, _ string, _ uint64) (*UnsignedTransaction, error) {
	s.calls++
	*s.trace = append(*s.trace, "build")
	if s.err != nil {
		return nil, s.err
	}
	return &UnsignedTransaction{
		BCSHex:         "0xdead",
		SigningMessage: []byte{1, 2, 3},
		Sender:         sender,
	}, nil
}

type stubSigner struct {
	calls int
	err   error
	trace *[]string
}

func (s *stubSigner) Address() string      { return "0xverifier" }
func (s *stubSigner) PublicKeyHex() string { return "pubkey" }
func (s *stubSigner) Sign(_ context.Context, _ []byte) (string, error) {
	s.calls++
	*s.trace = append(*s.trace, "sign")
	if s.err != nil {
		return "", s.err
	}
	return "0xsig", nil
}

type stubSponsor struct {
	calls int
	err   error
	trace *[]string
}

func (s *stubSponsor) SponsorAndSubmit(_ context.Context, _, _, _ string) (string, error) {
	s.calls++
	*s.trace = append(*s.trace, "sponsor")
	if s.err != nil {
		return "", s.err
	}
	return "0xhash", nil
}

type stubWaiter struct {
	calls int
	err   error
	trace *[]string
}

func (s *stubWaiter) WaitForTransaction(_ context.Context, hash string) (*ConfirmedTransaction, error) {
	s.calls++
	*s.trace = append(*s.trace, "wait")
	if s.err != nil {
		return nil, s.err
	}
	return &ConfirmedTransaction{Hash: hash, Success: true}, nil
}

type stubLedger struct {
	calls int
	err   error
	trace *[]string
}

func (s *stubLedger) RecordCheckin(_ context.Context, _ uint64, _, _ string) error {
	s.calls++
	*s.trace = append(*s.trace, "sync")
	return s.err
}

type fixture struct {
	oracle  *stubOracle
	builder *stubBuilder
	signer  *stubSigner
	sponsor *stubSponsor
	waiter  *stubWaiter
	ledger  *stubLedger
	trace   []string
	pipe    *CheckinPipeline
}

func newFixture(decision Decision) *fixture {
	f := &fixture{
		oracle: &stubOracle{decision: decision},
	}
	f.builder = &stubBuilder{trace: &f.trace}
	f.signer = &stubSigner{trace: &f.trace}
	f.sponsor = &stubSponsor{trace: &f.trace}
	f.waiter = &stubWaiter{trace: &f.trace}
	f.ledger = &stubLedger{trace: &f.trace}
	f.pipe = NewCheckinPipeline(f.oracle, f.builder, f.signer, f.sponsor, f.waiter, f.ledger, nil)
	return f
}

func testRequest() CheckinRequest {
	return CheckinRequest{
		UserAddress:     "0xuser",
		ChallengeID:     5,
		ChallengeTitle:  "Protocol 75",
		TaskDescription: "45 minute workout",
		Proof:           ProofSubmission{Kind: ProofKindText, Content: "done"},
	}
}

func TestRunRejectedShortCircuits(t *testing.T) {
	f := newFixture(Decision{Verified: false, Reason: "proof is a black screen"})

	result, err := f.pipe.Run(context.Background(), testRequest(), nil)

	require.NoError(t, err, "rejection is an expected outcome, not an error")
	assert.Equal(t, StageRejected, result.Stage)
	assert.Equal(t, "proof is a black screen", result.Decision.Reason)
	assert.Empty(t, result.TxHash)

	assert.Equal(t, 1, f.oracle.calls)
	assert.Zero(t, f.builder.calls, "no transaction may be built for a rejected proof")
	assert.Zero(t, f.signer.calls)
	assert.Zero(t, f.sponsor.calls)
	assert.Zero(t, f.waiter.calls)
	assert.Zero(t, f.ledger.calls)
}

func TestRunHappyPathStageOrder(t *testing.T) {
	f := newFixture(Decision{Verified: true, Reason: "gym selfie matches the task"})

	var stages []Stage
	result, err := f.pipe.Run(context.Background(), testRequest(), func(stage Stage, _ string) {
		stages = append(stages, stage)
	})

	require.NoError(t, err)
	assert.Equal(t, StageSynced, result.Stage)
	assert.Equal(t, "0xhash", result.TxHash)

	assert.Equal(t, []string{"build", "sign", "sponsor", "wait", "sync"}, f.trace)
	assert.Equal(t, []Stage{StageVerified, StageBuilt, StageSigned, StageSubmitted, StageConfirmed, StageSynced}, stages)
}

func TestRunBuildFailureStopsPipeline(t *testing.T) {
	f := newFixture(Decision{Verified: true, Reason: "ok"})
	f.builder.err = errors.New("sequence fetch failed")

	result, err := f.pipe.Run(context.Background(), testRequest(), nil)

	require.Error(t, err)
	assert.Equal(t, StageFailed, result.Stage)

	var cerr *ChainError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, StageBuilt, cerr.Stage)

	assert.Zero(t, f.signer.calls)
	assert.Zero(t, f.sponsor.calls)
}

func TestRunSponsorFailureDiscardsSignedTransaction(t *testing.T) {
	f := newFixture(Decision{Verified: true, Reason: "ok"})
	f.sponsor.err = errors.New("relay rejected")

	result, err := f.pipe.Run(context.Background(), testRequest(), nil)

	require.Error(t, err)
	assert.Equal(t, StageFailed, result.Stage)
	assert.Zero(t, f.waiter.calls, "nothing to wait for when submission failed")
	assert.Zero(t, f.ledger.calls)

	var cerr *ChainError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, StageSubmitted, cerr.Stage)
}

func TestRunIndeterminateFinality(t *testing.T) {
	f := newFixture(Decision{Verified: true, Reason: "ok"})
	f.waiter.err = &IndeterminateError{TxHash: "0xhash", Err: context.DeadlineExceeded}

	result, err := f.pipe.Run(context.Background(), testRequest(), nil)

	require.Error(t, err)
	assert.Equal(t, StageIndeterminate, result.Stage)
	assert.Equal(t, "0xhash", result.TxHash, "the hash is surfaced so the user can check the explorer")

	var ierr *IndeterminateError
	assert.ErrorAs(t, err, &ierr)
	assert.Zero(t, f.ledger.calls, "an unconfirmed transaction must not be recorded")
}

func TestRunLedgerSyncFailureKeepsConfirmedResult(t *testing.T) {
	f := newFixture(Decision{Verified: true, Reason: "ok"})
	f.ledger.err = errors.New("db down")

	result, err := f.pipe.Run(context.Background(), testRequest(), nil)

	require.Error(t, err)
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)

	assert.Equal(t, StageConfirmed, result.Stage, "confirmed on chain despite the store failure")
	assert.Equal(t, "0xhash", result.TxHash)
}

func TestRunWithoutLedgerEndsConfirmed(t *testing.T) {
	f := newFixture(Decision{Verified: true, Reason: "ok"})
	f.pipe = NewCheckinPipeline(f.oracle, f.builder, f.signer, f.sponsor, f.waiter, nil, nil)

	result, err := f.pipe.Run(context.Background(), testRequest(), nil)

	require.NoError(t, err)
	assert.Equal(t, StageConfirmed, result.Stage)
}

func TestSubmitSkipsOracle(t *testing.T) {
	f := newFixture(Decision{})

	result, err := f.pipe.Submit(context.Background(), testRequest(), Decision{Verified: true, Reason: "approved"}, nil)

	require.NoError(t, err)
	assert.Equal(t, StageSynced, result.Stage)
	assert.Zero(t, f.oracle.calls)
}

func TestParseChallengeID(t *testing.T) {
	id, err := ParseChallengeID("42")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	for _, bad := range []string{"", "abc", "4.5", "-1"} {
		_, err := ParseChallengeID(bad)
		require.Error(t, err, bad)

		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, bad)
	}
}

func TestRunTimesEveryStage(t *testing.T) {
	metrics.PipelineStageDuration.Reset()
	f := newFixture(Decision{Verified: true})

	result, err := f.pipe.Run(context.Background(), testRequest(), nil)

	require.NoError(t, err)
	require.Equal(t, StageSynced, result.Stage)
	assert.Equal(t, 6, testutil.CollectAndCount(metrics.PipelineStageDuration),
		"every completed stage records a duration sample")
}
