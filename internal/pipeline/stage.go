// Package pipeline implements the check-in proof verification and on-chain
// submission flow: verify → build → sign → sponsor → wait → sync. Every stage
// is a full network round trip; a failure aborts the flow at that stage with
// no compensation of prior stages.
package pipeline

// Stage identifies a step of one check-in/join attempt.
type Stage string

const (
	StageEncoded       Stage = "encoded"
	StageVerified      Stage = "verified"
	StageBuilt         Stage = "built"
	StageSigned        Stage = "signed"
	StageSubmitted     Stage = "submitted"
	StageConfirmed     Stage = "confirmed"
	StageIndeterminate Stage = "indeterminate"
	StageSynced        Stage = "synced"
	StageFailed        Stage = "failed"
	StageRejected      Stage = "rejected"
)

// ProofKind is the declared type of a proof payload.
type ProofKind string

const (
	ProofKindImage ProofKind = "image"
	ProofKindText  ProofKind = "text"
)

// VerificationMethod is the challenge's configured judging method.
type VerificationMethod string

const (
	MethodVisionCheck  VerificationMethod = "automated-vision-check"
	MethodCodeCheck    VerificationMethod = "automated-code-check"
	MethodManualReview VerificationMethod = "manual-review"
)
