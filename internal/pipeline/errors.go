package pipeline

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError rejects malformed input before any network call is made.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// NewValidationError creates a ValidationError for a request field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// OracleError classifies a verification-model failure. The oracle itself is
// fail-closed: callers see a rejected Decision, never this error. The type
// exists so the fail-closed reason can still be logged and counted.
type OracleError struct {
	Reason string
	Err    error
}

func (e *OracleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("oracle error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("oracle error: %s", e.Reason)
}

func (e *OracleError) Unwrap() error { return e.Err }

// ChainError is a failure in a chain-interaction stage (build, sign,
// sponsor, or finality). The stage is carried so callers and tests can
// assert exactly where the flow aborted.
type ChainError struct {
	Stage Stage
	Err   error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("chain error at stage %s: %v", e.Stage, e.Err)
}

func (e *ChainError) Unwrap() error { return e.Err }

// NewChainError wraps err as a ChainError at the given stage.
func NewChainError(stage Stage, err error) *ChainError {
	return &ChainError{Stage: stage, Err: err}
}

// IndeterminateError reports a finality wait that timed out. The transaction
// may still land later, so this must never be presented as a hard failure
// and nothing is rolled back.
type IndeterminateError struct {
	TxHash string
	Err    error
}

func (e *IndeterminateError) Error() string {
	return fmt.Sprintf("transaction %s finality is indeterminate: %v", e.TxHash, e.Err)
}

func (e *IndeterminateError) Unwrap() error { return e.Err }

// PersistenceError is an off-chain store write failure. A confirmed on-chain
// transaction is never rolled back because of one; the resulting
// inconsistency window is logged and surfaced to the caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// HTTPStatus maps an error to the HTTP status the API surfaces for it.
func HTTPStatus(err error) int {
	var (
		validationErr    *ValidationError
		indeterminateErr *IndeterminateError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &indeterminateErr):
		// Still in flight from the caller's perspective.
		return http.StatusAccepted
	default:
		return http.StatusInternalServerError
	}
}
