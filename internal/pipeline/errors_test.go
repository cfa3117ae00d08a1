package pipeline

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", NewValidationError("challengeId", "must be a number"), http.StatusBadRequest},
		{"indeterminate", &IndeterminateError{TxHash: "0xabc"}, http.StatusAccepted},
		{"chain", NewChainError(StageSubmitted, errors.New("relay down")), http.StatusInternalServerError},
		{"persistence", &PersistenceError{Op: "ledger sync", Err: errors.New("db down")}, http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped validation", fmt.Errorf("request failed: %w", NewValidationError("x", "bad")), http.StatusBadRequest},
		{"wrapped indeterminate", fmt.Errorf("finality: %w", &IndeterminateError{TxHash: "0x1"}), http.StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestChainErrorCarriesStage(t *testing.T) {
	inner := errors.New("gas estimation failed")
	err := NewChainError(StageBuilt, inner)

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "built")
}

func TestValidationErrorMessage(t *testing.T) {
	assert.Equal(t, "invalid challengeId: must be a valid number: abc",
		NewValidationError("challengeId", "must be a valid number: abc").Error())
	assert.Equal(t, "bare message", (&ValidationError{Msg: "bare message"}).Error())
}
