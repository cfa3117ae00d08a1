// Package dto defines the JSON request/response shapes of the HTTP surface.
package dto

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlexibleID accepts a challenge identifier sent as either a JSON number or
// a string. Whether it parses as an integer is validated separately, before
// any chain call.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("challengeId must be a number or string")
	}
	*f = FlexibleID(n.String())
	return nil
}

func (f FlexibleID) String() string { return string(f) }

// VerifyCheckinRequest is the oracle service's verify-checkin body. The same
// shape is accepted by the application's submit-proof route, which forwards
// it unchanged.
type VerifyCheckinRequest struct {
	UserAddress     string     `json:"userAddress"`
	ChallengeID     FlexibleID `json:"challengeId"`
	ProofType       string     `json:"proofType"`
	ProofData       string     `json:"proofData"`
	ProofMimeType   string     `json:"proofMimeType,omitempty"`
	ChallengeTitle  string     `json:"challengeTitle,omitempty"`
	TaskDescription string     `json:"taskDescription,omitempty"`
}

// VerifyCheckinResponse is the oracle's result envelope.
type VerifyCheckinResponse struct {
	Success  bool   `json:"success"`
	Verified bool   `json:"verified,omitempty"`
	TxHash   string `json:"txHash,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Pending  bool   `json:"pending,omitempty"` // finality indeterminate, not a confirmed success
}

// SponsorChallengeRequest carries a pre-built, user-signed join transaction
// for gas sponsorship.
type SponsorChallengeRequest struct {
	TransactionHex string `json:"transactionHex"`
	SignatureHex   string `json:"signatureHex"`
	PublicKeyHex   string `json:"publicKeyHex"`
}

// SponsorChallengeResponse mirrors the relay result.
type SponsorChallengeResponse struct {
	Hash  string `json:"hash,omitempty"`
	Error string `json:"error,omitempty"`
}

// HealthResponse is the oracle health envelope.
type HealthResponse struct {
	Status   string `json:"status"`
	Verifier string `json:"verifier"`
}
