package models

import (
	"time"

	"github.com/lib/pq"
)

// Challenge is the off-chain record of one staked discipline challenge.
// The off-chain row is the source of truth for UI display; the chain is the
// source of truth for stake custody and check-in counts. OnchainID is
// assigned once at creation confirm and is immutable afterwards; joins and
// check-ins cannot resolve while it is NULL.
type Challenge struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	OnchainID          *uint64        `json:"onchain_id" gorm:"column:onchain_id;uniqueIndex"`
	Title              string         `json:"title" gorm:"size:200;not null"`
	Description        string         `json:"description" gorm:"type:text"`
	DurationDays       int            `json:"duration_days" gorm:"not null"`
	BuyIn              uint64         `json:"buy_in" gorm:"not null"` // display units, scaled to octas at the boundary
	VerificationMethod string         `json:"verification_method" gorm:"size:40;not null;default:'automated-vision-check'"`
	CreatorAddress     string         `json:"creator_address" gorm:"size:66;index"`
	TxHash             string         `json:"tx_hash" gorm:"size:66"`
	ParticipantsList   pq.StringArray `json:"participants_list" gorm:"type:text[]"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Profile is one wallet's user profile, keyed by wallet address.
type Profile struct {
	WalletAddress string    `json:"wallet_address" gorm:"primaryKey;size:66"`
	Username      string    `json:"username" gorm:"size:50"`
	Bio           string    `json:"bio" gorm:"type:text"`
	LastLogin     time.Time `json:"last_login"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CheckinRecord is the persisted outcome of one check-in attempt. The proof
// payload itself is transient and never stored; only the decision, terminal
// stage and transaction hash are kept for the progress feed.
type CheckinRecord struct {
	ID          string    `json:"id" gorm:"primaryKey"` // UUID
	ChallengeID uint      `json:"challenge_id" gorm:"index;not null"`
	UserAddress string    `json:"user_address" gorm:"size:66;index;not null"`
	ProofKind   string    `json:"proof_kind" gorm:"size:10;not null"`
	Verified    bool      `json:"verified"`
	Reason      string    `json:"reason" gorm:"type:text"`
	Stage       string    `json:"stage" gorm:"size:20;not null"`
	TxHash      string    `json:"tx_hash" gorm:"size:66"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Manual review task status
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// ManualReviewTask queues a check-in of a manual-review challenge for an
// operator decision. An approved task continues the submission pipeline the
// same way an accepted oracle decision does.
type ManualReviewTask struct {
	ID          string       `json:"id" gorm:"primaryKey"` // UUID
	CheckinID   string       `json:"checkin_id" gorm:"index;not null"`
	ChallengeID uint         `json:"challenge_id" gorm:"index;not null"`
	UserAddress string       `json:"user_address" gorm:"size:66;not null"`
	Status      ReviewStatus `json:"status" gorm:"size:10;not null;default:'pending'"`
	Reviewer    string       `json:"reviewer" gorm:"size:50"`
	Reason      string       `json:"reason" gorm:"type:text"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
