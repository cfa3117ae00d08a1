// Package events defines the NATS subjects and payloads published when
// challenge state changes.
package events

import (
	"log"
	"time"

	"scavnger-backend/internal/clients"
)

// Subjects published by the backend.
const (
	SubjectChallengeCreated = "scavnger.challenge.created"
	SubjectChallengeJoined  = "scavnger.challenge.joined"
	SubjectCheckinConfirmed = "scavnger.checkin.confirmed"
)

// ChallengeCreatedEvent is published when a challenge row is created.
type ChallengeCreatedEvent struct {
	ChallengeID    uint      `json:"challenge_id"`
	Title          string    `json:"title"`
	CreatorAddress string    `json:"creator_address"`
	CreatedAt      time.Time `json:"created_at"`
}

// ChallengeJoinedEvent is published after a participant is unioned into the
// off-chain list.
type ChallengeJoinedEvent struct {
	ChallengeID   uint      `json:"challenge_id"`
	WalletAddress string    `json:"wallet_address"`
	TxHash        string    `json:"tx_hash,omitempty"`
	JoinedAt      time.Time `json:"joined_at"`
}

// CheckinConfirmedEvent is published when a check-in transaction confirms.
type CheckinConfirmedEvent struct {
	ChallengeID uint      `json:"challenge_id"`
	UserAddress string    `json:"user_address"`
	TxHash      string    `json:"tx_hash"`
	Reason      string    `json:"reason,omitempty"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// Publisher publishes lifecycle events when a NATS client is configured and
// is a no-op otherwise. Publish failures are logged, never propagated: event
// delivery is best-effort and must not fail the request that produced it.
type Publisher struct {
	nats *clients.NATSClient
}

// NewPublisher wraps an optional NATS client; nats may be nil.
func NewPublisher(nats *clients.NATSClient) *Publisher {
	return &Publisher{nats: nats}
}

func (p *Publisher) publish(subject string, payload any) {
	if p == nil || p.nats == nil {
		return
	}
	if err := p.nats.Publish(subject, payload); err != nil {
		log.Printf("⚠️ Failed to publish %s event: %v", subject, err)
	}
}

// ChallengeCreated publishes a ChallengeCreatedEvent.
func (p *Publisher) ChallengeCreated(ev ChallengeCreatedEvent) {
	p.publish(SubjectChallengeCreated, ev)
}

// ChallengeJoined publishes a ChallengeJoinedEvent.
func (p *Publisher) ChallengeJoined(ev ChallengeJoinedEvent) {
	p.publish(SubjectChallengeJoined, ev)
}

// CheckinConfirmed publishes a CheckinConfirmedEvent.
func (p *Publisher) CheckinConfirmed(ev CheckinConfirmedEvent) {
	p.publish(SubjectCheckinConfirmed, ev)
}
