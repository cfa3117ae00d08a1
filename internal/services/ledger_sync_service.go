package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"scavnger-backend/internal/events"
	"scavnger-backend/internal/repository"
)

// LedgerSyncService reconciles the off-chain challenge row with a confirmed
// on-chain check-in. The operation is idempotent: the participant union is a
// set union and re-running a sync for the same transaction converges on the
// same row state.
type LedgerSyncService struct {
	challenges repository.ChallengeRepository
	publisher  *events.Publisher
	logger     *logrus.Logger
}

func NewLedgerSyncService(
	challenges repository.ChallengeRepository,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *LedgerSyncService {
	if logger == nil {
		logger = logrus.New()
	}
	return &LedgerSyncService{
		challenges: challenges,
		publisher:  publisher,
		logger:     logger,
	}
}

// RecordCheckin implements pipeline.LedgerSync. challengeID is the on-chain
// identifier carried by the confirmed transaction. A challenge with no
// off-chain row is logged and skipped; it is not a sync failure, since the
// chain remains the source of truth for such challenges.
func (s *LedgerSyncService) RecordCheckin(ctx context.Context, challengeID uint64, userAddress, txHash string) error {
	challenge, err := s.challenges.GetByOnchainID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.WithFields(logrus.Fields{
				"onchain_id": challengeID,
				"tx_hash":    txHash,
			}).Warn("Confirmed check-in has no off-chain challenge row, skipping sync")
			return nil
		}
		return fmt.Errorf("failed to load challenge for sync: %w", err)
	}

	if _, err := s.challenges.AddParticipant(ctx, challenge.ID, userAddress, txHash); err != nil {
		return fmt.Errorf("failed to union participant: %w", err)
	}

	if s.publisher != nil {
		s.publisher.CheckinConfirmed(events.CheckinConfirmedEvent{
			ChallengeID: challenge.ID,
			UserAddress: userAddress,
			TxHash:      txHash,
			ConfirmedAt: time.Now().UTC(),
		})
	}

	s.logger.WithFields(logrus.Fields{
		"challenge": challenge.ID,
		"user":      userAddress,
		"tx_hash":   txHash,
	}).Info("📒 Off-chain ledger synced with confirmed check-in")
	return nil
}
