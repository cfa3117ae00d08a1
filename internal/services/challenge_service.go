package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"scavnger-backend/internal/dto"
	"scavnger-backend/internal/events"
	"scavnger-backend/internal/models"
	"scavnger-backend/internal/pipeline"
	"scavnger-backend/internal/repository"
	"scavnger-backend/internal/utils"
)

// ErrChallengeNotFound indicates the requested challenge row does not exist.
var ErrChallengeNotFound = errors.New("challenge not found")

// ErrNotOnchain indicates an operation that needs the on-chain index was
// attempted before the creation transaction was confirmed and recorded.
var ErrNotOnchain = errors.New("challenge has no on-chain id yet")

// ChallengeService owns the off-chain challenge lifecycle: creation, listing,
// on-chain index assignment, and participant joins.
type ChallengeService struct {
	challenges repository.ChallengeRepository
	publisher  *events.Publisher
	logger     *logrus.Logger
}

func NewChallengeService(
	challenges repository.ChallengeRepository,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *ChallengeService {
	if logger == nil {
		logger = logrus.New()
	}
	return &ChallengeService{
		challenges: challenges,
		publisher:  publisher,
		logger:     logger,
	}
}

// Create persists the off-chain challenge row. The creator is the first
// participant. OnchainID stays NULL until AssignOnchain records the confirmed
// creation transaction.
func (s *ChallengeService) Create(ctx context.Context, req *dto.CreateChallengeRequest) (*models.Challenge, error) {
	if !utils.IsAccountAddress(req.CreatorAddress) {
		return nil, pipeline.NewValidationError("creatorAddress", "must be a valid account address")
	}

	method := req.VerificationMethod
	if method == "" {
		method = string(pipeline.MethodVisionCheck)
	}
	switch pipeline.VerificationMethod(method) {
	case pipeline.MethodVisionCheck, pipeline.MethodCodeCheck, pipeline.MethodManualReview:
	default:
		return nil, pipeline.NewValidationError("verificationMethod", "unknown verification method: "+method)
	}

	challenge := &models.Challenge{
		Title:              req.Title,
		Description:        req.Description,
		DurationDays:       req.DurationDays,
		BuyIn:              req.BuyIn,
		VerificationMethod: method,
		CreatorAddress:     req.CreatorAddress,
		ParticipantsList:   pq.StringArray{req.CreatorAddress},
	}
	if err := s.challenges.Create(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	if s.publisher != nil {
		s.publisher.ChallengeCreated(events.ChallengeCreatedEvent{
			ChallengeID:    challenge.ID,
			Title:          challenge.Title,
			CreatorAddress: challenge.CreatorAddress,
			CreatedAt:      time.Now().UTC(),
		})
	}

	s.logger.WithFields(logrus.Fields{
		"challenge": challenge.ID,
		"creator":   challenge.CreatorAddress,
	}).Info("🏁 Challenge created")
	return challenge, nil
}

// Get returns one challenge by its off-chain id.
func (s *ChallengeService) Get(ctx context.Context, id uint) (*models.Challenge, error) {
	challenge, err := s.challenges.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}
	return challenge, nil
}

// List returns a page of challenges, newest first, with the total count.
func (s *ChallengeService) List(ctx context.Context, page, pageSize int) ([]*models.Challenge, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.challenges.List(ctx, page, pageSize)
}

// ListByParticipant returns the challenges a wallet participates in.
func (s *ChallengeService) ListByParticipant(ctx context.Context, address string) ([]*models.Challenge, error) {
	if !utils.IsAccountAddress(address) {
		return nil, pipeline.NewValidationError("address", "must be a valid account address")
	}
	return s.challenges.FindByParticipant(ctx, address)
}

// AssignOnchain records the on-chain index once the creation transaction has
// confirmed. The assignment is write-once: repeating the same id is a no-op,
// a conflicting id is an error.
func (s *ChallengeService) AssignOnchain(ctx context.Context, id uint, onchainID uint64, txHash string) (*models.Challenge, error) {
	if err := s.challenges.SetOnchainID(ctx, id, onchainID, txHash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}
	return s.challenges.GetByID(ctx, id)
}

// Join unions a wallet into the participants list after its join transaction
// confirmed. Joining requires the challenge to exist on chain; with no
// on-chain id there is no contract state the join could refer to.
func (s *ChallengeService) Join(ctx context.Context, id uint, walletAddress, txHash string) ([]string, error) {
	if !utils.IsAccountAddress(walletAddress) {
		return nil, pipeline.NewValidationError("walletAddress", "must be a valid account address")
	}

	challenge, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if challenge.OnchainID == nil {
		return nil, ErrNotOnchain
	}

	participants, err := s.challenges.AddParticipant(ctx, id, walletAddress, txHash)
	if err != nil {
		return nil, fmt.Errorf("failed to add participant: %w", err)
	}

	if s.publisher != nil {
		s.publisher.ChallengeJoined(events.ChallengeJoinedEvent{
			ChallengeID:   id,
			WalletAddress: walletAddress,
			TxHash:        txHash,
			JoinedAt:      time.Now().UTC(),
		})
	}
	return participants, nil
}
