package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"scavnger-backend/internal/clients"
	"scavnger-backend/internal/dto"
	"scavnger-backend/internal/models"
	"scavnger-backend/internal/pipeline"
	"scavnger-backend/internal/repository"
)

// CheckinService is the application-server side of the check-in flow. It
// persists an attempt record, routes manual-review challenges to the review
// queue, and relays automated ones to the verifier oracle service.
type CheckinService struct {
	challenges repository.ChallengeRepository
	checkins   repository.CheckinRepository
	reviews    *ReviewService
	oracle     *clients.OracleClient
	push       *PushService
	logger     *logrus.Logger
}

func NewCheckinService(
	challenges repository.ChallengeRepository,
	checkins repository.CheckinRepository,
	reviews *ReviewService,
	oracle *clients.OracleClient,
	push *PushService,
	logger *logrus.Logger,
) *CheckinService {
	if logger == nil {
		logger = logrus.New()
	}
	return &CheckinService{
		challenges: challenges,
		checkins:   checkins,
		reviews:    reviews,
		oracle:     oracle,
		push:       push,
		logger:     logger,
	}
}

// SubmitProof handles one proof submission end to end from the application
// server's perspective. The returned status code is what the HTTP handler
// should relay.
func (s *CheckinService) SubmitProof(ctx context.Context, req *dto.VerifyCheckinRequest) (*dto.VerifyCheckinResponse, int, error) {
	onchainID, err := pipeline.ParseChallengeID(req.ChallengeID.String())
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	// The off-chain row enriches the request with the challenge title and
	// task wording; a chain-only challenge is still verifiable without it.
	challenge, err := s.challenges.GetByOnchainID(ctx, onchainID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, http.StatusInternalServerError, &pipeline.PersistenceError{Op: "load challenge", Err: err}
	}

	record := &models.CheckinRecord{
		ID:          uuid.New().String(),
		UserAddress: req.UserAddress,
		ProofKind:   req.ProofType,
		Stage:       string(pipeline.StageEncoded),
	}
	if challenge != nil {
		record.ChallengeID = challenge.ID
		if req.ChallengeTitle == "" {
			req.ChallengeTitle = challenge.Title
		}
		if req.TaskDescription == "" {
			req.TaskDescription = challenge.Description
		}
	}
	if err := s.checkins.Create(ctx, record); err != nil {
		return nil, http.StatusInternalServerError, &pipeline.PersistenceError{Op: "create check-in record", Err: err}
	}

	if s.push != nil {
		s.push.PushCheckinStage(req.UserAddress, onchainID, pipeline.StageEncoded, "")
	}

	if challenge != nil && challenge.VerificationMethod == string(pipeline.MethodManualReview) {
		if _, err := s.reviews.Enqueue(ctx, record); err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return &dto.VerifyCheckinResponse{
			Success: true,
			Pending: true,
			Message: "Proof queued for manual review",
		}, http.StatusAccepted, nil
	}

	resp, status, err := s.oracle.VerifyCheckin(ctx, req)
	if err != nil {
		record.Stage = string(pipeline.StageFailed)
		record.Reason = err.Error()
		s.updateRecord(ctx, record)
		return nil, http.StatusBadGateway, err
	}

	record.Verified = resp.Verified
	record.TxHash = resp.TxHash
	record.Stage = string(terminalStage(resp))
	if resp.Reason != "" {
		record.Reason = resp.Reason
	} else if resp.Error != "" {
		record.Reason = resp.Error
	}
	s.updateRecord(ctx, record)

	return resp, status, nil
}

// VerifierHealth fetches the oracle service's health envelope, letting the
// application surface report whether the verifier is reachable and which
// account it signs with.
func (s *CheckinService) VerifierHealth(ctx context.Context) (*dto.HealthResponse, error) {
	return s.oracle.Health(ctx)
}

// History returns one user's attempts for a challenge, newest first.
func (s *CheckinService) History(ctx context.Context, address string, challengeID uint) ([]*models.CheckinRecord, error) {
	return s.checkins.FindByUser(ctx, address, challengeID)
}

// VerifiedCount returns how many attempts confirmed for a user and
// challenge.
func (s *CheckinService) VerifiedCount(ctx context.Context, address string, challengeID uint) (int64, error) {
	return s.checkins.CountVerified(ctx, address, challengeID)
}

func (s *CheckinService) updateRecord(ctx context.Context, record *models.CheckinRecord) {
	if err := s.checkins.Update(ctx, record); err != nil {
		s.logger.WithError(err).WithField("checkin", record.ID).Error("Failed to update check-in record")
	}
}

// terminalStage maps an oracle response envelope onto the attempt's stored
// stage. A rejection carries the judge's reason; a failure carries only an
// error.
func terminalStage(resp *dto.VerifyCheckinResponse) pipeline.Stage {
	switch {
	case resp.Pending:
		return pipeline.StageIndeterminate
	case resp.Verified && resp.TxHash != "":
		return pipeline.StageSynced
	case !resp.Verified && resp.Reason != "":
		return pipeline.StageRejected
	default:
		return pipeline.StageFailed
	}
}
