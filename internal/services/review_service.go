package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"scavnger-backend/internal/models"
	"scavnger-backend/internal/pipeline"
	"scavnger-backend/internal/repository"
)

// ErrReviewNotFound indicates the requested review task does not exist.
var ErrReviewNotFound = errors.New("review task not found")

// ErrReviewAlreadyDecided indicates the task was already approved or
// rejected. Decisions are final.
var ErrReviewAlreadyDecided = errors.New("review task already decided")

// ReviewService queues manual-review check-ins for operator decisions. An
// approved task resumes the submission pipeline exactly as an accepted
// automated decision would.
type ReviewService struct {
	reviews    repository.ReviewRepository
	checkins   repository.CheckinRepository
	challenges repository.ChallengeRepository
	pipe       *pipeline.CheckinPipeline
	push       *PushService
	logger     *logrus.Logger
}

func NewReviewService(
	reviews repository.ReviewRepository,
	checkins repository.CheckinRepository,
	challenges repository.ChallengeRepository,
	pipe *pipeline.CheckinPipeline,
	push *PushService,
	logger *logrus.Logger,
) *ReviewService {
	if logger == nil {
		logger = logrus.New()
	}
	return &ReviewService{
		reviews:    reviews,
		checkins:   checkins,
		challenges: challenges,
		pipe:       pipe,
		push:       push,
		logger:     logger,
	}
}

// Enqueue records a pending review task for a check-in on a manual-review
// challenge.
func (s *ReviewService) Enqueue(ctx context.Context, record *models.CheckinRecord) (*models.ManualReviewTask, error) {
	task := &models.ManualReviewTask{
		ID:          uuid.New().String(),
		CheckinID:   record.ID,
		ChallengeID: record.ChallengeID,
		UserAddress: record.UserAddress,
		Status:      models.ReviewStatusPending,
	}
	if err := s.reviews.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to queue review task: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"task":      task.ID,
		"checkin":   record.ID,
		"challenge": record.ChallengeID,
	}).Info("📋 Check-in queued for manual review")
	return task, nil
}

// ListPending returns the open review queue.
func (s *ReviewService) ListPending(ctx context.Context) ([]*models.ManualReviewTask, error) {
	return s.reviews.FindPending(ctx)
}

// Decide resolves one pending task. An approval submits the check-in on
// chain through the regular pipeline stages; a rejection only records the
// operator's reason.
func (s *ReviewService) Decide(ctx context.Context, taskID string, approve bool, reviewer, reason string) (*models.ManualReviewTask, *pipeline.Result, error) {
	task, err := s.reviews.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrReviewNotFound
		}
		return nil, nil, err
	}
	if task.Status != models.ReviewStatusPending {
		return nil, nil, ErrReviewAlreadyDecided
	}

	record, err := s.checkins.GetByID(ctx, task.CheckinID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load check-in record: %w", err)
	}

	task.Reviewer = reviewer
	task.Reason = reason

	if !approve {
		task.Status = models.ReviewStatusRejected
		if err := s.reviews.Update(ctx, task); err != nil {
			return nil, nil, err
		}

		record.Stage = string(pipeline.StageRejected)
		record.Reason = reason
		if err := s.checkins.Update(ctx, record); err != nil {
			s.logger.WithError(err).Error("Failed to update check-in record after rejection")
		}
		if s.push != nil {
			s.push.PushCheckinStage(record.UserAddress, uint64(task.ChallengeID), pipeline.StageRejected, reason)
		}
		return task, nil, nil
	}

	if s.pipe == nil {
		return nil, nil, errors.New("no verifier key configured, cannot submit approved check-in")
	}

	challenge, err := s.challenges.GetByID(ctx, task.ChallengeID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load challenge: %w", err)
	}
	if challenge.OnchainID == nil {
		return nil, nil, fmt.Errorf("challenge %d has no on-chain id, cannot submit check-in", challenge.ID)
	}
	onchainID := *challenge.OnchainID

	task.Status = models.ReviewStatusApproved
	if err := s.reviews.Update(ctx, task); err != nil {
		return nil, nil, err
	}

	decision := pipeline.Decision{Verified: true, Reason: "Approved by " + reviewer}
	req := pipeline.CheckinRequest{
		UserAddress: record.UserAddress,
		ChallengeID: onchainID,
	}

	observe := func(stage pipeline.Stage, detail string) {
		if s.push != nil {
			s.push.PushCheckinStage(record.UserAddress, onchainID, stage, detail)
		}
	}

	result, runErr := s.pipe.Submit(ctx, req, decision, observe)

	record.Verified = true
	record.Reason = decision.Reason
	record.Stage = string(result.Stage)
	record.TxHash = result.TxHash
	if err := s.checkins.Update(ctx, record); err != nil {
		s.logger.WithError(err).Error("Failed to update check-in record after approval")
	}

	return task, result, runErr
}
