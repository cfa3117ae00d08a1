// Package repository provides data access interfaces and implementations
package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"scavnger-backend/internal/models"
)

// ChallengeRepository defines the interface for Challenge data access
type ChallengeRepository interface {
	Create(ctx context.Context, challenge *models.Challenge) error
	GetByID(ctx context.Context, id uint) (*models.Challenge, error)
	GetByOnchainID(ctx context.Context, onchainID uint64) (*models.Challenge, error)
	Update(ctx context.Context, challenge *models.Challenge) error
	List(ctx context.Context, page, pageSize int) ([]*models.Challenge, int64, error)
	FindByParticipant(ctx context.Context, address string) ([]*models.Challenge, error)

	// SetOnchainID records the on-chain index assigned at creation. It is
	// written once; a second call with a different value is rejected.
	SetOnchainID(ctx context.Context, id uint, onchainID uint64, txHash string) error

	// AddParticipant unions address into the participant list and records the
	// transaction hash. Idempotent: a duplicate address leaves the list
	// unchanged. Read-modify-write; concurrent joins to the same challenge
	// can race, last writer wins on the stored list.
	AddParticipant(ctx context.Context, id uint, address, txHash string) ([]string, error)
}

type challengeRepository struct {
	db *gorm.DB
}

// NewChallengeRepository creates a new ChallengeRepository instance
func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) Create(ctx context.Context, challenge *models.Challenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

func (r *challengeRepository) GetByID(ctx context.Context, id uint) (*models.Challenge, error) {
	var challenge models.Challenge
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *challengeRepository) GetByOnchainID(ctx context.Context, onchainID uint64) (*models.Challenge, error) {
	var challenge models.Challenge
	err := r.db.WithContext(ctx).Where("onchain_id = ?", onchainID).First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *challengeRepository) Update(ctx context.Context, challenge *models.Challenge) error {
	return r.db.WithContext(ctx).Save(challenge).Error
}

func (r *challengeRepository) List(ctx context.Context, page, pageSize int) ([]*models.Challenge, int64, error) {
	var challenges []*models.Challenge
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Challenge{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&challenges).Error

	return challenges, total, err
}

func (r *challengeRepository) FindByParticipant(ctx context.Context, address string) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	err := r.db.WithContext(ctx).
		Where("? = ANY(participants_list)", address).
		Order("created_at DESC").
		Find(&challenges).Error
	return challenges, err
}

func (r *challengeRepository) SetOnchainID(ctx context.Context, id uint, onchainID uint64, txHash string) error {
	challenge, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if challenge.OnchainID != nil {
		if *challenge.OnchainID == onchainID {
			return nil
		}
		return fmt.Errorf("challenge %d already has onchain_id %d", id, *challenge.OnchainID)
	}

	updates := map[string]interface{}{"onchain_id": onchainID}
	if txHash != "" {
		updates["tx_hash"] = txHash
	}
	return r.db.WithContext(ctx).
		Model(&models.Challenge{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *challengeRepository) AddParticipant(ctx context.Context, id uint, address, txHash string) ([]string, error) {
	challenge, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := UnionParticipants(challenge.ParticipantsList, address)

	updates := map[string]interface{}{
		"participants_list": pq.StringArray(updated),
	}
	if txHash != "" {
		updates["tx_hash"] = txHash
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Challenge{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	return updated, nil
}

// UnionParticipants returns list with address added once, preserving order.
// A duplicate address leaves the list unchanged.
func UnionParticipants(list []string, address string) []string {
	for _, existing := range list {
		if existing == address {
			return append([]string(nil), list...)
		}
	}
	out := make([]string, 0, len(list)+1)
	out = append(out, list...)
	return append(out, address)
}
