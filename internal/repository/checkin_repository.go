package repository

import (
	"context"

	"gorm.io/gorm"

	"scavnger-backend/internal/models"
)

// CheckinRepository defines the interface for CheckinRecord data access
type CheckinRepository interface {
	Create(ctx context.Context, record *models.CheckinRecord) error
	GetByID(ctx context.Context, id string) (*models.CheckinRecord, error)
	Update(ctx context.Context, record *models.CheckinRecord) error
	FindByUser(ctx context.Context, address string, challengeID uint) ([]*models.CheckinRecord, error)
	CountVerified(ctx context.Context, address string, challengeID uint) (int64, error)
}

type checkinRepository struct {
	db *gorm.DB
}

// NewCheckinRepository creates a new CheckinRepository instance
func NewCheckinRepository(db *gorm.DB) CheckinRepository {
	return &checkinRepository{db: db}
}

func (r *checkinRepository) Create(ctx context.Context, record *models.CheckinRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *checkinRepository) GetByID(ctx context.Context, id string) (*models.CheckinRecord, error) {
	var record models.CheckinRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *checkinRepository) Update(ctx context.Context, record *models.CheckinRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *checkinRepository) FindByUser(ctx context.Context, address string, challengeID uint) ([]*models.CheckinRecord, error) {
	query := r.db.WithContext(ctx).Where("user_address = ?", address)
	if challengeID != 0 {
		query = query.Where("challenge_id = ?", challengeID)
	}

	var records []*models.CheckinRecord
	err := query.Order("created_at DESC").Find(&records).Error
	return records, err
}

func (r *checkinRepository) CountVerified(ctx context.Context, address string, challengeID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CheckinRecord{}).
		Where("user_address = ? AND challenge_id = ? AND verified = ?", address, challengeID, true).
		Count(&count).Error
	return count, err
}
