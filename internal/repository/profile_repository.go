package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scavnger-backend/internal/models"
)

// ProfileRepository defines the interface for Profile data access
type ProfileRepository interface {
	GetByAddress(ctx context.Context, address string) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
	TouchLastLogin(ctx context.Context, address string) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new ProfileRepository instance
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByAddress(ctx context.Context, address string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("wallet_address = ?", address).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wallet_address"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "bio", "last_login", "updated_at"}),
	}).Create(profile).Error
}

func (r *profileRepository) TouchLastLogin(ctx context.Context, address string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("wallet_address = ?", address).
		Update("last_login", time.Now()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
