package repository

import (
	"context"

	"gorm.io/gorm"

	"scavnger-backend/internal/models"
)

// ReviewRepository defines the interface for ManualReviewTask data access
type ReviewRepository interface {
	Create(ctx context.Context, task *models.ManualReviewTask) error
	GetByID(ctx context.Context, id string) (*models.ManualReviewTask, error)
	Update(ctx context.Context, task *models.ManualReviewTask) error
	FindPending(ctx context.Context) ([]*models.ManualReviewTask, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new ReviewRepository instance
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, task *models.ManualReviewTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *reviewRepository) GetByID(ctx context.Context, id string) (*models.ManualReviewTask, error) {
	var task models.ManualReviewTask
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *reviewRepository) Update(ctx context.Context, task *models.ManualReviewTask) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *reviewRepository) FindPending(ctx context.Context) ([]*models.ManualReviewTask, error) {
	var tasks []*models.ManualReviewTask
	err := r.db.WithContext(ctx).
		Where("status = ?", models.ReviewStatusPending).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}
