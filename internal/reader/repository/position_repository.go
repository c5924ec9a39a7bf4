package repository

import (
	"context"
	"fmt"

	"versehub/internal/reader/models"

	"gorm.io/gorm"
)

type PositionRepository interface {
	// Get returns (nil, nil) when the user has no position yet.
	Get(ctx context.Context, userID, corpus string) (*models.ReadingPosition, error)
	// Save overwrites the whole position record as one write.
	Save(ctx context.Context, pos *models.ReadingPosition) error
	// UpdateCachedReadCount touches only the cached counter field.
	UpdateCachedReadCount(ctx context.Context, userID, corpus string, count int64) error
}

type positionRepository struct {
	db *gorm.DB
}

func NewPositionRepository(db *gorm.DB) PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) Get(ctx context.Context, userID, corpus string) (*models.ReadingPosition, error) {
	var pos models.ReadingPosition
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND corpus = ?", userID, corpus).
		First(&pos).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get position: %w", err)
	}
	return &pos, nil
}

func (r *positionRepository) Save(ctx context.Context, pos *models.ReadingPosition) error {
	// Save upserts on the composite primary key, so creation and
	// overwrite are the same single-record write.
	if err := r.db.WithContext(ctx).Save(pos).Error; err != nil {
		return fmt.Errorf("save position: %w", err)
	}
	return nil
}

func (r *positionRepository) UpdateCachedReadCount(ctx context.Context, userID, corpus string, count int64) error {
	err := r.db.WithContext(ctx).Model(&models.ReadingPosition{}).
		Where("user_id = ? AND corpus = ?", userID, corpus).
		Update("cached_read_count", count).Error
	if err != nil {
		return fmt.Errorf("update cached read count: %w", err)
	}
	return nil
}
