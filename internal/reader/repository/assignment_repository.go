package repository

import (
	"context"
	"fmt"

	"versehub/internal/reader/models"

	"gorm.io/gorm"
)

type AssignmentRepository interface {
	// Get returns (nil, nil) when no assignment exists for that day.
	Get(ctx context.Context, userID, corpus, date string) (*models.DailyAssignment, error)
	// Latest returns the user's most recent assignment across all days,
	// or (nil, nil) for a first-time user.
	Latest(ctx context.Context, userID, corpus string) (*models.DailyAssignment, error)
	// Save upserts on (user, corpus, date); a same-day advance rebinds
	// the existing row.
	Save(ctx context.Context, a *models.DailyAssignment) error
	MarkRead(ctx context.Context, userID, corpus, date string) error
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Get(ctx context.Context, userID, corpus, date string) (*models.DailyAssignment, error) {
	var a models.DailyAssignment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND corpus = ? AND date = ?", userID, corpus, date).
		First(&a).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return &a, nil
}

func (r *assignmentRepository) Latest(ctx context.Context, userID, corpus string) (*models.DailyAssignment, error) {
	var a models.DailyAssignment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND corpus = ?", userID, corpus).
		Order("date DESC").
		First(&a).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest assignment: %w", err)
	}
	return &a, nil
}

func (r *assignmentRepository) Save(ctx context.Context, a *models.DailyAssignment) error {
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		return fmt.Errorf("save assignment: %w", err)
	}
	return nil
}

func (r *assignmentRepository) MarkRead(ctx context.Context, userID, corpus, date string) error {
	res := r.db.WithContext(ctx).Model(&models.DailyAssignment{}).
		Where("user_id = ? AND corpus = ? AND date = ?", userID, corpus, date).
		Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("mark assignment read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
