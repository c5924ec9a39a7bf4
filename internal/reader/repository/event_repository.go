package repository

import (
	"context"
	"fmt"

	"versehub/internal/reader/models"

	"gorm.io/gorm"
)

type ReadEventRepository interface {
	// Append records a read event exactly once per user+verse. Marking
	// the same verse again is a no-op, not an error.
	Append(ctx context.Context, event *models.ReadEvent) error
	Has(ctx context.Context, userID, corpus, verseID string) (bool, error)
	// CountDistinct is the authoritative "total verses read" for a user.
	CountDistinct(ctx context.Context, userID, corpus string) (int64, error)
	// Recent returns the most recent limit events, newest first.
	Recent(ctx context.Context, userID, corpus string, limit int) ([]models.ReadEvent, error)
}

type readEventRepository struct {
	db *gorm.DB
}

func NewReadEventRepository(db *gorm.DB) ReadEventRepository {
	return &readEventRepository{db: db}
}

func (r *readEventRepository) Append(ctx context.Context, event *models.ReadEvent) error {
	var existing models.ReadEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND corpus = ? AND verse_id = ?",
			event.UserID, event.Corpus, event.VerseID).
		First(&existing).Error
	if err == nil {
		// Already read once; the log is append-only and deduplicated.
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("check read event: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("append read event: %w", err)
	}
	return nil
}

func (r *readEventRepository) Has(ctx context.Context, userID, corpus, verseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ReadEvent{}).
		Where("user_id = ? AND corpus = ? AND verse_id = ?", userID, corpus, verseID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check read event: %w", err)
	}
	return count > 0, nil
}

func (r *readEventRepository) CountDistinct(ctx context.Context, userID, corpus string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ReadEvent{}).
		Where("user_id = ? AND corpus = ?", userID, corpus).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count read events: %w", err)
	}
	return count, nil
}

func (r *readEventRepository) Recent(ctx context.Context, userID, corpus string, limit int) ([]models.ReadEvent, error) {
	var events []models.ReadEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND corpus = ?", userID, corpus).
		Order("read_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("recent read events: %w", err)
	}
	return events, nil
}
