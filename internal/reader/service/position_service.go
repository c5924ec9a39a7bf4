package service

import (
	"context"
	"log/slog"
	"time"

	"versehub/internal/reader/models"
	"versehub/internal/reader/repository"
)

// CountProvider serves corpus totals. Satisfied by the Redis-backed
// count cache; never fails for corpora with a documented fallback.
type CountProvider interface {
	Total(ctx context.Context, corpus string) (int64, error)
}

// PositionService owns the per-user reading position. Get is an
// explicit get-or-create: the side-effecting default write on first
// access is part of the contract, so every consumer sees the same
// starting point for a new user.
type PositionService interface {
	GetOrCreate(ctx context.Context, userID, corpus string) (*models.ReadingPosition, error)
	// Set overwrites the position fields atomically as one record write.
	Set(ctx context.Context, userID, corpus string, index int64, verse *models.VerseRecord) error
	// Reset writes the same default record used for first-time creation.
	Reset(ctx context.Context, userID, corpus string) error
}

type positionService struct {
	positions repository.PositionRepository
	cursor    CursorService
	counts    CountProvider
	logger    *slog.Logger
}

func NewPositionService(positions repository.PositionRepository, cursor CursorService, counts CountProvider) PositionService {
	return &positionService{
		positions: positions,
		cursor:    cursor,
		counts:    counts,
		logger:    slog.Default(),
	}
}

func (s *positionService) GetOrCreate(ctx context.Context, userID, corpus string) (*models.ReadingPosition, error) {
	pos, err := s.positions.Get(ctx, userID, corpus)
	if err != nil {
		return nil, err
	}
	if pos != nil {
		return pos, nil
	}

	def, err := s.defaultPosition(ctx, userID, corpus)
	if err != nil {
		return nil, err
	}
	if err := s.positions.Save(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

func (s *positionService) Set(ctx context.Context, userID, corpus string, index int64, verse *models.VerseRecord) error {
	// Preserve the cached read counter across position overwrites; it
	// belongs to the progress calculator, not navigation.
	var cached int64
	if existing, err := s.positions.Get(ctx, userID, corpus); err == nil && existing != nil {
		cached = existing.CachedReadCount
	}

	pos := &models.ReadingPosition{
		UserID:          userID,
		Corpus:          corpus,
		CurrentIndex:    index,
		SectionNumber:   verse.SectionNumber,
		SectionName:     verse.SectionName,
		Chapter:         verse.Chapter,
		CachedReadCount: cached,
		PercentComplete: s.percent(ctx, corpus, index),
		LastVisitedAt:   time.Now(),
	}
	return s.positions.Save(ctx, pos)
}

func (s *positionService) Reset(ctx context.Context, userID, corpus string) error {
	def, err := s.defaultPosition(ctx, userID, corpus)
	if err != nil {
		return err
	}
	return s.positions.Save(ctx, def)
}

// defaultPosition points at index 0 with the first record's descriptive
// fields. An empty corpus still gets a well-formed default.
func (s *positionService) defaultPosition(ctx context.Context, userID, corpus string) (*models.ReadingPosition, error) {
	pos := &models.ReadingPosition{
		UserID:        userID,
		Corpus:        corpus,
		CurrentIndex:  0,
		SectionNumber: 1,
		Chapter:       1,
		LastVisitedAt: time.Now(),
	}
	first, err := s.cursor.ByIndex(ctx, corpus, 0)
	if err == nil {
		pos.SectionNumber = first.SectionNumber
		pos.SectionName = first.SectionName
		pos.Chapter = first.Chapter
	} else if err != ErrOutOfRange {
		return nil, err
	}
	return pos, nil
}

func (s *positionService) percent(ctx context.Context, corpus string, index int64) float64 {
	total, err := s.counts.Total(ctx, corpus)
	if err != nil || total <= 0 {
		if err != nil {
			s.logger.Warn("percent_total_unavailable", "corpus", corpus, "error", err)
		}
		return 0
	}
	return float64(index) / float64(total) * 100
}
