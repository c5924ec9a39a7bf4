// Package reader is the scripture sequential-reading engine: cursor
// pagination over an ordered verse corpus, per-user reading positions,
// progress/streak statistics, and the daily verse assignment cycle.
// It is consumed in-process; transport and auth live elsewhere.
package reader

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"versehub/internal/reader/cache"
	"versehub/internal/reader/models"
	"versehub/internal/reader/repository"
	"versehub/internal/reader/service"
)

// Options tunes the engine; zero values fall back to the documented
// defaults.
type Options struct {
	BatchSize         int
	PredecessorWindow int
	StreakWindow      int
	CountCacheTTL     time.Duration
}

// Engine is the single entry point for the presentation layer. All
// mutable state is partitioned by user, so one Engine serves all users
// concurrently; a single user's calls are assumed serialized by the
// caller.
type Engine struct {
	Verses      repository.VerseRepository
	cursor      service.CursorService
	positions   service.PositionService
	progress    service.ProgressService
	assignments service.AssignmentService
	counts      *cache.CountCache
}

// NewEngine wires the engine over a GORM store and an optional Redis
// client (nil disables count caching).
func NewEngine(db *gorm.DB, rdb *redis.Client, opts Options) *Engine {
	if opts.CountCacheTTL <= 0 {
		opts.CountCacheTTL = time.Hour
	}

	verses := repository.NewVerseRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	eventRepo := repository.NewReadEventRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)

	counts := cache.NewCountCache(rdb, verses, opts.CountCacheTTL)
	cursor := service.NewCursorService(verses, opts.BatchSize, opts.PredecessorWindow)
	positions := service.NewPositionService(positionRepo, cursor, counts)
	progress := service.NewProgressService(eventRepo, positionRepo, counts, opts.StreakWindow)
	assignments := service.NewAssignmentService(assignmentRepo, verses, cursor, positions, progress, counts)

	return &Engine{
		Verses:      verses,
		cursor:      cursor,
		positions:   positions,
		progress:    progress,
		assignments: assignments,
		counts:      counts,
	}
}

// VerseByIndex returns the verse ranked index-th in corpus order, or
// service.ErrOutOfRange past either end.
func (e *Engine) VerseByIndex(ctx context.Context, corpus string, index int64) (*models.VerseRecord, error) {
	return e.cursor.ByIndex(ctx, corpus, index)
}

// Successor returns (nil, nil) at the end of the corpus.
func (e *Engine) Successor(ctx context.Context, v *models.VerseRecord) (*models.VerseRecord, error) {
	return e.cursor.Successor(ctx, v)
}

// Predecessor returns (nil, nil) at the start of the corpus.
func (e *Engine) Predecessor(ctx context.Context, v *models.VerseRecord) (*models.VerseRecord, error) {
	return e.cursor.Predecessor(ctx, v)
}

// Count never fails for corpora with a documented fallback total.
func (e *Engine) Count(ctx context.Context, corpus string) (int64, error) {
	return e.counts.Total(ctx, corpus)
}

// Position returns the user's reading position, creating the default
// first-access record when none exists.
func (e *Engine) Position(ctx context.Context, userID, corpus string) (*models.ReadingPosition, error) {
	return e.positions.GetOrCreate(ctx, userID, corpus)
}

func (e *Engine) SetPosition(ctx context.Context, userID, corpus string, index int64, verse *models.VerseRecord) error {
	return e.positions.Set(ctx, userID, corpus, index, verse)
}

func (e *Engine) ResetPosition(ctx context.Context, userID, corpus string) error {
	return e.positions.Reset(ctx, userID, corpus)
}

func (e *Engine) MarkRead(ctx context.Context, userID, corpus string, verse *models.VerseRecord) error {
	return e.progress.MarkRead(ctx, userID, corpus, verse)
}

func (e *Engine) HasRead(ctx context.Context, userID, corpus, verseID string) (bool, error) {
	return e.progress.HasRead(ctx, userID, corpus, verseID)
}

func (e *Engine) Progress(ctx context.Context, userID, corpus string) (*models.ProgressSummary, error) {
	return e.progress.Progress(ctx, userID, corpus)
}

func (e *Engine) TodayAssignment(ctx context.Context, userID, corpus string) (*models.TodayVerse, error) {
	return e.assignments.Today(ctx, userID, corpus)
}

func (e *Engine) MarkTodayRead(ctx context.Context, userID, corpus, verseID string) error {
	return e.assignments.MarkTodayRead(ctx, userID, corpus, verseID)
}

// InvalidateCount drops the cached corpus total, e.g. after an import.
func (e *Engine) InvalidateCount(ctx context.Context, corpus string) {
	e.counts.Invalidate(ctx, corpus)
}
