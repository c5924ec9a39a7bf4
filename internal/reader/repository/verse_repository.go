package repository

import (
	"context"
	"fmt"

	"versehub/internal/reader/models"

	"gorm.io/gorm"
)

// Cursor is an opaque resume point inside a corpus: the three-key sort
// tuple of the last record already seen. A nil *Cursor means "start of
// corpus". The verse store only supports ordered range queries that
// resume strictly after a cursor — there is no index-based access.
type Cursor struct {
	SectionNumber int
	Chapter       int
	VerseNumber   int
}

// CursorOf builds the resume cursor for a verse record.
func CursorOf(v *models.VerseRecord) *Cursor {
	return &Cursor{
		SectionNumber: v.SectionNumber,
		Chapter:       v.Chapter,
		VerseNumber:   v.VerseNumber,
	}
}

type VerseRepository interface {
	// PageAfter returns up to limit records in ascending corpus order,
	// resuming strictly after the cursor (or from the start when nil).
	PageAfter(ctx context.Context, corpus string, after *Cursor, limit int) ([]models.VerseRecord, error)
	// WindowBefore returns up to limit records in descending corpus
	// order, starting from section numbers <= maxSection.
	WindowBefore(ctx context.Context, corpus string, maxSection int, limit int) ([]models.VerseRecord, error)
	Count(ctx context.Context, corpus string) (int64, error)
	// ByID returns (nil, nil) when the record does not exist.
	ByID(ctx context.Context, corpus, id string) (*models.VerseRecord, error)
	// Random returns one record chosen uniformly at random, or (nil, nil)
	// for an empty corpus.
	Random(ctx context.Context, corpus string) (*models.VerseRecord, error)
	CreateBatch(ctx context.Context, verses []models.VerseRecord) error
}

type verseRepository struct {
	db *gorm.DB
}

func NewVerseRepository(db *gorm.DB) VerseRepository {
	return &verseRepository{db: db}
}

// orderAsc is the canonical corpus sort order.
const orderAsc = "section_number ASC, chapter ASC, verse_number ASC"

const orderDesc = "section_number DESC, chapter DESC, verse_number DESC"

func (r *verseRepository) PageAfter(ctx context.Context, corpus string, after *Cursor, limit int) ([]models.VerseRecord, error) {
	var list []models.VerseRecord
	q := r.db.WithContext(ctx).Where("corpus = ?", corpus)
	if after != nil {
		// Row-value comparison keeps "resume after cursor" a single
		// range predicate on the composite index.
		q = q.Where("(section_number, chapter, verse_number) > (?, ?, ?)",
			after.SectionNumber, after.Chapter, after.VerseNumber)
	}
	if err := q.Order(orderAsc).Limit(limit).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("page verses: %w", err)
	}
	return list, nil
}

func (r *verseRepository) WindowBefore(ctx context.Context, corpus string, maxSection int, limit int) ([]models.VerseRecord, error) {
	var list []models.VerseRecord
	if err := r.db.WithContext(ctx).
		Where("corpus = ? AND section_number <= ?", corpus, maxSection).
		Order(orderDesc).
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("window verses: %w", err)
	}
	return list, nil
}

func (r *verseRepository) Count(ctx context.Context, corpus string) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.VerseRecord{}).
		Where("corpus = ?", corpus).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count verses: %w", err)
	}
	return total, nil
}

func (r *verseRepository) ByID(ctx context.Context, corpus, id string) (*models.VerseRecord, error) {
	var v models.VerseRecord
	err := r.db.WithContext(ctx).
		Where("corpus = ? AND id = ?", corpus, id).
		First(&v).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get verse: %w", err)
	}
	return &v, nil
}

func (r *verseRepository) Random(ctx context.Context, corpus string) (*models.VerseRecord, error) {
	var v models.VerseRecord
	// random() works on both postgres and sqlite.
	err := r.db.WithContext(ctx).
		Where("corpus = ?", corpus).
		Order("random()").
		First(&v).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("random verse: %w", err)
	}
	return &v, nil
}

func (r *verseRepository) CreateBatch(ctx context.Context, verses []models.VerseRecord) error {
	if len(verses) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&verses).Error; err != nil {
		return fmt.Errorf("create verses: %w", err)
	}
	return nil
}
