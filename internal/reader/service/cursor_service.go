package service

import (
	"context"
	"log/slog"

	"versehub/internal/reader/models"
	"versehub/internal/reader/repository"
)

// DefaultBatchSize bounds the cost of a single range query during an
// index walk.
const DefaultBatchSize = 100

// DefaultPredecessorWindow is how far the reverse scan looks when
// resolving a predecessor.
const DefaultPredecessorWindow = 100

// CursorService resolves verses by global index and walks the corpus
// order one step at a time. ByIndex costs O(index/batchSize) range
// queries and exists for occasional random jumps; Successor and
// Predecessor are the O(1)-query operations the next/previous buttons
// use on every step.
type CursorService interface {
	ByIndex(ctx context.Context, corpus string, index int64) (*models.VerseRecord, error)
	// Successor returns (nil, nil) at the end of the corpus.
	Successor(ctx context.Context, v *models.VerseRecord) (*models.VerseRecord, error)
	// Predecessor returns (nil, nil) at the start of the corpus, or when
	// no earlier record falls inside the reverse-scan window.
	Predecessor(ctx context.Context, v *models.VerseRecord) (*models.VerseRecord, error)
}

type cursorService struct {
	verses    repository.VerseRepository
	batchSize int
	window    int
	logger    *slog.Logger
}

func NewCursorService(verses repository.VerseRepository, batchSize, window int) CursorService {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if window <= 0 {
		window = DefaultPredecessorWindow
	}
	return &cursorService{
		verses:    verses,
		batchSize: batchSize,
		window:    window,
		logger:    slog.Default(),
	}
}

// ByIndex walks forward in fixed-size batches, resuming each query after
// the previous batch's last record, until the running count passes the
// target index. Batches are inherently sequential: each starting cursor
// depends on the previous batch's tail. An empty corpus and an index past
// the end both come back as ErrOutOfRange.
func (s *cursorService) ByIndex(ctx context.Context, corpus string, index int64) (*models.VerseRecord, error) {
	if index < 0 {
		return nil, ErrOutOfRange
	}

	var after *repository.Cursor
	var seen int64
	for {
		batch, err := s.verses.PageAfter(ctx, corpus, after, s.batchSize)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			return nil, ErrOutOfRange
		}
		if index < seen+int64(len(batch)) {
			v := batch[index-seen]
			v.Normalize()
			return &v, nil
		}
		seen += int64(len(batch))
		last := batch[len(batch)-1]
		// The cursor comes from the raw record, not the normalized copy,
		// so a malformed record cannot derail the resume position.
		after = repository.CursorOf(&last)
	}
}

func (s *cursorService) Successor(ctx context.Context, v *models.VerseRecord) (*models.VerseRecord, error) {
	batch, err := s.verses.PageAfter(ctx, v.Corpus, repository.CursorOf(v), 1)
	if err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, nil
	}
	next := batch[0]
	next.Normalize()
	return &next, nil
}

// Predecessor scans a bounded window in descending order from sections
// <= v's and picks the greatest record strictly before v. When nothing
// in the window qualifies it reports "none"; this is a documented
// approximation for windows smaller than a section boundary.
func (s *cursorService) Predecessor(ctx context.Context, v *models.VerseRecord) (*models.VerseRecord, error) {
	window, err := s.verses.WindowBefore(ctx, v.Corpus, v.SectionNumber, s.window)
	if err != nil {
		return nil, err
	}
	for i := range window {
		if window[i].Before(v) {
			prev := window[i]
			prev.Normalize()
			return &prev, nil
		}
	}
	return nil, nil
}
