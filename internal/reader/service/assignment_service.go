package service

import (
	"context"
	"log/slog"
	"time"

	"versehub/internal/reader/models"
	"versehub/internal/reader/repository"
)

// AssignmentService is the once-per-day, per-user state machine binding
// "today's verse" to the user's cursor position. A day's assignment is
// created on first request, flipped unread→read at most once, and the
// cursor advances — wrapping to index 0 at end of corpus — when a read
// assignment is requested again.
type AssignmentService interface {
	Today(ctx context.Context, userID, corpus string) (*models.TodayVerse, error)
	MarkTodayRead(ctx context.Context, userID, corpus, verseID string) error
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	verses      repository.VerseRepository
	cursor      CursorService
	positions   PositionService
	progress    ProgressService
	counts      CountProvider
	logger      *slog.Logger
	now         func() time.Time
}

func NewAssignmentService(
	assignments repository.AssignmentRepository,
	verses repository.VerseRepository,
	cursor CursorService,
	positions PositionService,
	progress ProgressService,
	counts CountProvider,
) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		verses:      verses,
		cursor:      cursor,
		positions:   positions,
		progress:    progress,
		counts:      counts,
		logger:      slog.Default(),
		now:         time.Now,
	}
}

func (s *assignmentService) Today(ctx context.Context, userID, corpus string) (*models.TodayVerse, error) {
	today := s.now().Local().Format(models.DayFormat)

	current, err := s.assignments.Get(ctx, userID, corpus, today)
	if err != nil {
		return nil, err
	}
	if current != nil && !current.IsRead {
		// Idempotent: repeated calls within the same day never advance.
		verse := s.resolveAssigned(ctx, current)
		return &models.TodayVerse{
			Verse:      verse,
			VerseIndex: current.VerseIndex,
			IsRead:     false,
			IsRestart:  current.IsRestart,
		}, nil
	}

	// The advance basis is today's read assignment, or — on a fresh day —
	// the most recent prior one if that was read. An unread prior
	// assignment means the position never moved, so the same verse is
	// re-bound to the new day.
	basis := current
	if basis == nil {
		basis, err = s.assignments.Latest(ctx, userID, corpus)
		if err != nil {
			return nil, err
		}
		if basis != nil && !basis.IsRead {
			basis = nil
		}
	}

	if basis != nil {
		return s.advance(ctx, userID, corpus, today, basis)
	}
	return s.bindFromPosition(ctx, userID, corpus, today)
}

// advance moves the cursor one past the basis assignment and binds the
// result to today, wrapping to the start of the corpus when the end is
// reached.
func (s *assignmentService) advance(ctx context.Context, userID, corpus, today string, basis *models.DailyAssignment) (*models.TodayVerse, error) {
	next := basis.VerseIndex + 1
	restart := false

	total, err := s.counts.Total(ctx, corpus)
	if err == nil && next >= total {
		next = 0
		restart = true
	}

	verse, err := s.cursor.ByIndex(ctx, corpus, next)
	if err == ErrOutOfRange && next > 0 {
		// The cached total overshot the real corpus; wrap anyway.
		next = 0
		restart = true
		verse, err = s.cursor.ByIndex(ctx, corpus, next)
	}
	if err != nil {
		return nil, err
	}

	if err := s.positions.Set(ctx, userID, corpus, next, verse); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, userID, corpus, today, next, verse, restart); err != nil {
		return nil, err
	}
	return &models.TodayVerse{
		Verse:      verse,
		VerseIndex: next,
		IsRestart:  restart,
	}, nil
}

// bindFromPosition creates today's assignment at the user's current
// position. When the position cannot be created or resolved — a store
// outage, an empty corpus — it degrades to a random verse flagged as a
// fallback rather than failing the caller. That flagged fallback is the
// only place the engine answers with a verse it was not asked for.
func (s *assignmentService) bindFromPosition(ctx context.Context, userID, corpus, today string) (*models.TodayVerse, error) {
	pos, err := s.positions.GetOrCreate(ctx, userID, corpus)
	if err != nil {
		s.logger.Warn("assignment_position_unavailable", "user_id", userID, "corpus", corpus, "error", err)
		return s.fallback(ctx, corpus)
	}

	verse, err := s.cursor.ByIndex(ctx, corpus, pos.CurrentIndex)
	if err != nil {
		s.logger.Warn("assignment_verse_unresolvable",
			"user_id", userID,
			"corpus", corpus,
			"index", pos.CurrentIndex,
			"error", err,
		)
		return s.fallback(ctx, corpus)
	}

	if err := s.persist(ctx, userID, corpus, today, pos.CurrentIndex, verse, false); err != nil {
		return nil, err
	}
	return &models.TodayVerse{
		Verse:      verse,
		VerseIndex: pos.CurrentIndex,
	}, nil
}

func (s *assignmentService) persist(ctx context.Context, userID, corpus, today string, index int64, verse *models.VerseRecord, restart bool) error {
	return s.assignments.Save(ctx, &models.DailyAssignment{
		UserID:        userID,
		Corpus:        corpus,
		Date:          today,
		VerseID:       verse.ID,
		VerseIndex:    index,
		SectionNumber: verse.SectionNumber,
		SectionName:   verse.SectionName,
		Chapter:       verse.Chapter,
		IsRead:        false,
		IsRestart:     restart,
	})
}

// fallback is never persisted: it carries no position, so the next
// successful request starts over from the real state.
func (s *assignmentService) fallback(ctx context.Context, corpus string) (*models.TodayVerse, error) {
	verse, err := s.verses.Random(ctx, corpus)
	if err != nil {
		return nil, err
	}
	if verse == nil {
		return nil, ErrOutOfRange
	}
	verse.Normalize()
	return &models.TodayVerse{
		Verse:      verse,
		IsFallback: true,
	}, nil
}

// MarkTodayRead flips today's assignment to read (authoritative write)
// and then appends the read event and freshens the position display
// fields. The second phase is best-effort: its failure is logged, never
// raised, because it must not block the user-visible "marked as read".
func (s *assignmentService) MarkTodayRead(ctx context.Context, userID, corpus, verseID string) error {
	today := s.now().Local().Format(models.DayFormat)

	assignment, err := s.assignments.Get(ctx, userID, corpus, today)
	if err != nil {
		return err
	}
	if assignment == nil {
		return ErrNoAssignment
	}

	if err := s.assignments.MarkRead(ctx, userID, corpus, today); err != nil {
		return err
	}

	verse := s.resolveAssigned(ctx, assignment)
	if verseID != "" {
		verse.ID = verseID
	}
	if err := s.progress.MarkRead(ctx, userID, corpus, verse); err != nil {
		s.logger.Warn("read_event_write_failed",
			"user_id", userID,
			"corpus", corpus,
			"verse_id", verse.ID,
			"error", err,
		)
	}
	return nil
}

// resolveAssigned fetches the bound verse record, falling back to a
// record rebuilt from the assignment's denormalized fields so a store
// hiccup cannot blank out today's verse.
func (s *assignmentService) resolveAssigned(ctx context.Context, a *models.DailyAssignment) *models.VerseRecord {
	verse, err := s.verses.ByID(ctx, a.Corpus, a.VerseID)
	if err == nil && verse != nil {
		verse.Normalize()
		return verse
	}
	if err != nil {
		s.logger.Warn("assigned_verse_lookup_failed", "verse_id", a.VerseID, "error", err)
	}
	rebuilt := &models.VerseRecord{
		ID:            a.VerseID,
		Corpus:        a.Corpus,
		SectionNumber: a.SectionNumber,
		SectionName:   a.SectionName,
		Chapter:       a.Chapter,
		VerseNumber:   1,
	}
	rebuilt.Normalize()
	return rebuilt
}
