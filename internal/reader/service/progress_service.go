package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"versehub/internal/reader/models"
	"versehub/internal/reader/repository"
)

// DefaultStreakWindow is how many recent read events the streak
// calculator fetches. Thirty events cover at least thirty days, which
// is sufficient for both the current and the longest streak.
const DefaultStreakWindow = 30

// ProgressService derives read totals and calendar-day streaks from the
// append-only read-event log.
type ProgressService interface {
	// MarkRead appends a read event for the verse, exactly once per
	// user+verse, and freshens the position's descriptive fields.
	MarkRead(ctx context.Context, userID, corpus string, verse *models.VerseRecord) error
	HasRead(ctx context.Context, userID, corpus, verseID string) (bool, error)
	Progress(ctx context.Context, userID, corpus string) (*models.ProgressSummary, error)
}

type progressService struct {
	events    repository.ReadEventRepository
	positions repository.PositionRepository
	counts    CountProvider
	window    int
	logger    *slog.Logger
	now       func() time.Time
}

func NewProgressService(events repository.ReadEventRepository, positions repository.PositionRepository, counts CountProvider, window int) ProgressService {
	if window <= 0 {
		window = DefaultStreakWindow
	}
	return &progressService{
		events:    events,
		positions: positions,
		counts:    counts,
		window:    window,
		logger:    slog.Default(),
		now:       time.Now,
	}
}

func (s *progressService) MarkRead(ctx context.Context, userID, corpus string, verse *models.VerseRecord) error {
	event := &models.ReadEvent{
		UserID:  userID,
		Corpus:  corpus,
		VerseID: verse.ID,
		ReadAt:  s.now(),
	}
	if err := s.events.Append(ctx, event); err != nil {
		return err
	}

	// Freshen the denormalized display fields if navigation left them
	// behind. Best-effort: the event is already durable.
	pos, err := s.positions.Get(ctx, userID, corpus)
	if err != nil || pos == nil {
		if err != nil {
			s.logger.Warn("position_freshen_read_failed", "user_id", userID, "error", err)
		}
		return nil
	}
	if pos.SectionNumber != verse.SectionNumber || pos.Chapter != verse.Chapter || pos.SectionName != verse.SectionName {
		pos.SectionNumber = verse.SectionNumber
		pos.SectionName = verse.SectionName
		pos.Chapter = verse.Chapter
		pos.LastVisitedAt = s.now()
		if err := s.positions.Save(ctx, pos); err != nil {
			s.logger.Warn("position_freshen_write_failed", "user_id", userID, "error", err)
		}
	}
	return nil
}

func (s *progressService) HasRead(ctx context.Context, userID, corpus, verseID string) (bool, error) {
	return s.events.Has(ctx, userID, corpus, verseID)
}

func (s *progressService) Progress(ctx context.Context, userID, corpus string) (*models.ProgressSummary, error) {
	distinct, err := s.events.CountDistinct(ctx, userID, corpus)
	if err != nil {
		return nil, err
	}

	pos, err := s.positions.Get(ctx, userID, corpus)
	if err != nil {
		// The cached counter is a secondary source; losing it does not
		// block the summary.
		s.logger.Warn("progress_position_read_failed", "user_id", userID, "error", err)
		pos = nil
	}

	readCount := distinct
	if distinct == 0 && pos != nil {
		// Backward compatibility: users whose reads predate the event
		// log only have the cached counter.
		readCount = pos.CachedReadCount
	}
	if distinct > 0 && pos != nil && pos.CachedReadCount != distinct {
		// Self-healing reconciliation, best-effort by design.
		if err := s.positions.UpdateCachedReadCount(ctx, userID, corpus, distinct); err != nil {
			s.logger.Warn("read_count_reconcile_failed",
				"user_id", userID,
				"corpus", corpus,
				"cached", pos.CachedReadCount,
				"actual", distinct,
				"error", err,
			)
		}
	}

	total, err := s.counts.Total(ctx, corpus)
	if err != nil {
		return nil, err
	}

	recent, err := s.events.Recent(ctx, userID, corpus, s.window)
	if err != nil {
		return nil, err
	}

	summary := &models.ProgressSummary{
		ReadCount:  readCount,
		TotalCount: total,
	}
	if len(recent) > 0 {
		summary.LastReadAt = recent[0].ReadAt
	}
	summary.CurrentStreak, summary.LongestStreak = s.streaks(recent)
	return summary, nil
}

// streaks groups the recent events by local calendar day and derives
// both streaks from that day set. The current streak walks backward
// from today; a day with no event yet today does not break it — the
// streak is still in progress, so the walk may start at yesterday.
func (s *progressService) streaks(events []models.ReadEvent) (current, longest int) {
	if len(events) == 0 {
		return 0, 0
	}

	days := make(map[string]bool, len(events))
	for _, e := range events {
		days[e.ReadAt.Local().Format(models.DayFormat)] = true
	}

	today := dayOf(s.now())
	cursor := today
	if !days[dayKey(cursor)] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	for days[dayKey(cursor)] {
		current++
		cursor = cursor.AddDate(0, 0, -1)
	}

	// Longest run of exactly-one-day deltas over the chronological set.
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	run := 0
	var prev time.Time
	for i, k := range keys {
		d, err := time.ParseInLocation(models.DayFormat, k, time.Local)
		if err != nil {
			continue
		}
		if i > 0 && d.Equal(prev.AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = d
	}
	return current, longest
}

// dayOf truncates a timestamp to its local calendar day.
func dayOf(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
}

func dayKey(t time.Time) string {
	return t.Format(models.DayFormat)
}
