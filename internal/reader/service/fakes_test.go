package service

import (
	"context"
	"fmt"
	"sort"

	"versehub/internal/reader/models"
	"versehub/internal/reader/repository"
)

// In-memory stand-ins for the store-backed repositories. They honor the
// same contracts (ordering, (nil, nil) absence, idempotent append) so
// the services can be exercised without a database.

type fakeVerseRepo struct {
	verses    map[string][]models.VerseRecord // sorted per corpus
	pageErr   error
	windowErr error
	countErr  error
	byIDErr   error
	randomErr error
	pageCalls int
}

func newFakeVerseRepo() *fakeVerseRepo {
	return &fakeVerseRepo{verses: make(map[string][]models.VerseRecord)}
}

// seedCorpus loads n verses split into sections of sectionSize chapters
// of one verse each, so ordering crosses section boundaries.
func (f *fakeVerseRepo) seedCorpus(corpus string, n, sectionSize int) {
	list := make([]models.VerseRecord, 0, n)
	for i := 0; i < n; i++ {
		section := i/sectionSize + 1
		chapter := i%sectionSize + 1
		list = append(list, models.VerseRecord{
			ID:            fmt.Sprintf("%s-%d", corpus, i),
			Corpus:        corpus,
			SectionNumber: section,
			SectionName:   fmt.Sprintf("Section %d", section),
			Chapter:       chapter,
			VerseNumber:   1,
			PrimaryText:   fmt.Sprintf("verse %d", i),
			Reference:     fmt.Sprintf("Section %d %d:1", section, chapter),
		})
	}
	f.verses[corpus] = list
}

func (f *fakeVerseRepo) PageAfter(_ context.Context, corpus string, after *repository.Cursor, limit int) ([]models.VerseRecord, error) {
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	f.pageCalls++
	var out []models.VerseRecord
	for _, v := range f.verses[corpus] {
		if after != nil {
			probe := models.VerseRecord{
				SectionNumber: after.SectionNumber,
				Chapter:       after.Chapter,
				VerseNumber:   after.VerseNumber,
			}
			if !probe.Before(&v) {
				continue
			}
		}
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeVerseRepo) WindowBefore(_ context.Context, corpus string, maxSection int, limit int) ([]models.VerseRecord, error) {
	if f.windowErr != nil {
		return nil, f.windowErr
	}
	var out []models.VerseRecord
	list := f.verses[corpus]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].SectionNumber <= maxSection {
			out = append(out, list[i])
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeVerseRepo) Count(_ context.Context, corpus string) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.verses[corpus])), nil
}

func (f *fakeVerseRepo) ByID(_ context.Context, corpus, id string) (*models.VerseRecord, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	for _, v := range f.verses[corpus] {
		if v.ID == id {
			found := v
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeVerseRepo) Random(_ context.Context, corpus string) (*models.VerseRecord, error) {
	if f.randomErr != nil {
		return nil, f.randomErr
	}
	list := f.verses[corpus]
	if len(list) == 0 {
		return nil, nil
	}
	v := list[len(list)/2]
	return &v, nil
}

func (f *fakeVerseRepo) CreateBatch(_ context.Context, verses []models.VerseRecord) error {
	for _, v := range verses {
		f.verses[v.Corpus] = append(f.verses[v.Corpus], v)
	}
	return nil
}

type fakePositionRepo struct {
	positions map[string]models.ReadingPosition
	getErr    error
	saveErr   error
	updateErr error
	saves     int
}

func newFakePositionRepo() *fakePositionRepo {
	return &fakePositionRepo{positions: make(map[string]models.ReadingPosition)}
}

func posKey(userID, corpus string) string { return userID + "|" + corpus }

func (f *fakePositionRepo) Get(_ context.Context, userID, corpus string) (*models.ReadingPosition, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	pos, ok := f.positions[posKey(userID, corpus)]
	if !ok {
		return nil, nil
	}
	copied := pos
	return &copied, nil
}

func (f *fakePositionRepo) Save(_ context.Context, pos *models.ReadingPosition) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.positions[posKey(pos.UserID, pos.Corpus)] = *pos
	return nil
}

func (f *fakePositionRepo) UpdateCachedReadCount(_ context.Context, userID, corpus string, count int64) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	pos, ok := f.positions[posKey(userID, corpus)]
	if !ok {
		return nil
	}
	pos.CachedReadCount = count
	f.positions[posKey(userID, corpus)] = pos
	return nil
}

type fakeEventRepo struct {
	events    []models.ReadEvent
	appendErr error
	countErr  error
	recentErr error
}

func (f *fakeEventRepo) Append(_ context.Context, event *models.ReadEvent) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	for _, e := range f.events {
		if e.UserID == event.UserID && e.Corpus == event.Corpus && e.VerseID == event.VerseID {
			return nil
		}
	}
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeEventRepo) Has(_ context.Context, userID, corpus, verseID string) (bool, error) {
	for _, e := range f.events {
		if e.UserID == userID && e.Corpus == corpus && e.VerseID == verseID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEventRepo) CountDistinct(_ context.Context, userID, corpus string) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	var n int64
	for _, e := range f.events {
		if e.UserID == userID && e.Corpus == corpus {
			n++
		}
	}
	return n, nil
}

func (f *fakeEventRepo) Recent(_ context.Context, userID, corpus string, limit int) ([]models.ReadEvent, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	var out []models.ReadEvent
	for _, e := range f.events {
		if e.UserID == userID && e.Corpus == corpus {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReadAt.After(out[j].ReadAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeAssignmentRepo struct {
	assignments map[string]models.DailyAssignment
	getErr      error
	saveErr     error
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[string]models.DailyAssignment)}
}

func assignKey(userID, corpus, date string) string { return userID + "|" + corpus + "|" + date }

func (f *fakeAssignmentRepo) Get(_ context.Context, userID, corpus, date string) (*models.DailyAssignment, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.assignments[assignKey(userID, corpus, date)]
	if !ok {
		return nil, nil
	}
	copied := a
	return &copied, nil
}

func (f *fakeAssignmentRepo) Latest(_ context.Context, userID, corpus string) (*models.DailyAssignment, error) {
	var latest *models.DailyAssignment
	for k := range f.assignments {
		a := f.assignments[k]
		if a.UserID != userID || a.Corpus != corpus {
			continue
		}
		if latest == nil || a.Date > latest.Date {
			copied := a
			latest = &copied
		}
	}
	return latest, nil
}

func (f *fakeAssignmentRepo) Save(_ context.Context, a *models.DailyAssignment) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.assignments[assignKey(a.UserID, a.Corpus, a.Date)] = *a
	return nil
}

func (f *fakeAssignmentRepo) MarkRead(_ context.Context, userID, corpus, date string) error {
	a, ok := f.assignments[assignKey(userID, corpus, date)]
	if !ok {
		return fmt.Errorf("assignment not found")
	}
	a.IsRead = true
	f.assignments[assignKey(userID, corpus, date)] = a
	return nil
}

// fakeCounts serves fixed totals without Redis or a store.
type fakeCounts struct {
	totals map[string]int64
	err    error
}

func (f *fakeCounts) Total(_ context.Context, corpus string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.totals[corpus], nil
}
