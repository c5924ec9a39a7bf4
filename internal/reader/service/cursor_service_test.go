package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"versehub/internal/reader/models"
)

func TestCursorService_ByIndex(t *testing.T) {
	repo := newFakeVerseRepo()
	repo.seedCorpus("bible", 250, 10)
	svc := NewCursorService(repo, 100, 100)
	ctx := context.Background()

	t.Run("FirstVerse", func(t *testing.T) {
		v, err := svc.ByIndex(ctx, "bible", 0)
		require.NoError(t, err)
		assert.Equal(t, "bible-0", v.ID)
	})

	t.Run("CrossesBatchBoundary", func(t *testing.T) {
		// Index 237 needs three 100-record batches.
		repo.pageCalls = 0
		v, err := svc.ByIndex(ctx, "bible", 237)
		require.NoError(t, err)
		assert.Equal(t, "bible-237", v.ID)
		assert.Equal(t, 3, repo.pageCalls)
	})

	t.Run("LastVerse", func(t *testing.T) {
		v, err := svc.ByIndex(ctx, "bible", 249)
		require.NoError(t, err)
		assert.Equal(t, "bible-249", v.ID)
	})

	t.Run("PastEnd", func(t *testing.T) {
		_, err := svc.ByIndex(ctx, "bible", 250)
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("NegativeIndex", func(t *testing.T) {
		_, err := svc.ByIndex(ctx, "bible", -1)
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("EmptyCorpus", func(t *testing.T) {
		_, err := svc.ByIndex(ctx, "empty", 0)
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("Idempotent", func(t *testing.T) {
		a, err := svc.ByIndex(ctx, "bible", 42)
		require.NoError(t, err)
		b, err := svc.ByIndex(ctx, "bible", 42)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestCursorService_SuccessorPredecessor(t *testing.T) {
	repo := newFakeVerseRepo()
	repo.seedCorpus("bible", 50, 5)
	svc := NewCursorService(repo, 10, 100)
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		// predecessor(then successor) of the verse at i returns the
		// verse at i, for every interior index.
		for i := int64(1); i < 49; i++ {
			v, err := svc.ByIndex(ctx, "bible", i)
			require.NoError(t, err)

			prev, err := svc.Predecessor(ctx, v)
			require.NoError(t, err)
			require.NotNil(t, prev, "index %d should have a predecessor", i)

			back, err := svc.Successor(ctx, prev)
			require.NoError(t, err)
			require.NotNil(t, back)
			assert.Equal(t, v.ID, back.ID)
		}
	})

	t.Run("NoPredecessorAtStart", func(t *testing.T) {
		first, err := svc.ByIndex(ctx, "bible", 0)
		require.NoError(t, err)
		prev, err := svc.Predecessor(ctx, first)
		require.NoError(t, err)
		assert.Nil(t, prev)
	})

	t.Run("NoSuccessorAtEnd", func(t *testing.T) {
		last, err := svc.ByIndex(ctx, "bible", 49)
		require.NoError(t, err)
		next, err := svc.Successor(ctx, last)
		require.NoError(t, err)
		assert.Nil(t, next)
	})

	t.Run("PredecessorWindowExhausted", func(t *testing.T) {
		// A window smaller than the distance to the previous record
		// reports "none" — the documented approximation.
		narrow := NewCursorService(repo, 10, 1)
		v, err := narrow.ByIndex(ctx, "bible", 30)
		require.NoError(t, err)
		prev, err := narrow.Predecessor(ctx, v)
		require.NoError(t, err)
		assert.Nil(t, prev)
	})
}

func TestCursorService_MalformedRecordDefaults(t *testing.T) {
	repo := newFakeVerseRepo()
	repo.verses["bible"] = []models.VerseRecord{
		{ID: "ok", Corpus: "bible", SectionNumber: 1, SectionName: "Genesis", Chapter: 1, VerseNumber: 1, Reference: "Genesis 1:1"},
		{ID: "bad", Corpus: "bible", SectionNumber: 2, Chapter: 1, VerseNumber: 1},
	}
	svc := NewCursorService(repo, 100, 100)

	v, err := svc.ByIndex(context.Background(), "bible", 1)
	require.NoError(t, err)
	assert.Equal(t, "bad", v.ID)
	assert.Equal(t, "Unknown", v.SectionName)
	assert.Equal(t, "Unknown 1:1", v.Reference)
}
