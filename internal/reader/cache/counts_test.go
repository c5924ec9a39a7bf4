package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"versehub/internal/reader/models"
	"versehub/internal/reader/repository"
)

type stubVerseRepo struct {
	total    int64
	countErr error
}

func (s *stubVerseRepo) PageAfter(context.Context, string, *repository.Cursor, int) ([]models.VerseRecord, error) {
	return nil, nil
}

func (s *stubVerseRepo) WindowBefore(context.Context, string, int, int) ([]models.VerseRecord, error) {
	return nil, nil
}

func (s *stubVerseRepo) Count(context.Context, string) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.total, nil
}

func (s *stubVerseRepo) ByID(context.Context, string, string) (*models.VerseRecord, error) {
	return nil, nil
}

func (s *stubVerseRepo) Random(context.Context, string) (*models.VerseRecord, error) {
	return nil, nil
}

func (s *stubVerseRepo) CreateBatch(context.Context, []models.VerseRecord) error {
	return nil
}

func TestCountCache_StoreOnlyMode(t *testing.T) {
	// A nil Redis client degrades to direct store counts.
	c := NewCountCache(nil, &stubVerseRepo{total: 42}, time.Hour)

	total, err := c.Total(context.Background(), "bible")
	require.NoError(t, err)
	assert.Equal(t, int64(42), total)
}

func TestCountCache_FallbackConstantWhenStoreDown(t *testing.T) {
	c := NewCountCache(nil, &stubVerseRepo{countErr: errors.New("store unavailable")}, time.Hour)
	ctx := context.Background()

	total, err := c.Total(ctx, "bible")
	require.NoError(t, err)
	assert.Equal(t, int64(31102), total)

	total, err = c.Total(ctx, "quran")
	require.NoError(t, err)
	assert.Equal(t, int64(6236), total)
}

func TestCountCache_UnknownCorpusSurfacesStoreError(t *testing.T) {
	c := NewCountCache(nil, &stubVerseRepo{countErr: errors.New("store unavailable")}, time.Hour)

	_, err := c.Total(context.Background(), "apocrypha")
	assert.Error(t, err)
}
