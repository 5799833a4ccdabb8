package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
)

type fakeClock struct {
	at time.Time
}

func (c *fakeClock) Now() time.Time { return c.at }

func (c *fakeClock) Advance(d time.Duration) { c.at = c.at.Add(d) }

func cachedView(status models.EnrollmentStatus) models.StatusView {
	id := "enr-1"
	return models.StatusView{
		StudentID:    "stu-1",
		Term:         models.TermFirst,
		AcademicYear: "2025-2026",
		Status:       status,
		EnrollmentID: &id,
	}
}

func TestStatusCachePutGet(t *testing.T) {
	clock := &fakeClock{at: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)}
	cache := NewStatusCache(NewMemoryStatusStore(clock.Now), 15*time.Second, nil, nil)

	_, hit, err := cache.Get(context.Background(), "stu-1", models.TermFirst, "2025-2026")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Put(context.Background(), cachedView(models.StatusSubmitted)))

	view, hit, err := cache.Get(context.Background(), "stu-1", models.TermFirst, "2025-2026")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, models.StatusSubmitted, view.Status)
	require.NotNil(t, view.EnrollmentID)
	assert.Equal(t, "enr-1", *view.EnrollmentID)
}

func TestStatusCacheTTLExpiry(t *testing.T) {
	clock := &fakeClock{at: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)}
	cache := NewStatusCache(NewMemoryStatusStore(clock.Now), 15*time.Second, nil, nil)

	require.NoError(t, cache.Put(context.Background(), cachedView(models.StatusCleared)))

	clock.Advance(15 * time.Second)
	_, hit, err := cache.Get(context.Background(), "stu-1", models.TermFirst, "2025-2026")
	require.NoError(t, err)
	assert.True(t, hit)

	clock.Advance(time.Second)
	_, hit, err = cache.Get(context.Background(), "stu-1", models.TermFirst, "2025-2026")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestStatusCachePutOverwrites(t *testing.T) {
	clock := &fakeClock{at: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)}
	cache := NewStatusCache(NewMemoryStatusStore(clock.Now), time.Minute, nil, nil)

	require.NoError(t, cache.Put(context.Background(), cachedView(models.StatusCleared)))
	require.NoError(t, cache.Put(context.Background(), cachedView(models.StatusSubmitted)))

	view, hit, err := cache.Get(context.Background(), "stu-1", models.TermFirst, "2025-2026")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, models.StatusSubmitted, view.Status)
}

func TestStatusCacheInvalidate(t *testing.T) {
	clock := &fakeClock{at: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)}
	cache := NewStatusCache(NewMemoryStatusStore(clock.Now), time.Minute, nil, nil)

	require.NoError(t, cache.Put(context.Background(), cachedView(models.StatusConfirmed)))
	require.NoError(t, cache.Invalidate(context.Background(), "stu-1", models.TermFirst, "2025-2026"))

	_, hit, err := cache.Get(context.Background(), "stu-1", models.TermFirst, "2025-2026")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestStatusCacheDisabledWithoutStore(t *testing.T) {
	cache := NewStatusCache(nil, time.Minute, nil, nil)
	assert.False(t, cache.Enabled())

	require.NoError(t, cache.Put(context.Background(), cachedView(models.StatusCleared)))
	_, hit, err := cache.Get(context.Background(), "stu-1", models.TermFirst, "2025-2026")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestStatusCacheKeysAreTermScoped(t *testing.T) {
	clock := &fakeClock{at: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)}
	cache := NewStatusCache(NewMemoryStatusStore(clock.Now), time.Minute, nil, nil)

	require.NoError(t, cache.Put(context.Background(), cachedView(models.StatusSubmitted)))

	_, hit, err := cache.Get(context.Background(), "stu-1", models.TermSecond, "2025-2026")
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = cache.Get(context.Background(), "stu-1", models.TermFirst, "2024-2025")
	require.NoError(t, err)
	assert.False(t, hit)
}
