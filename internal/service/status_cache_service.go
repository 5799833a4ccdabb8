package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
	appErrors "github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/errors"
)

// StatusCacheStore abstracts persistence for cached status views.
type StatusCacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// StatusCache is the short-lived read cache in front of the persisted
// enrollment status. Staleness is bounded by the TTL and by synchronous
// write-through on every state machine write.
type StatusCache struct {
	store   StatusCacheStore
	ttl     time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

// NewStatusCache constructs the cache. A nil store disables caching.
func NewStatusCache(store StatusCacheStore, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *StatusCache {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusCache{store: store, ttl: ttl, metrics: metrics, logger: logger}
}

// Enabled indicates whether caching is active.
func (c *StatusCache) Enabled() bool {
	return c != nil && c.store != nil
}

func statusCacheKey(studentID string, term models.Term, academicYear string) string {
	return fmt.Sprintf("enrollment:status:%s:%s:%s", studentID, term, academicYear)
}

// Get returns the cached view and true on a hit.
func (c *StatusCache) Get(ctx context.Context, studentID string, term models.Term, academicYear string) (*models.StatusView, bool, error) {
	if !c.Enabled() {
		return nil, false, nil
	}
	start := time.Now()
	var view models.StatusView
	err := c.store.Get(ctx, statusCacheKey(studentID, term, academicYear), &view)
	duration := time.Since(start)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordCacheOperation(false, duration)
		}
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, false, nil
		}
		c.logger.Warn("status cache get failed", zap.String("student_id", studentID), zap.Error(err))
		return nil, false, err
	}
	if c.metrics != nil {
		c.metrics.RecordCacheOperation(true, duration)
	}
	return &view, true, nil
}

// Put overwrites the cached entry for the view's key.
func (c *StatusCache) Put(ctx context.Context, view models.StatusView) error {
	if !c.Enabled() {
		return nil
	}
	start := time.Now()
	err := c.store.Set(ctx, statusCacheKey(view.StudentID, view.Term, view.AcademicYear), view, c.ttl)
	if c.metrics != nil {
		c.metrics.ObserveCacheWrite(time.Since(start))
	}
	if err != nil {
		c.logger.Warn("status cache put failed", zap.String("student_id", view.StudentID), zap.Error(err))
	}
	return err
}

// Invalidate drops the cached entry for the key.
func (c *StatusCache) Invalidate(ctx context.Context, studentID string, term models.Term, academicYear string) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.store.Delete(ctx, statusCacheKey(studentID, term, academicYear)); err != nil {
		c.logger.Warn("status cache invalidate failed", zap.String("student_id", studentID), zap.Error(err))
		return err
	}
	return nil
}
