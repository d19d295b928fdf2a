package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCacheRepo struct{}

func (failingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("connection refused")
}

func (failingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("connection refused")
}

func (failingCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	return errors.New("connection refused")
}

func TestCacheServiceRoundTrip(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(newMapCacheRepo(), metrics, 0, nil, true)
	ctx := context.Background()

	var out map[string]int
	assert.False(t, svc.Get(ctx, "calendar:day:x", &out))

	svc.Set(ctx, "calendar:day:x", map[string]int{"a": 1}, 0)
	require.True(t, svc.Get(ctx, "calendar:day:x", &out))
	assert.Equal(t, 1, out["a"])

	require.NoError(t, svc.Invalidate(ctx, CalendarCachePattern))
	assert.False(t, svc.Get(ctx, "calendar:day:x", &out))

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(2), snap.CacheMisses)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMapCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil, false)
	ctx := context.Background()

	svc.Set(ctx, "k", "v", 0)
	assert.Empty(t, repo.items)
	var out string
	assert.False(t, svc.Get(ctx, "k", &out))
	assert.NoError(t, svc.Invalidate(ctx, "*"))

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	assert.False(t, nilSvc.Get(ctx, "k", &out))
	nilSvc.Set(ctx, "k", "v", 0)
}

func TestCacheServiceBackendFailuresAreMisses(t *testing.T) {
	svc := NewCacheService(failingCacheRepo{}, nil, time.Minute, nil, true)
	ctx := context.Background()

	var out string
	assert.False(t, svc.Get(ctx, "k", &out))
	svc.Set(ctx, "k", "v", 0)
	assert.Error(t, svc.Invalidate(ctx, "*"))
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "calendar:week:lab-a:2026-10-19", Key("calendar", "week", "lab-a", "2026-10-19"))
	assert.Equal(t, "calendar:", Key("calendar"))
}
