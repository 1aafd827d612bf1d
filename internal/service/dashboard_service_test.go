package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/privacy-admin-api/internal/models"
	"github.com/noah-isme/privacy-admin-api/internal/repository"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
)

type dashboardRepoStub struct {
	calls   int
	summary models.DashboardSummary
	err     error
}

func (s *dashboardRepoStub) Summary(ctx context.Context, now time.Time) (*models.DashboardSummary, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	summary := s.summary
	summary.GeneratedAt = now
	return &summary, nil
}

func newRedisCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := repository.NewCacheRepository(client, nil)
	return NewCacheService(repo, NewMetricsService(), time.Minute, nil, true), mr
}

func TestDashboardServiceCachesSummaryUntilInvalidated(t *testing.T) {
	cache, mr := newRedisCache(t)
	repo := &dashboardRepoStub{summary: models.DashboardSummary{OpenDSARs: 4, OverdueDSARs: 1}}
	svc := NewDashboardService(repo, cache, time.Minute, nil)
	ctx := context.Background()

	first, hit, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 4, first.OpenDSARs)
	assert.True(t, mr.Exists(CacheKeyPrefix+dashboardSummaryKey))

	second, hit, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, second.OverdueDSARs)
	assert.Equal(t, 1, repo.calls)

	require.NoError(t, cache.Invalidate(ctx, dashboardCachePattern))
	_, hit, err = svc.Summary(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, repo.calls)
}

func TestDashboardServiceWithoutCache(t *testing.T) {
	repo := &dashboardRepoStub{}
	svc := NewDashboardService(repo, nil, 0, nil)

	_, hit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)

	repo.err = errors.New("connection reset")
	_, _, err = svc.Summary(context.Background())
	requireAppError(t, err, appErrors.ErrInternal)
}
