package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/privacy-admin-api/internal/models"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
)

const (
	dashboardCachePattern = "dashboard:*"
	dashboardSummaryKey   = "dashboard:summary"
)

type dashboardSummaryRepository interface {
	Summary(ctx context.Context, now time.Time) (*models.DashboardSummary, error)
}

// DashboardService composes the compliance overview.
type DashboardService struct {
	repo   dashboardSummaryRepository
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboardService constructs the service. A nil cache disables caching.
func NewDashboardService(repo dashboardSummaryRepository, cache *CacheService, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Summary returns register counts. The second value reports a cache hit.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	summary, hit, err := remember(ctx, s.cache, dashboardSummaryKey, s.ttl, func(ctx context.Context) (*models.DashboardSummary, error) {
		return s.repo.Summary(ctx, s.now())
	})
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to load dashboard summary")
	}
	if hit {
		s.logger.Debug("dashboard summary served from cache")
	}
	return summary, hit, nil
}
