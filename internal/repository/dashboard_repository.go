package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/privacy-admin-api/internal/models"
)

// DashboardRepository aggregates register counts.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Summary counts open and overdue work across the registers as of now.
func (r *DashboardRepository) Summary(ctx context.Context, now time.Time) (*models.DashboardSummary, error) {
	const query = `SELECT
    (SELECT COUNT(*) FROM dsars WHERE status NOT IN ('completed','rejected','withdrawn')) AS open_dsars,
    (SELECT COUNT(*) FROM dsars WHERE status NOT IN ('completed','rejected','withdrawn') AND due_date < $1) AS overdue_dsars,
    (SELECT COUNT(*) FROM breaches WHERE status <> 'closed') AS open_breaches,
    (SELECT COUNT(*) FROM breaches WHERE status <> 'closed' AND regulator_notified = FALSE AND notification_deadline < $1) AS breaches_past_deadline,
    (SELECT COUNT(*) FROM consent_records WHERE status = 'active') AS active_consents,
    (SELECT COUNT(*) FROM consent_records WHERE status = 'withdrawn') AS withdrawn_consents,
    (SELECT COUNT(*) FROM complaints WHERE status <> 'closed') AS open_complaints,
    (SELECT COUNT(*) FROM ropa_activities WHERE status = 'approved' AND next_review_date < $1) AS ropa_reviews_due,
    (SELECT COUNT(*) FROM jurisdictions WHERE is_active) AS active_jurisdictions,
    (SELECT COUNT(*) FROM privacy_officers WHERE is_active) AS active_privacy_officers`
	var summary models.DashboardSummary
	if err := r.db.GetContext(ctx, &summary, query, now); err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}
	summary.GeneratedAt = now
	return &summary, nil
}
