package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/privacy-admin-api/internal/models"
)

const breachColumns = `id, reference_number, title, breach_type, severity, jurisdiction_code, detected_date, notification_deadline,
affected_subjects, description, status, regulator_notified, regulator_notified_date, resolved_date, deadline_alerted_at,
version, created_at, updated_at`

var breachSorts = map[string]string{
	"detected_date":         "detected_date",
	"notification_deadline": "notification_deadline",
	"severity":              "severity",
	"status":                "status",
	"created_at":            "created_at",
}

// BreachRepository persists personal data breaches.
type BreachRepository struct {
	db *sqlx.DB
}

// NewBreachRepository constructs the repository.
func NewBreachRepository(db *sqlx.DB) *BreachRepository {
	return &BreachRepository{db: db}
}

func (r *BreachRepository) where(filter models.BreachFilter) *whereBuilder {
	w := &whereBuilder{}
	w.in("status", stringsOf(filter.Status))
	if filter.Severity != "" {
		w.add("severity = $%d", filter.Severity)
	}
	if filter.JurisdictionCode != "" {
		w.add("jurisdiction_code = $%d", filter.JurisdictionCode)
	}
	if filter.RegulatorNotified != nil {
		w.add("regulator_notified = $%d", *filter.RegulatorNotified)
	}
	w.search(filter.Search, "reference_number", "title")
	return w
}

// List returns breaches matching the filter along with the total count.
func (r *BreachRepository) List(ctx context.Context, filter models.BreachFilter) ([]models.Breach, int, error) {
	w := r.where(filter)
	query := "SELECT " + breachColumns + " FROM breaches" + w.clause() + orderAndPage(filter.PageRequest, breachSorts, "detected_date")
	var items []models.Breach
	if err := r.db.SelectContext(ctx, &items, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("list breaches: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM breaches"+w.clause(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("count breaches: %w", err)
	}
	return items, total, nil
}

// ListAll returns every breach matching the filter without paging.
func (r *BreachRepository) ListAll(ctx context.Context, filter models.BreachFilter) ([]models.Breach, error) {
	w := r.where(filter)
	var items []models.Breach
	query := "SELECT " + breachColumns + " FROM breaches" + w.clause() + " ORDER BY detected_date ASC"
	if err := r.db.SelectContext(ctx, &items, query, w.args...); err != nil {
		return nil, fmt.Errorf("list all breaches: %w", err)
	}
	return items, nil
}

// FindByID fetches a breach by identifier.
func (r *BreachRepository) FindByID(ctx context.Context, id string) (*models.Breach, error) {
	var item models.Breach
	if err := r.db.GetContext(ctx, &item, "SELECT "+breachColumns+" FROM breaches WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a breach.
func (r *BreachRepository) Create(ctx context.Context, exec sqlx.ExtContext, item *models.Breach) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	item.Version = 1
	const query = `INSERT INTO breaches (id, reference_number, title, breach_type, severity, jurisdiction_code, detected_date,
notification_deadline, affected_subjects, description, status, regulator_notified, version, created_at, updated_at)
VALUES (:id, :reference_number, :title, :breach_type, :severity, :jurisdiction_code, :detected_date,
:notification_deadline, :affected_subjects, :description, :status, :regulator_notified, :version, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, execOr(r.db, exec), query, item); err != nil {
		return fmt.Errorf("create breach: %w", err)
	}
	return nil
}

// Update rewrites the editable fields when the stored version still matches.
func (r *BreachRepository) Update(ctx context.Context, exec sqlx.ExtContext, item *models.Breach) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE breaches SET title = :title, breach_type = :breach_type, severity = :severity,
jurisdiction_code = :jurisdiction_code, detected_date = :detected_date, notification_deadline = :notification_deadline,
affected_subjects = :affected_subjects, description = :description, version = version + 1, updated_at = :updated_at
WHERE id = :id AND version = :version`
	result, err := sqlx.NamedExecContext(ctx, execOr(r.db, exec), query, item)
	if err != nil {
		return fmt.Errorf("update breach: %w", err)
	}
	if err := requireAffected(result, "breaches"); err != nil {
		return err
	}
	item.Version++
	return nil
}

// UpdateStatus applies a guarded status transition.
func (r *BreachRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, update StatusUpdate) error {
	return updateStatus(ctx, execOr(r.db, exec), "breaches", update)
}

// MarkRegulatorNotified sets the notified flag and date together. It only
// matches breaches not yet notified and still at the expected version.
func (r *BreachRepository) MarkRegulatorNotified(ctx context.Context, exec sqlx.ExtContext, id string, version int, at time.Time) error {
	const query = `UPDATE breaches SET regulator_notified = TRUE, regulator_notified_date = $1, version = version + 1, updated_at = $1
WHERE id = $2 AND version = $3 AND regulator_notified = FALSE`
	result, err := execOr(r.db, exec).ExecContext(ctx, query, at, id, version)
	if err != nil {
		return fmt.Errorf("mark breach regulator notified: %w", err)
	}
	return requireAffected(result, "breaches")
}

// ListDeadlinePassedUnalerted returns open, unnotified breaches past their
// regulator deadline that have not triggered a reminder.
func (r *BreachRepository) ListDeadlinePassedUnalerted(ctx context.Context, now time.Time, limit int) ([]models.Breach, error) {
	query := "SELECT " + breachColumns + ` FROM breaches
WHERE notification_deadline < $1 AND regulator_notified = FALSE AND status <> 'closed' AND deadline_alerted_at IS NULL
ORDER BY notification_deadline ASC LIMIT $2`
	var items []models.Breach
	if err := r.db.SelectContext(ctx, &items, query, now, limit); err != nil {
		return nil, fmt.Errorf("list breaches past deadline: %w", err)
	}
	return items, nil
}

// MarkDeadlineAlerted stamps the reminder time once.
func (r *BreachRepository) MarkDeadlineAlerted(ctx context.Context, exec sqlx.ExtContext, id string, at time.Time) error {
	const query = `UPDATE breaches SET deadline_alerted_at = $1 WHERE id = $2 AND deadline_alerted_at IS NULL`
	result, err := execOr(r.db, exec).ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("mark breach deadline alerted: %w", err)
	}
	return requireAffected(result, "breaches")
}
