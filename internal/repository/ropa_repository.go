package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/privacy-admin-api/internal/models"
)

const ropaColumns = `id, name, purpose, lawful_basis, data_categories, dpia_required, dpia_completed, status,
last_reviewed_at, next_review_date, version, created_at, updated_at`

var ropaSorts = map[string]string{
	"name":             "name",
	"status":           "status",
	"next_review_date": "next_review_date",
	"created_at":       "created_at",
}

// ROPARepository persists the record of processing activities.
type ROPARepository struct {
	db *sqlx.DB
}

// NewROPARepository constructs the repository.
func NewROPARepository(db *sqlx.DB) *ROPARepository {
	return &ROPARepository{db: db}
}

// List returns processing activities matching the filter along with the total count.
func (r *ROPARepository) List(ctx context.Context, filter models.ROPAFilter) ([]models.ROPAActivity, int, error) {
	w := &whereBuilder{}
	w.in("status", stringsOf(filter.Status))
	if filter.LawfulBasis != "" {
		w.add("lawful_basis = $%d", filter.LawfulBasis)
	}
	w.search(filter.Search, "name", "purpose")

	query := "SELECT " + ropaColumns + " FROM ropa_activities" + w.clause() + orderAndPage(filter.PageRequest, ropaSorts, "created_at")
	var items []models.ROPAActivity
	if err := r.db.SelectContext(ctx, &items, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("list ropa activities: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM ropa_activities"+w.clause(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("count ropa activities: %w", err)
	}
	return items, total, nil
}

// FindByID fetches a processing activity by identifier.
func (r *ROPARepository) FindByID(ctx context.Context, id string) (*models.ROPAActivity, error) {
	var item models.ROPAActivity
	if err := r.db.GetContext(ctx, &item, "SELECT "+ropaColumns+" FROM ropa_activities WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a processing activity.
func (r *ROPARepository) Create(ctx context.Context, exec sqlx.ExtContext, item *models.ROPAActivity) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	item.Version = 1
	const query = `INSERT INTO ropa_activities (id, name, purpose, lawful_basis, data_categories, dpia_required, dpia_completed,
status, version, created_at, updated_at)
VALUES (:id, :name, :purpose, :lawful_basis, :data_categories, :dpia_required, :dpia_completed,
:status, :version, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, execOr(r.db, exec), query, item); err != nil {
		return fmt.Errorf("create ropa activity: %w", err)
	}
	return nil
}

// Update rewrites the editable fields when the stored version still matches.
func (r *ROPARepository) Update(ctx context.Context, exec sqlx.ExtContext, item *models.ROPAActivity) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE ropa_activities SET name = :name, purpose = :purpose, lawful_basis = :lawful_basis,
data_categories = :data_categories, dpia_required = :dpia_required, dpia_completed = :dpia_completed,
version = version + 1, updated_at = :updated_at WHERE id = :id AND version = :version`
	result, err := sqlx.NamedExecContext(ctx, execOr(r.db, exec), query, item)
	if err != nil {
		return fmt.Errorf("update ropa activity: %w", err)
	}
	if err := requireAffected(result, "ropa_activities"); err != nil {
		return err
	}
	item.Version++
	return nil
}

// UpdateStatus applies a guarded status transition.
func (r *ROPARepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, update StatusUpdate) error {
	return updateStatus(ctx, execOr(r.db, exec), "ropa_activities", update)
}
