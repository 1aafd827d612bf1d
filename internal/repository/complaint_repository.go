package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/privacy-admin-api/internal/models"
)

const complaintColumns = `id, reference_number, complaint_type, complainant_name, complainant_email, jurisdiction_code,
description, status, resolution, resolved_date, version, created_at, updated_at`

var complaintSorts = map[string]string{
	"created_at":       "created_at",
	"status":           "status",
	"reference_number": "reference_number",
}

// ComplaintRepository persists privacy complaints.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository constructs the repository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// List returns complaints matching the filter along with the total count.
func (r *ComplaintRepository) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error) {
	w := &whereBuilder{}
	w.in("status", stringsOf(filter.Status))
	if filter.ComplaintType != "" {
		w.add("complaint_type = $%d", filter.ComplaintType)
	}
	w.search(filter.Search, "reference_number", "complainant_name", "complainant_email")

	query := "SELECT " + complaintColumns + " FROM complaints" + w.clause() + orderAndPage(filter.PageRequest, complaintSorts, "created_at")
	var items []models.Complaint
	if err := r.db.SelectContext(ctx, &items, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("list complaints: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM complaints"+w.clause(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("count complaints: %w", err)
	}
	return items, total, nil
}

// FindByID fetches a complaint by identifier.
func (r *ComplaintRepository) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	var item models.Complaint
	if err := r.db.GetContext(ctx, &item, "SELECT "+complaintColumns+" FROM complaints WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a complaint.
func (r *ComplaintRepository) Create(ctx context.Context, exec sqlx.ExtContext, item *models.Complaint) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	item.Version = 1
	const query = `INSERT INTO complaints (id, reference_number, complaint_type, complainant_name, complainant_email,
jurisdiction_code, description, status, version, created_at, updated_at)
VALUES (:id, :reference_number, :complaint_type, :complainant_name, :complainant_email,
:jurisdiction_code, :description, :status, :version, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, execOr(r.db, exec), query, item); err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

// Update rewrites the editable fields when the stored version still matches.
func (r *ComplaintRepository) Update(ctx context.Context, exec sqlx.ExtContext, item *models.Complaint) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE complaints SET complaint_type = :complaint_type, complainant_name = :complainant_name,
complainant_email = :complainant_email, jurisdiction_code = :jurisdiction_code, description = :description,
version = version + 1, updated_at = :updated_at WHERE id = :id AND version = :version`
	result, err := sqlx.NamedExecContext(ctx, execOr(r.db, exec), query, item)
	if err != nil {
		return fmt.Errorf("update complaint: %w", err)
	}
	if err := requireAffected(result, "complaints"); err != nil {
		return err
	}
	item.Version++
	return nil
}

// UpdateStatus applies a guarded status transition.
func (r *ComplaintRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, update StatusUpdate) error {
	return updateStatus(ctx, execOr(r.db, exec), "complaints", update)
}
