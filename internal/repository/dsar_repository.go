package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/privacy-admin-api/internal/models"
)

const dsarColumns = `id, reference_number, request_type, requestor_name, requestor_email, jurisdiction_code, received_date,
due_date, status, assigned_officer_id, description, response_note, completed_date, overdue_alerted_at, version, created_at, updated_at`

var dsarSorts = map[string]string{
	"received_date":    "received_date",
	"due_date":         "due_date",
	"status":           "status",
	"reference_number": "reference_number",
	"created_at":       "created_at",
}

// DSARRepository persists data subject access requests.
type DSARRepository struct {
	db *sqlx.DB
}

// NewDSARRepository constructs the repository.
func NewDSARRepository(db *sqlx.DB) *DSARRepository {
	return &DSARRepository{db: db}
}

func (r *DSARRepository) where(filter models.DSARFilter) *whereBuilder {
	w := &whereBuilder{}
	w.in("status", stringsOf(filter.Status))
	if filter.RequestType != "" {
		w.add("request_type = $%d", filter.RequestType)
	}
	if filter.JurisdictionCode != "" {
		w.add("jurisdiction_code = $%d", filter.JurisdictionCode)
	}
	if filter.AssignedOfficerID != "" {
		w.add("assigned_officer_id = $%d", filter.AssignedOfficerID)
	}
	if filter.OverdueAt != nil {
		w.add("due_date < $%d", *filter.OverdueAt)
		w.addRaw("status NOT IN ('completed','rejected','withdrawn')")
	}
	w.search(filter.Search, "reference_number", "requestor_name", "requestor_email")
	return w
}

// List returns DSARs matching the filter along with the total count.
func (r *DSARRepository) List(ctx context.Context, filter models.DSARFilter) ([]models.DSAR, int, error) {
	w := r.where(filter)
	query := "SELECT " + dsarColumns + " FROM dsars" + w.clause() + orderAndPage(filter.PageRequest, dsarSorts, "received_date")
	var items []models.DSAR
	if err := r.db.SelectContext(ctx, &items, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("list dsars: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM dsars"+w.clause(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("count dsars: %w", err)
	}
	return items, total, nil
}

// ListAll returns every DSAR matching the filter without paging, for exports.
func (r *DSARRepository) ListAll(ctx context.Context, filter models.DSARFilter) ([]models.DSAR, error) {
	w := r.where(filter)
	query := "SELECT " + dsarColumns + " FROM dsars" + w.clause() + " ORDER BY received_date ASC"
	var items []models.DSAR
	if err := r.db.SelectContext(ctx, &items, query, w.args...); err != nil {
		return nil, fmt.Errorf("list all dsars: %w", err)
	}
	return items, nil
}

// FindByID fetches a DSAR by identifier.
func (r *DSARRepository) FindByID(ctx context.Context, id string) (*models.DSAR, error) {
	var item models.DSAR
	if err := r.db.GetContext(ctx, &item, "SELECT "+dsarColumns+" FROM dsars WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a DSAR.
func (r *DSARRepository) Create(ctx context.Context, exec sqlx.ExtContext, item *models.DSAR) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	item.Version = 1
	const query = `INSERT INTO dsars (id, reference_number, request_type, requestor_name, requestor_email, jurisdiction_code,
received_date, due_date, status, assigned_officer_id, description, version, created_at, updated_at)
VALUES (:id, :reference_number, :request_type, :requestor_name, :requestor_email, :jurisdiction_code,
:received_date, :due_date, :status, :assigned_officer_id, :description, :version, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, execOr(r.db, exec), query, item); err != nil {
		return fmt.Errorf("create dsar: %w", err)
	}
	return nil
}

// Update rewrites the editable fields when the stored version still matches.
func (r *DSARRepository) Update(ctx context.Context, exec sqlx.ExtContext, item *models.DSAR) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE dsars SET request_type = :request_type, requestor_name = :requestor_name,
requestor_email = :requestor_email, jurisdiction_code = :jurisdiction_code, received_date = :received_date,
due_date = :due_date, assigned_officer_id = :assigned_officer_id, description = :description,
version = version + 1, updated_at = :updated_at
WHERE id = :id AND version = :version`
	result, err := sqlx.NamedExecContext(ctx, execOr(r.db, exec), query, item)
	if err != nil {
		return fmt.Errorf("update dsar: %w", err)
	}
	if err := requireAffected(result, "dsars"); err != nil {
		return err
	}
	item.Version++
	return nil
}

// UpdateStatus applies a guarded status transition.
func (r *DSARRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, update StatusUpdate) error {
	return updateStatus(ctx, execOr(r.db, exec), "dsars", update)
}

// ListOverdueUnalerted returns open DSARs past due that have not triggered a reminder.
func (r *DSARRepository) ListOverdueUnalerted(ctx context.Context, now time.Time, limit int) ([]models.DSAR, error) {
	query := "SELECT " + dsarColumns + ` FROM dsars
WHERE due_date < $1 AND status NOT IN ('completed','rejected','withdrawn') AND overdue_alerted_at IS NULL
ORDER BY due_date ASC LIMIT $2`
	var items []models.DSAR
	if err := r.db.SelectContext(ctx, &items, query, now, limit); err != nil {
		return nil, fmt.Errorf("list overdue dsars: %w", err)
	}
	return items, nil
}

// MarkOverdueAlerted stamps the reminder time once; a second stamp reports sql.ErrNoRows.
func (r *DSARRepository) MarkOverdueAlerted(ctx context.Context, exec sqlx.ExtContext, id string, at time.Time) error {
	const query = `UPDATE dsars SET overdue_alerted_at = $1 WHERE id = $2 AND overdue_alerted_at IS NULL`
	result, err := execOr(r.db, exec).ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("mark dsar overdue alerted: %w", err)
	}
	return requireAffected(result, "dsars")
}

// CountByOfficer counts DSARs assigned to an officer.
func (r *DSARRepository) CountByOfficer(ctx context.Context, officerID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM dsars WHERE assigned_officer_id = $1", officerID); err != nil {
		return 0, fmt.Errorf("count officer dsars: %w", err)
	}
	return total, nil
}
