package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/privacy-admin-api/internal/models"
)

const consentColumns = `id, data_subject_id, purpose, jurisdiction_code, consent_given, consent_method, consent_date, expires_at,
status, withdrawal_date, withdrawal_reason, version, created_at, updated_at`

var consentSorts = map[string]string{
	"consent_date": "consent_date",
	"status":       "status",
	"purpose":      "purpose",
	"created_at":   "created_at",
}

// ConsentRepository persists consent records.
type ConsentRepository struct {
	db *sqlx.DB
}

// NewConsentRepository constructs the repository.
func NewConsentRepository(db *sqlx.DB) *ConsentRepository {
	return &ConsentRepository{db: db}
}

// List returns consent records matching the filter along with the total count.
func (r *ConsentRepository) List(ctx context.Context, filter models.ConsentFilter) ([]models.ConsentRecord, int, error) {
	w := &whereBuilder{}
	w.in("status", stringsOf(filter.Status))
	if filter.DataSubjectID != "" {
		w.add("data_subject_id = $%d", filter.DataSubjectID)
	}
	if filter.Purpose != "" {
		w.add("purpose = $%d", filter.Purpose)
	}
	if filter.JurisdictionCode != "" {
		w.add("jurisdiction_code = $%d", filter.JurisdictionCode)
	}

	query := "SELECT " + consentColumns + " FROM consent_records" + w.clause() + orderAndPage(filter.PageRequest, consentSorts, "consent_date")
	var items []models.ConsentRecord
	if err := r.db.SelectContext(ctx, &items, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("list consent records: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM consent_records"+w.clause(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("count consent records: %w", err)
	}
	return items, total, nil
}

// FindByID fetches a consent record by identifier.
func (r *ConsentRepository) FindByID(ctx context.Context, id string) (*models.ConsentRecord, error) {
	var item models.ConsentRecord
	if err := r.db.GetContext(ctx, &item, "SELECT "+consentColumns+" FROM consent_records WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a consent record.
func (r *ConsentRepository) Create(ctx context.Context, exec sqlx.ExtContext, item *models.ConsentRecord) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	item.Version = 1
	const query = `INSERT INTO consent_records (id, data_subject_id, purpose, jurisdiction_code, consent_given, consent_method,
consent_date, expires_at, status, version, created_at, updated_at)
VALUES (:id, :data_subject_id, :purpose, :jurisdiction_code, :consent_given, :consent_method,
:consent_date, :expires_at, :status, :version, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, execOr(r.db, exec), query, item); err != nil {
		return fmt.Errorf("create consent record: %w", err)
	}
	return nil
}

// Update rewrites the editable fields when the stored version still matches.
func (r *ConsentRepository) Update(ctx context.Context, exec sqlx.ExtContext, item *models.ConsentRecord) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE consent_records SET purpose = :purpose, jurisdiction_code = :jurisdiction_code,
consent_method = :consent_method, consent_date = :consent_date, expires_at = :expires_at,
version = version + 1, updated_at = :updated_at WHERE id = :id AND version = :version`
	result, err := sqlx.NamedExecContext(ctx, execOr(r.db, exec), query, item)
	if err != nil {
		return fmt.Errorf("update consent record: %w", err)
	}
	if err := requireAffected(result, "consent_records"); err != nil {
		return err
	}
	item.Version++
	return nil
}

// UpdateStatus applies a guarded status transition.
func (r *ConsentRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, update StatusUpdate) error {
	return updateStatus(ctx, execOr(r.db, exec), "consent_records", update)
}
