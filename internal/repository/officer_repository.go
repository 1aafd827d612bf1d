package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/privacy-admin-api/internal/models"
)

const officerColumns = `id, name, email, phone, jurisdiction_code, registration_number, is_active, version, created_at, updated_at`

var officerSorts = map[string]string{
	"name":       "name",
	"email":      "email",
	"created_at": "created_at",
}

// OfficerRepository persists privacy officers.
type OfficerRepository struct {
	db *sqlx.DB
}

// NewOfficerRepository constructs the repository.
func NewOfficerRepository(db *sqlx.DB) *OfficerRepository {
	return &OfficerRepository{db: db}
}

// List returns officers matching filters along with total count.
func (r *OfficerRepository) List(ctx context.Context, filter models.OfficerFilter) ([]models.PrivacyOfficer, int, error) {
	w := &whereBuilder{}
	if filter.JurisdictionCode != "" {
		w.add("jurisdiction_code = $%d", filter.JurisdictionCode)
	}
	if filter.IsActive != nil {
		w.add("is_active = $%d", *filter.IsActive)
	}
	w.search(filter.Search, "name", "email", "COALESCE(registration_number, '')")

	query := "SELECT " + officerColumns + " FROM privacy_officers" + w.clause() + orderAndPage(filter.PageRequest, officerSorts, "name")
	var items []models.PrivacyOfficer
	if err := r.db.SelectContext(ctx, &items, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("list privacy officers: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM privacy_officers"+w.clause(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("count privacy officers: %w", err)
	}
	return items, total, nil
}

// FindByID fetches an officer by identifier.
func (r *OfficerRepository) FindByID(ctx context.Context, id string) (*models.PrivacyOfficer, error) {
	var item models.PrivacyOfficer
	if err := r.db.GetContext(ctx, &item, "SELECT "+officerColumns+" FROM privacy_officers WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts an officer.
func (r *OfficerRepository) Create(ctx context.Context, item *models.PrivacyOfficer) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	item.Version = 1
	const query = `INSERT INTO privacy_officers (id, name, email, phone, jurisdiction_code, registration_number, is_active, version, created_at, updated_at)
VALUES (:id, :name, :email, :phone, :jurisdiction_code, :registration_number, :is_active, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create privacy officer: %w", err)
	}
	return nil
}

// Update rewrites an officer when the stored version still matches.
func (r *OfficerRepository) Update(ctx context.Context, item *models.PrivacyOfficer) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE privacy_officers SET name = :name, email = :email, phone = :phone, jurisdiction_code = :jurisdiction_code,
registration_number = :registration_number, is_active = :is_active, version = version + 1, updated_at = :updated_at
WHERE id = :id AND version = :version`
	result, err := r.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("update privacy officer: %w", err)
	}
	if err := requireAffected(result, "privacy_officers"); err != nil {
		return err
	}
	item.Version++
	return nil
}

// ToggleActive flips is_active and returns the new value.
func (r *OfficerRepository) ToggleActive(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE privacy_officers SET is_active = NOT is_active, version = version + 1, updated_at = $1 WHERE id = $2 RETURNING is_active`
	var active bool
	if err := r.db.GetContext(ctx, &active, query, time.Now().UTC(), id); err != nil {
		return false, err
	}
	return active, nil
}

// Delete removes an officer.
func (r *OfficerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM privacy_officers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete privacy officer: %w", err)
	}
	return requireAffected(result, "privacy_officers")
}
