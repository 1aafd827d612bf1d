package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/privacy-admin-api/internal/models"
)

const jurisdictionColumns = `code, name, country, region, regulator_name, dsar_days, breach_hours, is_active, sort_order, created_at, updated_at`

// JurisdictionRepository persists jurisdiction parameters.
type JurisdictionRepository struct {
	db *sqlx.DB
}

// NewJurisdictionRepository constructs the repository.
func NewJurisdictionRepository(db *sqlx.DB) *JurisdictionRepository {
	return &JurisdictionRepository{db: db}
}

// List returns jurisdictions ordered for display.
func (r *JurisdictionRepository) List(ctx context.Context, filter models.JurisdictionFilter) ([]models.Jurisdiction, error) {
	w := &whereBuilder{}
	if filter.IsActive != nil {
		w.add("is_active = $%d", *filter.IsActive)
	}
	if filter.Country != "" {
		w.add("country = $%d", filter.Country)
	}
	w.search(filter.Search, "code", "name", "country")

	query := "SELECT " + jurisdictionColumns + " FROM jurisdictions" + w.clause() + " ORDER BY sort_order ASC, name ASC"
	var items []models.Jurisdiction
	if err := r.db.SelectContext(ctx, &items, query, w.args...); err != nil {
		return nil, fmt.Errorf("list jurisdictions: %w", err)
	}
	return items, nil
}

// FindByCode fetches a jurisdiction by its code.
func (r *JurisdictionRepository) FindByCode(ctx context.Context, code string) (*models.Jurisdiction, error) {
	query := "SELECT " + jurisdictionColumns + " FROM jurisdictions WHERE code = $1"
	var j models.Jurisdiction
	if err := r.db.GetContext(ctx, &j, query, code); err != nil {
		return nil, err
	}
	return &j, nil
}

// ExistsByCode reports whether the code is taken.
func (r *JurisdictionRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM jurisdictions WHERE code = $1 LIMIT 1", code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check jurisdiction code: %w", err)
	}
	return true, nil
}

// Create inserts a jurisdiction.
func (r *JurisdictionRepository) Create(ctx context.Context, j *models.Jurisdiction) error {
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now
	const query = `INSERT INTO jurisdictions (code, name, country, region, regulator_name, dsar_days, breach_hours, is_active, sort_order, created_at, updated_at)
VALUES (:code, :name, :country, :region, :regulator_name, :dsar_days, :breach_hours, :is_active, :sort_order, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, j); err != nil {
		return fmt.Errorf("create jurisdiction: %w", err)
	}
	return nil
}

// Update rewrites the jurisdiction stored under originalCode, which may rename it.
func (r *JurisdictionRepository) Update(ctx context.Context, originalCode string, j *models.Jurisdiction) error {
	j.UpdatedAt = time.Now().UTC()
	const query = `UPDATE jurisdictions SET code = :code, name = :name, country = :country, region = :region,
regulator_name = :regulator_name, dsar_days = :dsar_days, breach_hours = :breach_hours, is_active = :is_active,
sort_order = :sort_order, updated_at = :updated_at WHERE code = :original_code`
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"code":           j.Code,
		"name":           j.Name,
		"country":        j.Country,
		"region":         j.Region,
		"regulator_name": j.RegulatorName,
		"dsar_days":      j.DSARDays,
		"breach_hours":   j.BreachHours,
		"is_active":      j.IsActive,
		"sort_order":     j.SortOrder,
		"updated_at":     j.UpdatedAt,
		"original_code":  originalCode,
	})
	if err != nil {
		return fmt.Errorf("update jurisdiction: %w", err)
	}
	return requireAffected(result, "jurisdictions")
}

// ToggleActive flips is_active and returns the new value.
func (r *JurisdictionRepository) ToggleActive(ctx context.Context, code string) (bool, error) {
	const query = `UPDATE jurisdictions SET is_active = NOT is_active, updated_at = $1 WHERE code = $2 RETURNING is_active`
	var active bool
	if err := r.db.GetContext(ctx, &active, query, time.Now().UTC(), code); err != nil {
		return false, err
	}
	return active, nil
}

// Delete removes a jurisdiction.
func (r *JurisdictionRepository) Delete(ctx context.Context, code string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM jurisdictions WHERE code = $1", code)
	if err != nil {
		return fmt.Errorf("delete jurisdiction: %w", err)
	}
	return requireAffected(result, "jurisdictions")
}

// CountReferences counts records that still point at the jurisdiction.
func (r *JurisdictionRepository) CountReferences(ctx context.Context, code string) (models.JurisdictionReferences, error) {
	const query = `SELECT
    (SELECT COUNT(*) FROM dsars WHERE jurisdiction_code = $1) AS dsars,
    (SELECT COUNT(*) FROM breaches WHERE jurisdiction_code = $1) AS breaches,
    (SELECT COUNT(*) FROM consent_records WHERE jurisdiction_code = $1) AS consents,
    (SELECT COUNT(*) FROM complaints WHERE jurisdiction_code = $1) AS complaints,
    (SELECT COUNT(*) FROM privacy_officers WHERE jurisdiction_code = $1) AS officers`
	var refs models.JurisdictionReferences
	if err := r.db.GetContext(ctx, &refs, query, code); err != nil {
		return refs, fmt.Errorf("count jurisdiction references: %w", err)
	}
	return refs, nil
}
