package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/privacy-admin-api/internal/models"
)

var jurisdictionRowColumns = []string{"code", "name", "country", "region", "regulator_name", "dsar_days", "breach_hours", "is_active", "sort_order", "created_at", "updated_at"}

func TestJurisdictionRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewJurisdictionRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(jurisdictionRowColumns).
		AddRow("GDPR", "General Data Protection Regulation", "EU", "Europe", "EDPB", 30, 72, true, 1, now, now).
		AddRow("POPIA", "Protection of Personal Information Act", "ZA", "Africa", nil, 30, nil, true, 2, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT code, name, country, region, regulator_name, dsar_days, breach_hours, is_active, sort_order, created_at, updated_at FROM jurisdictions WHERE is_active = $1 ORDER BY sort_order ASC, name ASC")).
		WithArgs(true).
		WillReturnRows(rows)

	active := true
	items, err := repo.List(context.Background(), models.JurisdictionFilter{IsActive: &active})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].BreachHours)
	assert.Equal(t, 72, *items[0].BreachHours)
	assert.Nil(t, items[1].BreachHours)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJurisdictionRepositoryFindByCodeMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewJurisdictionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM jurisdictions WHERE code = $1")).
		WithArgs("XX").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByCode(context.Background(), "XX")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestJurisdictionRepositoryToggleAndReferences(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewJurisdictionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE jurisdictions SET is_active = NOT is_active")).
		WithArgs(sqlmock.AnyArg(), "GDPR").
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(false))
	active, err := repo.ToggleActive(context.Background(), "GDPR")
	require.NoError(t, err)
	assert.False(t, active)

	mock.ExpectQuery(regexp.QuoteMeta("(SELECT COUNT(*) FROM complaints WHERE jurisdiction_code = $1) AS complaints")).
		WithArgs("GDPR").
		WillReturnRows(sqlmock.NewRows([]string{"dsars", "breaches", "consents", "complaints", "officers"}).AddRow(2, 0, 1, 4, 0))
	refs, err := repo.CountReferences(context.Background(), "GDPR")
	require.NoError(t, err)
	assert.Equal(t, 4, refs.Complaints)
	assert.Equal(t, 7, refs.Total())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJurisdictionRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewJurisdictionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE jurisdictions SET code =")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "OLD", &models.Jurisdiction{Code: "NEW", Name: "New", DSARDays: 30})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
