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

func TestComplaintRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	where := "WHERE status IN ($1) AND complaint_type = $2 AND (LOWER(reference_number) LIKE $3 OR LOWER(complainant_name) LIKE $3 OR LOWER(complainant_email) LIKE $3)"
	mock.ExpectQuery(regexp.QuoteMeta("FROM complaints " + where + " ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("received", "marketing", "%ada%").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM complaints " + where)).
		WithArgs("received", "marketing", "%ada%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	items, total, err := NewComplaintRepository(db).List(context.Background(), models.ComplaintFilter{
		Status:        []models.ComplaintStatus{models.ComplaintStatusReceived},
		ComplaintType: "marketing",
		Search:        "ADA",
	})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepositoryUpdateStaleVersion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("version = version + 1, updated_at = ? WHERE id = ? AND version = ?")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	item := &models.Complaint{ID: "c-1", Version: 2}
	err := NewComplaintRepository(db).Update(context.Background(), nil, item)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Equal(t, 2, item.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsentRepositoryListBySubject(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM consent_records WHERE data_subject_id = $1 AND purpose = $2 ORDER BY purpose ASC LIMIT 50 OFFSET 50")).
		WithArgs("subj-7", "newsletter").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM consent_records WHERE data_subject_id = $1 AND purpose = $2")).
		WithArgs("subj-7", "newsletter").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(51))

	_, total, err := NewConsentRepository(db).List(context.Background(), models.ConsentFilter{
		DataSubjectID: "subj-7",
		Purpose:       "newsletter",
		PageRequest:   models.PageRequest{Page: 2, PageSize: 50, SortBy: "purpose", SortOrder: "asc"},
	})
	require.NoError(t, err)
	assert.Equal(t, 51, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestROPARepositoryApprovalStampsReviewDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	next := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	version := 4
	mock.ExpectExec(regexp.QuoteMeta("UPDATE ropa_activities SET status = ?, version = version + 1, updated_at = ?, next_review_date = ? WHERE id = ? AND status = ? AND version = ?")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewROPARepository(db).UpdateStatus(context.Background(), nil, StatusUpdate{
		ID:              "r-1",
		From:            string(models.ROPAStatusPendingReview),
		To:              string(models.ROPAStatusApproved),
		ExpectedVersion: &version,
		Set:             map[string]interface{}{"next_review_date": next},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOfficerRepositoryToggleAndDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOfficerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE privacy_officers SET is_active = NOT is_active")).
		WithArgs(sqlmock.AnyArg(), "o-1").
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(false))
	active, err := repo.ToggleActive(context.Background(), "o-1")
	require.NoError(t, err)
	assert.False(t, active)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM privacy_officers WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), sql.ErrNoRows)

	isActive := true
	mock.ExpectQuery(regexp.QuoteMeta("FROM privacy_officers WHERE is_active = $1 ORDER BY name DESC LIMIT 20 OFFSET 0")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM privacy_officers WHERE is_active = $1")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	_, _, err = repo.List(context.Background(), models.OfficerFilter{IsActive: &isActive})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
