package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/privacy-admin-api/internal/models"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
)

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

type auditStub struct {
	logs []*models.AuditLog
}

func (a *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

type notifierStub struct {
	recorded   []*models.Notification
	dispatched []models.Notification
	recordErr  error
	sawTx      bool
}

func (n *notifierStub) Record(ctx context.Context, exec sqlx.ExtContext, notification *models.Notification) error {
	if _, ok := exec.(*sqlx.Tx); ok {
		n.sawTx = true
	}
	if n.recordErr != nil {
		return n.recordErr
	}
	n.recorded = append(n.recorded, notification)
	return nil
}

func (n *notifierStub) Dispatch(notification models.Notification) {
	n.dispatched = append(n.dispatched, notification)
}

type cacheInvalidatorStub struct {
	patterns []string
}

func (c *cacheInvalidatorStub) Invalidate(ctx context.Context, patterns ...string) error {
	c.patterns = append(c.patterns, patterns...)
	return nil
}

type registryStub struct {
	items map[string]models.Jurisdiction
}

func newRegistryStub() *registryStub {
	hours := 72
	regulator := "Information Commissioner"
	return &registryStub{items: map[string]models.Jurisdiction{
		"GDPR":  {Code: "GDPR", Name: "EU GDPR", Country: "EU", DSARDays: 30, BreachHours: &hours, RegulatorName: &regulator, IsActive: true},
		"CCPA":  {Code: "CCPA", Name: "California CCPA", Country: "US", DSARDays: 45, IsActive: true},
		"OLDPA": {Code: "OLDPA", Name: "Retired act", Country: "XX", DSARDays: 20, IsActive: false},
	}}
}

func (r *registryStub) Get(ctx context.Context, code string) (*models.Jurisdiction, error) {
	j, ok := r.items[code]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "jurisdiction not found")
	}
	return &j, nil
}

func (r *registryStub) RequireActive(ctx context.Context, code string) (*models.Jurisdiction, error) {
	j, err := r.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if !j.IsActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "jurisdiction is inactive")
	}
	return j, nil
}

func workflowDeps(db txProvider, notifier *notifierStub, audit *auditStub) WorkflowDeps {
	deps := WorkflowDeps{DB: db, Audit: audit, Clock: fixedClock}
	if notifier != nil {
		deps.Notifier = notifier
	}
	return deps
}

func requireAppError(t *testing.T, err error, expected *appErrors.Error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, expected.Code, appErrors.FromError(err).Code, err.Error())
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
