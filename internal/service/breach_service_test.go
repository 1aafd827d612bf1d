package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/privacy-admin-api/internal/dto"
	"github.com/noah-isme/privacy-admin-api/internal/models"
	"github.com/noah-isme/privacy-admin-api/internal/repository"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
)

type breachRepoStub struct {
	items     map[string]*models.Breach
	created   *models.Breach
	updates   []repository.StatusUpdate
	notified  []time.Time
	notifyErr error
}

func newBreachRepoStub(items ...models.Breach) *breachRepoStub {
	s := &breachRepoStub{items: make(map[string]*models.Breach)}
	for i := range items {
		item := items[i]
		s.items[item.ID] = &item
	}
	return s
}

func (s *breachRepoStub) List(ctx context.Context, filter models.BreachFilter) ([]models.Breach, int, error) {
	all, _ := s.ListAll(ctx, filter)
	return all, len(all), nil
}

func (s *breachRepoStub) ListAll(ctx context.Context, filter models.BreachFilter) ([]models.Breach, error) {
	out := make([]models.Breach, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, *item)
	}
	return out, nil
}

func (s *breachRepoStub) FindByID(ctx context.Context, id string) (*models.Breach, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *item
	return &copy, nil
}

func (s *breachRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, item *models.Breach) error {
	item.ID = "breach-new"
	item.Version = 1
	s.created = item
	return nil
}

func (s *breachRepoStub) Update(ctx context.Context, exec sqlx.ExtContext, item *models.Breach) error {
	item.Version++
	return nil
}

func (s *breachRepoStub) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, update repository.StatusUpdate) error {
	s.updates = append(s.updates, update)
	return nil
}

func (s *breachRepoStub) MarkRegulatorNotified(ctx context.Context, exec sqlx.ExtContext, id string, version int, at time.Time) error {
	if s.notifyErr != nil {
		return s.notifyErr
	}
	s.notified = append(s.notified, at)
	return nil
}

func investigatingBreach() models.Breach {
	deadlineAt := fixedNow.Add(-2 * time.Hour)
	return models.Breach{
		ID:                   "breach-1",
		ReferenceNumber:      "BRE-20240307-ABCDEF12",
		Title:                "Misrouted payroll export",
		BreachType:           models.BreachTypeMisdirected,
		Severity:             models.SeverityHigh,
		JurisdictionCode:     "GDPR",
		DetectedDate:         fixedNow.Add(-74 * time.Hour),
		NotificationDeadline: &deadlineAt,
		Status:               models.BreachStatusInvestigating,
		Version:              3,
	}
}

func newBreachFixture(t *testing.T, items ...models.Breach) (*BreachService, *breachRepoStub, *notifierStub, sqlmock.Sqlmock) {
	db, mock := newTxProviderMock(t)
	repo := newBreachRepoStub(items...)
	notifier := &notifierStub{}
	svc := NewBreachService(repo, newRegistryStub(), nil, workflowDeps(db, notifier, &auditStub{}))
	return svc, repo, notifier, mock
}

func TestBreachServiceCreateDerivesDeadline(t *testing.T) {
	svc, repo, _, _ := newBreachFixture(t)
	detected := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	item, err := svc.Create(context.Background(), dto.CreateBreachRequest{
		Title:            "Lost laptop",
		BreachType:       "data_loss",
		Severity:         "medium",
		JurisdictionCode: "GDPR",
		DetectedDate:     &detected,
		AffectedSubjects: 120,
	}, models.Actor{})
	require.NoError(t, err)

	require.NotNil(t, repo.created)
	require.NotNil(t, item.NotificationDeadline)
	assert.WithinDuration(t, detected.Add(72*time.Hour), *item.NotificationDeadline, 0)
	assert.Equal(t, models.BreachStatusDetected, item.Status)
	assert.Regexp(t, `^BRE-20240301-[0-9A-F]{8}$`, item.ReferenceNumber)
	assert.True(t, item.NotificationOverdue)
}

func TestBreachServiceCreateWithoutWindowHasNoDeadline(t *testing.T) {
	svc, _, _, _ := newBreachFixture(t)

	item, err := svc.Create(context.Background(), dto.CreateBreachRequest{
		Title:            "Phishing",
		BreachType:       "unauthorized_access",
		Severity:         "low",
		JurisdictionCode: "CCPA",
	}, models.Actor{})
	require.NoError(t, err)
	assert.Nil(t, item.NotificationDeadline)
	assert.False(t, item.NotificationOverdue)
}

func TestBreachServiceCreateRejectsUnknownSeverity(t *testing.T) {
	svc, _, _, _ := newBreachFixture(t)

	_, err := svc.Create(context.Background(), dto.CreateBreachRequest{
		Title:            "Phishing",
		BreachType:       "unauthorized_access",
		Severity:         "catastrophic",
		JurisdictionCode: "GDPR",
	}, models.Actor{})
	requireAppError(t, err, appErrors.ErrValidation)
}

func TestBreachServiceMarkRegulatorNotifiedWritesFlagAndDateTogether(t *testing.T) {
	svc, repo, notifier, mock := newBreachFixture(t, investigatingBreach())
	mock.ExpectBegin()
	mock.ExpectCommit()

	item, err := svc.MarkRegulatorNotified(context.Background(), "breach-1", dto.NotifyRegulatorRequest{ExpectedVersion: intPtr(3)}, models.Actor{Email: "dpo@example.com"})
	require.NoError(t, err)

	assert.True(t, item.RegulatorNotified)
	require.NotNil(t, item.RegulatorNotifiedDate)
	assert.True(t, item.RegulatorNotifiedDate.Equal(fixedNow))
	assert.False(t, item.NotificationOverdue)
	assert.Equal(t, 4, item.Version)
	require.Len(t, repo.notified, 1)
	require.Len(t, notifier.recorded, 1)
	assert.Equal(t, models.NotificationRegulatorNotified, notifier.recorded[0].Type)
	assert.Len(t, notifier.dispatched, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBreachServiceMarkRegulatorNotifiedGuards(t *testing.T) {
	notified := investigatingBreach()
	notified.ID = "breach-notified"
	notified.RegulatorNotified = true
	at := fixedNow.Add(-time.Hour)
	notified.RegulatorNotifiedDate = &at

	closed := investigatingBreach()
	closed.ID = "breach-closed"
	closed.Status = models.BreachStatusClosed

	svc, repo, _, mock := newBreachFixture(t, investigatingBreach(), notified, closed)
	ctx := context.Background()

	_, err := svc.MarkRegulatorNotified(ctx, "breach-notified", dto.NotifyRegulatorRequest{}, models.Actor{})
	requireAppError(t, err, appErrors.ErrConflict)

	_, err = svc.MarkRegulatorNotified(ctx, "breach-closed", dto.NotifyRegulatorRequest{}, models.Actor{})
	requireAppError(t, err, appErrors.ErrInvalidTransition)

	_, err = svc.MarkRegulatorNotified(ctx, "breach-1", dto.NotifyRegulatorRequest{ExpectedVersion: intPtr(1)}, models.Actor{})
	requireAppError(t, err, appErrors.ErrConflict)

	future := fixedNow.Add(time.Hour)
	_, err = svc.MarkRegulatorNotified(ctx, "breach-1", dto.NotifyRegulatorRequest{NotifiedAt: &future}, models.Actor{})
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = svc.MarkRegulatorNotified(ctx, "missing", dto.NotifyRegulatorRequest{}, models.Actor{})
	requireAppError(t, err, appErrors.ErrNotFound)

	assert.Empty(t, repo.notified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBreachServiceMarkRegulatorNotifiedConcurrentWriteRollsBack(t *testing.T) {
	svc, repo, notifier, mock := newBreachFixture(t, investigatingBreach())
	repo.notifyErr = sql.ErrNoRows
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.MarkRegulatorNotified(context.Background(), "breach-1", dto.NotifyRegulatorRequest{}, models.Actor{})
	requireAppError(t, err, appErrors.ErrConflict)
	assert.Empty(t, notifier.dispatched)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBreachServiceResolveStampsResolvedDate(t *testing.T) {
	svc, repo, _, mock := newBreachFixture(t, investigatingBreach())
	mock.ExpectBegin()
	mock.ExpectCommit()

	item, err := svc.Transition(context.Background(), "breach-1", dto.TransitionRequest{
		TargetStatus:   string(models.BreachStatusResolved),
		ExpectedStatus: string(models.BreachStatusInvestigating),
	}, models.Actor{})
	require.NoError(t, err)
	require.NotNil(t, item.ResolvedDate)
	assert.True(t, item.ResolvedDate.Equal(fixedNow))
	require.Len(t, repo.updates, 1)
	assert.Equal(t, fixedNow, repo.updates[0].Set["resolved_date"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBreachServiceRejectsSkippingToClosed(t *testing.T) {
	svc, _, _, mock := newBreachFixture(t, investigatingBreach())

	_, err := svc.Transition(context.Background(), "breach-1", dto.TransitionRequest{
		TargetStatus:   string(models.BreachStatusClosed),
		ExpectedStatus: string(models.BreachStatusInvestigating),
	}, models.Actor{})
	requireAppError(t, err, appErrors.ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}
