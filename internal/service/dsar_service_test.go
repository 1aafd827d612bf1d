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

type dsarRepoStub struct {
	items   map[string]*models.DSAR
	created *models.DSAR
	updated *models.DSAR
	updates []repository.StatusUpdate
}

func newDSARRepoStub(items ...models.DSAR) *dsarRepoStub {
	s := &dsarRepoStub{items: make(map[string]*models.DSAR)}
	for i := range items {
		item := items[i]
		s.items[item.ID] = &item
	}
	return s
}

func (s *dsarRepoStub) List(ctx context.Context, filter models.DSARFilter) ([]models.DSAR, int, error) {
	all, _ := s.ListAll(ctx, filter)
	return all, len(all), nil
}

func (s *dsarRepoStub) ListAll(ctx context.Context, filter models.DSARFilter) ([]models.DSAR, error) {
	out := make([]models.DSAR, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, *item)
	}
	return out, nil
}

func (s *dsarRepoStub) FindByID(ctx context.Context, id string) (*models.DSAR, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *item
	return &copy, nil
}

func (s *dsarRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, item *models.DSAR) error {
	item.ID = "dsar-new"
	item.Version = 1
	s.created = item
	return nil
}

func (s *dsarRepoStub) Update(ctx context.Context, exec sqlx.ExtContext, item *models.DSAR) error {
	item.Version++
	s.updated = item
	return nil
}

func (s *dsarRepoStub) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, update repository.StatusUpdate) error {
	s.updates = append(s.updates, update)
	return nil
}

type officerLookupStub map[string]models.PrivacyOfficer

func (s officerLookupStub) FindByID(ctx context.Context, id string) (*models.PrivacyOfficer, error) {
	o, ok := s[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &o, nil
}

const officerID = "6f1c0c43-6b9f-4f7a-9d36-0f0b1e1f0a11"

func inProgressDSAR() models.DSAR {
	received := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	due := received.AddDate(0, 0, 30)
	assigned := officerID
	return models.DSAR{
		ID:                "dsar-1",
		ReferenceNumber:   "DSAR-20240101-0A1B2C3D",
		RequestType:       models.DSARTypeAccess,
		RequestorName:     "Ada Lovelace",
		RequestorEmail:    "ada@example.com",
		JurisdictionCode:  "GDPR",
		ReceivedDate:      received,
		DueDate:           &due,
		AssignedOfficerID: &assigned,
		Status:            models.DSARStatusInProgress,
		Version:           5,
	}
}

func newDSARFixture(t *testing.T, opts ...DSARServiceOption) (*DSARService, *dsarRepoStub, *notifierStub, sqlmock.Sqlmock) {
	db, mock := newTxProviderMock(t)
	mock.MatchExpectationsInOrder(true)
	repo := newDSARRepoStub(inProgressDSAR())
	notifier := &notifierStub{}
	officers := officerLookupStub{officerID: {ID: officerID, Email: "officer@example.com", IsActive: true}}
	svc := NewDSARService(repo, newRegistryStub(), officers, nil, workflowDeps(db, notifier, &auditStub{}), opts...)
	t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })
	return svc, repo, notifier, mock
}

func TestDSARServiceCreateComputesDueDate(t *testing.T) {
	svc, repo, _, _ := newDSARFixture(t)
	received := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	item, err := svc.Create(context.Background(), dto.CreateDSARRequest{
		RequestType:      "access",
		RequestorName:    "Grace Hopper",
		RequestorEmail:   "grace@example.com",
		JurisdictionCode: "GDPR",
		ReceivedDate:     &received,
	}, models.Actor{})
	require.NoError(t, err)

	require.NotNil(t, repo.created)
	require.NotNil(t, item.DueDate)
	assert.Equal(t, "2024-01-31", item.DueDate.Format("2006-01-02"))
	assert.Equal(t, models.DSARStatusReceived, item.Status)
	assert.Regexp(t, `^DSAR-20240101-[0-9A-F]{8}$`, item.ReferenceNumber)
	assert.True(t, item.IsOverdue)
	assert.Equal(t, "Received", item.StatusDisplay.Label)
}

func TestDSARServiceCreateValidation(t *testing.T) {
	svc, _, _, _ := newDSARFixture(t)
	ctx := context.Background()
	base := dto.CreateDSARRequest{
		RequestType:      "erasure",
		RequestorName:    "Grace Hopper",
		RequestorEmail:   "grace@example.com",
		JurisdictionCode: "GDPR",
	}

	bad := base
	bad.RequestType = "telepathy"
	_, err := svc.Create(ctx, bad, models.Actor{})
	requireAppError(t, err, appErrors.ErrValidation)

	unknown := base
	unknown.JurisdictionCode = "MARS"
	_, err = svc.Create(ctx, unknown, models.Actor{})
	requireAppError(t, err, appErrors.ErrNotFound)

	inactive := base
	inactive.JurisdictionCode = "OLDPA"
	_, err = svc.Create(ctx, inactive, models.Actor{})
	requireAppError(t, err, appErrors.ErrValidation)

	missingOfficer := base
	missingOfficer.AssignedOfficerID = strPtr("0e0b1e1f-6b9f-4f7a-9d36-6f1c0c436b9f")
	_, err = svc.Create(ctx, missingOfficer, models.Actor{})
	requireAppError(t, err, appErrors.ErrValidation)

	email := base
	email.RequestorEmail = "not-an-email"
	_, err = svc.Create(ctx, email, models.Actor{})
	requireAppError(t, err, appErrors.ErrValidation)
	assert.Equal(t, []appErrors.FieldError{{Field: "requestor_email", Rule: "email"}}, appErrors.FromError(err).Details)
}

func TestDSARServiceCompletionRunsValidatorAndStampsDate(t *testing.T) {
	svc, repo, notifier, mock := newDSARFixture(t, WithCompletionValidators(map[models.DSARRequestType]DSARCompletionValidator{
		models.DSARTypeAccess: RequireResponseNote(),
	}))
	ctx := context.Background()
	req := dto.TransitionRequest{
		TargetStatus:   string(models.DSARStatusCompleted),
		ExpectedStatus: string(models.DSARStatusInProgress),
	}

	_, err := svc.Transition(ctx, "dsar-1", req, models.Actor{})
	requireAppError(t, err, appErrors.ErrValidation)
	assert.Empty(t, repo.updates)

	mock.ExpectBegin()
	mock.ExpectCommit()
	req.Note = "Export sent via secure portal"
	item, err := svc.Transition(ctx, "dsar-1", req, models.Actor{Email: "dpo@example.com"})
	require.NoError(t, err)

	assert.Equal(t, models.DSARStatusCompleted, item.Status)
	require.NotNil(t, item.CompletedDate)
	assert.True(t, item.CompletedDate.Equal(fixedNow))
	require.NotNil(t, item.ResponseNote)
	assert.Equal(t, "Export sent via secure portal", *item.ResponseNote)
	assert.False(t, item.IsOverdue)
	assert.Nil(t, item.DaysRemaining)

	require.Len(t, repo.updates, 1)
	assert.Equal(t, 5, *repo.updates[0].ExpectedVersion)
	require.Len(t, notifier.recorded, 1)
	assert.Equal(t, "officer@example.com", notifier.recorded[0].Recipient)
	assert.Contains(t, notifier.recorded[0].Message, "dpo@example.com")
}

func TestDSARServiceWithdrawFromAnyOpenStatus(t *testing.T) {
	svc, repo, _, mock := newDSARFixture(t)
	for _, status := range []models.DSARStatus{models.DSARStatusReceived, models.DSARStatusVerified, models.DSARStatusPendingInfo} {
		repo.items["dsar-1"].Status = status
		mock.ExpectBegin()
		mock.ExpectCommit()
		item, err := svc.Transition(context.Background(), "dsar-1", dto.TransitionRequest{
			TargetStatus:   string(models.DSARStatusWithdrawn),
			ExpectedStatus: string(status),
		}, models.Actor{})
		require.NoError(t, err, status)
		assert.Equal(t, models.DSARStatusWithdrawn, item.Status)
	}
}

func TestDSARServiceUpdateRejectsTerminalAndStaleVersion(t *testing.T) {
	svc, repo, _, _ := newDSARFixture(t)
	ctx := context.Background()
	req := dto.UpdateDSARRequest{CreateDSARRequest: dto.CreateDSARRequest{
		RequestType:      "access",
		RequestorName:    "Ada King",
		RequestorEmail:   "ada@example.com",
		JurisdictionCode: "CCPA",
	}}

	req.Version = intPtr(2)
	_, err := svc.Update(ctx, "dsar-1", req, models.Actor{})
	requireAppError(t, err, appErrors.ErrConflict)

	req.Version = intPtr(5)
	item, err := svc.Update(ctx, "dsar-1", req, models.Actor{})
	require.NoError(t, err)
	assert.Equal(t, "CCPA", item.JurisdictionCode)
	assert.Equal(t, "2024-02-15", item.DueDate.Format("2006-01-02"))
	assert.Equal(t, 6, item.Version)
	require.NotNil(t, repo.updated)

	repo.items["dsar-1"].Status = models.DSARStatusCompleted
	req.Version = nil
	_, err = svc.Update(ctx, "dsar-1", req, models.Actor{})
	requireAppError(t, err, appErrors.ErrInvalidTransition)
}
