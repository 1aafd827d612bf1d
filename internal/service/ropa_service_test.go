package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/privacy-admin-api/internal/dto"
	"github.com/noah-isme/privacy-admin-api/internal/models"
	"github.com/noah-isme/privacy-admin-api/internal/repository"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
)

type ropaRepoStub struct {
	items   map[string]*models.ROPAActivity
	updates []repository.StatusUpdate
}

func (s *ropaRepoStub) List(ctx context.Context, filter models.ROPAFilter) ([]models.ROPAActivity, int, error) {
	out := make([]models.ROPAActivity, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, *item)
	}
	return out, len(out), nil
}

func (s *ropaRepoStub) FindByID(ctx context.Context, id string) (*models.ROPAActivity, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *item
	return &copy, nil
}

func (s *ropaRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, item *models.ROPAActivity) error {
	item.ID = "ropa-new"
	item.Version = 1
	return nil
}

func (s *ropaRepoStub) Update(ctx context.Context, exec sqlx.ExtContext, item *models.ROPAActivity) error {
	item.Version++
	return nil
}

func (s *ropaRepoStub) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, update repository.StatusUpdate) error {
	s.updates = append(s.updates, update)
	return nil
}

func TestROPAServiceApprovalRequiresCompletedDPIA(t *testing.T) {
	db, mock := newTxProviderMock(t)
	repo := &ropaRepoStub{items: map[string]*models.ROPAActivity{
		"ropa-1": {ID: "ropa-1", Name: "Payroll", LawfulBasis: models.LawfulBasisContract, DPIARequired: true, Status: models.ROPAStatusPendingReview, Version: 1},
	}}
	svc := NewROPAService(repo, nil, 180*24*time.Hour, workflowDeps(db, &notifierStub{}, &auditStub{}))
	req := dto.TransitionRequest{
		TargetStatus:   string(models.ROPAStatusApproved),
		ExpectedStatus: string(models.ROPAStatusPendingReview),
	}

	_, err := svc.Transition(context.Background(), "ropa-1", req, models.Actor{})
	requireAppError(t, err, appErrors.ErrValidation)

	repo.items["ropa-1"].DPIACompleted = true
	mock.ExpectBegin()
	mock.ExpectCommit()
	item, err := svc.Transition(context.Background(), "ropa-1", req, models.Actor{})
	require.NoError(t, err)

	require.NotNil(t, item.LastReviewedAt)
	require.NotNil(t, item.NextReviewDate)
	assert.True(t, item.LastReviewedAt.Equal(fixedNow))
	assert.True(t, item.NextReviewDate.Equal(fixedNow.Add(180*24*time.Hour)))
	assert.False(t, item.ReviewDue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestROPAServiceFlagsReviewDue(t *testing.T) {
	past := fixedNow.AddDate(0, 0, -1)
	repo := &ropaRepoStub{items: map[string]*models.ROPAActivity{
		"ropa-1": {ID: "ropa-1", Status: models.ROPAStatusApproved, NextReviewDate: &past},
	}}
	svc := NewROPAService(repo, nil, 0, WorkflowDeps{Clock: fixedClock})

	item, err := svc.Get(context.Background(), "ropa-1")
	require.NoError(t, err)
	assert.True(t, item.ReviewDue)
	assert.Equal(t, "Approved", item.StatusDisplay.Label)
}

func TestROPAServiceCreateValidatesLawfulBasis(t *testing.T) {
	repo := &ropaRepoStub{items: map[string]*models.ROPAActivity{}}
	svc := NewROPAService(repo, nil, 0, WorkflowDeps{Clock: fixedClock})

	_, err := svc.Create(context.Background(), dto.CreateROPARequest{Name: "CRM", Purpose: "Sales", LawfulBasis: "vibes"}, models.Actor{})
	requireAppError(t, err, appErrors.ErrValidation)

	item, err := svc.Create(context.Background(), dto.CreateROPARequest{Name: "CRM", Purpose: "Sales", LawfulBasis: "legitimate_interests"}, models.Actor{})
	require.NoError(t, err)
	assert.Equal(t, models.ROPAStatusDraft, item.Status)
	assert.Equal(t, "Legitimate Interests", item.LawfulBasis.Label())
}
