package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/privacy-admin-api/internal/dto"
	"github.com/noah-isme/privacy-admin-api/internal/lifecycle"
	"github.com/noah-isme/privacy-admin-api/internal/models"
	"github.com/noah-isme/privacy-admin-api/internal/repository"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
)

const defaultROPAReviewInterval = 365 * 24 * time.Hour

type ropaStore interface {
	List(ctx context.Context, filter models.ROPAFilter) ([]models.ROPAActivity, int, error)
	FindByID(ctx context.Context, id string) (*models.ROPAActivity, error)
	Create(ctx context.Context, exec sqlx.ExtContext, item *models.ROPAActivity) error
	Update(ctx context.Context, exec sqlx.ExtContext, item *models.ROPAActivity) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, update repository.StatusUpdate) error
}

// ROPAService manages the record of processing activities.
type ROPAService struct {
	repo           ropaStore
	validator      *validator.Validate
	reviewInterval time.Duration
	workflow
}

// NewROPAService constructs the service. Approved activities are due for
// review reviewInterval after approval.
func NewROPAService(repo ropaStore, validate *validator.Validate, reviewInterval time.Duration, deps WorkflowDeps) *ROPAService {
	if validate == nil {
		validate = NewValidator()
	}
	if reviewInterval <= 0 {
		reviewInterval = defaultROPAReviewInterval
	}
	return &ROPAService{repo: repo, validator: validate, reviewInterval: reviewInterval, workflow: newWorkflow(deps)}
}

func decorateROPA(item *models.ROPAActivity, now time.Time) {
	item.StatusDisplay = item.Status.Display()
	item.ReviewDue = item.Status == models.ROPAStatusApproved &&
		item.NextReviewDate != nil && item.NextReviewDate.Before(now)
}

// List returns a page of processing activities.
func (s *ROPAService) List(ctx context.Context, filter models.ROPAFilter) ([]models.ROPAActivity, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list processing activities")
	}
	now := s.now()
	for i := range items {
		decorateROPA(&items[i], now)
	}
	return items, pagination(filter.PageRequest, total), nil
}

// Get returns a processing activity by id.
func (s *ROPAService) Get(ctx context.Context, id string) (*models.ROPAActivity, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "processing activity")
	}
	decorateROPA(item, s.now())
	return item, nil
}

// Create adds a processing activity in draft.
func (s *ROPAService) Create(ctx context.Context, req dto.CreateROPARequest, actor models.Actor) (*models.ROPAActivity, error) {
	item, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	item.Status = lifecycle.ROPA.Initial()
	if err := s.repo.Create(ctx, nil, item); err != nil {
		return nil, appErrors.Internal(err, "failed to create processing activity")
	}
	s.afterWrite(ctx)
	s.emitAudit(ctx, actor, models.AuditActionCreate, models.EntityROPA, item.ID, nil, item)
	decorateROPA(item, s.now())
	return item, nil
}

// Update edits a processing activity.
func (s *ROPAService) Update(ctx context.Context, id string, req dto.UpdateROPARequest, actor models.Actor) (*models.ROPAActivity, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "processing activity")
	}
	if err := checkVersion("processing activity", existing.Version, req.Version); err != nil {
		return nil, err
	}
	if lifecycle.ROPA.IsTerminal(existing.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "archived processing activities can no longer be edited")
	}
	updated, err := s.fromRequest(req.CreateROPARequest)
	if err != nil {
		return nil, err
	}
	before := *existing
	existing.Name = updated.Name
	existing.Purpose = updated.Purpose
	existing.LawfulBasis = updated.LawfulBasis
	existing.DataCategories = updated.DataCategories
	existing.DPIARequired = updated.DPIARequired
	existing.DPIACompleted = updated.DPIACompleted
	if err := s.repo.Update(ctx, nil, existing); err != nil {
		return nil, writeError(err, "processing activity")
	}
	s.afterWrite(ctx)
	s.emitAudit(ctx, actor, models.AuditActionUpdate, models.EntityROPA, existing.ID, before, existing)
	decorateROPA(existing, s.now())
	return existing, nil
}

// Transition moves the activity through review. Approval requires a
// completed DPIA when one is required and schedules the next review.
func (s *ROPAService) Transition(ctx context.Context, id string, req dto.TransitionRequest, actor models.Actor) (*models.ROPAActivity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid transition payload")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "processing activity")
	}
	target := models.ROPAStatus(strings.TrimSpace(req.TargetStatus))
	if err := checkExpectations("processing activity", string(item.Status), req.ExpectedStatus, item.Version, req.ExpectedVersion); err != nil {
		return nil, err
	}
	if err := lifecycle.ROPA.Validate(item.Status, target); err != nil {
		return nil, err
	}

	now := s.now()
	set := map[string]interface{}{}
	var nextReview time.Time
	if target == models.ROPAStatusApproved {
		if item.DPIARequired && !item.DPIACompleted {
			return nil, appErrors.Clone(appErrors.ErrValidation, "a completed DPIA is required before approval")
		}
		nextReview = now.Add(s.reviewInterval)
		set["last_reviewed_at"] = now
		set["next_review_date"] = nextReview
	}

	version := item.Version
	plan := transitionPlan{
		entity: models.EntityROPA,
		update: repository.StatusUpdate{
			ID:              item.ID,
			From:            string(item.Status),
			To:              string(target),
			ExpectedVersion: &version,
			Set:             set,
			At:              now,
		},
		notification: statusChangedNotification(models.EntityROPA, item.ID,
			fmt.Sprintf("Processing activity %q", item.Name), string(item.Status), string(target), actor, req.Note),
	}
	if err := s.applyTransition(ctx, s.repo.UpdateStatus, plan); err != nil {
		return nil, err
	}

	previous := item.Status
	item.Status = target
	item.Version++
	item.UpdatedAt = now
	if target == models.ROPAStatusApproved {
		item.LastReviewedAt = &now
		item.NextReviewDate = &nextReview
	}
	s.emitAudit(ctx, actor, models.AuditActionTransition, models.EntityROPA, item.ID,
		map[string]string{"status": string(previous)},
		map[string]string{"status": string(target), "note": req.Note})
	decorateROPA(item, now)
	return item, nil
}

func (s *ROPAService) fromRequest(req dto.CreateROPARequest) (*models.ROPAActivity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid processing activity payload")
	}
	basis := models.LawfulBasis(strings.ToLower(strings.TrimSpace(req.LawfulBasis)))
	if !basis.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported lawful basis %q", req.LawfulBasis))
	}
	if req.DPIACompleted && !req.DPIARequired {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dpia_completed requires dpia_required")
	}
	return &models.ROPAActivity{
		Name:           strings.TrimSpace(req.Name),
		Purpose:        strings.TrimSpace(req.Purpose),
		LawfulBasis:    basis,
		DataCategories: strings.TrimSpace(req.DataCategories),
		DPIARequired:   req.DPIARequired,
		DPIACompleted:  req.DPIACompleted,
	}, nil
}
