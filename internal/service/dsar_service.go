package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/privacy-admin-api/internal/deadline"
	"github.com/noah-isme/privacy-admin-api/internal/dto"
	"github.com/noah-isme/privacy-admin-api/internal/lifecycle"
	"github.com/noah-isme/privacy-admin-api/internal/models"
	"github.com/noah-isme/privacy-admin-api/internal/repository"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
)

type dsarStore interface {
	List(ctx context.Context, filter models.DSARFilter) ([]models.DSAR, int, error)
	ListAll(ctx context.Context, filter models.DSARFilter) ([]models.DSAR, error)
	FindByID(ctx context.Context, id string) (*models.DSAR, error)
	Create(ctx context.Context, exec sqlx.ExtContext, item *models.DSAR) error
	Update(ctx context.Context, exec sqlx.ExtContext, item *models.DSAR) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, update repository.StatusUpdate) error
}

type jurisdictionRegistry interface {
	Get(ctx context.Context, code string) (*models.Jurisdiction, error)
	RequireActive(ctx context.Context, code string) (*models.Jurisdiction, error)
}

type officerLookup interface {
	FindByID(ctx context.Context, id string) (*models.PrivacyOfficer, error)
}

// DSARCompletionValidator decides whether a DSAR of a given request type may be completed.
type DSARCompletionValidator interface {
	ValidateCompletion(ctx context.Context, dsar *models.DSAR, note string) error
}

// DSARCompletionValidatorFunc adapts a function into a validator.
type DSARCompletionValidatorFunc func(ctx context.Context, dsar *models.DSAR, note string) error

// ValidateCompletion implements DSARCompletionValidator.
func (f DSARCompletionValidatorFunc) ValidateCompletion(ctx context.Context, dsar *models.DSAR, note string) error {
	return f(ctx, dsar, note)
}

// RequireResponseNote refuses completion without a note describing the response sent.
func RequireResponseNote() DSARCompletionValidator {
	return DSARCompletionValidatorFunc(func(_ context.Context, dsar *models.DSAR, note string) error {
		if strings.TrimSpace(note) == "" {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s requests need a response note before completion", dsar.RequestType))
		}
		return nil
	})
}

// DSARServiceOption configures the service.
type DSARServiceOption func(*DSARService)

// WithCompletionValidators registers completion validators keyed by request type.
func WithCompletionValidators(validators map[models.DSARRequestType]DSARCompletionValidator) DSARServiceOption {
	return func(s *DSARService) {
		for k, v := range validators {
			if v != nil {
				s.completion[k] = v
			}
		}
	}
}

// DSARService manages data subject access requests.
type DSARService struct {
	repo       dsarStore
	registry   jurisdictionRegistry
	officers   officerLookup
	calculator *deadline.Calculator
	validator  *validator.Validate
	completion map[models.DSARRequestType]DSARCompletionValidator
	workflow
}

// NewDSARService constructs the service.
func NewDSARService(repo dsarStore, registry jurisdictionRegistry, officers officerLookup, validate *validator.Validate, deps WorkflowDeps, opts ...DSARServiceOption) *DSARService {
	if validate == nil {
		validate = NewValidator()
	}
	svc := &DSARService{
		repo:       repo,
		registry:   registry,
		officers:   officers,
		calculator: deadline.NewCalculator(registry),
		validator:  validate,
		completion: make(map[models.DSARRequestType]DSARCompletionValidator),
		workflow:   newWorkflow(deps),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// List returns a page of DSARs.
func (s *DSARService) List(ctx context.Context, filter models.DSARFilter) ([]models.DSAR, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list dsars")
	}
	now := s.now()
	for i := range items {
		deadline.DecorateDSAR(&items[i], now)
	}
	return items, pagination(filter.PageRequest, total), nil
}

// Get returns a DSAR by id.
func (s *DSARService) Get(ctx context.Context, id string) (*models.DSAR, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "dsar")
	}
	deadline.DecorateDSAR(item, s.now())
	return item, nil
}

// Create registers a DSAR and derives its due date from the jurisdiction.
func (s *DSARService) Create(ctx context.Context, req dto.CreateDSARRequest, actor models.Actor) (*models.DSAR, error) {
	item, err := s.fromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	item.ReferenceNumber = referenceNumber("DSAR", item.ReceivedDate)
	item.Status = lifecycle.DSAR.Initial()
	if err := s.repo.Create(ctx, nil, item); err != nil {
		return nil, appErrors.Internal(err, "failed to create dsar")
	}
	s.afterWrite(ctx)
	s.emitAudit(ctx, actor, models.AuditActionCreate, models.EntityDSAR, item.ID, nil, item)
	deadline.DecorateDSAR(item, s.now())
	return item, nil
}

// Update edits a DSAR, recomputing the due date when its inputs change.
func (s *DSARService) Update(ctx context.Context, id string, req dto.UpdateDSARRequest, actor models.Actor) (*models.DSAR, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "dsar")
	}
	if err := checkVersion("dsar", existing.Version, req.Version); err != nil {
		return nil, err
	}
	if lifecycle.DSAR.IsTerminal(existing.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("dsar is %s and can no longer be edited", existing.Status))
	}
	if req.ReceivedDate == nil {
		received := existing.ReceivedDate
		req.ReceivedDate = &received
	}
	updated, err := s.fromRequest(ctx, req.CreateDSARRequest)
	if err != nil {
		return nil, err
	}
	before := *existing
	existing.RequestType = updated.RequestType
	existing.RequestorName = updated.RequestorName
	existing.RequestorEmail = updated.RequestorEmail
	existing.JurisdictionCode = updated.JurisdictionCode
	existing.ReceivedDate = updated.ReceivedDate
	existing.DueDate = updated.DueDate
	existing.AssignedOfficerID = updated.AssignedOfficerID
	existing.Description = updated.Description
	if err := s.repo.Update(ctx, nil, existing); err != nil {
		return nil, writeError(err, "dsar")
	}
	s.afterWrite(ctx)
	s.emitAudit(ctx, actor, models.AuditActionUpdate, models.EntityDSAR, existing.ID, before, existing)
	deadline.DecorateDSAR(existing, s.now())
	return existing, nil
}

// Transition moves the DSAR through its lifecycle.
func (s *DSARService) Transition(ctx context.Context, id string, req dto.TransitionRequest, actor models.Actor) (*models.DSAR, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid transition payload")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "dsar")
	}
	target := models.DSARStatus(strings.TrimSpace(req.TargetStatus))
	if err := checkExpectations("dsar", string(item.Status), req.ExpectedStatus, item.Version, req.ExpectedVersion); err != nil {
		return nil, err
	}
	if err := lifecycle.DSAR.Validate(item.Status, target); err != nil {
		return nil, err
	}

	now := s.now()
	set := map[string]interface{}{}
	switch target {
	case models.DSARStatusCompleted:
		if v, ok := s.completion[item.RequestType]; ok {
			if err := v.ValidateCompletion(ctx, item, req.Note); err != nil {
				var appErr *appErrors.Error
				if errors.As(err, &appErr) {
					return nil, err
				}
				return nil, appErrors.Invalid(err, "dsar cannot be completed")
			}
		}
		set["completed_date"] = now
		set["response_note"] = optionalString(req.Note)
	case models.DSARStatusRejected:
		set["response_note"] = optionalString(req.Note)
	}

	notification := statusChangedNotification(models.EntityDSAR, item.ID, "DSAR "+item.ReferenceNumber, string(item.Status), string(target), actor, req.Note)
	notification.Recipient = s.recipientFor(ctx, item)

	version := item.Version
	plan := transitionPlan{
		entity: models.EntityDSAR,
		update: repository.StatusUpdate{
			ID:              item.ID,
			From:            string(item.Status),
			To:              string(target),
			ExpectedVersion: &version,
			Set:             set,
			At:              now,
		},
		notification: notification,
	}
	if err := s.applyTransition(ctx, s.repo.UpdateStatus, plan); err != nil {
		return nil, err
	}

	previous := item.Status
	item.Status = target
	item.Version++
	item.UpdatedAt = now
	if target == models.DSARStatusCompleted {
		item.CompletedDate = &now
	}
	if note, ok := set["response_note"]; ok {
		item.ResponseNote = note.(*string)
	}
	s.emitAudit(ctx, actor, models.AuditActionTransition, models.EntityDSAR, item.ID,
		map[string]string{"status": string(previous)},
		map[string]string{"status": string(target), "note": req.Note})
	deadline.DecorateDSAR(item, now)
	return item, nil
}

// Export returns every DSAR matching filter, decorated, for register exports.
func (s *DSARService) Export(ctx context.Context, filter models.DSARFilter) ([]models.DSAR, error) {
	items, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to export dsars")
	}
	now := s.now()
	for i := range items {
		deadline.DecorateDSAR(&items[i], now)
	}
	return items, nil
}

func (s *DSARService) recipientFor(ctx context.Context, item *models.DSAR) string {
	if item.AssignedOfficerID == nil || s.officers == nil {
		return ""
	}
	officer, err := s.officers.FindByID(ctx, *item.AssignedOfficerID)
	if err != nil {
		s.logger.Warn("assigned officer lookup failed", zap.String("dsar_id", item.ID), zap.Error(err))
		return ""
	}
	return officer.Email
}

func (s *DSARService) fromRequest(ctx context.Context, req dto.CreateDSARRequest) (*models.DSAR, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid dsar payload")
	}
	requestType := models.DSARRequestType(strings.ToLower(strings.TrimSpace(req.RequestType)))
	if !requestType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported request type %q", req.RequestType))
	}
	j, err := s.registry.RequireActive(ctx, req.JurisdictionCode)
	if err != nil {
		return nil, err
	}
	if req.AssignedOfficerID != nil && s.officers != nil {
		if _, err := s.officers.FindByID(ctx, *req.AssignedOfficerID); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "assigned officer does not exist")
		}
	}
	received := s.now()
	if req.ReceivedDate != nil {
		received = req.ReceivedDate.UTC()
	}
	due, err := s.calculator.DSARDueDate(ctx, received, j.Code)
	if err != nil {
		return nil, err
	}
	return &models.DSAR{
		RequestType:       requestType,
		RequestorName:     strings.TrimSpace(req.RequestorName),
		RequestorEmail:    strings.TrimSpace(req.RequestorEmail),
		JurisdictionCode:  j.Code,
		ReceivedDate:      received,
		DueDate:           &due,
		AssignedOfficerID: req.AssignedOfficerID,
		Description:       strings.TrimSpace(req.Description),
	}, nil
}
