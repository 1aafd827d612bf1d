package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/privacy-admin-api/internal/dto"
	"github.com/noah-isme/privacy-admin-api/internal/lifecycle"
	"github.com/noah-isme/privacy-admin-api/internal/models"
	"github.com/noah-isme/privacy-admin-api/internal/repository"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
)

type consentStore interface {
	List(ctx context.Context, filter models.ConsentFilter) ([]models.ConsentRecord, int, error)
	FindByID(ctx context.Context, id string) (*models.ConsentRecord, error)
	Create(ctx context.Context, exec sqlx.ExtContext, item *models.ConsentRecord) error
	Update(ctx context.Context, exec sqlx.ExtContext, item *models.ConsentRecord) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, update repository.StatusUpdate) error
}

// ConsentService manages consent records.
type ConsentService struct {
	repo      consentStore
	registry  jurisdictionRegistry
	validator *validator.Validate
	workflow
}

// NewConsentService constructs the service.
func NewConsentService(repo consentStore, registry jurisdictionRegistry, validate *validator.Validate, deps WorkflowDeps) *ConsentService {
	if validate == nil {
		validate = NewValidator()
	}
	return &ConsentService{repo: repo, registry: registry, validator: validate, workflow: newWorkflow(deps)}
}

// List returns a page of consent records.
func (s *ConsentService) List(ctx context.Context, filter models.ConsentFilter) ([]models.ConsentRecord, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list consent records")
	}
	for i := range items {
		items[i].StatusDisplay = items[i].Status.Display()
	}
	return items, pagination(filter.PageRequest, total), nil
}

// Get returns a consent record by id.
func (s *ConsentService) Get(ctx context.Context, id string) (*models.ConsentRecord, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "consent record")
	}
	item.StatusDisplay = item.Status.Display()
	return item, nil
}

// Create records a consent grant.
func (s *ConsentService) Create(ctx context.Context, req dto.CreateConsentRequest, actor models.Actor) (*models.ConsentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid consent payload")
	}
	method := models.ConsentMethod(strings.ToLower(strings.TrimSpace(req.ConsentMethod)))
	if !method.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported consent method")
	}
	j, err := s.registry.RequireActive(ctx, req.JurisdictionCode)
	if err != nil {
		return nil, err
	}
	consentDate := s.now()
	if req.ConsentDate != nil {
		consentDate = req.ConsentDate.UTC()
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(consentDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "expires_at must be after consent_date")
	}
	item := &models.ConsentRecord{
		DataSubjectID:    strings.TrimSpace(req.DataSubjectID),
		Purpose:          strings.TrimSpace(req.Purpose),
		JurisdictionCode: j.Code,
		ConsentGiven:     true,
		ConsentMethod:    method,
		ConsentDate:      consentDate,
		ExpiresAt:        req.ExpiresAt,
		Status:           lifecycle.Consent.Initial(),
	}
	if err := s.repo.Create(ctx, nil, item); err != nil {
		return nil, appErrors.Internal(err, "failed to create consent record")
	}
	s.afterWrite(ctx)
	s.emitAudit(ctx, actor, models.AuditActionCreate, models.EntityConsent, item.ID, nil, item)
	item.StatusDisplay = item.Status.Display()
	return item, nil
}

// Update edits an active consent record.
func (s *ConsentService) Update(ctx context.Context, id string, req dto.UpdateConsentRequest, actor models.Actor) (*models.ConsentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid consent payload")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "consent record")
	}
	if err := checkVersion("consent record", existing.Version, req.Version); err != nil {
		return nil, err
	}
	if lifecycle.Consent.IsTerminal(existing.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "consent record is "+string(existing.Status)+" and can no longer be edited")
	}
	method := models.ConsentMethod(strings.ToLower(strings.TrimSpace(req.ConsentMethod)))
	if !method.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported consent method")
	}
	lookup := s.registry.Get
	if !strings.EqualFold(strings.TrimSpace(req.JurisdictionCode), existing.JurisdictionCode) {
		lookup = s.registry.RequireActive
	}
	j, err := lookup(ctx, req.JurisdictionCode)
	if err != nil {
		return nil, err
	}
	before := *existing
	existing.Purpose = strings.TrimSpace(req.Purpose)
	existing.JurisdictionCode = j.Code
	existing.ConsentMethod = method
	if req.ConsentDate != nil {
		existing.ConsentDate = req.ConsentDate.UTC()
	}
	existing.ExpiresAt = req.ExpiresAt
	if existing.ExpiresAt != nil && !existing.ExpiresAt.After(existing.ConsentDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "expires_at must be after consent_date")
	}
	if err := s.repo.Update(ctx, nil, existing); err != nil {
		return nil, writeError(err, "consent record")
	}
	s.afterWrite(ctx)
	s.emitAudit(ctx, actor, models.AuditActionUpdate, models.EntityConsent, existing.ID, before, existing)
	existing.StatusDisplay = existing.Status.Display()
	return existing, nil
}

// Transition withdraws or expires a consent. Withdrawal needs a reason.
func (s *ConsentService) Transition(ctx context.Context, id string, req dto.TransitionRequest, actor models.Actor) (*models.ConsentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid transition payload")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "consent record")
	}
	target := models.ConsentStatus(strings.TrimSpace(req.TargetStatus))
	if err := checkExpectations("consent", string(item.Status), req.ExpectedStatus, item.Version, req.ExpectedVersion); err != nil {
		return nil, err
	}
	if err := lifecycle.Consent.Validate(item.Status, target); err != nil {
		return nil, err
	}

	now := s.now()
	set := map[string]interface{}{}
	var reason *string
	if target == models.ConsentStatusWithdrawn {
		reason = optionalString(req.Note)
		if reason == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "a withdrawal reason is required")
		}
		set["withdrawal_date"] = now
		set["withdrawal_reason"] = reason
		set["consent_given"] = false
	}

	version := item.Version
	plan := transitionPlan{
		entity: models.EntityConsent,
		update: repository.StatusUpdate{
			ID:              item.ID,
			From:            string(item.Status),
			To:              string(target),
			ExpectedVersion: &version,
			Set:             set,
			At:              now,
		},
		notification: statusChangedNotification(models.EntityConsent, item.ID,
			"Consent for "+item.Purpose+" ("+item.DataSubjectID+")", string(item.Status), string(target), actor, req.Note),
	}
	if err := s.applyTransition(ctx, s.repo.UpdateStatus, plan); err != nil {
		return nil, err
	}

	previous := item.Status
	item.Status = target
	item.Version++
	item.UpdatedAt = now
	if target == models.ConsentStatusWithdrawn {
		item.WithdrawalDate = &now
		item.WithdrawalReason = reason
		item.ConsentGiven = false
	}
	s.emitAudit(ctx, actor, models.AuditActionTransition, models.EntityConsent, item.ID,
		map[string]string{"status": string(previous)},
		map[string]string{"status": string(target), "note": req.Note})
	item.StatusDisplay = item.Status.Display()
	return item, nil
}
