package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/privacy-admin-api/internal/dto"
	"github.com/noah-isme/privacy-admin-api/internal/models"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
)

type officerStore interface {
	List(ctx context.Context, filter models.OfficerFilter) ([]models.PrivacyOfficer, int, error)
	FindByID(ctx context.Context, id string) (*models.PrivacyOfficer, error)
	Create(ctx context.Context, item *models.PrivacyOfficer) error
	Update(ctx context.Context, item *models.PrivacyOfficer) error
	ToggleActive(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type officerAssignments interface {
	CountByOfficer(ctx context.Context, officerID string) (int, error)
}

// OfficerService maintains the privacy officer registry.
type OfficerService struct {
	repo        officerStore
	assignments officerAssignments
	registry    jurisdictionRegistry
	validator   *validator.Validate
	workflow
}

// NewOfficerService constructs the service.
func NewOfficerService(repo officerStore, assignments officerAssignments, registry jurisdictionRegistry, validate *validator.Validate, deps WorkflowDeps) *OfficerService {
	if validate == nil {
		validate = NewValidator()
	}
	return &OfficerService{
		repo:        repo,
		assignments: assignments,
		registry:    registry,
		validator:   validate,
		workflow:    newWorkflow(deps),
	}
}

// List returns a page of officers.
func (s *OfficerService) List(ctx context.Context, filter models.OfficerFilter) ([]models.PrivacyOfficer, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list privacy officers")
	}
	return items, pagination(filter.PageRequest, total), nil
}

// Get returns an officer by id.
func (s *OfficerService) Get(ctx context.Context, id string) (*models.PrivacyOfficer, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "privacy officer")
	}
	return item, nil
}

// Create registers an officer.
func (s *OfficerService) Create(ctx context.Context, req dto.UpsertOfficerRequest, actor models.Actor) (*models.PrivacyOfficer, error) {
	item, err := s.fromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	item.IsActive = true
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Internal(err, "failed to create privacy officer")
	}
	s.afterWrite(ctx)
	s.emitAudit(ctx, actor, models.AuditActionCreate, models.EntityOfficer, item.ID, nil, item)
	return item, nil
}

// Update edits an officer.
func (s *OfficerService) Update(ctx context.Context, id string, req dto.UpsertOfficerRequest, actor models.Actor) (*models.PrivacyOfficer, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "privacy officer")
	}
	if err := checkVersion("privacy officer", existing.Version, req.Version); err != nil {
		return nil, err
	}
	updated, err := s.fromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	before := *existing
	existing.Name = updated.Name
	existing.Email = updated.Email
	existing.Phone = updated.Phone
	existing.JurisdictionCode = updated.JurisdictionCode
	existing.RegistrationNumber = updated.RegistrationNumber
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, writeError(err, "privacy officer")
	}
	s.afterWrite(ctx)
	s.emitAudit(ctx, actor, models.AuditActionUpdate, models.EntityOfficer, existing.ID, before, existing)
	return existing, nil
}

// ToggleActive flips the officer's active flag.
func (s *OfficerService) ToggleActive(ctx context.Context, id string, actor models.Actor) (*models.PrivacyOfficer, error) {
	active, err := s.repo.ToggleActive(ctx, id)
	if err != nil {
		return nil, loadError(err, "privacy officer")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "privacy officer")
	}
	s.afterWrite(ctx)
	s.emitAudit(ctx, actor, models.AuditActionToggle, models.EntityOfficer, id,
		map[string]bool{"is_active": !active}, map[string]bool{"is_active": active})
	return item, nil
}

// Delete removes an officer that has no DSARs assigned.
func (s *OfficerService) Delete(ctx context.Context, id string, actor models.Actor) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return loadError(err, "privacy officer")
	}
	if s.assignments != nil {
		count, err := s.assignments.CountByOfficer(ctx, id)
		if err != nil {
			return appErrors.Internal(err, "failed to count officer assignments")
		}
		if count > 0 {
			return appErrors.Clone(appErrors.ErrConflict, "privacy officer is assigned to DSARs and cannot be deleted")
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return loadError(err, "privacy officer")
	}
	s.afterWrite(ctx)
	s.emitAudit(ctx, actor, models.AuditActionDelete, models.EntityOfficer, id, existing, nil)
	return nil
}

func (s *OfficerService) fromRequest(ctx context.Context, req dto.UpsertOfficerRequest) (*models.PrivacyOfficer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid privacy officer payload")
	}
	j, err := s.registry.Get(ctx, req.JurisdictionCode)
	if err != nil {
		return nil, err
	}
	return &models.PrivacyOfficer{
		Name:               strings.TrimSpace(req.Name),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:              trimmedPtr(req.Phone),
		JurisdictionCode:   j.Code,
		RegistrationNumber: trimmedPtr(req.RegistrationNumber),
	}, nil
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	return optionalString(*value)
}
