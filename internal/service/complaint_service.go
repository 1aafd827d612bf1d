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

type complaintStore interface {
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error)
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
	Create(ctx context.Context, exec sqlx.ExtContext, item *models.Complaint) error
	Update(ctx context.Context, exec sqlx.ExtContext, item *models.Complaint) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, update repository.StatusUpdate) error
}

// ComplaintService manages privacy complaints.
type ComplaintService struct {
	repo      complaintStore
	registry  jurisdictionRegistry
	validator *validator.Validate
	workflow
}

// NewComplaintService constructs the service.
func NewComplaintService(repo complaintStore, registry jurisdictionRegistry, validate *validator.Validate, deps WorkflowDeps) *ComplaintService {
	if validate == nil {
		validate = NewValidator()
	}
	return &ComplaintService{repo: repo, registry: registry, validator: validate, workflow: newWorkflow(deps)}
}

func decorateComplaint(c *models.Complaint) {
	c.StatusDisplay = c.Status.Display()
}

// List returns a page of complaints.
func (s *ComplaintService) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list complaints")
	}
	for i := range items {
		decorateComplaint(&items[i])
	}
	return items, pagination(filter.PageRequest, total), nil
}

// Get returns a complaint by id.
func (s *ComplaintService) Get(ctx context.Context, id string) (*models.Complaint, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "complaint")
	}
	decorateComplaint(item)
	return item, nil
}

// Create lodges a complaint.
func (s *ComplaintService) Create(ctx context.Context, req dto.CreateComplaintRequest, actor models.Actor) (*models.Complaint, error) {
	item, err := s.fromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	item.ReferenceNumber = referenceNumber("CMP", s.now())
	item.Status = lifecycle.Complaint.Initial()
	if err := s.repo.Create(ctx, nil, item); err != nil {
		return nil, appErrors.Internal(err, "failed to create complaint")
	}
	s.afterWrite(ctx)
	s.emitAudit(ctx, actor, models.AuditActionCreate, models.EntityComplaint, item.ID, nil, item)
	decorateComplaint(item)
	return item, nil
}

// Update edits a complaint.
func (s *ComplaintService) Update(ctx context.Context, id string, req dto.UpdateComplaintRequest, actor models.Actor) (*models.Complaint, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "complaint")
	}
	if err := checkVersion("complaint", existing.Version, req.Version); err != nil {
		return nil, err
	}
	updated, err := s.fromRequest(ctx, req.CreateComplaintRequest)
	if err != nil {
		return nil, err
	}
	before := *existing
	existing.ComplaintType = updated.ComplaintType
	existing.ComplainantName = updated.ComplainantName
	existing.ComplainantEmail = updated.ComplainantEmail
	existing.JurisdictionCode = updated.JurisdictionCode
	existing.Description = updated.Description
	if err := s.repo.Update(ctx, nil, existing); err != nil {
		return nil, writeError(err, "complaint")
	}
	s.afterWrite(ctx)
	s.emitAudit(ctx, actor, models.AuditActionUpdate, models.EntityComplaint, existing.ID, before, existing)
	decorateComplaint(existing)
	return existing, nil
}

// Transition moves the complaint through its lifecycle. Resolving requires a
// resolution note; reopening clears it.
func (s *ComplaintService) Transition(ctx context.Context, id string, req dto.TransitionRequest, actor models.Actor) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid transition payload")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "complaint")
	}
	target := models.ComplaintStatus(strings.TrimSpace(req.TargetStatus))
	if err := checkExpectations("complaint", string(item.Status), req.ExpectedStatus, item.Version, req.ExpectedVersion); err != nil {
		return nil, err
	}
	if err := lifecycle.Complaint.Validate(item.Status, target); err != nil {
		return nil, err
	}

	now := s.now()
	set := map[string]interface{}{}
	switch {
	case target == models.ComplaintStatusResolved:
		resolution := optionalString(req.Note)
		if resolution == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "a resolution note is required to resolve a complaint")
		}
		set["resolution"] = resolution
		set["resolved_date"] = now
	case item.Status == models.ComplaintStatusResolved && target == models.ComplaintStatusInvestigating:
		set["resolution"] = (*string)(nil)
		set["resolved_date"] = nil
	}

	version := item.Version
	plan := transitionPlan{
		entity: models.EntityComplaint,
		update: repository.StatusUpdate{
			ID:              item.ID,
			From:            string(item.Status),
			To:              string(target),
			ExpectedVersion: &version,
			Set:             set,
			At:              now,
		},
		notification: statusChangedNotification(models.EntityComplaint, item.ID, "Complaint "+item.ReferenceNumber, string(item.Status), string(target), actor, req.Note),
	}
	if err := s.applyTransition(ctx, s.repo.UpdateStatus, plan); err != nil {
		return nil, err
	}

	previous := item.Status
	item.Status = target
	item.Version++
	item.UpdatedAt = now
	if resolution, ok := set["resolution"]; ok {
		item.Resolution = resolution.(*string)
		if item.Resolution != nil {
			item.ResolvedDate = &now
		} else {
			item.ResolvedDate = nil
		}
	}
	s.emitAudit(ctx, actor, models.AuditActionTransition, models.EntityComplaint, item.ID,
		map[string]string{"status": string(previous)},
		map[string]string{"status": string(target), "note": req.Note})
	decorateComplaint(item)
	return item, nil
}

func (s *ComplaintService) fromRequest(ctx context.Context, req dto.CreateComplaintRequest) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid complaint payload")
	}
	var code *string
	if req.JurisdictionCode != nil && strings.TrimSpace(*req.JurisdictionCode) != "" {
		j, err := s.registry.Get(ctx, *req.JurisdictionCode)
		if err != nil {
			return nil, err
		}
		code = &j.Code
	}
	return &models.Complaint{
		ComplaintType:    strings.TrimSpace(req.ComplaintType),
		ComplainantName:  strings.TrimSpace(req.ComplainantName),
		ComplainantEmail: strings.TrimSpace(req.ComplainantEmail),
		JurisdictionCode: code,
		Description:      strings.TrimSpace(req.Description),
	}, nil
}
