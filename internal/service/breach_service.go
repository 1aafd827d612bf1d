package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

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

type breachStore interface {
	List(ctx context.Context, filter models.BreachFilter) ([]models.Breach, int, error)
	ListAll(ctx context.Context, filter models.BreachFilter) ([]models.Breach, error)
	FindByID(ctx context.Context, id string) (*models.Breach, error)
	Create(ctx context.Context, exec sqlx.ExtContext, item *models.Breach) error
	Update(ctx context.Context, exec sqlx.ExtContext, item *models.Breach) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, update repository.StatusUpdate) error
	MarkRegulatorNotified(ctx context.Context, exec sqlx.ExtContext, id string, version int, at time.Time) error
}

// BreachService manages personal data breaches and regulator notification.
type BreachService struct {
	repo       breachStore
	registry   jurisdictionRegistry
	calculator *deadline.Calculator
	validator  *validator.Validate
	workflow
}

// NewBreachService constructs the service.
func NewBreachService(repo breachStore, registry jurisdictionRegistry, validate *validator.Validate, deps WorkflowDeps) *BreachService {
	if validate == nil {
		validate = NewValidator()
	}
	return &BreachService{
		repo:       repo,
		registry:   registry,
		calculator: deadline.NewCalculator(registry),
		validator:  validate,
		workflow:   newWorkflow(deps),
	}
}

// List returns a page of breaches.
func (s *BreachService) List(ctx context.Context, filter models.BreachFilter) ([]models.Breach, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list breaches")
	}
	now := s.now()
	for i := range items {
		deadline.DecorateBreach(&items[i], now)
	}
	return items, pagination(filter.PageRequest, total), nil
}

// Get returns a breach by id.
func (s *BreachService) Get(ctx context.Context, id string) (*models.Breach, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "breach")
	}
	deadline.DecorateBreach(item, s.now())
	return item, nil
}

// Create records a breach and derives its regulator deadline.
func (s *BreachService) Create(ctx context.Context, req dto.CreateBreachRequest, actor models.Actor) (*models.Breach, error) {
	item, err := s.fromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	item.ReferenceNumber = referenceNumber("BRE", item.DetectedDate)
	item.Status = lifecycle.Breach.Initial()
	if err := s.repo.Create(ctx, nil, item); err != nil {
		return nil, appErrors.Internal(err, "failed to create breach")
	}
	s.afterWrite(ctx)
	s.emitAudit(ctx, actor, models.AuditActionCreate, models.EntityBreach, item.ID, nil, item)
	deadline.DecorateBreach(item, s.now())
	return item, nil
}

// Update edits a breach.
func (s *BreachService) Update(ctx context.Context, id string, req dto.UpdateBreachRequest, actor models.Actor) (*models.Breach, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "breach")
	}
	if err := checkVersion("breach", existing.Version, req.Version); err != nil {
		return nil, err
	}
	if lifecycle.Breach.IsTerminal(existing.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "closed breaches can no longer be edited")
	}
	if req.DetectedDate == nil {
		detected := existing.DetectedDate
		req.DetectedDate = &detected
	}
	updated, err := s.fromRequest(ctx, req.CreateBreachRequest)
	if err != nil {
		return nil, err
	}
	before := *existing
	existing.Title = updated.Title
	existing.BreachType = updated.BreachType
	existing.Severity = updated.Severity
	existing.JurisdictionCode = updated.JurisdictionCode
	existing.DetectedDate = updated.DetectedDate
	existing.NotificationDeadline = updated.NotificationDeadline
	existing.AffectedSubjects = updated.AffectedSubjects
	existing.Description = updated.Description
	if err := s.repo.Update(ctx, nil, existing); err != nil {
		return nil, writeError(err, "breach")
	}
	s.afterWrite(ctx)
	s.emitAudit(ctx, actor, models.AuditActionUpdate, models.EntityBreach, existing.ID, before, existing)
	deadline.DecorateBreach(existing, s.now())
	return existing, nil
}

// Transition moves the breach through its lifecycle.
func (s *BreachService) Transition(ctx context.Context, id string, req dto.TransitionRequest, actor models.Actor) (*models.Breach, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid transition payload")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "breach")
	}
	target := models.BreachStatus(strings.TrimSpace(req.TargetStatus))
	if err := checkExpectations("breach", string(item.Status), req.ExpectedStatus, item.Version, req.ExpectedVersion); err != nil {
		return nil, err
	}
	if err := lifecycle.Breach.Validate(item.Status, target); err != nil {
		return nil, err
	}

	now := s.now()
	set := map[string]interface{}{}
	if target == models.BreachStatusResolved {
		set["resolved_date"] = now
	}
	version := item.Version
	plan := transitionPlan{
		entity: models.EntityBreach,
		update: repository.StatusUpdate{
			ID:              item.ID,
			From:            string(item.Status),
			To:              string(target),
			ExpectedVersion: &version,
			Set:             set,
			At:              now,
		},
		notification: statusChangedNotification(models.EntityBreach, item.ID, "Breach "+item.ReferenceNumber, string(item.Status), string(target), actor, req.Note),
	}
	if err := s.applyTransition(ctx, s.repo.UpdateStatus, plan); err != nil {
		return nil, err
	}

	previous := item.Status
	item.Status = target
	item.Version++
	item.UpdatedAt = now
	if target == models.BreachStatusResolved {
		item.ResolvedDate = &now
	}
	s.emitAudit(ctx, actor, models.AuditActionTransition, models.EntityBreach, item.ID,
		map[string]string{"status": string(previous)},
		map[string]string{"status": string(target), "note": req.Note})
	deadline.DecorateBreach(item, now)
	return item, nil
}

// MarkRegulatorNotified records that the regulator was told about the breach.
// The flag and its date are written together with the notification row.
func (s *BreachService) MarkRegulatorNotified(ctx context.Context, id string, req dto.NotifyRegulatorRequest, actor models.Actor) (_ *models.Breach, err error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "breach")
	}
	if lifecycle.Breach.IsTerminal(item.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "closed breaches cannot be notified")
	}
	if item.RegulatorNotified {
		return nil, appErrors.Clone(appErrors.ErrConflict, "regulator already notified")
	}
	if err := checkVersion("breach", item.Version, req.ExpectedVersion); err != nil {
		return nil, err
	}

	notifiedAt := s.now()
	if req.NotifiedAt != nil {
		notifiedAt = req.NotifiedAt.UTC()
		if notifiedAt.After(s.now()) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "notified_at cannot be in the future")
		}
	}

	if s.db == nil {
		return nil, appErrors.Internal(errors.New("transaction provider not configured"), "failed to start transaction")
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to start transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.repo.MarkRegulatorNotified(ctx, tx, item.ID, item.Version, notifiedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = appErrors.Clone(appErrors.ErrConflict, "breach was modified by another request")
			return nil, err
		}
		err = appErrors.Internal(err, "failed to mark regulator notified")
		return nil, err
	}
	notification := &models.Notification{
		Type:       models.NotificationRegulatorNotified,
		Subject:    fmt.Sprintf("Regulator notified of breach %s", item.ReferenceNumber),
		Message:    fmt.Sprintf("Breach %s was reported to the regulator at %s by %s.", item.ReferenceNumber, notifiedAt.Format(time.RFC3339), actorName(actor)),
		EntityType: models.EntityBreach,
		EntityID:   item.ID,
	}
	if s.notifier != nil {
		if err = s.notifier.Record(ctx, tx, notification); err != nil {
			err = appErrors.Internal(err, "failed to record notification")
			return nil, err
		}
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Internal(err, "failed to commit regulator notification")
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Dispatch(*notification)
	}
	s.afterWrite(ctx)
	item.RegulatorNotified = true
	item.RegulatorNotifiedDate = &notifiedAt
	item.Version++
	s.emitAudit(ctx, actor, models.AuditActionRegulatorNotify, models.EntityBreach, item.ID, nil,
		map[string]interface{}{"regulator_notified": true, "regulator_notified_date": notifiedAt})
	s.logger.Info("breach regulator notified", zap.String("breach_id", item.ID), zap.Time("notified_at", notifiedAt))
	deadline.DecorateBreach(item, s.now())
	return item, nil
}

// Export returns every breach matching filter for register exports.
func (s *BreachService) Export(ctx context.Context, filter models.BreachFilter) ([]models.Breach, error) {
	items, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to export breaches")
	}
	now := s.now()
	for i := range items {
		deadline.DecorateBreach(&items[i], now)
	}
	return items, nil
}

func (s *BreachService) fromRequest(ctx context.Context, req dto.CreateBreachRequest) (*models.Breach, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid breach payload")
	}
	breachType := models.BreachType(strings.ToLower(strings.TrimSpace(req.BreachType)))
	if !breachType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported breach type %q", req.BreachType))
	}
	severity := models.BreachSeverity(strings.ToLower(strings.TrimSpace(req.Severity)))
	if !severity.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported severity %q", req.Severity))
	}
	j, err := s.registry.RequireActive(ctx, req.JurisdictionCode)
	if err != nil {
		return nil, err
	}
	detected := s.now()
	if req.DetectedDate != nil {
		detected = req.DetectedDate.UTC()
	}
	notificationDeadline, err := s.calculator.BreachNotificationDeadline(ctx, detected, j.Code)
	if err != nil {
		return nil, err
	}
	return &models.Breach{
		Title:                strings.TrimSpace(req.Title),
		BreachType:           breachType,
		Severity:             severity,
		JurisdictionCode:     j.Code,
		DetectedDate:         detected,
		NotificationDeadline: notificationDeadline,
		AffectedSubjects:     req.AffectedSubjects,
		Description:          strings.TrimSpace(req.Description),
	}, nil
}
