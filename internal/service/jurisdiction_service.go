package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"

	"github.com/noah-isme/privacy-admin-api/internal/dto"
	"github.com/noah-isme/privacy-admin-api/internal/models"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
)

var jurisdictionCodePattern = regexp.MustCompile(`^[A-Z0-9_]{2,20}$`)

// foreignKeyViolation is the postgres SQLSTATE for a violated foreign key.
const foreignKeyViolation = "23503"

type jurisdictionStore interface {
	List(ctx context.Context, filter models.JurisdictionFilter) ([]models.Jurisdiction, error)
	FindByCode(ctx context.Context, code string) (*models.Jurisdiction, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, j *models.Jurisdiction) error
	Update(ctx context.Context, originalCode string, j *models.Jurisdiction) error
	ToggleActive(ctx context.Context, code string) (bool, error)
	Delete(ctx context.Context, code string) error
	CountReferences(ctx context.Context, code string) (models.JurisdictionReferences, error)
}

// JurisdictionService is the registry of jurisdiction parameters. Lookups
// are served from a process-wide snapshot that every write invalidates.
type JurisdictionService struct {
	repo      jurisdictionStore
	validator *validator.Validate
	workflow  workflow

	mu       sync.RWMutex
	snapshot map[string]models.Jurisdiction
}

// NewJurisdictionService constructs the registry.
func NewJurisdictionService(repo jurisdictionStore, validate *validator.Validate, deps WorkflowDeps) *JurisdictionService {
	if validate == nil {
		validate = NewValidator()
	}
	return &JurisdictionService{repo: repo, validator: validate, workflow: newWorkflow(deps)}
}

func (s *JurisdictionService) load(ctx context.Context) (map[string]models.Jurisdiction, error) {
	s.mu.RLock()
	snapshot := s.snapshot
	s.mu.RUnlock()
	if snapshot != nil {
		return snapshot, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot != nil {
		return s.snapshot, nil
	}
	items, err := s.repo.List(ctx, models.JurisdictionFilter{})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load jurisdictions")
	}
	snapshot = make(map[string]models.Jurisdiction, len(items))
	for _, j := range items {
		snapshot[j.Code] = j
	}
	s.snapshot = snapshot
	return snapshot, nil
}

// Invalidate discards the cached snapshot.
func (s *JurisdictionService) Invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
}

// Get returns the jurisdiction registered under code, active or not.
func (s *JurisdictionService) Get(ctx context.Context, code string) (*models.Jurisdiction, error) {
	snapshot, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	j, ok := snapshot[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("jurisdiction %s not found", code))
	}
	return &j, nil
}

// RequireActive returns the jurisdiction or a validation error when it is inactive.
func (s *JurisdictionService) RequireActive(ctx context.Context, code string) (*models.Jurisdiction, error) {
	j, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if !j.IsActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("jurisdiction %s is inactive", j.Code))
	}
	return j, nil
}

// ListActive returns active jurisdictions ordered by sort order, then name.
func (s *JurisdictionService) ListActive(ctx context.Context) ([]models.Jurisdiction, error) {
	snapshot, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Jurisdiction, 0, len(snapshot))
	for _, j := range snapshot {
		if j.IsActive {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].SortOrder != out[k].SortOrder {
			return out[i].SortOrder < out[k].SortOrder
		}
		return out[i].Name < out[k].Name
	})
	return out, nil
}

// List returns jurisdictions matching the filter straight from storage.
func (s *JurisdictionService) List(ctx context.Context, filter models.JurisdictionFilter) ([]models.Jurisdiction, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list jurisdictions")
	}
	return items, nil
}

// Upsert creates a jurisdiction when originalCode is empty, otherwise rewrites
// the one stored under originalCode, renaming it when the code changes.
func (s *JurisdictionService) Upsert(ctx context.Context, originalCode string, req dto.UpsertJurisdictionRequest, actor models.Actor) (*models.Jurisdiction, error) {
	j, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}

	originalCode = strings.ToUpper(strings.TrimSpace(originalCode))
	if originalCode == "" {
		exists, err := s.repo.ExistsByCode(ctx, j.Code)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to check jurisdiction code")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("jurisdiction code %s already exists", j.Code))
		}
		if err := s.repo.Create(ctx, j); err != nil {
			return nil, appErrors.Internal(err, "failed to create jurisdiction")
		}
		s.committed(ctx, actor, models.AuditActionCreate, j.Code, nil, j)
		return j, nil
	}

	existing, err := s.repo.FindByCode(ctx, originalCode)
	if err != nil {
		return nil, loadError(err, "jurisdiction")
	}
	if req.IsActive == nil {
		j.IsActive = existing.IsActive
	}
	if j.Code != existing.Code {
		exists, err := s.repo.ExistsByCode(ctx, j.Code)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to check jurisdiction code")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("jurisdiction code %s already exists", j.Code))
		}
		refs, err := s.repo.CountReferences(ctx, existing.Code)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to count jurisdiction references")
		}
		if refs.Total() > 0 {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("jurisdiction %s is referenced by %d records and cannot be renamed", existing.Code, refs.Total()))
		}
	}
	j.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, existing.Code, j); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "jurisdiction not found")
		}
		if isForeignKeyViolation(err) {
			return nil, appErrors.Conflictf("jurisdiction %s is still referenced and cannot be renamed", existing.Code)
		}
		return nil, appErrors.Internal(err, "failed to update jurisdiction")
	}
	s.committed(ctx, actor, models.AuditActionUpdate, j.Code, existing, j)
	return j, nil
}

// ToggleActive flips the active flag.
func (s *JurisdictionService) ToggleActive(ctx context.Context, code string, actor models.Actor) (*models.Jurisdiction, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	active, err := s.repo.ToggleActive(ctx, code)
	if err != nil {
		return nil, loadError(err, "jurisdiction")
	}
	s.committed(ctx, actor, models.AuditActionToggle, code, nil, map[string]bool{"is_active": active})
	return s.Get(ctx, code)
}

// Delete removes a jurisdiction that nothing references.
func (s *JurisdictionService) Delete(ctx context.Context, code string, actor models.Actor) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if _, err := s.repo.FindByCode(ctx, code); err != nil {
		return loadError(err, "jurisdiction")
	}
	refs, err := s.repo.CountReferences(ctx, code)
	if err != nil {
		return appErrors.Internal(err, "failed to count jurisdiction references")
	}
	if refs.Total() > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf(
			"jurisdiction %s is still referenced by %d dsars, %d breaches, %d consent records, %d complaints and %d officers",
			code, refs.DSARs, refs.Breaches, refs.Consents, refs.Complaints, refs.Officers))
	}
	if err := s.repo.Delete(ctx, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "jurisdiction not found")
		}
		if isForeignKeyViolation(err) {
			return appErrors.Conflictf("jurisdiction %s is still referenced and cannot be deleted", code)
		}
		return appErrors.Internal(err, "failed to delete jurisdiction")
	}
	s.committed(ctx, actor, models.AuditActionDelete, code, nil, nil)
	return nil
}

// isForeignKeyViolation reports a write rejected because other rows still
// reference the key.
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation
}

func (s *JurisdictionService) committed(ctx context.Context, actor models.Actor, action, code string, oldValues, newValues interface{}) {
	s.Invalidate()
	s.workflow.afterWrite(ctx)
	s.workflow.emitAudit(ctx, actor, action, models.EntityJuris, code, oldValues, newValues)
}

func (s *JurisdictionService) fromRequest(req dto.UpsertJurisdictionRequest) (*models.Jurisdiction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid jurisdiction payload")
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if !jurisdictionCodePattern.MatchString(code) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "code must be 2-20 upper-case letters, digits or underscores")
	}
	if req.DSARDays <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dsar_days must be positive")
	}
	if req.BreachHours != nil && *req.BreachHours <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "breach_hours must be positive when set")
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return &models.Jurisdiction{
		Code:          code,
		Name:          strings.TrimSpace(req.Name),
		Country:       strings.TrimSpace(req.Country),
		Region:        strings.TrimSpace(req.Region),
		RegulatorName: req.RegulatorName,
		DSARDays:      req.DSARDays,
		BreachHours:   req.BreachHours,
		IsActive:      active,
		SortOrder:     req.SortOrder,
	}, nil
}
