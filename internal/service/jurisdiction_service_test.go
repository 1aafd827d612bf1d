package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/privacy-admin-api/internal/dto"
	"github.com/noah-isme/privacy-admin-api/internal/models"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
)

type jurisdictionRepoStub struct {
	items     map[string]models.Jurisdiction
	refs      map[string]models.JurisdictionReferences
	listCalls int
	deleted   []string
	writeErr  error
}

func newJurisdictionRepoStub() *jurisdictionRepoStub {
	stub := newRegistryStub()
	return &jurisdictionRepoStub{items: stub.items, refs: make(map[string]models.JurisdictionReferences)}
}

func (s *jurisdictionRepoStub) List(ctx context.Context, filter models.JurisdictionFilter) ([]models.Jurisdiction, error) {
	s.listCalls++
	out := make([]models.Jurisdiction, 0, len(s.items))
	for _, j := range s.items {
		if filter.IsActive != nil && j.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (s *jurisdictionRepoStub) FindByCode(ctx context.Context, code string) (*models.Jurisdiction, error) {
	j, ok := s.items[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &j, nil
}

func (s *jurisdictionRepoStub) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, ok := s.items[code]
	return ok, nil
}

func (s *jurisdictionRepoStub) Create(ctx context.Context, j *models.Jurisdiction) error {
	s.items[j.Code] = *j
	return nil
}

func (s *jurisdictionRepoStub) Update(ctx context.Context, originalCode string, j *models.Jurisdiction) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	if _, ok := s.items[originalCode]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, originalCode)
	s.items[j.Code] = *j
	return nil
}

func (s *jurisdictionRepoStub) ToggleActive(ctx context.Context, code string) (bool, error) {
	j, ok := s.items[code]
	if !ok {
		return false, sql.ErrNoRows
	}
	j.IsActive = !j.IsActive
	s.items[code] = j
	return j.IsActive, nil
}

func (s *jurisdictionRepoStub) Delete(ctx context.Context, code string) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	if _, ok := s.items[code]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, code)
	s.deleted = append(s.deleted, code)
	return nil
}

func (s *jurisdictionRepoStub) CountReferences(ctx context.Context, code string) (models.JurisdictionReferences, error) {
	return s.refs[code], nil
}

func newJurisdictionFixture() (*JurisdictionService, *jurisdictionRepoStub, *cacheInvalidatorStub, *auditStub) {
	repo := newJurisdictionRepoStub()
	cache := &cacheInvalidatorStub{}
	audit := &auditStub{}
	svc := NewJurisdictionService(repo, nil, WorkflowDeps{Cache: cache, Audit: audit, Clock: fixedClock})
	return svc, repo, cache, audit
}

func TestJurisdictionServiceServesLookupsFromSnapshot(t *testing.T) {
	svc, repo, _, _ := newJurisdictionFixture()
	ctx := context.Background()

	j, err := svc.Get(ctx, "gdpr")
	require.NoError(t, err)
	assert.Equal(t, 30, j.DSARDays)
	_, err = svc.Get(ctx, "CCPA")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	inactive, err := svc.Get(ctx, "OLDPA")
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)

	_, err = svc.RequireActive(ctx, "OLDPA")
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = svc.Get(ctx, "NOPE")
	requireAppError(t, err, appErrors.ErrNotFound)
}

func TestJurisdictionServiceListActiveOrdersBySortOrderThenName(t *testing.T) {
	svc, repo, _, _ := newJurisdictionFixture()
	gdpr := repo.items["GDPR"]
	gdpr.SortOrder = 2
	repo.items["GDPR"] = gdpr
	repo.items["LGPD"] = models.Jurisdiction{Code: "LGPD", Name: "Brazil LGPD", DSARDays: 15, IsActive: true, SortOrder: 2}

	items, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	codes := make([]string, 0, len(items))
	for _, j := range items {
		codes = append(codes, j.Code)
	}
	assert.Equal(t, []string{"CCPA", "LGPD", "GDPR"}, codes)
}

func TestJurisdictionServiceCreateRejectsDuplicatesAndBadInput(t *testing.T) {
	svc, _, _, _ := newJurisdictionFixture()
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "", dto.UpsertJurisdictionRequest{Code: "GDPR", Name: "Dup", Country: "EU", DSARDays: 30}, models.Actor{})
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = svc.Upsert(ctx, "", dto.UpsertJurisdictionRequest{Code: "bad code!", Name: "X", Country: "X", DSARDays: 30}, models.Actor{})
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = svc.Upsert(ctx, "", dto.UpsertJurisdictionRequest{Code: "PDPA", Name: "Singapore", Country: "SG", DSARDays: 0}, models.Actor{})
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = svc.Upsert(ctx, "", dto.UpsertJurisdictionRequest{Code: "PDPA", Name: "Singapore", Country: "SG", DSARDays: 30, BreachHours: intPtr(0)}, models.Actor{})
	requireAppError(t, err, appErrors.ErrValidation)
}

func TestJurisdictionServiceWritesInvalidateSnapshotAndCache(t *testing.T) {
	svc, repo, cache, audit := newJurisdictionFixture()
	ctx := context.Background()

	_, err := svc.Get(ctx, "GDPR")
	require.NoError(t, err)

	created, err := svc.Upsert(ctx, "", dto.UpsertJurisdictionRequest{Code: "pdpa", Name: "Singapore PDPA", Country: "SG", DSARDays: 30, BreachHours: intPtr(72)}, models.Actor{UserID: "admin-1"})
	require.NoError(t, err)
	assert.Equal(t, "PDPA", created.Code)
	assert.True(t, created.IsActive)

	j, err := svc.Get(ctx, "PDPA")
	require.NoError(t, err)
	assert.Equal(t, "Singapore PDPA", j.Name)
	assert.Equal(t, 2, repo.listCalls)
	assert.Equal(t, []string{dashboardCachePattern}, cache.patterns)
	assert.Len(t, audit.logs, 1)
}

func TestJurisdictionServiceRenameBlockedWhileReferenced(t *testing.T) {
	svc, repo, _, _ := newJurisdictionFixture()
	repo.refs["CCPA"] = models.JurisdictionReferences{DSARs: 2}

	_, err := svc.Upsert(context.Background(), "CCPA", dto.UpsertJurisdictionRequest{Code: "CPRA", Name: "California CPRA", Country: "US", DSARDays: 45}, models.Actor{})
	requireAppError(t, err, appErrors.ErrConflict)

	_, err = svc.Upsert(context.Background(), "CCPA", dto.UpsertJurisdictionRequest{Code: "GDPR", Name: "Clash", Country: "US", DSARDays: 45}, models.Actor{})
	requireAppError(t, err, appErrors.ErrValidation)

	updated, err := svc.Upsert(context.Background(), "CCPA", dto.UpsertJurisdictionRequest{Code: "CCPA", Name: "California CCPA", Country: "US", DSARDays: 40}, models.Actor{})
	require.NoError(t, err)
	assert.Equal(t, 40, updated.DSARDays)
	assert.True(t, updated.IsActive)
}

func TestJurisdictionServiceDeleteWithReferencesIsConflict(t *testing.T) {
	svc, repo, _, _ := newJurisdictionFixture()
	repo.refs["GDPR"] = models.JurisdictionReferences{DSARs: 1, Consents: 3}

	err := svc.Delete(context.Background(), "GDPR", models.Actor{})
	requireAppError(t, err, appErrors.ErrConflict)
	assert.Empty(t, repo.deleted)

	require.NoError(t, svc.Delete(context.Background(), "CCPA", models.Actor{}))
	assert.Equal(t, []string{"CCPA"}, repo.deleted)

	err = svc.Delete(context.Background(), "CCPA", models.Actor{})
	requireAppError(t, err, appErrors.ErrNotFound)
}

func TestJurisdictionServiceDeleteReferencedOnlyByComplaints(t *testing.T) {
	svc, repo, _, _ := newJurisdictionFixture()
	repo.refs["GDPR"] = models.JurisdictionReferences{Complaints: 2}

	err := svc.Delete(context.Background(), "GDPR", models.Actor{})
	requireAppError(t, err, appErrors.ErrConflict)
	assert.Contains(t, err.Error(), "2 complaints")
	assert.Empty(t, repo.deleted)

	_, err = svc.Upsert(context.Background(), "GDPR", dto.UpsertJurisdictionRequest{Code: "EU_GDPR", Name: "GDPR", Country: "EU", DSARDays: 30}, models.Actor{})
	requireAppError(t, err, appErrors.ErrConflict)
}

func TestJurisdictionServiceForeignKeyViolationIsConflict(t *testing.T) {
	svc, repo, _, _ := newJurisdictionFixture()
	repo.writeErr = fmt.Errorf("delete jurisdiction: %w", &pq.Error{Code: "23503", Message: "violates foreign key constraint"})

	err := svc.Delete(context.Background(), "GDPR", models.Actor{})
	requireAppError(t, err, appErrors.ErrConflict)

	_, err = svc.Upsert(context.Background(), "GDPR", dto.UpsertJurisdictionRequest{Code: "EU_GDPR", Name: "GDPR", Country: "EU", DSARDays: 30}, models.Actor{})
	requireAppError(t, err, appErrors.ErrConflict)

	repo.writeErr = errors.New("connection reset")
	err = svc.Delete(context.Background(), "GDPR", models.Actor{})
	requireAppError(t, err, appErrors.ErrInternal)
}

func TestJurisdictionServiceToggleActive(t *testing.T) {
	svc, _, _, _ := newJurisdictionFixture()
	ctx := context.Background()

	j, err := svc.ToggleActive(ctx, "GDPR", models.Actor{})
	require.NoError(t, err)
	assert.False(t, j.IsActive)

	_, err = svc.RequireActive(ctx, "GDPR")
	requireAppError(t, err, appErrors.ErrValidation)
}
