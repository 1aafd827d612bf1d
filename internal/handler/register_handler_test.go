package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/privacy-admin-api/internal/dto"
	"github.com/noah-isme/privacy-admin-api/internal/models"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
)

type fakeComplaintService struct {
	filter  models.ComplaintFilter
	created dto.CreateComplaintRequest
	actor   models.Actor
}

func (f *fakeComplaintService) List(_ context.Context, filter models.ComplaintFilter) ([]models.Complaint, *models.Pagination, error) {
	f.filter = filter
	return []models.Complaint{{ID: "c1"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (f *fakeComplaintService) Get(_ context.Context, id string) (*models.Complaint, error) {
	return nil, appErrors.NotFound("complaint")
}

func (f *fakeComplaintService) Create(_ context.Context, req dto.CreateComplaintRequest, actor models.Actor) (*models.Complaint, error) {
	f.created = req
	f.actor = actor
	return &models.Complaint{ID: "c2"}, nil
}

func (f *fakeComplaintService) Update(_ context.Context, id string, _ dto.UpdateComplaintRequest, _ models.Actor) (*models.Complaint, error) {
	return &models.Complaint{ID: id}, nil
}

func (f *fakeComplaintService) Transition(_ context.Context, id string, _ dto.TransitionRequest, _ models.Actor) (*models.Complaint, error) {
	return nil, appErrors.Clone(appErrors.ErrValidation, "a resolution note is required to resolve a complaint")
}

type fakeConsentService struct {
	filter     models.ConsentFilter
	transition dto.TransitionRequest
}

func (f *fakeConsentService) List(_ context.Context, filter models.ConsentFilter) ([]models.ConsentRecord, *models.Pagination, error) {
	f.filter = filter
	return nil, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (f *fakeConsentService) Get(_ context.Context, id string) (*models.ConsentRecord, error) {
	return &models.ConsentRecord{ID: id}, nil
}

func (f *fakeConsentService) Create(context.Context, dto.CreateConsentRequest, models.Actor) (*models.ConsentRecord, error) {
	return &models.ConsentRecord{ID: "cr1"}, nil
}

func (f *fakeConsentService) Update(_ context.Context, id string, _ dto.UpdateConsentRequest, _ models.Actor) (*models.ConsentRecord, error) {
	return &models.ConsentRecord{ID: id}, nil
}

func (f *fakeConsentService) Transition(_ context.Context, id string, req dto.TransitionRequest, _ models.Actor) (*models.ConsentRecord, error) {
	f.transition = req
	return &models.ConsentRecord{ID: id, Status: models.ConsentStatus(req.TargetStatus)}, nil
}

type fakeROPAService struct {
	filter  models.ROPAFilter
	updated dto.UpdateROPARequest
	err     error
}

func (f *fakeROPAService) List(_ context.Context, filter models.ROPAFilter) ([]models.ROPAActivity, *models.Pagination, error) {
	f.filter = filter
	return nil, nil, f.err
}

func (f *fakeROPAService) Get(_ context.Context, id string) (*models.ROPAActivity, error) {
	return &models.ROPAActivity{ID: id}, nil
}

func (f *fakeROPAService) Create(context.Context, dto.CreateROPARequest, models.Actor) (*models.ROPAActivity, error) {
	return &models.ROPAActivity{ID: "r1"}, nil
}

func (f *fakeROPAService) Update(_ context.Context, id string, req dto.UpdateROPARequest, _ models.Actor) (*models.ROPAActivity, error) {
	f.updated = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.ROPAActivity{ID: id}, nil
}

func (f *fakeROPAService) Transition(_ context.Context, id string, _ dto.TransitionRequest, _ models.Actor) (*models.ROPAActivity, error) {
	return &models.ROPAActivity{ID: id}, nil
}

func TestComplaintHandlerEndpoints(t *testing.T) {
	svc := &fakeComplaintService{}
	h := NewComplaintHandler(svc)
	r := newTestRouter(dpoClaims())
	r.GET("/complaints", h.List)
	r.GET("/complaints/:id", h.Get)
	r.POST("/complaints", h.Create)
	r.POST("/complaints/:id/transition", h.Transition)

	rec := doRequest(r, http.MethodGet, "/complaints?status=received,escalated&complaint_type=marketing&search=ada", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.ComplaintStatus{models.ComplaintStatusReceived, models.ComplaintStatusEscalated}, svc.filter.Status)
	assert.Equal(t, "marketing", svc.filter.ComplaintType)
	assert.Equal(t, "ada", svc.filter.Search)

	rec = doRequest(r, http.MethodGet, "/complaints/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "complaint not found", decodeEnvelope(t, rec).Error.Message)

	rec = doRequest(r, http.MethodPost, "/complaints", `{"complaint_type":"marketing","complainant_name":"Ada","complainant_email":"ada@example.com"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "ada@example.com", svc.created.ComplainantEmail)
	assert.Equal(t, "user-1", svc.actor.UserID)

	rec = doRequest(r, http.MethodPost, "/complaints/c1/transition", `{"target_status":"resolved","expected_status":"investigating"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConsentHandlerListRendersEmptyArray(t *testing.T) {
	svc := &fakeConsentService{}
	h := NewConsentHandler(svc)
	r := newTestRouter(dpoClaims())
	r.GET("/consents", h.List)
	r.POST("/consents/:id/transition", h.Transition)

	rec := doRequest(r, http.MethodGet, "/consents?status=active&data_subject_id=subj-7&purpose=newsletter&jurisdiction=CCPA", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, rec).Data))
	assert.Equal(t, []models.ConsentStatus{models.ConsentStatusActive}, svc.filter.Status)
	assert.Equal(t, "subj-7", svc.filter.DataSubjectID)
	assert.Equal(t, "newsletter", svc.filter.Purpose)
	assert.Equal(t, "CCPA", svc.filter.JurisdictionCode)

	rec = doRequest(r, http.MethodPost, "/consents/cr1/transition", `{"target_status":"withdrawn","expected_status":"active","note":"subject request"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "subject request", svc.transition.Note)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"withdrawn"`)
}

func TestROPAHandlerUpdateAndErrors(t *testing.T) {
	svc := &fakeROPAService{}
	h := NewROPAHandler(svc)
	r := newTestRouter(dpoClaims())
	r.GET("/ropa", h.List)
	r.PUT("/ropa/:id", h.Update)

	rec := doRequest(r, http.MethodPut, "/ropa/r1", `{"name":"Payroll","purpose":"salary","lawful_basis":"contract","version":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Payroll", svc.updated.Name)
	require.NotNil(t, svc.updated.Version)
	assert.Equal(t, 3, *svc.updated.Version)

	svc.err = appErrors.Conflictf("processing activity version is 4, expected 3")
	rec = doRequest(r, http.MethodPut, "/ropa/r1", `{"name":"Payroll","purpose":"salary","lawful_basis":"contract","version":3}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(r, http.MethodGet, "/ropa?lawful_basis=consent&status=draft", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, models.LawfulBasis("consent"), svc.filter.LawfulBasis)
	assert.Equal(t, []models.ROPAStatus{models.ROPAStatusDraft}, svc.filter.Status)
}
