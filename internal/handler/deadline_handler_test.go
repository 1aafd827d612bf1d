package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/privacy-admin-api/internal/dto"
)

type fakeDeadlineService struct {
	code string
	at   *time.Time
}

func (f *fakeDeadlineService) DSAR(_ context.Context, code string, received *time.Time) (*dto.DSARDeadlineResponse, error) {
	f.code, f.at = code, received
	return &dto.DSARDeadlineResponse{JurisdictionCode: code, DSARDays: 30}, nil
}

func (f *fakeDeadlineService) Breach(_ context.Context, code string, detected *time.Time) (*dto.BreachDeadlineResponse, error) {
	f.code, f.at = code, detected
	return &dto.BreachDeadlineResponse{JurisdictionCode: code}, nil
}

func deadlineRouter(svc *fakeDeadlineService) http.Handler {
	h := NewDeadlineHandler(svc)
	r := newTestRouter(dpoClaims())
	r.GET("/deadlines/dsar", h.DSAR)
	r.GET("/deadlines/breach", h.Breach)
	return r
}

func TestDeadlineHandlerRequiresJurisdiction(t *testing.T) {
	rec := doRequest(deadlineRouter(&fakeDeadlineService{}), http.MethodGet, "/deadlines/dsar", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeadlineHandlerParsesDates(t *testing.T) {
	svc := &fakeDeadlineService{}
	router := deadlineRouter(svc)

	rec := doRequest(router, http.MethodGet, "/deadlines/dsar?jurisdiction=GDPR&received=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.at)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), *svc.at)

	rec = doRequest(router, http.MethodGet, "/deadlines/breach?jurisdiction=GDPR&detected=2024-03-01T10:00:00%2B02:00", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), *svc.at)

	rec = doRequest(router, http.MethodGet, "/deadlines/breach?jurisdiction=GDPR", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.at)
}

func TestDeadlineHandlerRejectsBadDate(t *testing.T) {
	rec := doRequest(deadlineRouter(&fakeDeadlineService{}), http.MethodGet, "/deadlines/dsar?jurisdiction=GDPR&received=31/01/2024", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
