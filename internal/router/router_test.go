package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/privacy-admin-api/internal/handler"
	"github.com/noah-isme/privacy-admin-api/internal/models"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
)

type tokenStub map[string]*models.JWTClaims

func (s tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type dashboardStub struct{}

func (dashboardStub) Summary(context.Context) (*models.DashboardSummary, bool, error) {
	return &models.DashboardSummary{OpenDSARs: 2}, false, nil
}

type inboxStub struct{ marked []string }

func (s *inboxStub) List(context.Context, string, bool, models.PageRequest) ([]models.Notification, *models.Pagination, error) {
	return nil, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (s *inboxStub) MarkRead(_ context.Context, id, _ string) error {
	s.marked = append(s.marked, id)
	return nil
}

type auditStub struct{ logs []*models.AuditLog }

func (a *auditStub) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func newTestEngine(t *testing.T) (*gin.Engine, *inboxStub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	inbox := &inboxStub{}
	tokens := tokenStub{
		"viewer": {UserID: "v1", Role: models.RoleViewer},
		"dpo":    {UserID: "d1", Role: models.RoleDPO},
	}
	engine := New(Config{}, Deps{Validator: tokens, Audit: &auditStub{}}, Handlers{
		Health:        handler.NewHealthHandler(nil, nil),
		Dashboard:     handler.NewDashboardHandler(dashboardStub{}),
		Notifications: handler.NewNotificationHandler(inbox),
	})
	return engine, inbox
}

func call(r http.Handler, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestRouterPublicEndpoints(t *testing.T) {
	r, _ := newTestEngine(t)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/health", ""))
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/ready", ""))
	assert.Equal(t, http.StatusServiceUnavailable, call(r, http.MethodGet, "/metrics", ""))
	assert.Equal(t, http.StatusNotFound, call(r, http.MethodGet, "/docs/index.html", ""))
}

func TestRouterRequiresToken(t *testing.T) {
	r, _ := newTestEngine(t)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/v1/dashboard/summary", ""))
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/v1/dashboard/summary", "forged"))
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/dashboard/summary", "viewer"))
}

func TestRouterViewerIsReadOnly(t *testing.T) {
	r, inbox := newTestEngine(t)
	for _, path := range []string{"/api/v1/dsars", "/api/v1/breaches/b1/notify-regulator", "/api/v1/jurisdictions/GDPR/toggle"} {
		assert.Equal(t, http.StatusForbidden, call(r, http.MethodPost, path, "viewer"), path)
	}
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodDelete, "/api/v1/officers/o1", "viewer"))

	require.Equal(t, http.StatusNoContent, call(r, http.MethodPost, "/api/v1/notifications/n1/read", "viewer"))
	assert.Equal(t, []string{"n1"}, inbox.marked)
}
