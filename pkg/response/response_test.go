package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/privacy-admin-api/internal/models"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
	"github.com/noah-isme/privacy-admin-api/pkg/middleware/requestid"
)

func serve(h gin.HandlerFunc) (*httptest.ResponseRecorder, *gin.Context) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	var captured *gin.Context
	r := gin.New()
	r.Use(requestid.Middleware())
	r.GET("/", func(c *gin.Context) {
		captured = c
		h(c)
	})
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec, captured
}

func TestListRendersEmptyArray(t *testing.T) {
	rec, _ := serve(func(c *gin.Context) {
		List[models.Notification](c, nil, &models.Pagination{Page: 1, PageSize: 20})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"pagination":{"page":1,"page_size":20,"total_count":0}}`, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestErrorCarriesRequestID(t *testing.T) {
	rec, _ := serve(func(c *gin.Context) {
		Error(c, appErrors.Clone(appErrors.ErrNotFound, "dsar not found"))
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"dsar not found"`)
	assert.Contains(t, rec.Body.String(), rec.Header().Get(requestid.HeaderKey))
}

func TestErrorRecordsServerFailures(t *testing.T) {
	rec, c := serve(func(c *gin.Context) {
		Error(c, errors.New("connection reset"))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, c.Errors, 1)
	assert.Contains(t, c.Errors.String(), "connection reset")
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestFileSetsAttachment(t *testing.T) {
	rec, _ := serve(func(c *gin.Context) {
		File(c, "dsars-register.csv", "text/csv", []byte("a\n"))
	})

	assert.Equal(t, `attachment; filename="dsars-register.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "a\n", rec.Body.String())
}
