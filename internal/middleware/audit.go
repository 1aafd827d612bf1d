package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/privacy-admin-api/internal/models"
)

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Audit records one access trail row for every successful write request.
// Failures to persist are logged and never change the response.
func Audit(repo auditWriter, resource string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		if repo == nil || c.Writer.Status() >= 400 {
			return
		}

		actor := models.Actor{IP: c.ClientIP(), Agent: c.GetHeader("User-Agent")}
		if claims, ok := CurrentClaims(c); ok {
			actor.UserID = claims.UserID
		}
		resourceID := c.Param("id")
		if resourceID == "" {
			resourceID = c.Param("code")
		}

		entry := models.NewAuditLog(actor, models.AuditActionHTTPRequestWrite, resource, resourceID).
			WithValues(nil, map[string]interface{}{
				"path":    c.FullPath(),
				"method":  c.Request.Method,
				"status":  c.Writer.Status(),
				"latency": time.Since(start).Milliseconds(),
			})
		if err := repo.CreateAuditLog(c.Request.Context(), entry); err != nil {
			logger.Warn("http audit write failed", zap.String("resource", resource), zap.Error(err))
		}
	}
}
