package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/privacy-admin-api/internal/models"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
	"github.com/noah-isme/privacy-admin-api/pkg/response"
)

// Role groups used by the router.
var (
	WriteRoles = []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin, models.RoleDPO}
	ReadRoles  = []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin, models.RoleDPO, models.RoleViewer}
)

// RequireRoles rejects requests whose token role is not in roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ReadOrWrite lets read roles through safe methods and requires a write
// role for everything else.
func ReadOrWrite() gin.HandlerFunc {
	read := RequireRoles(ReadRoles...)
	write := RequireRoles(WriteRoles...)
	return func(c *gin.Context) {
		switch c.Request.Method {
		case "GET", "HEAD", "OPTIONS":
			read(c)
		default:
			write(c)
		}
	}
}
