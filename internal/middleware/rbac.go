package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/egov-portal-api/internal/models"
	appErrors "github.com/noah-isme/egov-portal-api/pkg/errors"
	"github.com/noah-isme/egov-portal-api/pkg/response"
)

// RequireRoles restricts a route to the listed roles. Fine-grained scoping
// (ownership, department binding) happens in the service layer; this guard
// only rejects roles that may never reach the route.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireStaff restricts a route to officer, department head and admin roles.
func RequireStaff() gin.HandlerFunc {
	return RequireRoles(models.RoleOfficer, models.RoleDepartmentHead, models.RoleAdmin)
}
