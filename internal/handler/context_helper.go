package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/egov-portal-api/internal/authz"
	"github.com/noah-isme/egov-portal-api/internal/middleware"
	"github.com/noah-isme/egov-portal-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func subjectFromContext(c *gin.Context) (authz.Subject, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		return authz.Subject{}, false
	}
	return authz.SubjectFromClaims(claims), true
}
