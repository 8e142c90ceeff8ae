package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/deep-platform/deep-api/internal/middleware"
	"github.com/deep-platform/deep-api/internal/models"
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

func callerID(c *gin.Context) string {
	return claimsFromContext(c).Identity()
}
