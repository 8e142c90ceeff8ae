package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/deep-platform/deep-api/internal/service"
)

// ClientInfo exposes the caller's IP and user agent to audit entries written during the request.
func ClientInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := service.WithClientInfo(c.Request.Context(), c.ClientIP(), c.GetHeader("User-Agent"))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
