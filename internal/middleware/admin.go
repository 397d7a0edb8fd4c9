package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hezo-be/webinar-backend/internal/auth"
	"github.com/hezo-be/webinar-backend/pkg/response"
)

// HeaderAdminPassword carries the shared admin secret.
const HeaderAdminPassword = "X-Admin-Password"

// AdminOnly accepts either the shared secret in X-Admin-Password or a Bearer session token.
// Every failure looks the same to the caller.
func AdminOnly(secret *auth.Secret, sessions *auth.SessionService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret.Verify(c.GetHeader(HeaderAdminPassword)) {
			c.Next()
			return
		}
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" && sessions.Validate(parts[1]) == nil {
				c.Next()
				return
			}
		}
		logger.Warn("admin request rejected",
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
		)
		response.Unauthorized(c, "Unauthorized")
		c.Abort()
	}
}
