package middleware

import (
	"net/http"
	"strings"

	"memora/internal/services"
	"memora/internal/transport/httpdto"
	"memora/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(verifier services.IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, verifier) {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the caller's identity when a valid token is
// present and lets anonymous requests through otherwise.
func OptionalAuthMiddleware(verifier services.IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, verifier)
		c.Next()
	}
}

func authenticate(c *gin.Context, verifier services.IdentityVerifier) bool {
	token := extractBearer(c)
	if token == "" {
		return false
	}
	id, err := verifier.Verify(c.Request.Context(), token)
	if err != nil {
		return false
	}

	ctx := services.WithIdentity(c.Request.Context(), id)
	uid := id.UID
	if uid == "" {
		uid = id.Email
	}
	ctx = logger.WithUserID(ctx, uid)
	c.Request = c.Request.WithContext(ctx)
	return true
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
