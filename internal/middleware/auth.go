package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blooddonation/internal/identity"
)

const principalKey = "email"

// VerifyToken is the authorization gate. It requires "Authorization: Bearer
// <token>", verifies the token with the identity service on every call and
// binds the principal email to the context.
func VerifyToken(verifier identity.Verifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			log.Debug("missing token", zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized access"})
			return
		}

		parts := strings.Split(raw, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			log.Debug("invalid token format", zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized access"})
			return
		}

		principal, err := verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			log.Info("token verification failed", zap.String("path", c.FullPath()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized access"})
			return
		}

		c.Set(principalKey, principal.Email)
		c.Next()
	}
}

// PrincipalEmail returns the verified email bound by VerifyToken.
func PrincipalEmail(c *gin.Context) (string, bool) {
	email := c.GetString(principalKey)
	return email, email != ""
}
