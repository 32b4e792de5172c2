package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blooddonation/internal/models"
	"blooddonation/internal/store"
)

const userKey = "user"

// UserLookup resolves the principal's stored record.
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// LoadUser attaches the principal's user record. Principals without a record
// are rejected.
func LoadUser(users UserLookup, log *zap.Logger) gin.HandlerFunc {
	return guard(users, log, false)
}

// RequireActive is LoadUser plus a rejection of blocked users.
func RequireActive(users UserLookup, log *zap.Logger) gin.HandlerFunc {
	return guard(users, log, true)
}

// RequireRole admits active users whose role is one of roles.
func RequireRole(users UserLookup, log *zap.Logger, roles ...string) gin.HandlerFunc {
	return guard(users, log, true, roles...)
}

func guard(users UserLookup, log *zap.Logger, activeOnly bool, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := PrincipalEmail(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized access"})
			return
		}

		user, err := users.FindByEmail(c.Request.Context(), email)
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden access"})
			return
		}
		if err != nil {
			log.Error("principal lookup failed", zap.String("email", email), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		if activeOnly && user.Status == models.StatusBlocked {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "account is blocked"})
			return
		}

		if len(roles) > 0 {
			match := false
			for _, r := range roles {
				if user.Role == r {
					match = true
					break
				}
			}
			if !match {
				log.Info("role check failed", zap.String("email", email), zap.String("role", user.Role), zap.Strings("allowed", roles))
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden access"})
				return
			}
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the record attached by LoadUser, RequireActive or RequireRole.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}
