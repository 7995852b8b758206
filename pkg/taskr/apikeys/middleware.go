package apikeys

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/taskr/pkg/taskr/auth"
	"github.com/mikepea/taskr/pkg/taskr/middleware"
	"gorm.io/gorm"
)

// CombinedAuthMiddleware accepts a JWT or an API key as the bearer token.
// Anything not carrying the key prefix goes through the JWT check.
func CombinedAuthMiddleware(db *gorm.DB, issuer *auth.Issuer) gin.HandlerFunc {
	jwtAuth := auth.AuthMiddleware(issuer)
	keys := NewService(db)

	return func(c *gin.Context) {
		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || !strings.HasPrefix(strings.TrimSpace(parts[1]), Prefix) {
			jwtAuth(c)
			return
		}

		key, err := keys.Resolve(c.Request.Context(), strings.TrimSpace(parts[1]))
		if key == nil {
			if !errors.Is(err, ErrInvalidKey) {
				middleware.Logger(c).WithError(err).Error("api key lookup failed")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not Authorized"})
			return
		}
		if err != nil {
			middleware.Logger(c).WithError(err).Warn("api key accepted but use not recorded")
		}

		c.Set(auth.ContextKeyUserID, key.UserID)
		c.Set(auth.ContextKeyEmail, key.User.Email)
		c.Set(auth.ContextKeySystemRole, string(key.User.SystemRole))
		c.Next()
	}
}
