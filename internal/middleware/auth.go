// auth.go validates bearer credentials (JWT session tokens or API keys) and
// populates the acting user's identity in the request context.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/student-registry/student-registry/internal/auth"
	"github.com/student-registry/student-registry/internal/db/models"
	"github.com/student-registry/student-registry/internal/db/repositories"
)

// Context keys populated by AuthMiddleware.
const (
	UserIDKey     = "user_id"
	UserKey       = "user"
	AuthMethodKey = "auth_method"
)

// AuthMiddleware validates authentication (JWT or API key). JWTs are tried
// first because validation is local; API keys need a database lookup plus a
// bcrypt comparison.
func AuthMiddleware(userRepo *repositories.UserRepository, apiKeyRepo *repositories.APIKeyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		if claims, err := auth.ValidateJWT(token); err == nil {
			user, err := userRepo.GetUserByID(c.Request.Context(), claims.UserID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
				return
			}
			if user == nil || !user.IsActive {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account is no longer valid"})
				return
			}

			setIdentity(c, user, "jwt")
			c.Next()
			return
		}

		if strings.HasPrefix(token, auth.APIKeyPrefix+"_") {
			if user, ok := validateAPIKey(c, token, userRepo, apiKeyRepo); ok {
				setIdentity(c, user, "api_key")
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired credentials"})
	}
}

// validateAPIKey looks up candidate keys by display prefix and bcrypt-compares
// the presented key against each. ok is false for both "no match" and lookup
// faults; the distinction is not surfaced to unauthenticated callers.
func validateAPIKey(c *gin.Context, token string, userRepo *repositories.UserRepository, apiKeyRepo *repositories.APIKeyRepository) (*models.User, bool) {
	ctx := c.Request.Context()

	candidates, err := apiKeyRepo.GetAPIKeysByPrefix(ctx, auth.KeyDisplayPrefix(token))
	if err != nil {
		return nil, false
	}

	for _, key := range candidates {
		if key.IsExpired() || !auth.ValidateAPIKey(token, key.KeyHash) {
			continue
		}

		user, err := userRepo.GetUserByID(ctx, key.UserID)
		if err != nil || user == nil || !user.IsActive {
			return nil, false
		}

		// Best effort; an authenticated request proceeds even if the
		// bookkeeping write fails.
		_ = apiKeyRepo.TouchLastUsed(ctx, key.KeyID)

		return user, true
	}

	return nil, false
}

// RequireAdmin aborts with 403 unless the authenticated user holds the admin
// role. Must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil outside an authenticated
// request.
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(UserKey); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func setIdentity(c *gin.Context, user *models.User, method string) {
	c.Set(UserIDKey, user.UserID)
	c.Set(UserKey, user)
	c.Set(AuthMethodKey, method)
}
