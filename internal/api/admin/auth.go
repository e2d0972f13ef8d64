// auth.go implements HTTP handlers for username/password login, logout, and
// the current-user endpoint.
package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/student-registry/student-registry/internal/auth"
	"github.com/student-registry/student-registry/internal/config"
	"github.com/student-registry/student-registry/internal/middleware"
	"github.com/student-registry/student-registry/internal/services"
	"github.com/student-registry/student-registry/internal/telemetry"
)

// AuthHandlers handles authentication-related endpoints.
type AuthHandlers struct {
	cfg           *config.Config
	authenticator *services.Authenticator
}

// NewAuthHandlers creates a new AuthHandlers instance.
func NewAuthHandlers(cfg *config.Config, authenticator *services.Authenticator) *AuthHandlers {
	return &AuthHandlers{cfg: cfg, authenticator: authenticator}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginHandler authenticates a username/password pair and issues a JWT.
// POST /api/v1/auth/login
func (h *AuthHandlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
			return
		}

		user, err := h.authenticator.Authenticate(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				telemetry.LoginAttemptsTotal.WithLabelValues("failure").Inc()
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
			return
		}

		token, err := auth.GenerateJWT(user.UserID, user.Username, user.Role, h.cfg.Auth.SessionTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue session token"})
			return
		}

		telemetry.LoginAttemptsTotal.WithLabelValues("success").Inc()
		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"expires_at": time.Now().Add(h.cfg.Auth.SessionTTL).UTC(),
			"user":       user,
		})
	}
}

// LogoutHandler records a logout event. JWTs are stateless so the token itself
// is not revoked; clients discard it.
// POST /api/v1/auth/logout
func (h *AuthHandlers) LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := middleware.CurrentUser(c); user != nil {
			h.authenticator.RecordLogout(c.Request.Context(), user)
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// MeHandler returns the authenticated user's own record.
// GET /api/v1/auth/me
func (h *AuthHandlers) MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
