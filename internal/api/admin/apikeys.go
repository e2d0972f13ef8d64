// apikeys.go implements handlers for personal API keys. The full key is
// returned exactly once, at creation.
package admin

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/student-registry/student-registry/internal/audit"
	"github.com/student-registry/student-registry/internal/auth"
	"github.com/student-registry/student-registry/internal/db/models"
	"github.com/student-registry/student-registry/internal/db/repositories"
	"github.com/student-registry/student-registry/internal/middleware"
)

// APIKeyHandlers handles API key endpoints. Keys are scoped to their owner;
// callers can only see and revoke their own keys.
type APIKeyHandlers struct {
	apiKeys  *repositories.APIKeyRepository
	recorder *audit.Recorder
}

// NewAPIKeyHandlers creates a new APIKeyHandlers instance.
func NewAPIKeyHandlers(apiKeys *repositories.APIKeyRepository, recorder *audit.Recorder) *APIKeyHandlers {
	return &APIKeyHandlers{apiKeys: apiKeys, recorder: recorder}
}

type createAPIKeyRequest struct {
	Name      string     `json:"name" binding:"required"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// ListHandler returns the caller's API keys (hashes excluded).
// GET /api/v1/apikeys
func (h *APIKeyHandlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		keys, err := h.apiKeys.ListAPIKeysByUser(c.Request.Context(), user.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list API keys"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"api_keys": keys, "count": len(keys)})
	}
}

// CreateHandler generates a new API key for the caller.
// POST /api/v1/apikeys
func (h *APIKeyHandlers) CreateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createAPIKeyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expires_at must be in the future"})
			return
		}

		plainKey, hash, displayPrefix, err := auth.GenerateAPIKey()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate key"})
			return
		}

		user := middleware.CurrentUser(c)
		key := &models.APIKey{
			UserID:        user.UserID,
			Name:          req.Name,
			KeyHash:       hash,
			DisplayPrefix: displayPrefix,
			ExpiresAt:     req.ExpiresAt,
		}
		if err := h.apiKeys.CreateAPIKey(c.Request.Context(), key); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store key"})
			return
		}

		h.recorder.Record(c.Request.Context(), actorID(c), models.ActionAdd,
			fmt.Sprintf("Created API key %q (%s)", key.Name, key.DisplayPrefix),
			"APIKey", &key.KeyID)

		c.JSON(http.StatusCreated, gin.H{
			"api_key": key,
			"key":     plainKey,
			"warning": "Store this key now. It will not be shown again.",
		})
	}
}

// DeleteHandler revokes one of the caller's keys.
// DELETE /api/v1/apikeys/:key_id
func (h *APIKeyHandlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		keyID := c.Param("key_id")
		user := middleware.CurrentUser(c)

		key, err := h.apiKeys.GetAPIKeyByID(c.Request.Context(), keyID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load key"})
			return
		}
		if key == nil || key.UserID != user.UserID {
			c.JSON(http.StatusNotFound, gin.H{"error": "API key not found"})
			return
		}

		if err := h.apiKeys.DeleteAPIKey(c.Request.Context(), keyID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke key"})
			return
		}

		h.recorder.Record(c.Request.Context(), actorID(c), models.ActionDelete,
			fmt.Sprintf("Revoked API key %q (%s)", key.Name, key.DisplayPrefix),
			"APIKey", &key.KeyID)

		c.JSON(http.StatusOK, gin.H{"message": "API key revoked"})
	}
}
