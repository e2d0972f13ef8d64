// users.go implements admin-only handlers for managing staff accounts.
package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/student-registry/student-registry/internal/db/models"
	"github.com/student-registry/student-registry/internal/services"
)

// UserHandlers handles user management endpoints. All routes require the
// admin role.
type UserHandlers struct {
	users *services.UserService
}

// NewUserHandlers creates a new UserHandlers instance.
func NewUserHandlers(users *services.UserService) *UserHandlers {
	return &UserHandlers{users: users}
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive *bool  `json:"is_active"`
}

type updateUserRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type changePasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func pathUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return 0, false
	}
	return id, true
}

// ListHandler returns all user accounts.
// GET /api/v1/users
func (h *UserHandlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := h.users.ListUsers(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
	}
}

// GetHandler returns one user account.
// GET /api/v1/users/:user_id
func (h *UserHandlers) GetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUserID(c)
		if !ok {
			return
		}

		user, err := h.users.GetUser(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// CreateHandler creates a new staff or admin account.
// POST /api/v1/users
func (h *UserHandlers) CreateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
			return
		}

		role := req.Role
		if role == "" {
			role = models.RoleStaff
		}
		active := true
		if req.IsActive != nil {
			active = *req.IsActive
		}

		user, err := h.users.CreateUser(c.Request.Context(), actorID(c),
			req.Username, req.Password, req.FullName, req.Email, role, active)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUsernameTaken):
				c.JSON(http.StatusConflict, gin.H{"error": "Username is already taken"})
			case errors.Is(err, services.ErrEmptyField):
				c.JSON(http.StatusBadRequest, gin.H{"error": "username and password must not be empty"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			}
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

// UpdateHandler updates profile fields (full name, email, role).
// PUT /api/v1/users/:user_id
func (h *UserHandlers) UpdateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUserID(c)
		if !ok {
			return
		}

		var req updateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		user, err := h.users.UpdateProfile(c.Request.Context(), actorID(c), id, req.FullName, req.Email, req.Role)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// PasswordHandler replaces a user's password.
// PUT /api/v1/users/:user_id/password
func (h *UserHandlers) PasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUserID(c)
		if !ok {
			return
		}

		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "new_password is required"})
			return
		}

		if err := h.users.ChangePassword(c.Request.Context(), actorID(c), id, req.NewPassword); err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			case errors.Is(err, services.ErrEmptyField):
				c.JSON(http.StatusBadRequest, gin.H{"error": "new_password must not be empty"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
	}
}

// ActiveHandler enables or disables an account.
// PUT /api/v1/users/:user_id/active
func (h *UserHandlers) ActiveHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUserID(c)
		if !ok {
			return
		}

		var req setActiveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "is_active is required"})
			return
		}

		if err := h.users.SetActive(c.Request.Context(), actorID(c), id, *req.IsActive); err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update account state"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Account state updated"})
	}
}

// DeleteHandler removes an account. Self-deletion is rejected so an admin
// cannot lock themselves out mid-session.
// DELETE /api/v1/users/:user_id
func (h *UserHandlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUserID(c)
		if !ok {
			return
		}

		if actor := actorID(c); actor != nil && *actor == id {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete your own account"})
			return
		}

		if err := h.users.DeleteUser(c.Request.Context(), actorID(c), id); err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
	}
}
