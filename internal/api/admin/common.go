// Package admin implements the authenticated management API handlers.
package admin

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/student-registry/student-registry/internal/middleware"
)

// actorID returns the authenticated user's ID for audit attribution, or nil
// when the request carries no identity.
func actorID(c *gin.Context) *int64 {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil
	}
	id := user.UserID
	return &id
}

// listParams extracts search/limit/offset query parameters with sane bounds.
// limit defaults to 50 and is capped at 500.
func listParams(c *gin.Context) (search string, limit, offset int) {
	search = c.Query("search")

	limit = 50
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > 500 {
		limit = 500
	}

	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	return search, limit, offset
}
