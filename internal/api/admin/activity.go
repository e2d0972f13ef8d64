// activity.go implements read-only handlers over the activity log. Entries
// are append-only; there is no mutation surface here.
package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/student-registry/student-registry/internal/db/repositories"
)

// ActivityHandlers handles activity log queries.
type ActivityHandlers struct {
	activity     *repositories.ActivityRepository
	defaultLimit int
}

// NewActivityHandlers creates a new ActivityHandlers instance. defaultLimit
// caps responses when the caller does not pass an explicit limit.
func NewActivityHandlers(activity *repositories.ActivityRepository, defaultLimit int) *ActivityHandlers {
	return &ActivityHandlers{activity: activity, defaultLimit: defaultLimit}
}

// parseFilters maps query parameters onto the repository's filter set.
// Timestamps are RFC 3339. A malformed parameter is an error rather than a
// silently ignored filter, so callers never mistake an unfiltered result for
// a filtered one.
func parseFilters(c *gin.Context) (repositories.ActivityFilters, bool) {
	var filters repositories.ActivityFilters

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be an RFC 3339 timestamp"})
			return filters, false
		}
		filters.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be an RFC 3339 timestamp"})
			return filters, false
		}
		filters.To = &t
	}
	if v := c.Query("action_type"); v != "" {
		filters.ActionType = &v
	}
	if v := c.Query("entity_type"); v != "" {
		filters.EntityType = &v
	}
	if v := c.Query("search"); v != "" {
		filters.Search = &v
	}
	return filters, true
}

// ListHandler returns activity entries, newest first.
// GET /api/v1/activity?from=&to=&action_type=&entity_type=&search=&limit=
func (h *ActivityHandlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filters, ok := parseFilters(c)
		if !ok {
			return
		}

		limit := h.defaultLimit
		if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
			limit = v
		}

		entries, err := h.activity.ListActivity(c.Request.Context(), filters, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query activity log"})
			return
		}

		total, err := h.activity.CountActivity(c.Request.Context(), filters)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query activity log"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"entries": entries,
			"count":   len(entries),
			"total":   total,
		})
	}
}
