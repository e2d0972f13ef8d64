// stats.go implements the dashboard statistics handler.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/student-registry/student-registry/internal/db/models"
	"github.com/student-registry/student-registry/internal/db/repositories"
)

// StatsHandlers aggregates counts across the registry for the dashboard.
type StatsHandlers struct {
	students    *repositories.StudentRepository
	courses     *repositories.CourseRepository
	enrollments *repositories.EnrollmentRepository
	users       *repositories.UserRepository
	activity    *repositories.ActivityRepository
}

// NewStatsHandlers creates a new StatsHandlers instance.
func NewStatsHandlers(
	students *repositories.StudentRepository,
	courses *repositories.CourseRepository,
	enrollments *repositories.EnrollmentRepository,
	users *repositories.UserRepository,
	activity *repositories.ActivityRepository,
) *StatsHandlers {
	return &StatsHandlers{
		students:    students,
		courses:     courses,
		enrollments: enrollments,
		users:       users,
		activity:    activity,
	}
}

// DashboardStats is the response for dashboard statistics.
type DashboardStats struct {
	Students         int64                             `json:"students"`
	StudentsByStatus []repositories.StudentStatusCount `json:"students_by_status"`
	Courses          int64                             `json:"courses"`
	Enrollments      int64                             `json:"enrollments"`
	Users            int64                             `json:"users"`
	RecentActivity   []*models.ActivityEntry           `json:"recent_activity"`
}

// recentActivityLimit bounds the dashboard's activity feed.
const recentActivityLimit = 10

// DashboardHandler returns aggregate counts plus the most recent activity.
// GET /api/v1/stats/dashboard
func (h *StatsHandlers) DashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var stats DashboardStats
		var err error

		if stats.Students, err = h.students.CountStudents(ctx); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to gather statistics"})
			return
		}
		if stats.StudentsByStatus, err = h.students.CountStudentsByStatus(ctx); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to gather statistics"})
			return
		}
		if stats.Courses, err = h.courses.CountCourses(ctx); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to gather statistics"})
			return
		}
		if stats.Enrollments, err = h.enrollments.CountEnrollments(ctx); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to gather statistics"})
			return
		}
		if stats.Users, err = h.users.CountUsers(ctx); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to gather statistics"})
			return
		}
		if stats.RecentActivity, err = h.activity.ListActivity(ctx, repositories.ActivityFilters{}, recentActivityLimit); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to gather statistics"})
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}
