// courses.go implements CRUD handlers for course offerings.
package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/student-registry/student-registry/internal/db/models"
	"github.com/student-registry/student-registry/internal/services"
)

// CourseHandlers handles course management endpoints.
type CourseHandlers struct {
	courses *services.CourseService
}

// NewCourseHandlers creates a new CourseHandlers instance.
func NewCourseHandlers(courses *services.CourseService) *CourseHandlers {
	return &CourseHandlers{courses: courses}
}

type courseRequest struct {
	CourseID    string `json:"course_id" binding:"required"`
	CourseName  string `json:"course_name" binding:"required"`
	Credits     int    `json:"credits"`
	Instructor  string `json:"instructor"`
	Semester    string `json:"semester"`
	MaxStudents int    `json:"max_students"`
	Status      string `json:"status"`
}

func (r *courseRequest) toModel() *models.Course {
	status := r.Status
	if status == "" {
		status = models.CourseOpen
	}
	return &models.Course{
		CourseID:    r.CourseID,
		CourseName:  r.CourseName,
		Credits:     r.Credits,
		Instructor:  r.Instructor,
		Semester:    r.Semester,
		MaxStudents: r.MaxStudents,
		Status:      status,
	}
}

// ListHandler returns courses with optional search and pagination.
// GET /api/v1/courses?search=&limit=&offset=
func (h *CourseHandlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		search, limit, offset := listParams(c)

		courses, err := h.courses.ListCourses(c.Request.Context(), search, limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list courses"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"courses": courses, "count": len(courses)})
	}
}

// GetHandler returns one course by ID.
// GET /api/v1/courses/:course_id
func (h *CourseHandlers) GetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		course, err := h.courses.GetCourse(c.Request.Context(), c.Param("course_id"))
		if err != nil {
			if errors.Is(err, services.ErrCourseNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load course"})
			return
		}
		c.JSON(http.StatusOK, course)
	}
}

// CreateHandler registers a new course.
// POST /api/v1/courses
func (h *CourseHandlers) CreateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req courseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "course_id and course_name are required"})
			return
		}

		course := req.toModel()
		if err := h.courses.CreateCourse(c.Request.Context(), actorID(c), course); err != nil {
			if errors.Is(err, services.ErrCourseExists) {
				c.JSON(http.StatusConflict, gin.H{"error": "A course with this ID already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course"})
			return
		}
		c.JSON(http.StatusCreated, course)
	}
}

// UpdateHandler updates a course. The path ID wins over any ID in the body.
// PUT /api/v1/courses/:course_id
func (h *CourseHandlers) UpdateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req courseRequest
		req.CourseID = c.Param("course_id")
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		course := req.toModel()
		course.CourseID = c.Param("course_id")
		if err := h.courses.UpdateCourse(c.Request.Context(), actorID(c), course); err != nil {
			if errors.Is(err, services.ErrCourseNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update course"})
			return
		}
		c.JSON(http.StatusOK, course)
	}
}

// DeleteHandler removes a course.
// DELETE /api/v1/courses/:course_id
func (h *CourseHandlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.courses.DeleteCourse(c.Request.Context(), actorID(c), c.Param("course_id")); err != nil {
			if errors.Is(err, services.ErrCourseNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
				return
			}
			if errors.Is(err, services.ErrCourseHasEnrollments) {
				c.JSON(http.StatusConflict, gin.H{"error": "Course has enrollments; drop them first"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete course"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Course deleted"})
	}
}
