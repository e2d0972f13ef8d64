// enrollments.go implements handlers for enrolling students in courses,
// dropping them, and recording grades.
package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/student-registry/student-registry/internal/services"
)

// EnrollmentHandlers handles enrollment endpoints.
type EnrollmentHandlers struct {
	enrollments *services.EnrollmentService
}

// NewEnrollmentHandlers creates a new EnrollmentHandlers instance.
func NewEnrollmentHandlers(enrollments *services.EnrollmentService) *EnrollmentHandlers {
	return &EnrollmentHandlers{enrollments: enrollments}
}

type enrollRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	CourseID  string `json:"course_id" binding:"required"`
}

type gradeRequest struct {
	Grade *float64 `json:"grade"`
}

// EnrollHandler enrolls a student in a course.
// POST /api/v1/enrollments
func (h *EnrollmentHandlers) EnrollHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req enrollRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "student_id and course_id are required"})
			return
		}

		enrollment, err := h.enrollments.Enroll(c.Request.Context(), actorID(c), req.StudentID, req.CourseID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrStudentNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
			case errors.Is(err, services.ErrCourseNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			case errors.Is(err, services.ErrAlreadyEnrolled):
				c.JSON(http.StatusConflict, gin.H{"error": "Student is already enrolled in this course"})
			case errors.Is(err, services.ErrCourseFull):
				c.JSON(http.StatusConflict, gin.H{"error": "Course has reached its capacity"})
			case errors.Is(err, services.ErrCourseNotOpen):
				c.JSON(http.StatusConflict, gin.H{"error": "Course is not open for enrollment"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enroll student"})
			}
			return
		}
		c.JSON(http.StatusCreated, enrollment)
	}
}

// DropHandler removes an enrollment.
// DELETE /api/v1/enrollments/:enrollment_id
func (h *EnrollmentHandlers) DropHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("enrollment_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid enrollment ID"})
			return
		}

		if err := h.enrollments.Drop(c.Request.Context(), actorID(c), id); err != nil {
			if errors.Is(err, services.ErrEnrollmentNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Enrollment not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to drop enrollment"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Enrollment dropped"})
	}
}

// GradeHandler sets or clears the grade for an enrollment. A null grade
// clears it.
// PUT /api/v1/enrollments/:enrollment_id/grade
func (h *EnrollmentHandlers) GradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("enrollment_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid enrollment ID"})
			return
		}

		var req gradeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		if err := h.enrollments.SetGrade(c.Request.Context(), actorID(c), id, req.Grade); err != nil {
			switch {
			case errors.Is(err, services.ErrEnrollmentNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Enrollment not found"})
			case errors.Is(err, services.ErrInvalidGrade):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Grade must be between 0 and 10"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set grade"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Grade recorded"})
	}
}

// ListByStudentHandler returns all enrollments for one student.
// GET /api/v1/students/:student_id/enrollments
func (h *EnrollmentHandlers) ListByStudentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		enrollments, err := h.enrollments.ListByStudent(c.Request.Context(), c.Param("student_id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list enrollments"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"enrollments": enrollments, "count": len(enrollments)})
	}
}

// ListByCourseHandler returns all enrollments for one course.
// GET /api/v1/courses/:course_id/enrollments
func (h *EnrollmentHandlers) ListByCourseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		enrollments, err := h.enrollments.ListByCourse(c.Request.Context(), c.Param("course_id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list enrollments"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"enrollments": enrollments, "count": len(enrollments)})
	}
}
