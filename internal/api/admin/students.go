// students.go implements CRUD handlers for student records.
package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/student-registry/student-registry/internal/db/models"
	"github.com/student-registry/student-registry/internal/services"
)

// StudentHandlers handles student management endpoints.
type StudentHandlers struct {
	students *services.StudentService
}

// NewStudentHandlers creates a new StudentHandlers instance.
func NewStudentHandlers(students *services.StudentService) *StudentHandlers {
	return &StudentHandlers{students: students}
}

type studentRequest struct {
	StudentID   string  `json:"student_id" binding:"required"`
	FullName    string  `json:"full_name" binding:"required"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	DateOfBirth *string `json:"date_of_birth"`
	Gender      string  `json:"gender"`
	Address     string  `json:"address"`
	Status      string  `json:"status"`
}

func (r *studentRequest) toModel() *models.Student {
	status := r.Status
	if status == "" {
		status = models.StudentActive
	}
	return &models.Student{
		StudentID:      r.StudentID,
		FullName:       r.FullName,
		Email:          r.Email,
		Phone:          r.Phone,
		DateOfBirth:    r.DateOfBirth,
		Gender:         r.Gender,
		Address:        r.Address,
		EnrollmentDate: time.Now().UTC(),
		Status:         status,
	}
}

// ListHandler returns students with optional search and pagination.
// GET /api/v1/students?search=&limit=&offset=
func (h *StudentHandlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		search, limit, offset := listParams(c)

		students, err := h.students.ListStudents(c.Request.Context(), search, limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list students"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"students": students, "count": len(students)})
	}
}

// GetHandler returns one student by ID.
// GET /api/v1/students/:student_id
func (h *StudentHandlers) GetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		student, err := h.students.GetStudent(c.Request.Context(), c.Param("student_id"))
		if err != nil {
			if errors.Is(err, services.ErrStudentNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load student"})
			return
		}
		c.JSON(http.StatusOK, student)
	}
}

// CreateHandler registers a new student.
// POST /api/v1/students
func (h *StudentHandlers) CreateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req studentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "student_id and full_name are required"})
			return
		}

		student := req.toModel()
		if err := h.students.CreateStudent(c.Request.Context(), actorID(c), student); err != nil {
			if errors.Is(err, services.ErrStudentExists) {
				c.JSON(http.StatusConflict, gin.H{"error": "A student with this ID already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create student"})
			return
		}
		c.JSON(http.StatusCreated, student)
	}
}

// UpdateHandler updates a student record. The path ID wins over any ID in the
// body.
// PUT /api/v1/students/:student_id
func (h *StudentHandlers) UpdateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req studentRequest
		req.StudentID = c.Param("student_id")
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		student := req.toModel()
		student.StudentID = c.Param("student_id")
		if err := h.students.UpdateStudent(c.Request.Context(), actorID(c), student); err != nil {
			if errors.Is(err, services.ErrStudentNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update student"})
			return
		}
		c.JSON(http.StatusOK, student)
	}
}

// DeleteHandler removes a student.
// DELETE /api/v1/students/:student_id
func (h *StudentHandlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.students.DeleteStudent(c.Request.Context(), actorID(c), c.Param("student_id")); err != nil {
			if errors.Is(err, services.ErrStudentNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
				return
			}
			if errors.Is(err, services.ErrStudentHasEnrollments) {
				c.JSON(http.StatusConflict, gin.H{"error": "Student has enrollments; drop them first"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete student"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Student deleted"})
	}
}
