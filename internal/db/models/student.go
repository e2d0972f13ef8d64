// Package models - student.go defines the Student model.
package models

import "time"

// Student statuses.
const (
	StudentActive    = "active"
	StudentOnLeave   = "on_leave"
	StudentGraduated = "graduated"
	StudentWithdrawn = "withdrawn"
)

// Student represents a student record. StudentID is a human-assigned code
// such as "SV001" rather than a surrogate key.
type Student struct {
	StudentID      string    `json:"student_id" db:"student_id"`
	FullName       string    `json:"full_name" db:"full_name"`
	Email          string    `json:"email" db:"email"`
	Phone          string    `json:"phone" db:"phone"`
	DateOfBirth    *string   `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Gender         string    `json:"gender" db:"gender"`
	Address        string    `json:"address" db:"address"`
	EnrollmentDate time.Time `json:"enrollment_date" db:"enrollment_date"`
	Status         string    `json:"status" db:"status"`
}
