// Package models - enrollment.go defines the Enrollment model linking
// students to courses.
package models

import "time"

// Enrollment represents one student's registration in one course. Grade is
// nil until a grade has been recorded.
type Enrollment struct {
	EnrollmentID int64     `json:"enrollment_id" db:"enrollment_id"`
	StudentID    string    `json:"student_id" db:"student_id"`
	CourseID     string    `json:"course_id" db:"course_id"`
	EnrollDate   time.Time `json:"enroll_date" db:"enroll_date"`
	Grade        *float64  `json:"grade,omitempty" db:"grade"`
}
