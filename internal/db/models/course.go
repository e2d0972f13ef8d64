// Package models - course.go defines the Course model.
package models

// Course statuses.
const (
	CourseOpen     = "open"
	CourseClosed   = "closed"
	CourseArchived = "archived"
)

// Course represents a course offering. CourseID is a human-assigned code such
// as "CS101". MaxStudents of zero means unlimited capacity.
type Course struct {
	CourseID    string `json:"course_id" db:"course_id"`
	CourseName  string `json:"course_name" db:"course_name"`
	Credits     int    `json:"credits" db:"credits"`
	Instructor  string `json:"instructor" db:"instructor"`
	Semester    string `json:"semester" db:"semester"`
	MaxStudents int    `json:"max_students" db:"max_students"`
	Status      string `json:"status" db:"status"`
}
