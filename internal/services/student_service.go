// student_service.go implements student record management with validation and
// per-mutation activity entries.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/student-registry/student-registry/internal/audit"
	"github.com/student-registry/student-registry/internal/db/models"
	"github.com/student-registry/student-registry/internal/db/repositories"
)

// Validation failures surfaced by StudentService.
var (
	ErrStudentExists         = errors.New("student ID already exists")
	ErrStudentNotFound       = errors.New("student not found")
	ErrStudentHasEnrollments = errors.New("student has enrollments")
)

// StudentService manages student records.
type StudentService struct {
	students    *repositories.StudentRepository
	enrollments *repositories.EnrollmentRepository
	recorder    *audit.Recorder
}

// NewStudentService creates a StudentService.
func NewStudentService(students *repositories.StudentRepository, enrollments *repositories.EnrollmentRepository, recorder *audit.Recorder) *StudentService {
	return &StudentService{students: students, enrollments: enrollments, recorder: recorder}
}

// CreateStudent validates and inserts a student record, then records the ADD.
func (s *StudentService) CreateStudent(ctx context.Context, actorID *int64, student *models.Student) error {
	if student.StudentID == "" || student.FullName == "" {
		return ErrEmptyField
	}

	existing, err := s.students.GetStudentByID(ctx, student.StudentID)
	if err != nil {
		return fmt.Errorf("failed to check student ID: %w", err)
	}
	if existing != nil {
		return ErrStudentExists
	}

	if err := s.students.CreateStudent(ctx, student); err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}

	s.recorder.Record(ctx, actorID, models.ActionAdd,
		fmt.Sprintf("Added student %s (%s)", student.FullName, student.StudentID),
		"Student", strPtr(student.StudentID))

	return nil
}

// GetStudent retrieves a student record by ID.
func (s *StudentService) GetStudent(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.students.GetStudentByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	return student, nil
}

// ListStudents retrieves student records with optional substring search.
func (s *StudentService) ListStudents(ctx context.Context, search string, limit, offset int) ([]*models.Student, error) {
	return s.students.ListStudents(ctx, search, limit, offset)
}

// UpdateStudent replaces the mutable fields of an existing record and records
// the UPDATE.
func (s *StudentService) UpdateStudent(ctx context.Context, actorID *int64, student *models.Student) error {
	if student.FullName == "" {
		return ErrEmptyField
	}

	if _, err := s.GetStudent(ctx, student.StudentID); err != nil {
		return err
	}

	if err := s.students.UpdateStudent(ctx, student); err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}

	s.recorder.Record(ctx, actorID, models.ActionUpdate,
		fmt.Sprintf("Updated student %s (%s)", student.FullName, student.StudentID),
		"Student", strPtr(student.StudentID))

	return nil
}

// DeleteStudent removes a student record and records the DELETE.
func (s *StudentService) DeleteStudent(ctx context.Context, actorID *int64, studentID string) error {
	student, err := s.GetStudent(ctx, studentID)
	if err != nil {
		return err
	}

	// Enrollments are dropped explicitly so each drop leaves its own
	// activity entry; a delete never silently discards them.
	count, err := s.enrollments.CountEnrollmentsForStudent(ctx, studentID)
	if err != nil {
		return fmt.Errorf("failed to check enrollments: %w", err)
	}
	if count > 0 {
		return ErrStudentHasEnrollments
	}

	if err := s.students.DeleteStudent(ctx, studentID); err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}

	s.recorder.Record(ctx, actorID, models.ActionDelete,
		fmt.Sprintf("Deleted student %s (%s)", student.FullName, student.StudentID),
		"Student", strPtr(studentID))

	return nil
}
