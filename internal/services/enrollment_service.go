// enrollment_service.go implements enrollment management: registering
// students in courses with capacity checks, dropping, and grading.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/student-registry/student-registry/internal/audit"
	"github.com/student-registry/student-registry/internal/db/models"
	"github.com/student-registry/student-registry/internal/db/repositories"
)

// Validation failures surfaced by EnrollmentService.
var (
	ErrAlreadyEnrolled    = errors.New("student is already enrolled in this course")
	ErrCourseFull         = errors.New("course is at capacity")
	ErrCourseNotOpen      = errors.New("course is not open for enrollment")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrInvalidGrade       = errors.New("grade must be between 0 and 10")
)

// EnrollmentService manages student-course registrations.
type EnrollmentService struct {
	enrollments *repositories.EnrollmentRepository
	students    *repositories.StudentRepository
	courses     *repositories.CourseRepository
	recorder    *audit.Recorder
}

// NewEnrollmentService creates an EnrollmentService.
func NewEnrollmentService(
	enrollments *repositories.EnrollmentRepository,
	students *repositories.StudentRepository,
	courses *repositories.CourseRepository,
	recorder *audit.Recorder,
) *EnrollmentService {
	return &EnrollmentService{
		enrollments: enrollments,
		students:    students,
		courses:     courses,
		recorder:    recorder,
	}
}

// Enroll registers a student in a course after checking that both exist, the
// course is open and has capacity, and the student is not already enrolled.
//
// The capacity check and the insert are two statements without a wrapping
// transaction; two concurrent enrollments into a course with one remaining
// seat can both pass the check. With the connection pool capped at one
// connection the window is effectively closed, and the unique constraint
// still prevents duplicates.
func (s *EnrollmentService) Enroll(ctx context.Context, actorID *int64, studentID, courseID string) (*models.Enrollment, error) {
	student, err := s.students.GetStudentByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up student: %w", err)
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}

	course, err := s.courses.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	if course.Status != models.CourseOpen {
		return nil, ErrCourseNotOpen
	}

	existing, err := s.enrollments.GetEnrollment(ctx, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyEnrolled
	}

	if course.MaxStudents > 0 {
		count, err := s.enrollments.CountEnrollmentsForCourse(ctx, courseID)
		if err != nil {
			return nil, fmt.Errorf("failed to count enrollments: %w", err)
		}
		if count >= int64(course.MaxStudents) {
			return nil, ErrCourseFull
		}
	}

	enrollment := &models.Enrollment{StudentID: studentID, CourseID: courseID}
	if err := s.enrollments.CreateEnrollment(ctx, enrollment); err != nil {
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	s.recorder.Record(ctx, actorID, models.ActionAdd,
		fmt.Sprintf("Enrolled student %s in course %s", studentID, courseID),
		"Enrollment", int64Str(enrollment.EnrollmentID))

	return enrollment, nil
}

// Drop removes an enrollment and records the DELETE.
func (s *EnrollmentService) Drop(ctx context.Context, actorID *int64, enrollmentID int64) error {
	enrollment, err := s.get(ctx, enrollmentID)
	if err != nil {
		return err
	}

	if err := s.enrollments.DeleteEnrollment(ctx, enrollmentID); err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}

	s.recorder.Record(ctx, actorID, models.ActionDelete,
		fmt.Sprintf("Dropped student %s from course %s", enrollment.StudentID, enrollment.CourseID),
		"Enrollment", int64Str(enrollmentID))

	return nil
}

// SetGrade records (or clears, with nil) a grade on a 0-10 scale.
func (s *EnrollmentService) SetGrade(ctx context.Context, actorID *int64, enrollmentID int64, grade *float64) error {
	if grade != nil && (*grade < 0 || *grade > 10) {
		return ErrInvalidGrade
	}

	enrollment, err := s.get(ctx, enrollmentID)
	if err != nil {
		return err
	}

	if err := s.enrollments.UpdateGrade(ctx, enrollmentID, grade); err != nil {
		return fmt.Errorf("failed to update grade: %w", err)
	}

	desc := fmt.Sprintf("Cleared grade for student %s in course %s", enrollment.StudentID, enrollment.CourseID)
	if grade != nil {
		desc = fmt.Sprintf("Graded student %s in course %s: %.1f", enrollment.StudentID, enrollment.CourseID, *grade)
	}
	s.recorder.Record(ctx, actorID, models.ActionUpdate, desc, "Enrollment", int64Str(enrollmentID))

	return nil
}

// ListByStudent retrieves a student's enrollments.
func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID string) ([]*models.Enrollment, error) {
	return s.enrollments.ListEnrollmentsByStudent(ctx, studentID)
}

// ListByCourse retrieves a course's enrollments.
func (s *EnrollmentService) ListByCourse(ctx context.Context, courseID string) ([]*models.Enrollment, error) {
	return s.enrollments.ListEnrollmentsByCourse(ctx, courseID)
}

func (s *EnrollmentService) get(ctx context.Context, enrollmentID int64) (*models.Enrollment, error) {
	enrollment, err := s.enrollments.GetEnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up enrollment: %w", err)
	}
	if enrollment == nil {
		return nil, ErrEnrollmentNotFound
	}
	return enrollment, nil
}
