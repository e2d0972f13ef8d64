// course_service.go implements course management with validation and
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

// Validation failures surfaced by CourseService.
var (
	ErrCourseExists         = errors.New("course ID already exists")
	ErrCourseNotFound       = errors.New("course not found")
	ErrCourseHasEnrollments = errors.New("course has enrollments")
)

// CourseService manages course records.
type CourseService struct {
	courses     *repositories.CourseRepository
	enrollments *repositories.EnrollmentRepository
	recorder    *audit.Recorder
}

// NewCourseService creates a CourseService.
func NewCourseService(courses *repositories.CourseRepository, enrollments *repositories.EnrollmentRepository, recorder *audit.Recorder) *CourseService {
	return &CourseService{courses: courses, enrollments: enrollments, recorder: recorder}
}

// CreateCourse validates and inserts a course record, then records the ADD.
func (s *CourseService) CreateCourse(ctx context.Context, actorID *int64, course *models.Course) error {
	if course.CourseID == "" || course.CourseName == "" {
		return ErrEmptyField
	}

	existing, err := s.courses.GetCourseByID(ctx, course.CourseID)
	if err != nil {
		return fmt.Errorf("failed to check course ID: %w", err)
	}
	if existing != nil {
		return ErrCourseExists
	}

	if err := s.courses.CreateCourse(ctx, course); err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	s.recorder.Record(ctx, actorID, models.ActionAdd,
		fmt.Sprintf("Added course %s (%s)", course.CourseName, course.CourseID),
		"Course", strPtr(course.CourseID))

	return nil
}

// GetCourse retrieves a course record by ID.
func (s *CourseService) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	course, err := s.courses.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

// ListCourses retrieves course records with optional substring search.
func (s *CourseService) ListCourses(ctx context.Context, search string, limit, offset int) ([]*models.Course, error) {
	return s.courses.ListCourses(ctx, search, limit, offset)
}

// UpdateCourse replaces the mutable fields of an existing record and records
// the UPDATE.
func (s *CourseService) UpdateCourse(ctx context.Context, actorID *int64, course *models.Course) error {
	if course.CourseName == "" {
		return ErrEmptyField
	}

	if _, err := s.GetCourse(ctx, course.CourseID); err != nil {
		return err
	}

	if err := s.courses.UpdateCourse(ctx, course); err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	s.recorder.Record(ctx, actorID, models.ActionUpdate,
		fmt.Sprintf("Updated course %s (%s)", course.CourseName, course.CourseID),
		"Course", strPtr(course.CourseID))

	return nil
}

// DeleteCourse removes a course record and records the DELETE.
func (s *CourseService) DeleteCourse(ctx context.Context, actorID *int64, courseID string) error {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}

	// Same rule as student deletion: enrollments must be dropped first so
	// each drop is recorded on its own.
	count, err := s.enrollments.CountEnrollmentsForCourse(ctx, courseID)
	if err != nil {
		return fmt.Errorf("failed to check enrollments: %w", err)
	}
	if count > 0 {
		return ErrCourseHasEnrollments
	}

	if err := s.courses.DeleteCourse(ctx, courseID); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	s.recorder.Record(ctx, actorID, models.ActionDelete,
		fmt.Sprintf("Deleted course %s (%s)", course.CourseName, course.CourseID),
		"Course", strPtr(courseID))

	return nil
}
