// enrollment_repository.go implements EnrollmentRepository, providing queries
// for student-course registrations and grades.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/student-registry/student-registry/internal/db/models"
)

// EnrollmentRepository handles enrollment database operations
type EnrollmentRepository struct {
	db *sql.DB
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db *sql.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `enrollment_id, student_id, course_id, enroll_date, grade`

func scanEnrollmentRow(scan func(dest ...interface{}) error) (*models.Enrollment, error) {
	e := &models.Enrollment{}
	err := scan(
		&e.EnrollmentID,
		&e.StudentID,
		&e.CourseID,
		&e.EnrollDate,
		&e.Grade,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// CreateEnrollment inserts a new enrollment and assigns the generated ID to
// the passed record. The unique (student_id, course_id) constraint makes a
// duplicate enrollment a storage error surfaced to the caller.
func (r *EnrollmentRepository) CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.EnrollDate.IsZero() {
		enrollment.EnrollDate = time.Now()
	}

	query := `
		INSERT INTO enrollments (student_id, course_id, enroll_date, grade)
		VALUES (?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(ctx, query,
		enrollment.StudentID,
		enrollment.CourseID,
		enrollment.EnrollDate,
		enrollment.Grade,
	)
	if err != nil {
		return err
	}

	enrollment.EnrollmentID, err = res.LastInsertId()
	return err
}

// GetEnrollmentByID retrieves an enrollment by its surrogate ID
func (r *EnrollmentRepository) GetEnrollmentByID(ctx context.Context, enrollmentID int64) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE enrollment_id = ?`

	e, err := scanEnrollmentRow(r.db.QueryRowContext(ctx, query, enrollmentID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetEnrollment retrieves the enrollment for one student in one course
func (r *EnrollmentRepository) GetEnrollment(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE student_id = ? AND course_id = ?`

	e, err := scanEnrollmentRow(r.db.QueryRowContext(ctx, query, studentID, courseID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *EnrollmentRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := make([]*models.Enrollment, 0)
	for rows.Next() {
		e, err := scanEnrollmentRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}

	return enrollments, rows.Err()
}

// ListEnrollmentsByStudent retrieves a student's enrollments, newest first
func (r *EnrollmentRepository) ListEnrollmentsByStudent(ctx context.Context, studentID string) ([]*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE student_id = ? ORDER BY enroll_date DESC, enrollment_id DESC`
	return r.list(ctx, query, studentID)
}

// ListEnrollmentsByCourse retrieves a course's enrollments, newest first
func (r *EnrollmentRepository) ListEnrollmentsByCourse(ctx context.Context, courseID string) ([]*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE course_id = ? ORDER BY enroll_date DESC, enrollment_id DESC`
	return r.list(ctx, query, courseID)
}

// UpdateGrade sets (or clears, with nil) the grade for an enrollment
func (r *EnrollmentRepository) UpdateGrade(ctx context.Context, enrollmentID int64, grade *float64) error {
	query := `UPDATE enrollments SET grade = ? WHERE enrollment_id = ?`
	_, err := r.db.ExecContext(ctx, query, grade, enrollmentID)
	return err
}

// DeleteEnrollment removes an enrollment (a course drop)
func (r *EnrollmentRepository) DeleteEnrollment(ctx context.Context, enrollmentID int64) error {
	query := `DELETE FROM enrollments WHERE enrollment_id = ?`
	_, err := r.db.ExecContext(ctx, query, enrollmentID)
	return err
}

// CountEnrollmentsForStudent returns the number of courses a student is enrolled in
func (r *EnrollmentRepository) CountEnrollmentsForStudent(ctx context.Context, studentID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrollments WHERE student_id = ?`, studentID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountEnrollmentsForCourse returns the number of students enrolled in a course
func (r *EnrollmentRepository) CountEnrollmentsForCourse(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrollments WHERE course_id = ?`, courseID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountEnrollments returns the total number of enrollment records
func (r *EnrollmentRepository) CountEnrollments(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrollments`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
