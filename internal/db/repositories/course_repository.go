// course_repository.go implements CourseRepository, providing CRUD and search
// queries for course records.
package repositories

import (
	"context"
	"database/sql"

	"github.com/student-registry/student-registry/internal/db/models"
)

// CourseRepository handles course database operations
type CourseRepository struct {
	db *sql.DB
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *sql.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `course_id, course_name, credits, instructor, semester, max_students, status`

func scanCourseRow(scan func(dest ...interface{}) error) (*models.Course, error) {
	course := &models.Course{}
	err := scan(
		&course.CourseID,
		&course.CourseName,
		&course.Credits,
		&course.Instructor,
		&course.Semester,
		&course.MaxStudents,
		&course.Status,
	)
	if err != nil {
		return nil, err
	}
	return course, nil
}

// CreateCourse inserts a new course record
func (r *CourseRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	if course.Status == "" {
		course.Status = models.CourseOpen
	}

	query := `
		INSERT INTO courses (` + courseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		course.CourseID,
		course.CourseName,
		course.Credits,
		course.Instructor,
		course.Semester,
		course.MaxStudents,
		course.Status,
	)

	return err
}

// GetCourseByID retrieves a course by its assigned code
func (r *CourseRepository) GetCourseByID(ctx context.Context, courseID string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE course_id = ?`

	course, err := scanCourseRow(r.db.QueryRowContext(ctx, query, courseID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return course, nil
}

// ListCourses retrieves courses ordered by ID, optionally filtered by a
// substring of the ID, name, or instructor. limit <= 0 means no cap.
func (r *CourseRepository) ListCourses(ctx context.Context, search string, limit, offset int) ([]*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses`
	args := make([]interface{}, 0, 4)

	if search != "" {
		pattern := "%" + escapeLike(search) + "%"
		query += ` WHERE course_id LIKE ? ESCAPE '\' OR course_name LIKE ? ESCAPE '\' OR instructor LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern, pattern)
	}

	query += ` ORDER BY course_id`
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]*models.Course, 0)
	for rows.Next() {
		course, err := scanCourseRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	return courses, rows.Err()
}

// UpdateCourse updates all mutable fields of a course record
func (r *CourseRepository) UpdateCourse(ctx context.Context, course *models.Course) error {
	query := `
		UPDATE courses
		SET course_name = ?, credits = ?, instructor = ?, semester = ?, max_students = ?, status = ?
		WHERE course_id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		course.CourseName,
		course.Credits,
		course.Instructor,
		course.Semester,
		course.MaxStudents,
		course.Status,
		course.CourseID,
	)

	return err
}

// DeleteCourse removes a course record
func (r *CourseRepository) DeleteCourse(ctx context.Context, courseID string) error {
	query := `DELETE FROM courses WHERE course_id = ?`
	_, err := r.db.ExecContext(ctx, query, courseID)
	return err
}

// CountCourses returns the total number of course records
func (r *CourseRepository) CountCourses(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
