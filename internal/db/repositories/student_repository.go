// student_repository.go implements StudentRepository, providing CRUD and
// search queries for student records.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/student-registry/student-registry/internal/db/models"
)

// StudentRepository handles student database operations
type StudentRepository struct {
	db *sql.DB
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `student_id, full_name, email, phone, date_of_birth, gender, address, enrollment_date, status`

// CreateStudent inserts a new student record
func (r *StudentRepository) CreateStudent(ctx context.Context, student *models.Student) error {
	if student.EnrollmentDate.IsZero() {
		student.EnrollmentDate = time.Now()
	}
	if student.Status == "" {
		student.Status = models.StudentActive
	}

	query := `
		INSERT INTO students (` + studentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		student.StudentID,
		student.FullName,
		student.Email,
		student.Phone,
		student.DateOfBirth,
		student.Gender,
		student.Address,
		student.EnrollmentDate,
		student.Status,
	)

	return err
}

func scanStudentRow(scan func(dest ...interface{}) error) (*models.Student, error) {
	student := &models.Student{}
	err := scan(
		&student.StudentID,
		&student.FullName,
		&student.Email,
		&student.Phone,
		&student.DateOfBirth,
		&student.Gender,
		&student.Address,
		&student.EnrollmentDate,
		&student.Status,
	)
	if err != nil {
		return nil, err
	}
	return student, nil
}

// GetStudentByID retrieves a student by their assigned code
func (r *StudentRepository) GetStudentByID(ctx context.Context, studentID string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE student_id = ?`

	student, err := scanStudentRow(r.db.QueryRowContext(ctx, query, studentID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return student, nil
}

// ListStudents retrieves students ordered by ID, optionally filtered by a
// substring of the ID, name, or email. limit <= 0 means no cap.
func (r *StudentRepository) ListStudents(ctx context.Context, search string, limit, offset int) ([]*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students`
	args := make([]interface{}, 0, 4)

	if search != "" {
		pattern := "%" + escapeLike(search) + "%"
		query += ` WHERE student_id LIKE ? ESCAPE '\' OR full_name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern, pattern)
	}

	query += ` ORDER BY student_id`
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]*models.Student, 0)
	for rows.Next() {
		student, err := scanStudentRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}

	return students, rows.Err()
}

// UpdateStudent updates all mutable fields of a student record
func (r *StudentRepository) UpdateStudent(ctx context.Context, student *models.Student) error {
	query := `
		UPDATE students
		SET full_name = ?, email = ?, phone = ?, date_of_birth = ?, gender = ?, address = ?, status = ?
		WHERE student_id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		student.FullName,
		student.Email,
		student.Phone,
		student.DateOfBirth,
		student.Gender,
		student.Address,
		student.Status,
		student.StudentID,
	)

	return err
}

// DeleteStudent removes a student record
func (r *StudentRepository) DeleteStudent(ctx context.Context, studentID string) error {
	query := `DELETE FROM students WHERE student_id = ?`
	_, err := r.db.ExecContext(ctx, query, studentID)
	return err
}

// CountStudents returns the total number of student records
func (r *StudentRepository) CountStudents(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// StudentStatusCount is a count of students in one status.
type StudentStatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// CountStudentsByStatus returns per-status student counts for the dashboard
func (r *StudentRepository) CountStudentsByStatus(ctx context.Context) ([]StudentStatusCount, error) {
	query := `SELECT status, COUNT(*) FROM students GROUP BY status ORDER BY status`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]StudentStatusCount, 0)
	for rows.Next() {
		var c StudentStatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}
