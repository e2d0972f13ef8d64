package services

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/student-registry/student-registry/internal/audit"
	"github.com/student-registry/student-registry/internal/db/models"
	"github.com/student-registry/student-registry/internal/db/repositories"
)

var studentCols = []string{
	"student_id", "full_name", "email", "phone", "date_of_birth",
	"gender", "address", "enrollment_date", "status",
}

var courseCols = []string{
	"course_id", "course_name", "credits", "instructor",
	"semester", "max_students", "status",
}

var enrollmentCols = []string{
	"enrollment_id", "student_id", "course_id", "enroll_date", "grade",
}

func newEnrollmentService(t *testing.T) (*EnrollmentService, sqlmock.Sqlmock, *capturedTrail) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	trail := &capturedTrail{}
	svc := NewEnrollmentService(
		repositories.NewEnrollmentRepository(db),
		repositories.NewStudentRepository(db),
		repositories.NewCourseRepository(db),
		audit.NewRecorder(trail, nil),
	)
	return svc, mock, trail
}

func studentRow() *sqlmock.Rows {
	return sqlmock.NewRows(studentCols).
		AddRow("SV001", "Alice", "alice@example.com", "", nil, "", "",
			time.Now(), models.StudentActive)
}

func courseRow(status string, maxStudents int) *sqlmock.Rows {
	return sqlmock.NewRows(courseCols).
		AddRow("CS101", "Intro to CS", 3, "Dr. Chen", "2026A", maxStudents, status)
}

func expectStudentAndCourse(mock sqlmock.Sqlmock, courseStatus string, maxStudents int) {
	mock.ExpectQuery("SELECT .* FROM students WHERE student_id").
		WillReturnRows(studentRow())
	mock.ExpectQuery("SELECT .* FROM courses WHERE course_id").
		WillReturnRows(courseRow(courseStatus, maxStudents))
}

func TestEnroll_Success(t *testing.T) {
	svc, mock, trail := newEnrollmentService(t)
	expectStudentAndCourse(mock, models.CourseOpen, 30)
	mock.ExpectQuery("SELECT .* FROM enrollments WHERE student_id").
		WillReturnRows(sqlmock.NewRows(enrollmentCols))
	mock.ExpectQuery("SELECT COUNT.*FROM enrollments WHERE course_id").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectExec("INSERT INTO enrollments").
		WillReturnResult(sqlmock.NewResult(7, 1))

	enrollment, err := svc.Enroll(context.Background(), nil, "SV001", "CS101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enrollment.EnrollmentID != 7 {
		t.Errorf("EnrollmentID = %d, want 7", enrollment.EnrollmentID)
	}
	if trail.lastAction(t) != models.ActionAdd {
		t.Errorf("recorded action = %q, want ADD", trail.lastAction(t))
	}
}

func TestEnroll_StudentNotFound(t *testing.T) {
	svc, mock, _ := newEnrollmentService(t)
	mock.ExpectQuery("SELECT .* FROM students WHERE student_id").
		WillReturnRows(sqlmock.NewRows(studentCols))

	if _, err := svc.Enroll(context.Background(), nil, "SV999", "CS101"); !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("error = %v, want ErrStudentNotFound", err)
	}
}

func TestEnroll_CourseNotOpen(t *testing.T) {
	svc, mock, _ := newEnrollmentService(t)
	expectStudentAndCourse(mock, models.CourseClosed, 30)

	if _, err := svc.Enroll(context.Background(), nil, "SV001", "CS101"); !errors.Is(err, ErrCourseNotOpen) {
		t.Fatalf("error = %v, want ErrCourseNotOpen", err)
	}
}

func TestEnroll_AlreadyEnrolled(t *testing.T) {
	svc, mock, _ := newEnrollmentService(t)
	expectStudentAndCourse(mock, models.CourseOpen, 30)
	mock.ExpectQuery("SELECT .* FROM enrollments WHERE student_id").
		WillReturnRows(sqlmock.NewRows(enrollmentCols).
			AddRow(int64(5), "SV001", "CS101", time.Now(), nil))

	if _, err := svc.Enroll(context.Background(), nil, "SV001", "CS101"); !errors.Is(err, ErrAlreadyEnrolled) {
		t.Fatalf("error = %v, want ErrAlreadyEnrolled", err)
	}
}

func TestEnroll_CourseFull(t *testing.T) {
	svc, mock, _ := newEnrollmentService(t)
	expectStudentAndCourse(mock, models.CourseOpen, 30)
	mock.ExpectQuery("SELECT .* FROM enrollments WHERE student_id").
		WillReturnRows(sqlmock.NewRows(enrollmentCols))
	mock.ExpectQuery("SELECT COUNT.*FROM enrollments WHERE course_id").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(30))

	if _, err := svc.Enroll(context.Background(), nil, "SV001", "CS101"); !errors.Is(err, ErrCourseFull) {
		t.Fatalf("error = %v, want ErrCourseFull", err)
	}
}

func TestEnroll_ZeroCapacityMeansUnlimited(t *testing.T) {
	svc, mock, _ := newEnrollmentService(t)
	expectStudentAndCourse(mock, models.CourseOpen, 0)
	mock.ExpectQuery("SELECT .* FROM enrollments WHERE student_id").
		WillReturnRows(sqlmock.NewRows(enrollmentCols))
	// No capacity count query expected.
	mock.ExpectExec("INSERT INTO enrollments").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if _, err := svc.Enroll(context.Background(), nil, "SV001", "CS101"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestSetGrade_Bounds(t *testing.T) {
	svc, _, _ := newEnrollmentService(t)

	for _, grade := range []float64{-0.1, 10.5} {
		g := grade
		if err := svc.SetGrade(context.Background(), nil, 1, &g); !errors.Is(err, ErrInvalidGrade) {
			t.Errorf("SetGrade(%v) error = %v, want ErrInvalidGrade", grade, err)
		}
	}
}

func TestSetGrade_Success(t *testing.T) {
	svc, mock, trail := newEnrollmentService(t)
	mock.ExpectQuery("SELECT .* FROM enrollments WHERE enrollment_id").
		WillReturnRows(sqlmock.NewRows(enrollmentCols).
			AddRow(int64(1), "SV001", "CS101", time.Now(), nil))
	mock.ExpectExec("UPDATE enrollments SET grade").
		WillReturnResult(sqlmock.NewResult(0, 1))

	grade := 8.5
	if err := svc.SetGrade(context.Background(), nil, 1, &grade); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trail.lastAction(t) != models.ActionUpdate {
		t.Errorf("recorded action = %q, want UPDATE", trail.lastAction(t))
	}
}

func TestDrop_NotFound(t *testing.T) {
	svc, mock, _ := newEnrollmentService(t)
	mock.ExpectQuery("SELECT .* FROM enrollments WHERE enrollment_id").
		WillReturnRows(sqlmock.NewRows(enrollmentCols))

	if err := svc.Drop(context.Background(), nil, 99); !errors.Is(err, ErrEnrollmentNotFound) {
		t.Fatalf("error = %v, want ErrEnrollmentNotFound", err)
	}
}
