package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/student-registry/student-registry/internal/db/models"
)

var userCols = []string{
	"user_id", "username", "password_hash", "full_name",
	"email", "role", "is_active", "created_date", "last_login",
}

func newUserRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(db), mock
}

func sampleUserRow() *sqlmock.Rows {
	return sqlmock.NewRows(userCols).
		AddRow(int64(1), "admin", "abcd:1234", "Administrator",
			"admin@example.com", models.RoleAdmin, true, time.Now(), nil)
}

func TestCreateUser_Success(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(5, 1))

	user := &models.User{
		Username:     "alice",
		PasswordHash: "abcd:1234",
		Role:         models.RoleStaff,
		IsActive:     true,
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.UserID != 5 {
		t.Errorf("UserID = %d, want 5", user.UserID)
	}
	if user.CreatedDate.IsZero() {
		t.Error("CreateUser did not stamp CreatedDate")
	}
}

func TestCreateUser_DBError(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("INSERT INTO users").WillReturnError(errDB)

	if err := repo.CreateUser(context.Background(), &models.User{Username: "alice"}); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestGetUserByUsername_Found(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT .* FROM users WHERE username").
		WithArgs("admin").
		WillReturnRows(sampleUserRow())

	user, err := repo.GetUserByUsername(context.Background(), "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil {
		t.Fatal("user = nil, want record")
	}
	if user.Username != "admin" || !user.IsAdmin() {
		t.Errorf("got %+v, want admin record", user)
	}
}

func TestGetUserByUsername_NotFoundIsNilNil(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT .* FROM users WHERE username").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userCols))

	user, err := repo.GetUserByUsername(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("user = %+v, want nil for no match", user)
	}
}

func TestGetUserByID_DBError(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT .* FROM users WHERE user_id").
		WillReturnError(errDB)

	if _, err := repo.GetUserByID(context.Background(), 1); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestListUsers(t *testing.T) {
	repo, mock := newUserRepo(t)
	rows := sampleUserRow().
		AddRow(int64(2), "bob", "ef:12", "Bob", "bob@example.com",
			models.RoleStaff, false, time.Now(), nil)
	mock.ExpectQuery("SELECT .* FROM users ORDER BY username").
		WillReturnRows(rows)

	users, err := repo.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len(users) = %d, want 2", len(users))
	}
}

func TestUpdatePassword(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("new:hash", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdatePassword(context.Background(), 1, "new:hash"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestTouchLastLogin(t *testing.T) {
	repo, mock := newUserRepo(t)
	at := time.Now()
	mock.ExpectExec("UPDATE users SET last_login").
		WithArgs(at, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.TouchLastLogin(context.Background(), 1, at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetActive(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("UPDATE users SET is_active").
		WithArgs(false, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetActive(context.Background(), 3, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCountUsers(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	count, err := repo.CountUsers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}
