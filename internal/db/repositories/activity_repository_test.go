package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/student-registry/student-registry/internal/db/models"
)

var errDB = errors.New("database error")

var activityCols = []string{
	"log_id", "timestamp", "user_id", "action_type",
	"action_description", "entity_type", "entity_id", "username",
}

func newActivityRepo(t *testing.T) (*ActivityRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewActivityRepository(db), mock
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func sampleActivityRow() *sqlmock.Rows {
	return sqlmock.NewRows(activityCols).
		AddRow(int64(1), time.Now(), int64(7), models.ActionAdd,
			"Added student Alice (SV001)", "Student", "SV001", "admin")
}

func TestRecordActivity_Success(t *testing.T) {
	repo, mock := newActivityRepo(t)
	mock.ExpectExec("INSERT INTO activity_log").
		WillReturnResult(sqlmock.NewResult(11, 1))

	entry := &models.ActivityEntry{
		UserID:            int64Ptr(7),
		ActionType:        models.ActionAdd,
		ActionDescription: "Added student Alice (SV001)",
		EntityType:        "Student",
		EntityID:          strPtr("SV001"),
	}
	logID, err := repo.RecordActivity(context.Background(), entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logID != 11 {
		t.Errorf("logID = %d, want 11", logID)
	}
	if entry.LogID != 11 {
		t.Errorf("entry.LogID = %d, want 11", entry.LogID)
	}
	if entry.Timestamp.IsZero() {
		t.Error("RecordActivity did not stamp the entry")
	}
}

func TestRecordActivity_NilActor(t *testing.T) {
	repo, mock := newActivityRepo(t)
	mock.ExpectExec("INSERT INTO activity_log").
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.ActivityEntry{
		ActionType:        models.ActionLoginFailed,
		ActionDescription: `Failed login for unknown username "ghost"`,
		EntityType:        "User",
	}
	if _, err := repo.RecordActivity(context.Background(), entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRecordActivity_DBError(t *testing.T) {
	repo, mock := newActivityRepo(t)
	mock.ExpectExec("INSERT INTO activity_log").
		WillReturnError(errDB)

	entry := &models.ActivityEntry{ActionType: models.ActionAdd}
	if _, err := repo.RecordActivity(context.Background(), entry); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestListActivity_NoFilters(t *testing.T) {
	repo, mock := newActivityRepo(t)
	mock.ExpectQuery("SELECT l.log_id.*FROM activity_log l.*LEFT JOIN users u").
		WillReturnRows(sampleActivityRow())

	entries, err := repo.ListActivity(context.Background(), ActivityFilters{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Username != "admin" {
		t.Errorf("Username = %q, want admin", entries[0].Username)
	}
}

func TestListActivity_NilActorRendersSystem(t *testing.T) {
	repo, mock := newActivityRepo(t)
	rows := sqlmock.NewRows(activityCols).
		AddRow(int64(2), time.Now(), nil, models.ActionLoginFailed,
			`Failed login for unknown username "ghost"`, "User", nil, "")
	mock.ExpectQuery("SELECT l.log_id.*LEFT JOIN users u").
		WillReturnRows(rows)

	entries, err := repo.ListActivity(context.Background(), ActivityFilters{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Username != models.SystemActor {
		t.Errorf("Username = %q, want %q", entries[0].Username, models.SystemActor)
	}
	if entries[0].UserID != nil {
		t.Errorf("UserID = %v, want nil", *entries[0].UserID)
	}
}

func TestListActivity_SearchMatchesSystemPlaceholder(t *testing.T) {
	repo, mock := newActivityRepo(t)
	mock.ExpectQuery(`COALESCE\(u.username, 'System'\) LIKE`).
		WithArgs("%System%", "%System%", "%System%").
		WillReturnRows(sqlmock.NewRows(activityCols))

	filters := ActivityFilters{Search: strPtr("System")}
	if _, err := repo.ListActivity(context.Background(), filters, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestListActivity_EmptyResultIsNotAnError(t *testing.T) {
	repo, mock := newActivityRepo(t)
	mock.ExpectQuery("SELECT l.log_id.*FROM activity_log").
		WillReturnRows(sqlmock.NewRows(activityCols))

	entries, err := repo.ListActivity(context.Background(), ActivityFilters{}, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries == nil {
		t.Fatal("entries = nil, want empty slice")
	}
	if len(entries) != 0 {
		t.Errorf("len(entries) = %d, want 0", len(entries))
	}
}

func TestListActivity_FiltersBecomeArgs(t *testing.T) {
	repo, mock := newActivityRepo(t)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	mock.ExpectQuery("SELECT l.log_id.*WHERE l.timestamp >= .* AND l.timestamp <= .* AND l.action_type = .* AND l.entity_type = ").
		WithArgs(from, to, models.ActionDelete, "Student").
		WillReturnRows(sqlmock.NewRows(activityCols))

	filters := ActivityFilters{
		From:       &from,
		To:         &to,
		ActionType: strPtr(models.ActionDelete),
		EntityType: strPtr("Student"),
	}
	if _, err := repo.ListActivity(context.Background(), filters, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestListActivity_SearchEscapesLikeMetacharacters(t *testing.T) {
	repo, mock := newActivityRepo(t)

	pattern := `%50\%\_off%`
	mock.ExpectQuery("SELECT l.log_id.*LIKE").
		WithArgs(pattern, pattern, pattern).
		WillReturnRows(sqlmock.NewRows(activityCols))

	filters := ActivityFilters{Search: strPtr("50%_off")}
	if _, err := repo.ListActivity(context.Background(), filters, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestListActivity_OrderedNewestFirst(t *testing.T) {
	repo, mock := newActivityRepo(t)
	mock.ExpectQuery(`ORDER BY l.timestamp DESC, l.log_id DESC LIMIT 10`).
		WillReturnRows(sqlmock.NewRows(activityCols))

	if _, err := repo.ListActivity(context.Background(), ActivityFilters{}, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestListActivity_DBError(t *testing.T) {
	repo, mock := newActivityRepo(t)
	mock.ExpectQuery("SELECT l.log_id").WillReturnError(errDB)

	if _, err := repo.ListActivity(context.Background(), ActivityFilters{}, 0); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestCountActivity(t *testing.T) {
	repo, mock := newActivityRepo(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\).*FROM activity_log l`).
		WithArgs(models.ActionLogin).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountActivity(context.Background(), ActivityFilters{ActionType: strPtr(models.ActionLogin)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}
