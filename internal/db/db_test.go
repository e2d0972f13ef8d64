package db_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/student-registry/student-registry/internal/audit"
	"github.com/student-registry/student-registry/internal/auth"
	"github.com/student-registry/student-registry/internal/db"
	"github.com/student-registry/student-registry/internal/db/models"
	"github.com/student-registry/student-registry/internal/db/repositories"
	"github.com/student-registry/student-registry/internal/services"
)

// These tests run against a real SQLite file in a temp directory, exercising
// the embedded migrations, foreign key enforcement, and the service layer
// end to end. Everything else in the test suite mocks the driver; this file
// is where schema-level behavior is pinned down.

func openTestDB(t *testing.T) *stores {
	t.Helper()

	path := filepath.Join(t.TempDir(), "registry.db")
	database, err := db.Connect(path, 5000)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := db.RunMigrations(database, "up"); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	activityRepo := repositories.NewActivityRepository(database)
	return &stores{
		users:       repositories.NewUserRepository(database),
		students:    repositories.NewStudentRepository(database),
		courses:     repositories.NewCourseRepository(database),
		enrollments: repositories.NewEnrollmentRepository(database),
		apiKeys:     repositories.NewAPIKeyRepository(sqlx.NewDb(database, "sqlite3")),
		activity:    activityRepo,
		recorder:    audit.NewRecorder(activityRepo, nil),
	}
}

type stores struct {
	users       *repositories.UserRepository
	students    *repositories.StudentRepository
	courses     *repositories.CourseRepository
	enrollments *repositories.EnrollmentRepository
	apiKeys     *repositories.APIKeyRepository
	activity    *repositories.ActivityRepository
	recorder    *audit.Recorder
}

func createTestUser(t *testing.T, s *stores, username, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		FullName:     "Test User",
		Email:        username + "@example.com",
		Role:         models.RoleStaff,
		IsActive:     true,
	}
	if err := s.users.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func TestMigrations_UpIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")
	database, err := db.Connect(path, 5000)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, "up"); err != nil {
		t.Fatalf("first up: %v", err)
	}
	if err := db.RunMigrations(database, "up"); err != nil {
		t.Fatalf("second up: %v", err)
	}

	version, dirty, err := db.MigrationVersion(database)
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if dirty {
		t.Error("schema is dirty after a clean run")
	}
	if version == 0 {
		t.Error("version = 0, want at least 1")
	}
}

func TestAuthenticate_RoundTrip(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	createTestUser(t, s, "alice", "s3cret-passphrase")

	a := services.NewAuthenticator(s.users, s.recorder)
	user, err := a.Authenticate(ctx, "alice", "s3cret-passphrase")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.LastLogin == nil {
		t.Error("LastLogin not set after successful login")
	}

	// The login leaves a LOGIN entry attributed to the user.
	entries, err := s.activity.ListActivity(ctx, repositories.ActivityFilters{}, 10)
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].ActionType != models.ActionLogin {
		t.Errorf("ActionType = %q, want LOGIN", entries[0].ActionType)
	}
	if entries[0].Username != "alice" {
		t.Errorf("Username = %q, want alice", entries[0].Username)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	s := openTestDB(t)
	createTestUser(t, s, "alice", "s3cret-passphrase")

	a := services.NewAuthenticator(s.users, s.recorder)
	if _, err := a.Authenticate(context.Background(), "alice", "wrong"); !errors.Is(err, services.ErrInvalidCredentials) {
		t.Fatalf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticate_LegacyUnsaltedHash(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	// Bare sha256("hunter2"), the stored form of records imported from older
	// installations.
	user := &models.User{
		Username:     "legacy",
		PasswordHash: "f52fbd32b2b3b86ff88ef6c490628285f482af15ddcb29541f94bcf526a3f6c7",
		FullName:     "Legacy User",
		Email:        "legacy@example.com",
		Role:         models.RoleStaff,
		IsActive:     true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	a := services.NewAuthenticator(s.users, s.recorder)
	if _, err := a.Authenticate(ctx, "legacy", "hunter2"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
}

func TestActivity_RecordAndQuery(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, s, "alice", "s3cret-passphrase")

	for _, desc := range []string{"first", "second", "third"} {
		entry := &models.ActivityEntry{
			UserID:            &user.UserID,
			ActionType:        models.ActionAdd,
			ActionDescription: desc,
			EntityType:        "Student",
		}
		if _, err := s.activity.RecordActivity(ctx, entry); err != nil {
			t.Fatalf("RecordActivity(%q): %v", desc, err)
		}
	}

	entries, err := s.activity.ListActivity(ctx, repositories.ActivityFilters{}, 10)
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	// Newest first.
	if entries[0].ActionDescription != "third" || entries[2].ActionDescription != "first" {
		t.Errorf("order = [%s %s %s], want [third second first]",
			entries[0].ActionDescription, entries[1].ActionDescription, entries[2].ActionDescription)
	}

	// Re-running the same query returns the same result; reads never mutate
	// the trail.
	again, err := s.activity.ListActivity(ctx, repositories.ActivityFilters{}, 10)
	if err != nil {
		t.Fatalf("ListActivity again: %v", err)
	}
	if len(again) != 3 {
		t.Errorf("repeat query returned %d entries, want 3", len(again))
	}

	count, err := s.activity.CountActivity(ctx, repositories.ActivityFilters{})
	if err != nil {
		t.Fatalf("CountActivity: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestDeleteUser_EntriesOutliveActor(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	createTestUser(t, s, "alice", "s3cret-passphrase")

	a := services.NewAuthenticator(s.users, s.recorder)
	user, err := a.Authenticate(ctx, "alice", "s3cret-passphrase")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	// A stored API key rides along to verify it is revoked with the account.
	_, keyHash, displayPrefix, err := auth.GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	key := &models.APIKey{
		UserID:        user.UserID,
		Name:          "ci",
		KeyHash:       keyHash,
		DisplayPrefix: displayPrefix,
	}
	if err := s.apiKeys.CreateAPIKey(ctx, key); err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}

	if err := s.users.DeleteUser(ctx, user.UserID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	gone, err := s.users.GetUserByID(ctx, user.UserID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if gone != nil {
		t.Fatal("user still present after delete")
	}

	orphanedKey, err := s.apiKeys.GetAPIKeyByID(ctx, key.KeyID)
	if err != nil {
		t.Fatalf("GetAPIKeyByID: %v", err)
	}
	if orphanedKey != nil {
		t.Error("API key survived its owner's deletion")
	}

	// The LOGIN entry survives; its actor is nulled and renders as "System".
	entries, err := s.activity.ListActivity(ctx, repositories.ActivityFilters{}, 10)
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].UserID != nil {
		t.Errorf("UserID = %v, want nil", *entries[0].UserID)
	}
	if entries[0].Username != models.SystemActor {
		t.Errorf("Username = %q, want %q", entries[0].Username, models.SystemActor)
	}

	// A search for the placeholder finds the orphaned entry.
	found, err := s.activity.ListActivity(ctx,
		repositories.ActivityFilters{Search: ptr(models.SystemActor)}, 10)
	if err != nil {
		t.Fatalf("ListActivity(search): %v", err)
	}
	if len(found) != 1 {
		t.Errorf("search for %q matched %d entries, want 1", models.SystemActor, len(found))
	}
}

func TestDeleteStudent_BlockedUntilEnrollmentsDropped(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	studentSvc := services.NewStudentService(s.students, s.enrollments, s.recorder)
	courseSvc := services.NewCourseService(s.courses, s.enrollments, s.recorder)
	enrollSvc := services.NewEnrollmentService(s.enrollments, s.students, s.courses, s.recorder)

	if err := studentSvc.CreateStudent(ctx, nil, &models.Student{StudentID: "SV001", FullName: "Alice"}); err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}
	if err := courseSvc.CreateCourse(ctx, nil, &models.Course{CourseID: "CS101", CourseName: "Intro to CS", Status: models.CourseOpen}); err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	enrollment, err := enrollSvc.Enroll(ctx, nil, "SV001", "CS101")
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	err = studentSvc.DeleteStudent(ctx, nil, "SV001")
	if !errors.Is(err, services.ErrStudentHasEnrollments) {
		t.Fatalf("error = %v, want ErrStudentHasEnrollments", err)
	}
	err = courseSvc.DeleteCourse(ctx, nil, "CS101")
	if !errors.Is(err, services.ErrCourseHasEnrollments) {
		t.Fatalf("error = %v, want ErrCourseHasEnrollments", err)
	}

	if err := enrollSvc.Drop(ctx, nil, enrollment.EnrollmentID); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if err := studentSvc.DeleteStudent(ctx, nil, "SV001"); err != nil {
		t.Fatalf("DeleteStudent after drop: %v", err)
	}
	if err := courseSvc.DeleteCourse(ctx, nil, "CS101"); err != nil {
		t.Fatalf("DeleteCourse after drop: %v", err)
	}
}

func ptr(s string) *string { return &s }
