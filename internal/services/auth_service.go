// Package services implements the registry's business logic between the HTTP
// handlers and the repositories: credential verification, entity CRUD with
// validation, and the auditable-mutation pattern (every successful mutation is
// followed by an activity entry; a failed mutation records nothing).
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/student-registry/student-registry/internal/audit"
	"github.com/student-registry/student-registry/internal/auth"
	"github.com/student-registry/student-registry/internal/db/models"
	"github.com/student-registry/student-registry/internal/db/repositories"
)

// ErrInvalidCredentials is the single failure all authentication rejections
// collapse to. Unknown username, deactivated account, and wrong password are
// indistinguishable to callers so the login endpoint cannot be used to
// enumerate usernames. The distinction is logged internally at debug level.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Authenticator decides pass/fail for username+password pairs against stored
// credentials.
type Authenticator struct {
	users    *repositories.UserRepository
	recorder *audit.Recorder
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(users *repositories.UserRepository, recorder *audit.Recorder) *Authenticator {
	return &Authenticator{users: users, recorder: recorder}
}

// Authenticate verifies a username+password pair. On success it updates the
// user's last-login timestamp, records a LOGIN entry, and returns the record.
// All credential mismatches return ErrInvalidCredentials; only storage faults
// surface as other errors.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := a.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("credential lookup failed: %w", err)
	}

	if user == nil {
		slog.Debug("authentication failed: unknown username", "username", username)
		a.recorder.Record(ctx, nil, models.ActionLoginFailed,
			fmt.Sprintf("Failed login for unknown username %q", username), "User", nil)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		slog.Debug("authentication failed: account deactivated", "username", username)
		a.recordLoginFailure(ctx, user)
		return nil, ErrInvalidCredentials
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		slog.Debug("authentication failed: password mismatch", "username", username)
		a.recordLoginFailure(ctx, user)
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := a.users.TouchLastLogin(ctx, user.UserID, now); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLogin = &now

	a.recorder.Record(ctx, &user.UserID, models.ActionLogin,
		fmt.Sprintf("User %s logged in", user.Username), "User", int64Str(user.UserID))

	return user, nil
}

// RecordLogout appends a LOGOUT entry for the user. Token invalidation is the
// client's job (JWTs are stateless); the entry exists for the trail.
func (a *Authenticator) RecordLogout(ctx context.Context, user *models.User) {
	a.recorder.Record(ctx, &user.UserID, models.ActionLogout,
		fmt.Sprintf("User %s logged out", user.Username), "User", int64Str(user.UserID))
}

// recordLoginFailure appends a LOGIN_FAILED entry without the failure reason.
// The reason stays in debug logs only: the trail is queryable by operators
// whose output may reach end users.
func (a *Authenticator) recordLoginFailure(ctx context.Context, user *models.User) {
	a.recorder.Record(ctx, &user.UserID, models.ActionLoginFailed,
		fmt.Sprintf("Failed login for user %s", user.Username), "User", int64Str(user.UserID))
}

func int64Str(v int64) *string {
	s := fmt.Sprintf("%d", v)
	return &s
}

func strPtr(s string) *string {
	return &s
}
