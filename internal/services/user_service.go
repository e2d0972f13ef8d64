// user_service.go implements account management: user CRUD, password
// changes, and activation toggling, each followed by an activity entry.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/student-registry/student-registry/internal/audit"
	"github.com/student-registry/student-registry/internal/auth"
	"github.com/student-registry/student-registry/internal/db/models"
	"github.com/student-registry/student-registry/internal/db/repositories"
)

// Validation failures surfaced by UserService.
var (
	ErrUsernameTaken = errors.New("username already exists")
	ErrUserNotFound  = errors.New("user not found")
	ErrEmptyField    = errors.New("required field is empty")
)

// UserService manages registry accounts.
type UserService struct {
	users    *repositories.UserRepository
	recorder *audit.Recorder
}

// NewUserService creates a UserService.
func NewUserService(users *repositories.UserRepository, recorder *audit.Recorder) *UserService {
	return &UserService{users: users, recorder: recorder}
}

// CreateUser creates an account with a freshly salted credential. actorID is
// the acting user for the audit entry (nil for bootstrap/system creation).
func (s *UserService) CreateUser(ctx context.Context, actorID *int64, username, password, fullName, email, role string, active bool) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrEmptyField
	}
	if role == "" {
		role = models.RoleStaff
	}

	existing, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		FullName:     fullName,
		Email:        email,
		Role:         role,
		IsActive:     active,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.recorder.Record(ctx, actorID, models.ActionAdd,
		fmt.Sprintf("Added user %s", user.Username), "User", int64Str(user.UserID))

	return user, nil
}

// GetUser retrieves an account by ID.
func (s *UserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsers retrieves all accounts.
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.ListUsers(ctx)
}

// UpdateProfile updates full name, email, and role.
func (s *UserService) UpdateProfile(ctx context.Context, actorID *int64, userID int64, fullName, email, role string) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FullName = fullName
	user.Email = email
	if role != "" {
		user.Role = role
	}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.recorder.Record(ctx, actorID, models.ActionUpdate,
		fmt.Sprintf("Updated user %s", user.Username), "User", int64Str(user.UserID))

	return user, nil
}

// ChangePassword replaces the stored credential wholesale with a salted hash.
// Legacy unsalted records are upgraded to the salted form by any password
// change, since the new hash is always written in the current format.
func (s *UserService) ChangePassword(ctx context.Context, actorID *int64, userID int64, newPassword string) error {
	if newPassword == "" {
		return ErrEmptyField
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.recorder.Record(ctx, actorID, models.ActionUpdate,
		fmt.Sprintf("Changed password for user %s", user.Username), "User", int64Str(user.UserID))

	return nil
}

// SetActive toggles the authentication gate on an account.
func (s *UserService) SetActive(ctx context.Context, actorID *int64, userID int64, active bool) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.users.SetActive(ctx, userID, active); err != nil {
		return fmt.Errorf("failed to update activation: %w", err)
	}

	verb := "Deactivated"
	if active {
		verb = "Activated"
	}
	s.recorder.Record(ctx, actorID, models.ActionUpdate,
		fmt.Sprintf("%s user %s", verb, user.Username), "User", int64Str(user.UserID))

	return nil
}

// DeleteUser removes an account. The user's past activity entries are kept;
// their actor renders as "System" from then on.
func (s *UserService) DeleteUser(ctx context.Context, actorID *int64, userID int64) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.recorder.Record(ctx, actorID, models.ActionDelete,
		fmt.Sprintf("Deleted user %s", user.Username), "User", int64Str(user.UserID))

	return nil
}
