// Package repositories implements the data access layer (repository pattern)
// for the student registry. Each repository type encapsulates all database
// queries for one domain entity. Services and handlers never issue SQL
// directly; all access goes through this layer so query logic is testable in
// isolation.
//
// Every method returns (result, error) with the two cases kept distinct:
// "no rows matched" is a nil record or empty slice with a nil error, while a
// storage fault is a non-nil error. Callers can therefore always tell an
// empty result from a failed query.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/student-registry/student-registry/internal/db/models"
)

// UserRepository handles user database operations
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user and assigns the generated UserID and
// CreatedDate to the passed record. PasswordHash must already be in stored
// form (see internal/auth).
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.CreatedDate = time.Now()

	query := `
		INSERT INTO users (username, password_hash, full_name, email, role, is_active, created_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.PasswordHash,
		user.FullName,
		user.Email,
		user.Role,
		user.IsActive,
		user.CreatedDate,
	)
	if err != nil {
		return err
	}

	user.UserID, err = res.LastInsertId()
	return err
}

const userColumns = `user_id, username, password_hash, full_name, email, role, is_active, created_date, last_login`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.UserID,
		&user.Username,
		&user.PasswordHash,
		&user.FullName,
		&user.Email,
		&user.Role,
		&user.IsActive,
		&user.CreatedDate,
		&user.LastLogin,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, userID))
}

// GetUserByUsername retrieves a user by exact, case-sensitive username match
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

// ListUsers retrieves all users ordered by username
func (r *UserRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(
			&user.UserID,
			&user.Username,
			&user.PasswordHash,
			&user.FullName,
			&user.Email,
			&user.Role,
			&user.IsActive,
			&user.CreatedDate,
			&user.LastLogin,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// UpdateUser updates profile fields (full name, email, role). The credential
// and activation flag have dedicated methods so callers cannot change them
// accidentally alongside profile edits.
func (r *UserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET full_name = ?, email = ?, role = ? WHERE user_id = ?`
	_, err := r.db.ExecContext(ctx, query, user.FullName, user.Email, user.Role, user.UserID)
	return err
}

// UpdatePassword replaces the stored credential wholesale
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = ? WHERE user_id = ?`
	_, err := r.db.ExecContext(ctx, query, passwordHash, userID)
	return err
}

// SetActive toggles the authentication gate for a user
func (r *UserRepository) SetActive(ctx context.Context, userID int64, active bool) error {
	query := `UPDATE users SET is_active = ? WHERE user_id = ?`
	_, err := r.db.ExecContext(ctx, query, active, userID)
	return err
}

// TouchLastLogin records a successful authentication time
func (r *UserRepository) TouchLastLogin(ctx context.Context, userID int64, at time.Time) error {
	query := `UPDATE users SET last_login = ? WHERE user_id = ?`
	_, err := r.db.ExecContext(ctx, query, at, userID)
	return err
}

// DeleteUser removes a user record. Activity entries referencing the user are
// left untouched; their actor resolves to "System" from then on.
func (r *UserRepository) DeleteUser(ctx context.Context, userID int64) error {
	query := `DELETE FROM users WHERE user_id = ?`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

// CountUsers returns the total number of user records
func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
