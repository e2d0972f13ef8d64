// api_key_repository.go implements APIKeyRepository over sqlx, providing
// queries for API key creation, prefix lookup, and last-used bookkeeping.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/student-registry/student-registry/internal/db/models"
)

// APIKeyRepository handles API key database operations
type APIKeyRepository struct {
	db *sqlx.DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *sqlx.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// CreateAPIKey inserts a new API key record, assigning its generated ID
func (r *APIKeyRepository) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	key.KeyID = uuid.New().String()
	key.CreatedAt = time.Now()

	query := `
		INSERT INTO api_keys (key_id, user_id, name, key_hash, display_prefix, created_at, last_used_at, expires_at)
		VALUES (:key_id, :user_id, :name, :key_hash, :display_prefix, :created_at, :last_used_at, :expires_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, key)
	return err
}

// GetAPIKeyByID retrieves a key record by ID
func (r *APIKeyRepository) GetAPIKeyByID(ctx context.Context, keyID string) (*models.APIKey, error) {
	key := &models.APIKey{}
	err := r.db.GetContext(ctx, key, `SELECT * FROM api_keys WHERE key_id = ?`, keyID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return key, nil
}

// GetAPIKeysByPrefix retrieves key records whose display prefix matches the
// presented key. The bcrypt comparison against each candidate happens in the
// auth layer; the prefix only narrows the candidate set.
func (r *APIKeyRepository) GetAPIKeysByPrefix(ctx context.Context, displayPrefix string) ([]*models.APIKey, error) {
	keys := make([]*models.APIKey, 0)
	err := r.db.SelectContext(ctx, &keys, `SELECT * FROM api_keys WHERE display_prefix = ?`, displayPrefix)
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// ListAPIKeysByUser retrieves all keys belonging to one user, newest first
func (r *APIKeyRepository) ListAPIKeysByUser(ctx context.Context, userID int64) ([]*models.APIKey, error) {
	keys := make([]*models.APIKey, 0)
	err := r.db.SelectContext(ctx, &keys, `SELECT * FROM api_keys WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// TouchLastUsed records that a key was just used for authentication
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, keyID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used_at = ? WHERE key_id = ?`, time.Now(), keyID)
	return err
}

// DeleteAPIKey revokes a key by removing its record
func (r *APIKeyRepository) DeleteAPIKey(ctx context.Context, keyID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM api_keys WHERE key_id = ?`, keyID)
	return err
}
