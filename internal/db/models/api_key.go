// Package models - api_key.go defines the APIKey model for long-lived
// programmatic credentials. Only the bcrypt hash of a key is stored; the full
// key is shown to the caller once at creation time.
package models

import "time"

// APIKey represents a stored API key record.
type APIKey struct {
	KeyID         string     `json:"key_id" db:"key_id"`
	UserID        int64      `json:"user_id" db:"user_id"`
	Name          string     `json:"name" db:"name"`
	KeyHash       string     `json:"-" db:"key_hash"`
	DisplayPrefix string     `json:"display_prefix" db:"display_prefix"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	LastUsedAt    *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty" db:"expires_at"`
}

// IsExpired reports whether the key has an expiry in the past.
func (k *APIKey) IsExpired() bool {
	return k.ExpiresAt != nil && k.ExpiresAt.Before(time.Now())
}
