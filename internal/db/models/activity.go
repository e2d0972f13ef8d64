// Package models - activity.go defines the ActivityEntry model for the
// append-only audit trail, capturing actor, action type, and affected entity.
package models

import "time"

// Well-known action type tags. The column is free-form text, so callers may
// record other tags; these cover the actions the registry itself emits.
const (
	ActionAdd         = "ADD"
	ActionUpdate      = "UPDATE"
	ActionDelete      = "DELETE"
	ActionLogin       = "LOGIN"
	ActionLoginFailed = "LOGIN_FAILED"
	ActionLogout      = "LOGOUT"
	ActionSystem      = "SYSTEM"
)

// SystemActor is the display name rendered when an entry has no acting user.
const SystemActor = "System"

// ActivityEntry represents one immutable audit trail record. Entries are only
// ever inserted; there is no update or delete path anywhere in the codebase.
type ActivityEntry struct {
	LogID             int64      `json:"log_id" db:"log_id"`
	Timestamp         time.Time  `json:"timestamp" db:"timestamp"`
	UserID            *int64     `json:"user_id,omitempty" db:"user_id"` // nil for system-initiated actions
	ActionType        string     `json:"action_type" db:"action_type"`
	ActionDescription string     `json:"action_description" db:"action_description"`
	EntityType        string     `json:"entity_type" db:"entity_type"`
	EntityID          *string    `json:"entity_id,omitempty" db:"entity_id"`

	// Username is resolved at query time via a left join against users.
	// It is not stored: deleting a user leaves their entries intact, and the
	// name then renders as SystemActor.
	Username string `json:"username" db:"username"`
}

// ActorName returns the resolved username, or SystemActor when the entry has
// no acting user (or the user has since been deleted).
func (e *ActivityEntry) ActorName() string {
	if e.Username == "" {
		return SystemActor
	}
	return e.Username
}
