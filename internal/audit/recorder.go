// Package audit implements the write side of the activity trail. Services
// call Recorder.Record immediately after a mutation commits; the recorder
// appends the entry to the activity_log table and optionally mirrors it to
// external destinations (file, webhook) via the Shipper interface.
//
// Two consistency properties are deliberate and must not be "improved" in
// passing:
//
//   - The mutation and its audit entry are separate writes. A crash between
//     them loses the entry, never the mutation: the trail under-reports on
//     partial failure, it never reports a mutation that did not happen.
//   - A failed append is logged and swallowed. The primary operation never
//     fails because its audit entry could not be written; availability of the
//     mutation outranks completeness of the trail.
package audit

import (
	"context"
	"log/slog"

	"github.com/student-registry/student-registry/internal/db/models"
	"github.com/student-registry/student-registry/internal/telemetry"
)

// Store is the persistence surface Recorder appends to. Satisfied by
// repositories.ActivityRepository.
type Store interface {
	RecordActivity(ctx context.Context, entry *models.ActivityEntry) (int64, error)
}

// Recorder appends activity entries after the fact, absorbing storage faults.
type Recorder struct {
	store   Store
	shipper Shipper // optional external mirror; nil disables shipping
}

// NewRecorder creates a Recorder. shipper may be nil.
func NewRecorder(store Store, shipper Shipper) *Recorder {
	return &Recorder{store: store, shipper: shipper}
}

// Record appends one entry describing an already-committed mutation.
// userID is nil for system-initiated actions and entityID is nil when the
// action has no single affected object.
func (r *Recorder) Record(ctx context.Context, userID *int64, actionType, description, entityType string, entityID *string) {
	entry := &models.ActivityEntry{
		UserID:            userID,
		ActionType:        actionType,
		ActionDescription: description,
		EntityType:        entityType,
		EntityID:          entityID,
	}

	if _, err := r.store.RecordActivity(ctx, entry); err != nil {
		telemetry.ActivityAppendFailuresTotal.Inc()
		slog.Warn("activity log append failed; entry dropped",
			"error", err,
			"action_type", actionType,
			"entity_type", entityType,
		)
		return
	}
	telemetry.ActivityEntriesTotal.WithLabelValues(actionType).Inc()

	if r.shipper != nil {
		if err := r.shipper.Ship(ctx, entry); err != nil {
			slog.Warn("activity log shipping failed", "error", err, "log_id", entry.LogID)
		}
	}
}

// System appends a system-initiated entry (no acting user).
func (r *Recorder) System(ctx context.Context, actionType, description string) {
	r.Record(ctx, nil, actionType, description, models.ActionSystem, nil)
}
