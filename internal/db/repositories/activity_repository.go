// activity_repository.go implements ActivityRepository, the storage layer of
// the append-only audit trail: inserting entries and retrieving them with a
// closed set of structured filters.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/student-registry/student-registry/internal/db/models"
)

// ActivityRepository handles activity log database operations. The table is
// append-only: this type deliberately exposes no update or delete method.
type ActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// ActivityFilters contains the filter variants supported by ListActivity.
// Nil fields are ignored; set fields are combined with AND. Search matches a
// substring of the description, the resolved actor username, or the entity ID.
type ActivityFilters struct {
	From       *time.Time
	To         *time.Time
	ActionType *string
	EntityType *string
	Search     *string
}

// conditions renders the set filters as parameterized WHERE fragments.
// Predicates are a fixed set built here; callers never supply SQL text.
func (f ActivityFilters) conditions() ([]string, []interface{}) {
	conds := make([]string, 0, 5)
	args := make([]interface{}, 0, 7)

	if f.From != nil {
		conds = append(conds, `l.timestamp >= ?`)
		args = append(args, *f.From)
	}
	if f.To != nil {
		conds = append(conds, `l.timestamp <= ?`)
		args = append(args, *f.To)
	}
	if f.ActionType != nil {
		conds = append(conds, `l.action_type = ?`)
		args = append(args, *f.ActionType)
	}
	if f.EntityType != nil {
		conds = append(conds, `l.entity_type = ?`)
		args = append(args, *f.EntityType)
	}
	if f.Search != nil {
		pattern := "%" + escapeLike(*f.Search) + "%"
		// Actor matching goes through the same rendering as query results:
		// entries without an actor match a search for "System".
		conds = append(conds, `(l.action_description LIKE ? ESCAPE '\'
			OR COALESCE(u.username, '`+models.SystemActor+`') LIKE ? ESCAPE '\'
			OR COALESCE(l.entity_id, '') LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}

	return conds, args
}

// escapeLike escapes LIKE metacharacters so a search term is always treated
// as a literal substring.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// RecordActivity appends one entry with the current timestamp and returns its
// log ID. Callers must invoke this only after the mutation being described has
// committed; the two writes are not transactionally linked.
func (r *ActivityRepository) RecordActivity(ctx context.Context, entry *models.ActivityEntry) (int64, error) {
	entry.Timestamp = time.Now()

	query := `
		INSERT INTO activity_log (timestamp, user_id, action_type, action_description, entity_type, entity_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(ctx, query,
		entry.Timestamp,
		entry.UserID,
		entry.ActionType,
		entry.ActionDescription,
		entry.EntityType,
		entry.EntityID,
	)
	if err != nil {
		return 0, err
	}

	entry.LogID, err = res.LastInsertId()
	return entry.LogID, err
}

// ListActivity retrieves entries matching the filters, newest first (ties
// broken by log ID so ordering is stable within one timestamp second). A
// limit of zero or less means no cap. An empty match is ([], nil), never an
// error.
func (r *ActivityRepository) ListActivity(ctx context.Context, filters ActivityFilters, limit int) ([]*models.ActivityEntry, error) {
	query := `
		SELECT l.log_id, l.timestamp, l.user_id, l.action_type, l.action_description,
		       l.entity_type, l.entity_id, COALESCE(u.username, '') AS username
		FROM activity_log l
		LEFT JOIN users u ON u.user_id = l.user_id
	`

	conds, args := filters.conditions()
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}

	query += ` ORDER BY l.timestamp DESC, l.log_id DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.ActivityEntry, 0)
	for rows.Next() {
		entry := &models.ActivityEntry{}
		err := rows.Scan(
			&entry.LogID,
			&entry.Timestamp,
			&entry.UserID,
			&entry.ActionType,
			&entry.ActionDescription,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Username,
		)
		if err != nil {
			return nil, err
		}
		// System-initiated and deleted-actor entries render with the
		// SystemActor placeholder, not an empty name.
		entry.Username = entry.ActorName()
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// CountActivity returns the number of entries matching the filters
func (r *ActivityRepository) CountActivity(ctx context.Context, filters ActivityFilters) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM activity_log l
		LEFT JOIN users u ON u.user_id = l.user_id
	`

	conds, args := filters.conditions()
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
