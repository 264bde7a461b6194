package audit

import (
	"context"
	"database/sql"
	"encoding/json"

	dErrors "github.com/profullstack/food-delivery-multivendor/pkg/domain-errors"
)

// PostgresStore persists audit events in the verification_audit_log table.
// The log is append-only; rows are never updated or deleted by the service.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed audit store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	details := event.Details
	if details == nil {
		details = map[string]string{}
	}
	encoded, err := json.Marshal(details)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode audit details")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO verification_audit_log (occurred_at, action, actor_id, subject_user_id, details)
		VALUES ($1, $2, $3, $4, $5)`,
		event.Timestamp, event.Action, event.ActorID, event.SubjectUserID, encoded,
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append audit event")
	}
	return nil
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subjectUserID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT occurred_at, action, actor_id, subject_user_id, details
		FROM verification_audit_log
		WHERE subject_user_id = $1
		ORDER BY occurred_at`,
		subjectUserID,
	)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query audit events")
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		var encoded []byte
		if err := rows.Scan(&event.Timestamp, &event.Action, &event.ActorID, &event.SubjectUserID, &encoded); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to scan audit event")
		}
		if len(encoded) > 0 {
			if err := json.Unmarshal(encoded, &event.Details); err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode audit details")
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
