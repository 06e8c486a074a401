package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"agrocert/pkg/platform/tx"
)

// PostgresSink stores events in audit_events. Inside a service transaction
// the row commits or rolls back with the change it records.
type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Append(ctx context.Context, event Event) error {
	details := event.Details
	if details == nil {
		details = map[string]string{}
	}
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}
	_, err = tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO audit_events (id, occurred_at, action, subject, actor_id, request_id, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.New(), event.Timestamp, string(event.Action), event.Subject, event.ActorID, event.RequestID, payload)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
