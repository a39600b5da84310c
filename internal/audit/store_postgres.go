package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"bharatid/internal/platform/postgres"
	"bharatid/pkg/domain"
)

// PostgresStore persists events in the audit_events table. Appends join the
// transaction carried by ctx, so an event recorded during enrollment commits
// or rolls back with the user row.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const eventColumns = `occurred_at, action, user_id, actor_id, doc_type, decision, reason, request_id, client_ip`

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events (id, ` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := postgres.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.New(),
		event.Timestamp,
		string(event.Action),
		nullableID(event.UserID),
		nullableID(event.ActorID),
		event.DocType.String(),
		event.Decision,
		event.Reason,
		event.RequestID,
		event.ClientIP,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByUser returns the user's events, newest first.
func (s *PostgresStore) ListByUser(ctx context.Context, userID domain.UserID) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM audit_events WHERE user_id = $1 ORDER BY occurred_at DESC`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListRecent returns up to limit events, newest first. A non-positive limit
// returns everything.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM audit_events ORDER BY occurred_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var out []Event
	for rows.Next() {
		var (
			e               Event
			action, docType string
			userID, actorID uuid.NullUUID
		)
		if err := rows.Scan(&e.Timestamp, &action, &userID, &actorID, &docType,
			&e.Decision, &e.Reason, &e.RequestID, &e.ClientIP); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		e.DocType = domain.DocType(docType)
		if userID.Valid {
			e.UserID = domain.UserID(userID.UUID)
		}
		if actorID.Valid {
			e.ActorID = domain.UserID(actorID.UUID)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return out, nil
}

func nullableID(id domain.UserID) uuid.NullUUID {
	if id.IsNil() {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(id), Valid: true}
}
