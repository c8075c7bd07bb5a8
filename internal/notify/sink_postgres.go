package notify

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"theatreops/internal/domain"
)

// PostgresSink persists notifications in the notifications table the console
// reads its inbox from.
type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Write(ctx context.Context, n domain.Notification) error {
	query := `
		INSERT INTO notifications (
			id, recipient, severity, title, body, action_ref,
			created_at, is_read, origin_event_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		n.ID,
		n.Recipient,
		n.Severity.String(),
		n.Title,
		n.Body,
		n.ActionRef,
		n.CreatedAt,
		n.IsRead,
		n.Origin,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresSink) ListRecent(ctx context.Context, limit int) ([]domain.Notification, error) {
	query := `
		SELECT id, recipient, severity, title, body, action_ref,
			   created_at, is_read, origin_event_id
		FROM notifications
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var (
			n        domain.Notification
			id       uuid.UUID
			origin   uuid.UUID
			severity string
		)
		err := rows.Scan(
			&id,
			&n.Recipient,
			&severity,
			&n.Title,
			&n.Body,
			&n.ActionRef,
			&n.CreatedAt,
			&n.IsRead,
			&origin,
		)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.ID = id
		n.Origin = origin
		n.Severity = domain.ParseSeverity(severity)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}
