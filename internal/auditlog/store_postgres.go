package auditlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"theatreops/internal/domain"
)

// PostgresStore persists domain events in the domain_events table. Structured
// sub-records (field changes, actions, recipients) are stored as JSON since
// nothing queries inside them.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event domain.DomainEvent) error {
	changes, err := json.Marshal(event.FieldChanges)
	if err != nil {
		return fmt.Errorf("marshal field changes: %w", err)
	}
	actions, err := json.Marshal(event.SuggestedActions)
	if err != nil {
		return fmt.Errorf("marshal suggested actions: %w", err)
	}
	recipients, err := json.Marshal(event.AffectedRecipients)
	if err != nil {
		return fmt.Errorf("marshal recipients: %w", err)
	}

	query := `
		INSERT INTO domain_events (
			id, kind, entity_type, entity_id, summary, details,
			field_changes, occurred_at, severity, suggested_actions,
			requires_action, recipients
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		string(event.Kind),
		string(event.EntityType),
		event.EntityID,
		event.Summary,
		event.Details,
		changes,
		event.OccurredAt,
		event.Severity.String(),
		actions,
		event.RequiresAction,
		recipients,
	)
	if err != nil {
		return fmt.Errorf("insert domain event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]domain.DomainEvent, error) {
	query := `
		SELECT id, kind, entity_type, entity_id, summary, details,
			   field_changes, occurred_at, severity, suggested_actions,
			   requires_action, recipients
		FROM domain_events
		ORDER BY occurred_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query domain events: %w", err)
	}
	defer rows.Close()

	var events []domain.DomainEvent
	for rows.Next() {
		var (
			event      domain.DomainEvent
			id         uuid.UUID
			kind       string
			entityType string
			severity   string
			changes    []byte
			actions    []byte
			recipients []byte
		)
		err := rows.Scan(
			&id,
			&kind,
			&entityType,
			&event.EntityID,
			&event.Summary,
			&event.Details,
			&changes,
			&event.OccurredAt,
			&severity,
			&actions,
			&event.RequiresAction,
			&recipients,
		)
		if err != nil {
			return nil, fmt.Errorf("scan domain event: %w", err)
		}
		event.ID = id
		event.Kind = domain.EventKind(kind)
		event.EntityType = domain.EntityType(entityType)
		event.Severity = domain.ParseSeverity(severity)
		if err := json.Unmarshal(changes, &event.FieldChanges); err != nil {
			return nil, fmt.Errorf("decode field changes: %w", err)
		}
		if err := json.Unmarshal(actions, &event.SuggestedActions); err != nil {
			return nil, fmt.Errorf("decode suggested actions: %w", err)
		}
		if err := json.Unmarshal(recipients, &event.AffectedRecipients); err != nil {
			return nil, fmt.Errorf("decode recipients: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate domain events: %w", err)
	}
	return events, nil
}
