package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"opencure/internal/domain"
	"opencure/internal/infra"
	"opencure/internal/sqlinline"
)

const defaultListLimit = 500

// EventRepositoryPG implements domain.EventJournal on escrow_events.
type EventRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewEventRepository creates a new journal backed by PostgreSQL.
func NewEventRepository(sql infra.SQLExecutor) *EventRepositoryPG {
	return &EventRepositoryPG{sql: sql}
}

// Publish appends ev. Re-publishing the same (project, sequence) is a no-op.
func (r *EventRepositoryPG) Publish(ctx context.Context, ev domain.Event) error {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", ev.Type, err)
	}
	_, err = r.sql.Exec(ctx, sqlinline.QInsertEscrowEvent,
		ev.ID,
		ev.ProjectID,
		ev.Sequence,
		string(ev.Type),
		payload,
		ev.OccurredAt,
	)
	return err
}

// ListByProject returns up to limit events of one project, oldest first.
func (r *EventRepositoryPG) ListByProject(ctx context.Context, projectID string, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListEscrowEvents, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.JournalEntry
	for rows.Next() {
		var (
			entry      domain.JournalEntry
			eventType  string
			occurredAt time.Time
		)
		if err := rows.Scan(&entry.ID, &entry.ProjectID, &entry.Sequence, &eventType, &entry.Payload, &occurredAt); err != nil {
			return nil, err
		}
		entry.Type = domain.EventType(eventType)
		entry.OccurredAt = occurredAt
		items = append(items, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var _ domain.EventJournal = (*EventRepositoryPG)(nil)
