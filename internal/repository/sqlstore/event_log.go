package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/egannguyen/go-order-management/internal/entity"
)

// eventLog persists domain events in the same store as the state they
// describe. Appending inside the transaction that mutates state keeps the
// log and the tables consistent with each other.
type eventLog struct {
	q querier
	s *Store
}

func (l *eventLog) Append(ctx context.Context, streamID string, event entity.Event) error {
	ctx, cancel := l.s.opCtx(ctx)
	defer cancel()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
	}

	_, err = l.q.ExecContext(ctx,
		"INSERT INTO events (stream_id, event_type, payload, created_at) VALUES ($1, $2, $3, $4)",
		streamID, event.EventType(), string(payload), time.Now(),
	)
	if err != nil {
		return mapErr(fmt.Errorf("failed to insert event %s: %w", event.EventType(), err))
	}
	return nil
}

func (l *eventLog) ByStream(ctx context.Context, streamID string) ([]entity.EventRecord, error) {
	ctx, cancel := l.s.opCtx(ctx)
	defer cancel()

	rows, err := l.q.QueryContext(ctx,
		"SELECT id, stream_id, event_type, payload, created_at FROM events WHERE stream_id = $1 ORDER BY id",
		streamID,
	)
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to load events for stream %s: %w", streamID, err))
	}
	defer rows.Close()

	var records []entity.EventRecord
	for rows.Next() {
		var rec entity.EventRecord
		if err := rows.Scan(&rec.ID, &rec.StreamID, &rec.EventType, &rec.Payload, &rec.CreatedAt); err != nil {
			return nil, mapErr(fmt.Errorf("failed to scan event record: %w", err))
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(fmt.Errorf("error iterating event rows: %w", err))
	}
	return records, nil
}
