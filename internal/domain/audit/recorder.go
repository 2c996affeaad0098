package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/cosmosolder/sparkbridge/internal/infra/eventbus"
)

// Recorder persists invocation log entries.
type Recorder struct {
	db *sql.DB
}

// NewRecorder returns a Recorder backed by db.
func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{db: db}
}

// Record inserts one entry.
func (r *Recorder) Record(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO invocation_log
		(id, mode, endpoint, outcome, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Mode), e.Endpoint, e.Outcome, e.Error,
		e.Duration.Milliseconds(), e.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("audit: record invocation %s: %w", e.ID, err)
	}
	return nil
}

// ListRecent returns the newest entries, most recent first.
func (r *Recorder) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT
		id, mode, endpoint, outcome, error, duration_ms, created_at
		FROM invocation_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: list invocations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			mode       string
			durationMs int64
			createdAt  string
		)
		if err := rows.Scan(&e.ID, &mode, &e.Endpoint, &e.Outcome,
			&e.Error, &durationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("audit: scan invocation: %w", err)
		}
		e.Mode = Mode(mode)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			e.CreatedAt = ts
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Start consumes invocation-completed events from bus until ctx is cancelled.
// Persistence failures are logged and skipped; audit never fails a call.
func (r *Recorder) Start(ctx context.Context, bus eventbus.EventBus) {
	events := bus.Subscribe(TopicInvocationCompleted)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-events:
				entry, ok := evt.Payload.(Entry)
				if !ok {
					log.Printf("audit: unexpected payload type %T on %s", evt.Payload, evt.Topic)
					continue
				}
				if err := r.Record(ctx, entry); err != nil {
					log.Printf("audit: %v", err)
				}
			}
		}
	}()
}
