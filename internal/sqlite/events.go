package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rpggio/proofescrow/internal/domain/event"
)

// EventRecorder implements event.Recorder for SQLite
type EventRecorder struct {
	q querier
}

// NewEventRecorder creates an EventRecorder bound to a database handle or transaction
func NewEventRecorder(q querier) *EventRecorder {
	return &EventRecorder{q: q}
}

var _ event.Recorder = (*EventRecorder)(nil)

// Record inserts a new event
func (r *EventRecorder) Record(ctx context.Context, e *event.Event) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var projectID sql.NullInt64
	if e.ProjectID != nil {
		projectID = sql.NullInt64{Int64: int64(*e.ProjectID), Valid: true}
	}

	query := `
		INSERT INTO ledger_events (
			call_id, project_id, type, actor, details, ledger_time, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.q.ExecContext(ctx, query,
		e.CallID,
		projectID,
		e.Type,
		e.Actor,
		e.Details,
		int64(e.LedgerTime),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		e.ID = id
	}
	e.CreatedAt = createdAt
	return nil
}

// EventRepository implements event.Repository for SQLite
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

var _ event.Repository = (*EventRepository)(nil)

// ListForProject returns the committed events of one project, oldest first
func (r *EventRepository) ListForProject(ctx context.Context, projectID uint64, opts event.ListOptions) ([]event.Event, error) {
	query := `
		SELECT id, call_id, project_id, type, actor, details, ledger_time, created_at
		FROM ledger_events
		WHERE project_id = ?
		ORDER BY id ASC
	`
	args := []any{int64(projectID)}

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []event.Event{}
	for rows.Next() {
		var e event.Event
		var pid sql.NullInt64
		var details sql.NullString
		var ledgerTime int64
		if err := rows.Scan(
			&e.ID,
			&e.CallID,
			&pid,
			&e.Type,
			&e.Actor,
			&details,
			&ledgerTime,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if pid.Valid {
			id := uint64(pid.Int64)
			e.ProjectID = &id
		}
		e.Details = details.String
		e.LedgerTime = uint64(ledgerTime)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
