package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
)

const insertWorkerEventsQuery = `
INSERT INTO worker_events (
	worker_id,
	pid,
	runner_id,
	from_state,
	to_state,
	event,
	message,
	timestamp
) VALUES`

// InsertWorkerEvents appends lifecycle transitions to the event log.
func (r *Repository) InsertWorkerEvents(ctx context.Context, events []model.WorkerEvent) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("insert_worker_events", err, start)
	}()

	if len(events) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertWorkerEventsQuery)
	if err != nil {
		return fmt.Errorf("prepare worker events batch: %w", err)
	}
	for _, e := range events {
		if err = batch.Append(e.WorkerID, e.PID, e.RunnerID, e.From, e.To, e.Event, e.Message, e.Timestamp); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append worker event: %w", err)
		}
	}
	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert worker events: %w", err)
	}
	return nil
}

const workerEventsQuery = `
SELECT worker_id, pid, runner_id, from_state, to_state, event, message, timestamp
FROM worker_events
WHERE worker_id = ?
ORDER BY timestamp DESC
LIMIT ?`

// WorkerEvents returns the most recent events of a worker, newest first.
func (r *Repository) WorkerEvents(ctx context.Context, workerID string, limit uint64) (events []model.WorkerEvent, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("worker_events", err, start)
	}()

	rows, err := r.conn.Query(ctx, workerEventsQuery, workerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query worker events: %w", err)
	}
	defer closeRows(rows, &err)

	for rows.Next() {
		var e model.WorkerEvent
		if err = rows.Scan(&e.WorkerID, &e.PID, &e.RunnerID, &e.From, &e.To, &e.Event, &e.Message, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan worker event: %w", err)
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate worker events: %w", err)
	}
	return events, nil
}
