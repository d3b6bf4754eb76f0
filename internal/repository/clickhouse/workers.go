package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
)

const workersQuery = `
SELECT id, pid, name, endpoint, stake, enabled, runner_id, skip_ra, updated_at
FROM (
	SELECT
		id,
		argMax(pid, updated_at) AS pid,
		argMax(name, updated_at) AS name,
		argMax(endpoint, updated_at) AS endpoint,
		argMax(stake, updated_at) AS stake,
		argMax(enabled, updated_at) AS enabled,
		argMax(runner_id, updated_at) AS runner_id,
		argMax(skip_ra, updated_at) AS skip_ra,
		max(updated_at) AS updated_at
	FROM workers
	GROUP BY id
)
WHERE runner_id = ?
ORDER BY id`

// Workers returns the latest configuration of the workers assigned to runnerID.
func (r *Repository) Workers(ctx context.Context, runnerID string) (workers []model.WorkerConfig, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("workers", err, start)
	}()

	rows, err := r.conn.Query(ctx, workersQuery, runnerID)
	if err != nil {
		return nil, fmt.Errorf("query workers: %w", err)
	}
	defer closeRows(rows, &err)

	for rows.Next() {
		var w model.WorkerConfig
		if err = rows.Scan(&w.ID, &w.PID, &w.Name, &w.Endpoint, &w.Stake, &w.Enabled, &w.RunnerID, &w.SkipRA, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan worker: %w", err)
		}
		workers = append(workers, w)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workers: %w", err)
	}
	return workers, nil
}

// UpsertWorkers writes new worker versions. The latest updated_at wins.
func (r *Repository) UpsertWorkers(ctx context.Context, workers []model.WorkerConfig) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("upsert_workers", err, start)
	}()

	if len(workers) == 0 {
		return nil
	}

	const query = `
INSERT INTO workers (
	id,
	pid,
	name,
	endpoint,
	stake,
	enabled,
	runner_id,
	skip_ra,
	updated_at
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare workers batch: %w", err)
	}
	for _, w := range workers {
		if err = batch.Append(w.ID, w.PID, w.Name, w.Endpoint, w.Stake, w.Enabled, w.RunnerID, w.SkipRA, updatedAt(w.UpdatedAt)); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append worker %s: %w", w.ID, err)
		}
	}
	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert workers: %w", err)
	}
	return nil
}
