package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
)

const poolsQuery = `
SELECT pid, argMax(owner, updated_at), argMax(enabled, updated_at), max(updated_at)
FROM pools
GROUP BY pid
ORDER BY pid`

// Pools returns the latest configuration of every pool.
func (r *Repository) Pools(ctx context.Context) (pools []model.PoolConfig, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("pools", err, start)
	}()

	rows, err := r.conn.Query(ctx, poolsQuery)
	if err != nil {
		return nil, fmt.Errorf("query pools: %w", err)
	}
	defer closeRows(rows, &err)

	for rows.Next() {
		var pool model.PoolConfig
		if err = rows.Scan(&pool.PID, &pool.Owner, &pool.Enabled, &pool.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan pool: %w", err)
		}
		pools = append(pools, pool)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pools: %w", err)
	}
	return pools, nil
}

// UpsertPools writes new pool versions. The latest updated_at wins.
func (r *Repository) UpsertPools(ctx context.Context, pools []model.PoolConfig) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("upsert_pools", err, start)
	}()

	if len(pools) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, `INSERT INTO pools (pid, owner, enabled, updated_at) VALUES`)
	if err != nil {
		return fmt.Errorf("prepare pools batch: %w", err)
	}
	for _, pool := range pools {
		if err = batch.Append(pool.PID, pool.Owner, pool.Enabled, updatedAt(pool.UpdatedAt)); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append pool %d: %w", pool.PID, err)
		}
	}
	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert pools: %w", err)
	}
	return nil
}

func updatedAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
