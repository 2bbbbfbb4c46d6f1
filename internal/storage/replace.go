package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"loanetl/internal/ddl"
	"loanetl/pkg/records"
)

// DefaultBatchSize is used when Config.BatchSize is not positive.
const DefaultBatchSize = 5000

// StagingSuffix is appended to the destination name to form the staging
// table that ReplaceTable loads into.
const StagingSuffix = "__staging"

// StagingName returns the staging table for table.
func StagingName(table string) string { return table + StagingSuffix }

// ReplaceStats reports what ReplaceTable wrote.
type ReplaceStats struct {
	Rows    int64
	Batches int64
}

// ReplaceTable makes cfg.Table hold exactly the rows of t.
//
// The rows are bulk-loaded into a freshly created staging table whose schema
// is derived from t, and the staging table is then swapped in with
// Repository.Swap. A failure at any point leaves the previous destination
// table untouched and drops the staging table.
func ReplaceTable(ctx context.Context, repo Repository, cfg Config, t *records.Table) (ReplaceStats, error) {
	var stats ReplaceStats
	if cfg.Table == "" {
		return stats, fmt.Errorf("storage: destination table is required")
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	staging := StagingName(cfg.Table)
	log := zerolog.Ctx(ctx).With().Str("table", cfg.Table).Str("staging", staging).Logger()

	def, err := ddl.FromTable(staging, t, repo.MapType, cfg.KeyColumns...)
	if err != nil {
		return stats, err
	}
	if err := repo.DropTable(ctx, staging); err != nil {
		return stats, fmt.Errorf("drop stale staging table: %w", err)
	}
	if err := repo.CreateTable(ctx, def); err != nil {
		return stats, fmt.Errorf("create staging table: %w", err)
	}

	start := time.Now()
	stats, err = loadTable(log.WithContext(ctx), repo, staging, t, batchSize)
	if err == nil {
		err = repo.Swap(ctx, staging, cfg.Table)
	}
	if err != nil {
		if derr := repo.DropTable(context.WithoutCancel(ctx), staging); derr != nil {
			log.Warn().Err(derr).Msg("drop staging table after failed load")
		}
		return stats, err
	}
	log.Info().
		Int64("rows", stats.Rows).
		Int64("batches", stats.Batches).
		Dur("elapsed", time.Since(start)).
		Msg("table replaced")
	return stats, nil
}

// loadTable streams the rows of t into table through LoadBatches.
func loadTable(ctx context.Context, repo Repository, table string, t *records.Table, batchSize int) (ReplaceStats, error) {
	var stats ReplaceStats
	columns := append([]string(nil), t.Columns...)
	rows := make(chan []any, batchSize)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(rows)
		for _, r := range t.Rows {
			row := make([]any, len(columns))
			for j, c := range columns {
				row[j] = r[c]
			}
			select {
			case rows <- row:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	g.Go(func() error {
		n, err := LoadBatches(gctx, columns, rows, batchSize, func(ctx context.Context, cols []string, batch [][]any) (int64, error) {
			stats.Batches++
			return repo.CopyFrom(ctx, table, cols, batch)
		})
		stats.Rows = n
		return err
	})
	if err := g.Wait(); err != nil {
		return stats, fmt.Errorf("load %s: %w", table, err)
	}
	if stats.Rows != int64(t.Len()) {
		return stats, fmt.Errorf("load %s: wrote %d rows, want %d", table, stats.Rows, t.Len())
	}
	return stats, nil
}
