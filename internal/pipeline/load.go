package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"loanetl/internal/checkpoint"
	"loanetl/internal/config"
	"loanetl/internal/metrics"
	"loanetl/internal/schema"
	"loanetl/internal/storage"
	"loanetl/internal/transformer/builtin"
)

// LoadToDB replaces the destination table described by cfg with the rows of
// the table at input. customer_id must be present and unique; it becomes the
// primary key unless cfg.KeyColumns says otherwise. The backend for
// cfg.Kind must be registered (see storage/all).
func LoadToDB(ctx context.Context, input string, cfg storage.Config, opts ...Option) error {
	o := newOptions(opts)
	return runStage(ctx, o, StageLoad, func(ctx context.Context, log *zerolog.Logger) error {
		t, err := checkpoint.Read(ctx, input)
		if err != nil {
			return err
		}
		metrics.RecordRows(o.job, StageLoad, metrics.RowsRead, t.Len())

		if len(cfg.KeyColumns) == 0 {
			cfg.KeyColumns = []string{schema.CustomerID}
		}
		for _, k := range cfg.KeyColumns {
			if err := (builtin.UniqueKey{Column: k}).Apply(t); err != nil {
				return err
			}
		}

		repo, err := storage.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer repo.Close()

		stats, err := storage.ReplaceTable(ctx, repo, cfg, t)
		metrics.RecordBatches(o.job, stats.Batches)
		if err != nil {
			return err
		}
		metrics.RecordRows(o.job, StageLoad, metrics.RowsLoaded, int(stats.Rows))
		log.Info().
			Str("kind", cfg.Kind).
			Str("table", cfg.Table).
			Int64("rows", stats.Rows).
			Uint64("fingerprint", t.Fingerprint()).
			Msg("table loaded")
		return nil
	})
}

// StorageConfig maps the storage section of a pipeline file onto a
// storage.Config.
func StorageConfig(p config.Pipeline) storage.Config {
	return storage.Config{
		Kind:       p.Storage.Kind,
		DSN:        p.Storage.DSN,
		Host:       p.Storage.Host,
		Port:       p.Storage.Port,
		Database:   p.Storage.Database,
		User:       p.Storage.User,
		Password:   p.Storage.Password,
		Table:      p.Storage.Table,
		KeyColumns: []string{schema.CustomerID},
		BatchSize:  p.Runtime.BatchSize,
	}
}
