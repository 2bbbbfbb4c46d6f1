// Package pipeline implements the stages of the loan ETL. Each stage reads
// its inputs from files, transforms whole tables in memory and writes one
// Parquet checkpoint (or, for the last stage, one database table). Stages
// are independent functions so that a scheduler can run them one at a time;
// Run chains them in-process.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"loanetl/internal/config"
	"loanetl/internal/logging"
	"loanetl/internal/metrics"
	"loanetl/internal/parser/csv"
)

// Stage names, used in logs, metrics labels, errors and the -stage flag.
const (
	StageExtractClean  = "extract_clean"
	StageExtractStates = "extract_states"
	StageCombine       = "combine"
	StageEncode        = "encode"
	StageLoad          = "load"
)

// Stages lists every stage in execution order.
var Stages = []string{StageExtractClean, StageExtractStates, StageCombine, StageEncode, StageLoad}

// Option adjusts how a stage runs.
type Option func(*options)

type options struct {
	job string
	csv csv.Options
}

func newOptions(opts []Option) options {
	o := options{job: config.DefaultJob}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithJob sets the job label attached to metrics.
func WithJob(job string) Option {
	return func(o *options) {
		if job != "" {
			o.job = job
		}
	}
}

// WithCSV sets how the CSV inputs are read.
func WithCSV(opt csv.Options) Option {
	return func(o *options) { o.csv = opt }
}

// runStage runs fn with a stage-scoped logger in ctx, records the stage
// outcome and duration, and wraps a failure as "stage <name>: ...".
func runStage(ctx context.Context, o options, name string, fn func(ctx context.Context, log *zerolog.Logger) error) error {
	log := logging.Stage(ctx, name)
	ctx = log.WithContext(ctx)

	start := time.Now()
	log.Info().Msg("stage started")
	err := fn(ctx, &log)
	d := time.Since(start)
	metrics.RecordStage(o.job, name, err, d)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", d).Msg("stage failed")
		return fmt.Errorf("stage %s: %w", name, err)
	}
	log.Info().Dur("elapsed", d).Msg("stage finished")
	return nil
}
