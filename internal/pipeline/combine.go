package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"loanetl/internal/checkpoint"
	"loanetl/internal/metrics"
	"loanetl/internal/schema"
	"loanetl/internal/transformer/builtin"
)

// CombineSources left-joins the clean loan table at primary with the state
// reference table at reference on state and writes the result to output.
// Every loan row appears exactly once, in order.
func CombineSources(ctx context.Context, primary, reference, output string, opts ...Option) error {
	o := newOptions(opts)
	return runStage(ctx, o, StageCombine, func(ctx context.Context, log *zerolog.Logger) error {
		left, err := checkpoint.Read(ctx, primary)
		if err != nil {
			return err
		}
		right, err := checkpoint.Read(ctx, reference)
		if err != nil {
			return err
		}
		metrics.RecordRows(o.job, StageCombine, metrics.RowsRead, left.Len()+right.Len())

		out, err := builtin.LeftJoin(left, right, schema.State)
		if err != nil {
			return err
		}

		keys := make(map[any]struct{}, right.Len())
		for _, r := range right.Rows {
			keys[r[schema.State]] = struct{}{}
		}
		unmatched := 0
		for _, r := range left.Rows {
			if _, ok := keys[r[schema.State]]; !ok {
				unmatched++
			}
		}
		if unmatched > 0 {
			log.Warn().Int("unmatched", unmatched).Msg("loan rows without a reference match")
		}

		if err := checkpoint.Write(ctx, output, out); err != nil {
			return err
		}
		metrics.RecordRows(o.job, StageCombine, metrics.RowsWritten, out.Len())
		log.Info().Str("output", output).Int("rows", out.Len()).Int("columns", len(out.Columns)).Msg("combined table written")
		return nil
	})
}
