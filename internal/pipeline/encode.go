package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"loanetl/internal/checkpoint"
	"loanetl/internal/lookup"
	"loanetl/internal/metrics"
	"loanetl/internal/schema"
	"loanetl/internal/transformer"
	"loanetl/internal/transformer/builtin"
)

// Encode min-max scales the numeric columns, maps pymnt_plan to 0/1 and
// label-encodes the categorical columns of the table at input, then writes
// it to output. The returned map records every label assignment; when
// lookupPath is not empty it is also written there as a checkpoint.
func Encode(ctx context.Context, input, output, lookupPath string, opts ...Option) (*lookup.Map, error) {
	o := newOptions(opts)
	m := lookup.New()
	err := runStage(ctx, o, StageEncode, func(ctx context.Context, log *zerolog.Logger) error {
		t, err := checkpoint.Read(ctx, input)
		if err != nil {
			return err
		}
		metrics.RecordRows(o.job, StageEncode, metrics.RowsRead, t.Len())

		chain := transformer.Chain{
			{Name: "normalize", Transformer: builtin.MinMax{Columns: schema.NormalizedColumns}},
			{Name: "payment plan", Transformer: builtin.BoolMap{Column: schema.PymntPlan, Codes: builtin.PaymentPlanCodes}},
			{Name: "label encode", Transformer: builtin.LabelEncode{Columns: schema.EncodedColumns, Map: m}},
		}
		if err := chain.Apply(t); err != nil {
			return err
		}

		// The encoded table goes last: it is what the load stage picks up.
		var files []checkpoint.File
		if lookupPath != "" {
			files = append(files, checkpoint.File{Path: lookupPath, Table: m.Table()})
		}
		files = append(files, checkpoint.File{Path: output, Table: t})
		if err := checkpoint.WriteAll(ctx, files...); err != nil {
			return err
		}
		metrics.RecordRows(o.job, StageEncode, metrics.RowsWritten, t.Len())
		log.Info().
			Str("output", output).
			Str("lookup", lookupPath).
			Int("rows", t.Len()).
			Int("codes", m.Len()).
			Msg("encoded table written")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
