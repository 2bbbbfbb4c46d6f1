package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"loanetl/internal/checkpoint"
	"loanetl/internal/datasource"
	"loanetl/internal/datasource/file"
	"loanetl/internal/metrics"
	"loanetl/internal/parser/csv"
	"loanetl/internal/schema"
	"loanetl/internal/transformer"
	"loanetl/internal/transformer/builtin"
	"loanetl/pkg/records"
)

// cleanChain turns the raw primary table into the clean, imputed and
// feature-engineered loan table.
var cleanChain = transformer.Chain{
	{Name: "normalize columns", Transformer: builtin.NormalizeColumns{}},
	{Name: "trim cells", Transformer: builtin.TrimCells{}},
	{Name: "coerce", Transformer: builtin.Coerce{Numeric: schema.NumericColumns, Text: schema.TextColumns}},
	{Name: "reconcile", Transformer: builtin.Reconcile{}},
	{Name: "derive", Transformer: builtin.Derive{}},
}

// statesChain prepares the state reference table for the join.
var statesChain = transformer.Chain{
	{Name: "normalize columns", Transformer: builtin.NormalizeColumns{}},
	{Name: "trim cells", Transformer: builtin.TrimCells{}},
	{Name: "coerce", Transformer: builtin.Coerce{Text: []string{schema.StateCode}}},
	{Name: "rename key", Transformer: transformer.Func(func(t *records.Table) error {
		if err := (builtin.Require{Columns: []string{schema.StateCode}}).Apply(t); err != nil {
			return err
		}
		if err := t.RenameColumns(map[string]string{schema.StateCode: schema.State}); err != nil {
			return transformer.SchemaErrorf(schema.State, -1, "%v", err)
		}
		return nil
	})},
}

// ExtractClean reads the primary loan CSV at input, cleans it, imputes
// missing values, derives the engineered features and writes the result to
// output.
func ExtractClean(ctx context.Context, input, output string, opts ...Option) error {
	o := newOptions(opts)
	return runStage(ctx, o, StageExtractClean, func(ctx context.Context, log *zerolog.Logger) error {
		t, err := readCSV(ctx, file.NewLocal(input), o.csv)
		if err != nil {
			return err
		}
		metrics.RecordRows(o.job, StageExtractClean, metrics.RowsRead, t.Len())

		if err := cleanChain.Apply(t); err != nil {
			return err
		}
		if err := checkpoint.Write(ctx, output, t); err != nil {
			return err
		}
		metrics.RecordRows(o.job, StageExtractClean, metrics.RowsWritten, t.Len())
		log.Info().Str("input", input).Str("output", output).Int("rows", t.Len()).Int("columns", len(t.Columns)).Msg("clean table written")
		return nil
	})
}

// ExtractStates reads the state reference CSV at input, normalizes it,
// renames its key to state and writes it to output. Rows without a key are
// dropped with a warning; a repeated key fails the stage.
func ExtractStates(ctx context.Context, input, output string, opts ...Option) error {
	o := newOptions(opts)
	return runStage(ctx, o, StageExtractStates, func(ctx context.Context, log *zerolog.Logger) error {
		t, err := readCSV(ctx, file.NewLocal(input), o.csv)
		if err != nil {
			return err
		}
		metrics.RecordRows(o.job, StageExtractStates, metrics.RowsRead, t.Len())

		if err := statesChain.Apply(t); err != nil {
			return err
		}
		if n := builtin.DropMissingKey(t, schema.State); n > 0 {
			log.Warn().Int("dropped", n).Msg("reference rows without a state code dropped")
			metrics.RecordRows(o.job, StageExtractStates, metrics.RowsDropped, n)
		}
		if err := (builtin.UniqueKey{Column: schema.State}).Apply(t); err != nil {
			return err
		}
		if err := checkpoint.Write(ctx, output, t); err != nil {
			return err
		}
		metrics.RecordRows(o.job, StageExtractStates, metrics.RowsWritten, t.Len())
		log.Info().Str("input", input).Str("output", output).Int("rows", t.Len()).Msg("reference table written")
		return nil
	})
}

// readCSV opens src and parses it into a table of raw strings.
func readCSV(ctx context.Context, src datasource.Source, opt csv.Options) (*records.Table, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	t, err := csv.NewParser(opt).ReadTable(rc)
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return t, nil
}
