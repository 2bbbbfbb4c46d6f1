package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"loanetl/internal/config"
	"loanetl/internal/parser/csv"
)

// Run executes the whole pipeline described by p:
//
//	{extract_clean, extract_states} -> combine -> encode -> load
//
// The two extractions run concurrently and combine starts only when both
// have succeeded; the first failure cancels the other. Any stage failure
// stops the run. There is no retry.
func Run(ctx context.Context, p config.Pipeline) error {
	o := pipelineOptions(p)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ExtractClean(gctx, p.Paths.Primary, p.Paths.Clean, o...) })
	g.Go(func() error { return ExtractStates(gctx, p.Paths.Reference, p.Paths.States, o...) })
	if err := g.Wait(); err != nil {
		return err
	}

	for _, stage := range Stages[2:] {
		if err := RunStage(ctx, p, stage); err != nil {
			return err
		}
	}
	return nil
}

// RunStage executes a single named stage of p, reading the checkpoints that
// earlier stages left behind.
func RunStage(ctx context.Context, p config.Pipeline, stage string) error {
	o := pipelineOptions(p)
	switch stage {
	case StageExtractClean:
		return ExtractClean(ctx, p.Paths.Primary, p.Paths.Clean, o...)
	case StageExtractStates:
		return ExtractStates(ctx, p.Paths.Reference, p.Paths.States, o...)
	case StageCombine:
		return CombineSources(ctx, p.Paths.Clean, p.Paths.States, p.Paths.Combined, o...)
	case StageEncode:
		_, err := Encode(ctx, p.Paths.Combined, p.Paths.Encoded, p.Paths.Lookup, o...)
		return err
	case StageLoad:
		return LoadToDB(ctx, p.Paths.Encoded, StorageConfig(p), o...)
	default:
		return fmt.Errorf("unknown stage %q (want one of %v)", stage, Stages)
	}
}

func pipelineOptions(p config.Pipeline) []Option {
	return []Option{
		WithJob(p.Job),
		WithCSV(csv.Options{Comma: p.Source.Delimiter(), LazyQuotes: p.Source.LazyQuotes}),
	}
}
