package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"loanetl/internal/config"
	"loanetl/internal/logging"
	"loanetl/internal/metrics"
	"loanetl/internal/metrics/datadog"
	"loanetl/internal/metrics/prompush"
	"loanetl/internal/pipeline"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "loanetl/internal/storage/all"
)

// main is the entry point for the loan ETL binary. It loads the pipeline
// config, optionally initializes a metrics backend, and runs either the
// whole pipeline or the single stage named by -stage.
func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("etl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath        = fs.String("config", "configs/pipelines/loans.yaml", "pipeline config path (.yaml, .yml or .json)")
		stage          = fs.String("stage", "", fmt.Sprintf("run a single stage, one of %v; empty runs all", pipeline.Stages))
		validate       = fs.Bool("validate", false, "validate the configuration and exit")
		metricsBackend = fs.String("metrics-backend", "", "metrics backend (none, pushgateway, datadog); overrides the config")
		pushgatewayURL = fs.String("pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
		verbose        = fs.Bool("v", false, "enable debug logs")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	opt := logging.Options{Out: stderr}
	if *verbose {
		opt.Level = "debug"
	}
	logger := logging.New("etl", opt)

	p, err := config.Load(*cfgPath)
	if err != nil {
		logger.Error().Err(err).Msg("load config")
		return 1
	}

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		ev := logger.Warn()
		if iss.Severity == config.SeverityError {
			ev = logger.Error()
		}
		ev.Str("path", iss.Path).Msg(iss.Message)
	}
	if config.HasErrors(issues) {
		logger.Error().Str("config", *cfgPath).Msg("configuration is invalid")
		return 1
	}
	if *validate {
		logger.Info().Str("config", *cfgPath).Msg("configuration is valid")
		return 0
	}

	flush, err := setupMetrics(p, *metricsBackend, *pushgatewayURL, &logger)
	if err != nil {
		logger.Warn().Err(err).Msg("metrics disabled")
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runID := logging.NewRunID()
	ctx = logging.WithRun(ctx, logger, runID)

	start := time.Now()
	if *stage != "" {
		err = pipeline.RunStage(ctx, p, *stage)
	} else {
		err = pipeline.Run(ctx, p)
	}
	if err != nil {
		logger.Error().Err(err).Str("run_id", runID).Msg("pipeline failed")
		return 1
	}
	logger.Info().
		Str("run_id", runID).
		Dur("elapsed", time.Since(start).Truncate(time.Millisecond)).
		Msg("pipeline completed")
	return 0
}

// setupMetrics installs the metrics backend. The name comes from the flag,
// then METRICS_BACKEND, then the config. The returned flush is always safe
// to call.
func setupMetrics(p config.Pipeline, name, gwURL string, log *zerolog.Logger) (func(), error) {
	noop := func() {}
	if name == "" {
		name = os.Getenv("METRICS_BACKEND")
	}
	if name == "" {
		name = p.Metrics.Backend
	}

	var (
		b   metrics.Backend
		err error
	)
	switch name {
	case "", "none":
		log.Debug().Msg("metrics: disabled")
		return noop, nil
	case "pushgateway":
		// flag -> env -> config -> default
		for _, u := range []string{gwURL, os.Getenv("PUSHGATEWAY_URL"), p.Metrics.PushgatewayURL, "http://localhost:9091"} {
			if u != "" {
				gwURL = u
				break
			}
		}
		b, err = prompush.NewBackend(p.Job, gwURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:      p.Metrics.DatadogAddr,
			Namespace: "fintech.",
			Tags:      []string{"job:" + p.Job},
		})
	default:
		return noop, fmt.Errorf("unknown metrics backend %q", name)
	}
	if err != nil {
		return noop, err
	}

	metrics.SetBackend(b)
	log.Info().Str("backend", name).Str("job", p.Job).Msg("metrics enabled")
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn().Err(err).Msg("metrics: flush failed")
		}
	}, nil
}
