// Package logging configures the zerolog loggers used across the pipeline.
//
// Stages do not take a logger argument: the runner attaches one to the
// context and code below it retrieves it with zerolog.Ctx.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options controls logger construction. Zero values fall back to the
// LOG_LEVEL and ENVIRONMENT variables.
type Options struct {
	// Level is one of debug, info, warn, error. Empty reads LOG_LEVEL.
	Level string
	// JSON forces structured output. Otherwise a console writer is used
	// unless ENVIRONMENT=production.
	JSON bool
	// Out defaults to stderr.
	Out io.Writer
}

// New returns a logger tagged with component.
func New(component string, opt Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	out := opt.Out
	if out == nil {
		out = os.Stderr
	}
	if !opt.JSON && os.Getenv("ENVIRONMENT") != "production" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level := opt.Level
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	return zerolog.New(out).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// ParseLevel maps a level name onto zerolog, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewRunID returns a fresh identifier for one pipeline run.
func NewRunID() string { return uuid.NewString() }

// WithRun returns ctx carrying l tagged with the run id.
func WithRun(ctx context.Context, l zerolog.Logger, runID string) context.Context {
	l = l.With().Str("run_id", runID).Logger()
	return l.WithContext(ctx)
}

// Stage returns the context logger tagged with a stage name.
func Stage(ctx context.Context, stage string) zerolog.Logger {
	return zerolog.Ctx(ctx).With().Str("stage", stage).Logger()
}
