package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func validPipeline() Pipeline {
	return Pipeline{
		Job: "loan_etl",
		Paths: Paths{
			Primary:   "fintech_data.csv",
			Reference: "states.csv",
			Clean:     "clean.parquet",
			States:    "states.parquet",
			Combined:  "combined.parquet",
			Encoded:   "encoded.parquet",
		},
		Source:  Source{Comma: ","},
		Storage: Storage{Kind: "postgres", Host: "localhost", Database: "fintech", Table: "fintech_loans"},
		Metrics: Metrics{Backend: "none"},
		Runtime: RuntimeConfig{BatchSize: 1000},
	}
}

func TestValidatePipeline_ValidMinimal(t *testing.T) {
	t.Parallel()

	if issues := ValidatePipeline(validPipeline()); len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestValidatePipeline_Issues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(p *Pipeline)
		sev    IssueSeverity
		path   string
		msg    string
	}{
		{"missing job", func(p *Pipeline) { p.Job = " " }, SeverityError, "job", "must not be empty"},
		{"missing primary", func(p *Pipeline) { p.Paths.Primary = "" }, SeverityError, "paths.primary", "must not be empty"},
		{"shared checkpoint", func(p *Pipeline) { p.Paths.Encoded = "./combined.parquet" }, SeverityError, "paths.encoded", "same file as paths.combined"},
		{"lookup collides", func(p *Pipeline) { p.Paths.Lookup = "clean.parquet" }, SeverityError, "paths.lookup", "paths.clean"},
		{"long comma", func(p *Pipeline) { p.Source.Comma = ";;" }, SeverityError, "source.comma", "single character"},
		{"quote comma", func(p *Pipeline) { p.Source.Comma = `"` }, SeverityError, "source.comma", "cannot be used"},
		{"no storage kind", func(p *Pipeline) { p.Storage.Kind = "" }, SeverityError, "storage.kind", "must not be empty"},
		{"unknown storage kind", func(p *Pipeline) { p.Storage.Kind = "mysql" }, SeverityError, "storage.kind", "unknown storage kind"},
		{"no table", func(p *Pipeline) { p.Storage.Table = "" }, SeverityError, "storage.table", "must not be empty"},
		{"bad port", func(p *Pipeline) { p.Storage.Port = 70000 }, SeverityError, "storage.port", "out of range"},
		{"no host", func(p *Pipeline) { p.Storage.Host = "" }, SeverityError, "storage.host", "must not be empty"},
		{"dsn shadows fields", func(p *Pipeline) { p.Storage.DSN = "postgres://x" }, SeverityWarning, "storage.dsn", "ignored"},
		{"unknown metrics", func(p *Pipeline) { p.Metrics.Backend = "statsd" }, SeverityError, "metrics.backend", "unknown"},
		{"pushgateway without url", func(p *Pipeline) { p.Metrics.Backend = "pushgateway" }, SeverityWarning, "metrics.pushgateway_url", "without url"},
		{"zero batch", func(p *Pipeline) { p.Runtime.BatchSize = 0 }, SeverityWarning, "runtime.batch_size", "batch_size=0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := validPipeline()
			tc.mutate(&p)
			issues := ValidatePipeline(p)
			if !hasIssue(t, issues, tc.sev, tc.path, tc.msg) {
				t.Fatalf("expected %s at %s containing %q; got %+v", tc.sev, tc.path, tc.msg, issues)
			}
		})
	}
}

func TestValidatePipeline_SQLiteNeedsNoHost(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Storage = Storage{Kind: "sqlite", Database: "loans.db", Table: "loans"}
	if issues := ValidatePipeline(p); HasErrors(issues) {
		t.Fatalf("unexpected errors: %+v", issues)
	}
}
