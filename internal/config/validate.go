package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into the
// config (e.g. "storage.kind").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// KnownStorageKinds lists the backends compiled into the binary.
var KnownStorageKinds = []string{"postgres", "sqlite", "mssql"}

// KnownMetricsBackends lists accepted metrics.backend values.
var KnownMetricsBackends = []string{"none", "pushgateway", "datadog"}

// ValidatePipeline performs static validation of p. It does not mutate p or
// touch the filesystem.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels metrics and logs",
		})
	}
	issues = append(issues, validatePaths(p.Paths)...)
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	return issues
}

func validatePaths(ps Paths) []Issue {
	var issues []Issue
	required := []struct {
		name, val string
	}{
		{"primary", ps.Primary},
		{"reference", ps.Reference},
		{"clean", ps.Clean},
		{"states", ps.States},
		{"combined", ps.Combined},
		{"encoded", ps.Encoded},
	}
	owners := map[string]string{}
	for _, r := range append(required, struct{ name, val string }{"lookup", ps.Lookup}) {
		path := "paths." + r.name
		if strings.TrimSpace(r.val) == "" {
			if r.name != "lookup" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path,
					Message:  fmt.Sprintf("%s must not be empty", path),
				})
			}
			continue
		}
		clean := filepath.Clean(r.val)
		if prev, dup := owners[clean]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  fmt.Sprintf("%s is the same file as paths.%s", path, prev),
			})
			continue
		}
		owners[clean] = r.name
	}
	return issues
}

func validateSource(s Source) []Issue {
	if s.Comma == "" {
		return nil
	}
	if utf8.RuneCountInString(s.Comma) != 1 {
		return []Issue{{
			Severity: SeverityError,
			Path:     "source.comma",
			Message:  fmt.Sprintf("comma must be a single character, got %q", s.Comma),
		}}
	}
	if r := s.Delimiter(); r == '"' || r == '\r' || r == '\n' {
		return []Issue{{
			Severity: SeverityError,
			Path:     "source.comma",
			Message:  fmt.Sprintf("%q cannot be used as a delimiter", r),
		}}
	}
	return nil
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
	}
	if !contains(KnownStorageKinds, s.Kind) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; known: %s", s.Kind, strings.Join(KnownStorageKinds, ", ")),
		})
	}
	if strings.TrimSpace(s.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.table",
			Message:  "storage.table must not be empty",
		})
	}
	if s.Port < 0 || s.Port > 65535 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.port",
			Message:  fmt.Sprintf("port %d out of range", s.Port),
		})
	}

	if s.DSN != "" {
		if s.Host != "" || s.Database != "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "storage.dsn",
				Message:  "dsn is set; host/database fields are ignored",
			})
		}
		return issues
	}
	if strings.TrimSpace(s.Database) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.database",
			Message:  "storage.database must not be empty when dsn is not set",
		})
	}
	if s.Kind != "sqlite" && strings.TrimSpace(s.Host) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.host",
			Message:  "storage.host must not be empty when dsn is not set",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	if m.Backend == "" {
		return nil
	}
	if !contains(KnownMetricsBackends, m.Backend) {
		return []Issue{{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q", m.Backend),
		}}
	}
	if m.Backend == "pushgateway" && m.PushgatewayURL == "" {
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "metrics.pushgateway_url",
			Message:  "pushgateway backend without url; metrics will be dropped unless -pushgateway-url is given",
		}}
	}
	return nil
}

func validateRuntime(r RuntimeConfig) []Issue {
	if r.BatchSize <= 0 {
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "runtime.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; the loader default will be used", r.BatchSize),
		}}
	}
	return nil
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
