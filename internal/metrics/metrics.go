// Package metrics records operational metrics from the loan pipeline behind a
// small backend-agnostic interface.
//
// A process-wide backend defaults to a no-op, so instrumented code can always
// call the Record helpers. Concrete systems live in subpackages (prompush,
// datadog) and are installed once by the CLI with SetBackend.
package metrics

import "time"

// Metric names shared by every backend.
const (
	StageTotal    = "loan_etl_stage_total"
	StageDuration = "loan_etl_stage_duration_seconds"
	RowsTotal     = "loan_etl_rows_total"
	BatchesTotal  = "loan_etl_batches_total"
)

// Row kinds reported through RecordRows.
const (
	RowsRead    = "read"
	RowsWritten = "written"
	RowsDropped = "dropped"
	RowsImputed = "imputed"
	RowsLoaded  = "loaded"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration-style value.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStage counts one execution of a pipeline stage and observes its
// duration, labeled by outcome.
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}
	backend.IncCounter(StageTotal, 1, lbls)
	backend.ObserveHistogram(StageDuration, d.Seconds(), lbls)
}

// RecordRows adds n rows of the given kind (RowsRead, RowsWritten, ...) for a
// stage. Non-positive counts are ignored.
func RecordRows(job, stage, kind string, n int) {
	if n <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(n), Labels{
		"job":   job,
		"stage": stage,
		"kind":  kind,
	})
}

// RecordBatches counts loader batches flushed to the database.
func RecordBatches(job string, n int64) {
	if n <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(n), Labels{"job": job})
}
