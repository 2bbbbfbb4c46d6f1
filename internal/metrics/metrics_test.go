package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	counters   []counterCall
	histograms []histCall
	flushes    int
}

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type histCall struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histograms = append(f.histograms, histCall{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	return nil
}

// swapBackend installs fb for the duration of the test.
func swapBackend(t *testing.T, fb Backend) {
	t.Helper()
	orig := backend
	backend = fb
	t.Cleanup(func() { backend = orig })
}

func TestRecordStage(t *testing.T) {
	fb := &fakeBackend{}
	swapBackend(t, fb)

	RecordStage("loans", "extract-clean", nil, 2*time.Second)
	RecordStage("loans", "load", errors.New("boom"), 1500*time.Millisecond)

	if len(fb.counters) != 2 || len(fb.histograms) != 2 {
		t.Fatalf("calls: counters=%d histograms=%d; want 2 and 2", len(fb.counters), len(fb.histograms))
	}
	c0, c1 := fb.counters[0], fb.counters[1]
	if c0.name != StageTotal || c0.delta != 1 {
		t.Fatalf("counter[0] = %#v", c0)
	}
	if c0.labels["stage"] != "extract-clean" || c0.labels["status"] != "success" || c0.labels["job"] != "loans" {
		t.Fatalf("counter[0] labels = %#v", c0.labels)
	}
	if c1.labels["status"] != "failure" {
		t.Fatalf("counter[1] status = %q; want failure", c1.labels["status"])
	}
	if h := fb.histograms[1]; h.name != StageDuration || h.value != 1.5 {
		t.Fatalf("histogram[1] = %#v; want %s=1.5", h, StageDuration)
	}
}

func TestRecordRowsAndBatches(t *testing.T) {
	fb := &fakeBackend{}
	swapBackend(t, fb)

	RecordRows("loans", "encode", RowsWritten, 0)
	RecordRows("loans", "encode", RowsWritten, -3)
	RecordBatches("loans", 0)
	if len(fb.counters) != 0 {
		t.Fatalf("non-positive deltas should be ignored, got %#v", fb.counters)
	}

	RecordRows("loans", "combine", RowsWritten, 42)
	RecordBatches("loans", 3)
	if len(fb.counters) != 2 {
		t.Fatalf("got %d counter calls; want 2", len(fb.counters))
	}
	rows := fb.counters[0]
	if rows.name != RowsTotal || rows.delta != 42 || rows.labels["kind"] != RowsWritten || rows.labels["stage"] != "combine" {
		t.Fatalf("rows counter = %#v", rows)
	}
	if b := fb.counters[1]; b.name != BatchesTotal || b.delta != 3 {
		t.Fatalf("batch counter = %#v", b)
	}
}

func TestSetBackendAndFlush(t *testing.T) {
	fb := &fakeBackend{}
	swapBackend(t, fb)

	SetBackend(nil)
	if backend != fb {
		t.Fatalf("SetBackend(nil) replaced the backend")
	}
	if err := Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if fb.flushes != 1 {
		t.Fatalf("flushes = %d; want 1", fb.flushes)
	}
}
