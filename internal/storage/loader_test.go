package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// logEvents decodes the JSON lines written by a zerolog logger.
func logEvents(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var ev map[string]any
		require.NoError(t, dec.Decode(&ev))
		out = append(out, ev)
	}
	return out
}

func messages(evs []map[string]any) []string {
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i], _ = ev["message"].(string)
	}
	return out
}

func loanRows(n int) <-chan []any {
	in := make(chan []any, n)
	for i := 0; i < n; i++ {
		in <- []any{i, "c"}
	}
	close(in)
	return in
}

func TestLoadBatches(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := zerolog.New(&buf).Level(zerolog.DebugLevel).WithContext(context.Background())

	var sizes []int
	var seen []any
	copyFn := func(_ context.Context, cols []string, rows [][]any) (int64, error) {
		assert.Equal(t, []string{"id", "state"}, cols)
		sizes = append(sizes, len(rows))
		for _, r := range rows {
			seen = append(seen, r[0])
		}
		return int64(len(rows)), nil
	}

	total, err := LoadBatches(ctx, []string{"id", "state"}, loanRows(7), 3, copyFn)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	assert.Equal(t, []int{3, 3, 1}, sizes, "last batch flushed when input closes")
	assert.Equal(t, []any{0, 1, 2, 3, 4, 5, 6}, seen, "row order kept across batches")

	evs := logEvents(t, &buf)
	assert.Equal(t, []string{"batch flushed", "batch flushed", "batch flushed", "input closed"}, messages(evs))
	assert.EqualValues(t, 3, evs[2]["batch"])
	assert.EqualValues(t, 7, evs[2]["total"])
	assert.EqualValues(t, 1, evs[2]["inserted"])
	assert.EqualValues(t, 3, evs[3]["batches"])
}

func TestLoadBatches_EmptyInput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := zerolog.New(&buf).Level(zerolog.DebugLevel).WithContext(context.Background())
	called := false

	total, err := LoadBatches(ctx, []string{"id"}, loanRows(0), 10, func(context.Context, []string, [][]any) (int64, error) {
		called = true
		return 0, nil
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.False(t, called, "no copy for an empty batch")
	assert.Equal(t, []string{"input closed"}, messages(logEvents(t, &buf)))
}

func TestLoadBatches_CopyError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := zerolog.New(&buf).Level(zerolog.ErrorLevel).WithContext(context.Background())
	boom := errors.New("duplicate key")

	calls := 0
	total, err := LoadBatches(ctx, []string{"id"}, loanRows(5), 2, func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		calls++
		if calls == 2 {
			return 0, boom
		}
		return int64(len(rows)), nil
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int64(2), total, "only the first batch counted")
	assert.Equal(t, 2, calls, "stops at the failing batch")

	evs := logEvents(t, &buf)
	require.Len(t, evs, 1)
	assert.Equal(t, "copy failed", evs[0]["message"])
	assert.Equal(t, "error", evs[0]["level"])
	assert.Equal(t, "duplicate key", evs[0]["error"])
}

func TestLoadBatches_InvalidArgs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	nop := func(context.Context, []string, [][]any) (int64, error) { return 0, nil }

	_, err := LoadBatches(ctx, nil, loanRows(1), 0, nop)
	assert.ErrorContains(t, err, "batchSize must be > 0")

	_, err = LoadBatches(ctx, nil, loanRows(1), 1, nil)
	assert.ErrorContains(t, err, "copyFn must not be nil")
}

func TestLoadBatches_Cancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan []any)
	done := make(chan error, 1)
	go func() {
		_, err := LoadBatches(ctx, []string{"id"}, in, 2, func(context.Context, []string, [][]any) (int64, error) {
			return 0, nil
		})
		done <- err
	}()

	in <- []any{1}
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("LoadBatches did not return after cancel")
	}
}

func TestReplaceTable_LogsBatches(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := zerolog.New(&buf).Level(zerolog.DebugLevel).WithContext(context.Background())
	repo := newMemRepo()

	stats, err := ReplaceTable(ctx, repo, Config{Table: "loans", BatchSize: 4}, sampleTable(9))
	require.NoError(t, err)
	assert.Equal(t, ReplaceStats{Rows: 9, Batches: 3}, stats)

	var flushed int
	var replaced map[string]any
	for _, ev := range logEvents(t, &buf) {
		switch ev["message"] {
		case "batch flushed":
			flushed++
			assert.Equal(t, "loans__staging", ev["staging"], "loader inherits the replace logger")
		case "table replaced":
			replaced = ev
		}
	}
	assert.Equal(t, 3, flushed)
	require.NotNil(t, replaced)
	assert.EqualValues(t, 9, replaced["rows"])
	assert.EqualValues(t, 3, replaced["batches"])
	assert.Equal(t, "loans", replaced["table"])
}
