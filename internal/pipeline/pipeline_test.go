package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanetl/internal/config"
)

const primaryHeader = "Customer Id,Emp Title,Emp Length,Home Ownership,Annual Inc,Annual Inc Joint," +
	"Verification Status,Zip Code,Addr State,Avg Cur Bal,Tot Cur Bal,Loan Id,Loan Status,Loan Amount," +
	"State,Funded Amount,Term,Int Rate,Grade,Issue Date,Pymnt Plan,Type,Purpose,Description"

// primaryRows is a three-loan primary file. c2 has no rate (grade 3 median
// is 0.12), no employment fields and no description.
var primaryRows = []string{
	"c1,nurse,3 years,RENT,60000,,Verified,100xx,NY,5000,20000,L1,Current,10000,NY,10000,36 months,0.12,3,5 March 2019,false,INDIVIDUAL,car,first car",
	"c2,,,OWN,4000,1000,Not Verified,900xx,CA,7000,30000,L2,Charged Off,5000,CA,5000,60 months,,3,17 December 2020,true,JOINT,house,",
	"c3,chef,10+ years,RENT,90000,2000,Verified,100xx,NY,9000,10000,L3,Current,20000,NY,20000, 60 months ,0.18,8,1 January 2021,false,DIRECT_PAY,car,road trip",
}

const referenceCSV = "Code,Name\nNY,New York\nCA,California\n"

func writeFile(tb testing.TB, dir, name, body string) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	require.NoError(tb, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func primaryCSV(rows ...string) string {
	return primaryHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

// testPipeline returns a pipeline rooted in a temp dir with both inputs
// written and sqlite as the sink.
func testPipeline(tb testing.TB) config.Pipeline {
	tb.Helper()
	dir := tb.TempDir()
	p := config.Pipeline{
		Paths: config.Paths{
			Primary:   writeFile(tb, dir, "fintech_data.csv", primaryCSV(primaryRows...)),
			Reference: writeFile(tb, dir, "states.csv", referenceCSV),
			Clean:     filepath.Join(dir, "work", "clean.parquet"),
			States:    filepath.Join(dir, "work", "states.parquet"),
			Combined:  filepath.Join(dir, "work", "combined.parquet"),
			Encoded:   filepath.Join(dir, "work", "encoded.parquet"),
			Lookup:    filepath.Join(dir, "work", "lookup.parquet"),
		},
		Storage: config.Storage{
			Kind:     "sqlite",
			Database: filepath.Join(dir, "fintech.db"),
			Table:    "fintech_loans",
		},
	}
	p.ApplyDefaults()
	return p
}

func TestRunStage_LogsAndWraps(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := zerolog.New(&buf)
	ctx := l.WithContext(context.Background())
	boom := errors.New("boom")

	err := runStage(ctx, newOptions(nil), "demo", func(ctx context.Context, log *zerolog.Logger) error {
		zerolog.Ctx(ctx).Info().Msg("inside")
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "stage demo: boom")

	out := buf.String()
	assert.Contains(t, out, `"stage":"demo"`)
	assert.Contains(t, out, "stage started")
	assert.Contains(t, out, "inside")
	assert.Contains(t, out, "stage failed")
	assert.NotContains(t, out, "stage finished")
}

func TestRunStage_Success(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := zerolog.New(&buf)
	ctx := l.WithContext(context.Background())

	err := runStage(ctx, newOptions([]Option{WithJob("nightly")}), "demo", func(context.Context, *zerolog.Logger) error {
		return nil
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "stage finished")
}

func TestOptions(t *testing.T) {
	t.Parallel()

	o := newOptions(nil)
	assert.Equal(t, config.DefaultJob, o.job)

	o = newOptions([]Option{WithJob(""), WithJob("nightly")})
	assert.Equal(t, "nightly", o.job)

	o = newOptions([]Option{WithJob("")})
	assert.Equal(t, config.DefaultJob, o.job, "empty job keeps the default")
}
