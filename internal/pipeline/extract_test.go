package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanetl/internal/checkpoint"
	"loanetl/internal/parser/csv"
	"loanetl/internal/schema"
	"loanetl/internal/transformer"
	"loanetl/internal/transformer/builtin"
)

func TestExtractClean(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := testPipeline(t)

	require.NoError(t, ExtractClean(ctx, p.Paths.Primary, p.Paths.Clean))
	tb, err := checkpoint.Read(ctx, p.Paths.Clean)
	require.NoError(t, err)
	require.Equal(t, 3, tb.Len())

	assert.Equal(t, schema.CustomerID, tb.Columns[0])
	assert.Equal(t, []string{schema.MonthNumber, schema.SalaryCover, schema.MonthlyInstallment, schema.LetterGrade},
		tb.Columns[len(tb.Columns)-4:])

	c1, c2, c3 := tb.Rows[0], tb.Rows[1], tb.Rows[2]
	assert.Equal(t, "c1", c1[schema.CustomerID])
	assert.Equal(t, 0.12, c2[schema.IntRate], "grade median")
	assert.Equal(t, builtin.Unknown, c2[schema.EmpTitle])
	assert.Equal(t, builtin.Unknown, c2[schema.EmpLength])
	assert.Equal(t, "house", c2[schema.Description])
	assert.Equal(t, float64(0), c1[schema.AnnualIncJoint])
	assert.Equal(t, []any{"Individual", "Joint App", "Direct_pay"}, tb.Values(schema.Type))
	assert.Equal(t, "60 months", c3[schema.Term], "cells are trimmed")

	assert.Equal(t, time.Date(2020, time.December, 17, 0, 0, 0, 0, time.UTC), c2[schema.IssueDate])
	assert.Equal(t, []any{int64(3), int64(12), int64(1)}, tb.Values(schema.MonthNumber))
	assert.Equal(t, []any{int64(1), int64(0), int64(1)}, tb.Values(schema.SalaryCover))
	assert.Equal(t, []any{"A", "A", "B"}, tb.Values(schema.LetterGrade))
	assert.InDelta(t, 332.14309812851167, c1[schema.MonthlyInstallment], 1e-9)
	assert.InDelta(t, 111.22223842450882, c2[schema.MonthlyInstallment], 1e-9)
	assert.InDelta(t, 507.8685485421838, c3[schema.MonthlyInstallment], 1e-9)
}

func TestExtractClean_Delimiter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	body := "Customer Id;Grade\nc1;3\n"
	in := writeFile(t, dir, "semi.csv", body)

	err := ExtractClean(ctx, in, filepath.Join(dir, "out.parquet"), WithCSV(csv.Options{Comma: ';'}))
	require.Error(t, err)
	assert.ErrorIs(t, err, transformer.ErrSchema, "split correctly, then fails on the missing columns")
	assert.Contains(t, err.Error(), schema.IntRate)
}

func TestExtractClean_Failures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	out := filepath.Join(dir, "clean.parquet")

	err := ExtractClean(ctx, filepath.Join(dir, "missing.csv"), out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage extract_clean")

	bad := writeFile(t, dir, "bad.csv", primaryCSV(
		"c1,nurse,3 years,RENT,lots,,Verified,100xx,NY,5000,20000,L1,Current,10000,NY,10000,36 months,0.12,3,5 March 2019,false,INDIVIDUAL,car,x",
	))
	err = ExtractClean(ctx, bad, out)
	require.ErrorIs(t, err, transformer.ErrSchema)
	assert.Contains(t, err.Error(), schema.AnnualInc)

	noState := writeFile(t, dir, "nostate.csv", primaryCSV(
		"c1,nurse,3 years,RENT,1,,Verified,100xx,NY,5000,20000,L1,Current,10000,,10000,36 months,0.12,3,5 March 2019,false,INDIVIDUAL,car,x",
	))
	err = ExtractClean(ctx, noState, out)
	require.ErrorIs(t, err, transformer.ErrValidation)
	assert.Contains(t, err.Error(), schema.State)

	assert.NoFileExists(t, out, "no checkpoint on failure")
}

func TestExtractStates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	in := writeFile(t, dir, "states.csv", " Code ,Name\nNY,New York\n,Nowhere\nCA , California\n")
	out := filepath.Join(dir, "states.parquet")

	require.NoError(t, ExtractStates(ctx, in, out))
	tb, err := checkpoint.Read(ctx, out)
	require.NoError(t, err)

	assert.Equal(t, []string{schema.State, "name"}, tb.Columns)
	assert.Equal(t, []any{"NY", "CA"}, tb.Values(schema.State), "keyless row dropped")
	assert.Equal(t, []any{"New York", "California"}, tb.Values("name"))
}

func TestExtractStates_Failures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	out := filepath.Join(dir, "states.parquet")

	tests := []struct {
		name   string
		body   string
		target error
	}{
		{"duplicate code", "Code,Name\nNY,New York\nNY,Again\n", transformer.ErrValidation},
		{"no code column", "Abbr,Name\nNY,New York\n", transformer.ErrSchema},
		{"code and state", "Code,State\nNY,New York\n", transformer.ErrSchema},
	}
	for i, tc := range tests {
		in := writeFile(t, dir, fmt.Sprintf("ref%d.csv", i), tc.body)
		err := ExtractStates(ctx, in, out)
		assert.ErrorIs(t, err, tc.target, tc.name)
	}
	assert.NoFileExists(t, out)
}
