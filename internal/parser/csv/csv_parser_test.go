package csv_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pcsv "loanetl/internal/parser/csv"
)

func TestReadTable(t *testing.T) {
	t.Parallel()

	in := "\uFEFFCustomer ID,Int Rate,Term\n" +
		"c1,0.12, 36 months\n" +
		"c2,,\"60 months\"\n"

	tb, err := pcsv.NewParser(pcsv.Options{}).ReadTable(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"Customer ID", "Int Rate", "Term"}, tb.Columns, "BOM stripped, names untouched")
	require.Equal(t, 2, tb.Len())
	assert.Equal(t, "c1", tb.Rows[0]["Customer ID"])
	assert.Equal(t, " 36 months", tb.Rows[0]["Term"], "cells are not trimmed by the reader")
	assert.Equal(t, "", tb.Rows[1]["Int Rate"])
	assert.Equal(t, "60 months", tb.Rows[1]["Term"])
}

func TestReadTable_Delimiter(t *testing.T) {
	t.Parallel()

	tb, err := pcsv.NewParser(pcsv.Options{Comma: ';'}).ReadTable(strings.NewReader("code;name\nNY;New York\n"))
	require.NoError(t, err)
	assert.Equal(t, "New York", tb.Rows[0]["name"])
}

func TestReadTable_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		line int
	}{
		{name: "ragged row", in: "a,b\n1,2\n3\n", line: 3},
		{name: "bare quote", in: "a,b\n1,x\"y\n", line: 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := pcsv.NewParser(pcsv.Options{}).ReadTable(strings.NewReader(tc.in))
			require.Error(t, err)
			assert.True(t, errors.Is(err, pcsv.ErrMalformed))

			var re *pcsv.RowError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, tc.line, re.Line)
		})
	}

	_, err := pcsv.NewParser(pcsv.Options{}).ReadTable(strings.NewReader(""))
	assert.ErrorIs(t, err, pcsv.ErrMalformed)

	_, err = pcsv.NewParser(pcsv.Options{}).ReadTable(strings.NewReader("a,a\n1,2\n"))
	assert.ErrorIs(t, err, pcsv.ErrMalformed, "duplicate header")
}
