package builtin

import (
	"strconv"
	"strings"

	"loanetl/internal/transformer"
	"loanetl/pkg/records"
)

// Coerce converts string cells to typed values.
//
// Numeric columns are parsed strictly as float64: a value that does not
// parse is a schema error naming the row. Text columns are left alone.
// Every other column is typed by inference over its non-missing values:
// all integers become int64, all numbers float64, anything else stays a
// string. Inference never fails.
//
// Coerce expects blank cells to have been turned into nil (see TrimCells).
type Coerce struct {
	Numeric []string
	Text    []string
}

// Apply implements transformer.Transformer.
func (c Coerce) Apply(t *records.Table) error {
	numeric := setOf(c.Numeric)
	text := setOf(c.Text)

	for _, col := range t.Columns {
		switch {
		case has(numeric, col):
			if err := parseFloats(t, col); err != nil {
				return err
			}
		case has(text, col):
		default:
			inferColumn(t, col)
		}
	}
	return nil
}

func parseFloats(t *records.Table, col string) error {
	for i, r := range t.Rows {
		s, ok := r[col].(string)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return transformer.SchemaErrorf(col, i, "%q is not a number", s)
		}
		r[col] = f
	}
	return nil
}

// inferColumn applies the narrowest of int64, float64 or string that fits
// every non-missing value.
func inferColumn(t *records.Table, col string) {
	allInt, allFloat, seen := true, true, false
	for _, r := range t.Rows {
		s, ok := r[col].(string)
		if !ok {
			continue
		}
		seen = true
		if allInt && !isInt(s) {
			allInt = false
		}
		if !isFloat(s) {
			allFloat = false
			break
		}
	}
	if !seen || !allFloat {
		return
	}
	for _, r := range t.Rows {
		s, ok := r[col].(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if allInt {
			n, _ := strconv.ParseInt(s, 10, 64)
			r[col] = n
			continue
		}
		f, _ := strconv.ParseFloat(s, 64)
		r[col] = f
	}
}

// isInt requires a signed base-10 integer that fits in int64.
func isInt(s string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil
}

// isFloat accepts integers as well as decimal or scientific notation.
func isFloat(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

func setOf(cols []string) map[string]struct{} {
	m := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		m[c] = struct{}{}
	}
	return m
}

func has(m map[string]struct{}, k string) bool {
	_, ok := m[k]
	return ok
}
