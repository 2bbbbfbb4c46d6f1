package builtin

import (
	"sort"

	"loanetl/internal/lookup"
	"loanetl/internal/transformer"
	"loanetl/pkg/records"
)

// PaymentPlanCodes is the fixed boolean mapping applied to pymnt_plan.
var PaymentPlanCodes = map[string]int64{"true": 1, "false": 0}

// BoolMap replaces the text values of Column using Codes. Missing values
// stay nil. A value with no code is a validation error and nothing is
// rewritten.
type BoolMap struct {
	Column string
	Codes  map[string]int64
}

// Apply implements transformer.Transformer.
func (b BoolMap) Apply(t *records.Table) error {
	if err := requireColumns(t, b.Column); err != nil {
		return err
	}
	for i, r := range t.Rows {
		v := r[b.Column]
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return transformer.SchemaErrorf(b.Column, i, "expected text, got %T", v)
		}
		if _, ok := b.Codes[s]; !ok {
			return transformer.ValidationErrorf(b.Column, i, "unmapped value %q", s)
		}
	}
	for _, r := range t.Rows {
		if s, ok := r[b.Column].(string); ok {
			r[b.Column] = b.Codes[s]
		}
	}
	return nil
}

// LabelEncode replaces each of Columns with integer codes 0..k-1 assigned to
// the column's k distinct values in lexicographic order, and records every
// assignment in Map.
//
// Values must be non-missing text, and Map must not already hold a
// conflicting entry for a column. Every column is checked before the first
// one is rewritten.
type LabelEncode struct {
	Columns []string
	Map     *lookup.Map
}

// Apply implements transformer.Transformer.
func (le LabelEncode) Apply(t *records.Table) error {
	if err := requireColumns(t, le.Columns...); err != nil {
		return err
	}

	classes := make([][]string, len(le.Columns))
	for j, col := range le.Columns {
		cs, err := distinctText(t, col)
		if err != nil {
			return err
		}
		if le.Map != nil {
			for k, v := range cs {
				if err := le.Map.Check(col, v, int64(k)); err != nil {
					return transformer.ValidationErrorf(col, -1, "%v", err)
				}
			}
		}
		classes[j] = cs
	}

	for j, col := range le.Columns {
		codes := make(map[string]int64, len(classes[j]))
		for k, v := range classes[j] {
			codes[v] = int64(k)
			if le.Map != nil {
				if err := le.Map.Add(col, v, int64(k)); err != nil {
					return err
				}
			}
		}
		for _, r := range t.Rows {
			r[col] = codes[r[col].(string)]
		}
	}
	return nil
}

// distinctText returns the sorted distinct values of col.
func distinctText(t *records.Table, col string) ([]string, error) {
	seen := make(map[string]struct{})
	for i, r := range t.Rows {
		v := r[col]
		if records.IsMissing(v) {
			return nil, transformer.ValidationErrorf(col, i, "missing value cannot be encoded")
		}
		s, ok := v.(string)
		if !ok {
			return nil, transformer.SchemaErrorf(col, i, "expected text, got %T", v)
		}
		seen[s] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}
