package builtin

import (
	"math"

	"loanetl/internal/transformer"
	"loanetl/pkg/records"
)

// MinMax rescales each of Columns to [0, 1] with (x-min)/(max-min) over the
// column's non-missing values. Results are float64 and missing values stay
// nil.
//
// A column with no observed value or with max == min cannot be scaled and is
// a validation error; a non-numeric value is a schema error. All columns are
// checked before any is rewritten.
type MinMax struct {
	Columns []string
}

type span struct{ lo, hi float64 }

// Apply implements transformer.Transformer.
func (mm MinMax) Apply(t *records.Table) error {
	if err := requireColumns(t, mm.Columns...); err != nil {
		return err
	}

	spans := make([]span, len(mm.Columns))
	for j, col := range mm.Columns {
		s, err := columnSpan(t, col)
		if err != nil {
			return err
		}
		spans[j] = s
	}

	for j, col := range mm.Columns {
		s := spans[j]
		for _, r := range t.Rows {
			v, ok := records.AsFloat(r[col])
			if !ok || math.IsNaN(v) {
				r[col] = nil
				continue
			}
			r[col] = (v - s.lo) / (s.hi - s.lo)
		}
	}
	return nil
}

func columnSpan(t *records.Table, col string) (span, error) {
	s := span{lo: math.Inf(1), hi: math.Inf(-1)}
	seen := false
	for i, r := range t.Rows {
		v := r[col]
		if records.IsMissing(v) {
			continue
		}
		f, ok := records.AsFloat(v)
		if !ok {
			return span{}, transformer.SchemaErrorf(col, i, "%v is not a number", v)
		}
		seen = true
		s.lo = math.Min(s.lo, f)
		s.hi = math.Max(s.hi, f)
	}
	switch {
	case !seen:
		return span{}, transformer.ValidationErrorf(col, -1, "no values to normalize")
	case s.hi == s.lo:
		return span{}, transformer.ValidationErrorf(col, -1, "zero variance (every value is %v)", s.lo)
	case math.IsInf(s.hi-s.lo, 0):
		return span{}, transformer.ValidationErrorf(col, -1, "range is not finite")
	}
	return s, nil
}
