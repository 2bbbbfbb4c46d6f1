package builtin

import (
	"sort"

	"loanetl/internal/schema"
	"loanetl/internal/transformer"
	"loanetl/pkg/records"
)

// Unknown fills missing employment fields.
const Unknown = "unknown"

// LoanTypes repairs inconsistent spellings of the loan type. Values not
// listed pass through unchanged.
var LoanTypes = map[string]string{
	"INDIVIDUAL": "Individual",
	"JOINT":      "Joint App",
	"DIRECT_PAY": "Direct_pay",
}

var reconcileColumns = []string{
	schema.Type,
	schema.EmpTitle,
	schema.EmpLength,
	schema.Description,
	schema.Purpose,
	schema.IntRate,
	schema.Grade,
	schema.AnnualIncJoint,
	schema.State,
}

// Reconcile repairs and imputes the primary loan table:
//
//   - type: spellings mapped through LoanTypes
//   - emp_title, emp_length: missing -> "unknown"
//   - description: missing -> the row's purpose
//   - int_rate: missing -> median int_rate of the row's grade
//   - annual_inc_joint: missing -> 0
//
// A row without a state is rejected: state is the join key and is never
// imputed. Group medians are computed from the observed rates before any
// row is changed, and every check runs before the first write, so a failing
// Apply leaves the table untouched.
type Reconcile struct{}

// Apply implements transformer.Transformer.
func (Reconcile) Apply(t *records.Table) error {
	if err := requireColumns(t, reconcileColumns...); err != nil {
		return err
	}

	medians, err := GroupMedians(t, schema.Grade, schema.IntRate)
	if err != nil {
		return err
	}

	for i, r := range t.Rows {
		if records.IsMissing(r[schema.State]) {
			return transformer.ValidationErrorf(schema.State, i, "missing join key")
		}
		if !records.IsMissing(r[schema.IntRate]) {
			continue
		}
		g, ok := records.AsFloat(r[schema.Grade])
		if !ok {
			return transformer.ValidationErrorf(schema.IntRate, i, "cannot impute rate: grade is missing")
		}
		if _, ok := medians[g]; !ok {
			return transformer.ValidationErrorf(schema.IntRate, i, "cannot impute rate: no observed rate for grade %v", g)
		}
	}

	for _, r := range t.Rows {
		if s, ok := r[schema.Type].(string); ok {
			if fixed, ok := LoanTypes[s]; ok {
				r[schema.Type] = fixed
			}
		}
		if records.IsMissing(r[schema.EmpTitle]) {
			r[schema.EmpTitle] = Unknown
		}
		if records.IsMissing(r[schema.EmpLength]) {
			r[schema.EmpLength] = Unknown
		}
		if records.IsMissing(r[schema.Description]) {
			r[schema.Description] = r[schema.Purpose]
		}
		if records.IsMissing(r[schema.IntRate]) {
			g, _ := records.AsFloat(r[schema.Grade])
			r[schema.IntRate] = medians[g]
		}
		if records.IsMissing(r[schema.AnnualIncJoint]) {
			r[schema.AnnualIncJoint] = float64(0)
		}
	}
	return nil
}

// GroupMedians returns the median of the numeric column val for every
// distinct numeric value of the group column. Rows where either side is
// missing do not contribute. A non-numeric value is a schema error.
func GroupMedians(t *records.Table, group, val string) (map[float64]float64, error) {
	obs := make(map[float64][]float64)
	for i, r := range t.Rows {
		gv, vv := r[group], r[val]
		if records.IsMissing(gv) || records.IsMissing(vv) {
			continue
		}
		g, ok := records.AsFloat(gv)
		if !ok {
			return nil, transformer.SchemaErrorf(group, i, "%v is not a number", gv)
		}
		v, ok := records.AsFloat(vv)
		if !ok {
			return nil, transformer.SchemaErrorf(val, i, "%v is not a number", vv)
		}
		obs[g] = append(obs[g], v)
	}
	out := make(map[float64]float64, len(obs))
	for g, vs := range obs {
		out[g] = median(vs)
	}
	return out, nil
}

// median sorts vs in place. Even-length inputs average the middle pair.
func median(vs []float64) float64 {
	sort.Float64s(vs)
	n := len(vs)
	if n%2 == 1 {
		return vs[n/2]
	}
	return (vs[n/2-1] + vs[n/2]) / 2
}
