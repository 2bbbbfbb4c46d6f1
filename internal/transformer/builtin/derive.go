package builtin

import (
	"errors"
	"math"
	"time"

	"loanetl/internal/parser/ints"
	"loanetl/internal/schema"
	"loanetl/internal/transformer"
	"loanetl/pkg/records"
)

var deriveColumns = []string{
	schema.IssueDate,
	schema.AnnualInc,
	schema.LoanAmount,
	schema.IntRate,
	schema.Term,
	schema.Grade,
}

// Derive parses issue_date into a date and adds month_number, salary_cover,
// monthly_installment and letter_grade.
//
// It works on a copy of the rows and only publishes the result when every
// row succeeded.
type Derive struct{}

// Apply implements transformer.Transformer.
func (Derive) Apply(t *records.Table) error {
	if err := requireColumns(t, deriveColumns...); err != nil {
		return err
	}

	out := t.Clone()
	steps := []struct {
		col string
		fn  func(i int, r records.Record) (any, error)
	}{
		{schema.IssueDate, issueDate},
		{schema.MonthNumber, monthNumber},
		{schema.SalaryCover, salaryCover},
		{schema.MonthlyInstallment, monthlyInstallment},
		{schema.LetterGrade, letterGrade},
	}
	for _, s := range steps {
		if err := out.SetColumn(s.col, s.fn); err != nil {
			return err
		}
	}
	*t = *out
	return nil
}

func issueDate(i int, r records.Record) (any, error) {
	switch v := r[schema.IssueDate].(type) {
	case time.Time:
		return records.Date(v), nil
	case string:
		d, err := time.Parse(schema.IssueDateLayout, v)
		if err != nil {
			return nil, transformer.SchemaErrorf(schema.IssueDate, i, "%q does not match %q", v, schema.IssueDateLayout)
		}
		return d, nil
	case nil:
		return nil, transformer.SchemaErrorf(schema.IssueDate, i, "missing date")
	default:
		return nil, transformer.SchemaErrorf(schema.IssueDate, i, "unexpected %T", v)
	}
}

// monthNumber runs after issueDate, so the cell already holds a time.Time.
func monthNumber(_ int, r records.Record) (any, error) {
	d := r[schema.IssueDate].(time.Time)
	return int64(d.Month()), nil
}

// salaryCover is 1 when the annual income covers the loan amount. A missing
// side compares false.
func salaryCover(_ int, r records.Record) (any, error) {
	inc, ok1 := records.AsFloat(r[schema.AnnualInc])
	amt, ok2 := records.AsFloat(r[schema.LoanAmount])
	if ok1 && ok2 && inc >= amt {
		return int64(1), nil
	}
	return int64(0), nil
}

func monthlyInstallment(i int, r records.Record) (any, error) {
	term, ok := r[schema.Term].(string)
	if !ok {
		return nil, transformer.ValidationErrorf(schema.Term, i, "missing term")
	}
	n, err := ints.FirstInt(term)
	if err != nil {
		if errors.Is(err, ints.ErrNoInt) {
			return nil, transformer.ValidationErrorf(schema.Term, i, "no month count in %q", term)
		}
		return nil, transformer.ValidationErrorf(schema.Term, i, "%v", err)
	}
	if n == 0 {
		return nil, transformer.ValidationErrorf(schema.Term, i, "zero-month term %q", term)
	}
	p, okP := records.AsFloat(r[schema.LoanAmount])
	rate, okR := records.AsFloat(r[schema.IntRate])
	if !okP || !okR {
		return nil, nil
	}
	m, err := Installment(p, rate, n)
	if err != nil {
		return nil, transformer.ValidationErrorf(schema.MonthlyInstallment, i, "%v", err)
	}
	return m, nil
}

// Installment returns the fixed monthly payment of an amortized loan of
// principal p at annual rate over n months: p*m*(1+m)^n / ((1+m)^n - 1)
// with m = rate/12. A zero rate uses the limit p/n.
func Installment(p, rate float64, n int) (float64, error) {
	if n <= 0 {
		return 0, errors.New("term must be a positive number of months")
	}
	m := rate / 12
	if m == 0 {
		return p / float64(n), nil
	}
	// (1+m)^n - 1 via expm1/log1p keeps precision for tiny rates.
	gm1 := math.Expm1(float64(n) * math.Log1p(m))
	v := p * m * (1 + gm1) / gm1
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("installment is not finite")
	}
	return v, nil
}

// gradeBins are right-closed upper bounds; the first bin also includes 0.
var gradeBins = []struct {
	upper  float64
	letter string
}{
	{5, "A"}, {10, "B"}, {15, "C"}, {20, "D"}, {25, "E"}, {30, "F"}, {35, "G"},
}

// LetterGrade maps a numeric grade onto A..G. Values outside [0, 35] have
// no letter.
func LetterGrade(g float64) (string, bool) {
	if math.IsNaN(g) || g < 0 {
		return "", false
	}
	for _, b := range gradeBins {
		if g <= b.upper {
			return b.letter, true
		}
	}
	return "", false
}

func letterGrade(_ int, r records.Record) (any, error) {
	g, ok := records.AsFloat(r[schema.Grade])
	if !ok {
		return nil, nil
	}
	if l, ok := LetterGrade(g); ok {
		return l, nil
	}
	return nil, nil
}
