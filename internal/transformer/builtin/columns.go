package builtin

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"loanetl/internal/transformer"
	"loanetl/pkg/records"
)

// NormalizeColumns rewrites every column name to its canonical form:
// surrounding whitespace removed, lower-cased and inner spaces replaced by
// underscores ("Customer ID " -> "customer_id"). Row values are untouched.
//
// Two raw names that normalize to the same string are a schema error.
type NormalizeColumns struct{}

// ColumnName returns the canonical form of a raw header cell.
func ColumnName(raw string) string {
	s := cases.Lower(language.Und).String(strings.TrimSpace(raw))
	return strings.ReplaceAll(s, " ", "_")
}

// Apply implements transformer.Transformer.
func (NormalizeColumns) Apply(t *records.Table) error {
	rename := make(map[string]string, len(t.Columns))
	owner := make(map[string]string, len(t.Columns))
	for _, c := range t.Columns {
		n := ColumnName(c)
		if prev, dup := owner[n]; dup {
			return transformer.SchemaErrorf(n, -1, "columns %q and %q normalize to the same name", prev, c)
		}
		owner[n] = c
		if n != c {
			rename[c] = n
		}
	}
	if len(rename) == 0 {
		return nil
	}
	if err := t.RenameColumns(rename); err != nil {
		return transformer.SchemaErrorf("", -1, "%v", err)
	}
	return nil
}
