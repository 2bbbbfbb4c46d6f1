// Package records holds the in-memory tabular model shared by every pipeline
// stage: an ordered column list plus rows keyed by column name.
//
// Cell values are restricted to a small set of Go types so that stages,
// checkpoints and storage backends agree on typing:
//
//	nil        missing value
//	string     text / categorical
//	int64      integer (also label codes and 0/1 flags)
//	float64    real number
//	time.Time  calendar date (UTC midnight)
package records

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Record is a single row keyed by column name.
type Record map[string]any

// Table is an ordered sequence of rows with a stable column order.
type Table struct {
	Columns []string
	Rows    []Record
}

// NewTable returns an empty table with the given columns.
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Append adds a row. Columns absent from r read back as nil.
func (t *Table) Append(r Record) { t.Rows = append(t.Rows, r) }

// Index returns the position of col in t.Columns, or -1.
func (t *Table) Index(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Has reports whether col is part of the schema.
func (t *Table) Has(col string) bool { return t.Index(col) >= 0 }

// Require returns a *MissingColumnsError listing every column in cols that
// is not part of the schema, or nil when all are present.
func (t *Table) Require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}

// MissingColumnsError reports columns absent from a table schema.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// Values returns the column as a slice aligned with t.Rows.
func (t *Table) Values(col string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[col]
	}
	return out
}

// SetColumn appends col to the schema when absent and assigns fn(row) to every
// row. fn may return an error to abort; rows already visited keep the new
// value, so callers operating on shared tables should Clone first.
func (t *Table) SetColumn(col string, fn func(i int, r Record) (any, error)) error {
	if !t.Has(col) {
		t.Columns = append(t.Columns, col)
	}
	for i, r := range t.Rows {
		v, err := fn(i, r)
		if err != nil {
			return err
		}
		r[col] = v
	}
	return nil
}

// DropColumns removes the named columns from the schema and every row.
// Unknown names are ignored.
func (t *Table) DropColumns(cols ...string) {
	drop := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		drop[c] = struct{}{}
	}
	kept := t.Columns[:0]
	for _, c := range t.Columns {
		if _, ok := drop[c]; !ok {
			kept = append(kept, c)
		}
	}
	t.Columns = kept
	for _, r := range t.Rows {
		for c := range drop {
			delete(r, c)
		}
	}
}

// RenameColumns renames columns according to from→to. Renaming onto a name
// that already exists (and is not itself being renamed away) is an error.
func (t *Table) RenameColumns(m map[string]string) error {
	next := make([]string, len(t.Columns))
	seen := make(map[string]struct{}, len(t.Columns))
	for i, c := range t.Columns {
		name := c
		if to, ok := m[c]; ok {
			name = to
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("rename %v: column %q already exists", m, name)
		}
		seen[name] = struct{}{}
		next[i] = name
	}
	for i, c := range t.Columns {
		if next[i] == c {
			continue
		}
		for _, r := range t.Rows {
			if v, ok := r[c]; ok {
				delete(r, c)
				r[next[i]] = v
			}
		}
	}
	t.Columns = next
	return nil
}

// Clone returns a deep copy of the schema and rows. Cell values are
// immutable scalars so a shallow copy per row is sufficient.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Record, len(t.Rows)),
	}
	for i, r := range t.Rows {
		cp := make(Record, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// IsMissing reports whether v counts as an absent value: nil, an empty or
// whitespace-only string, or NaN.
func IsMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case float64:
		return math.IsNaN(x)
	}
	return false
}

// AsFloat converts a numeric cell to float64.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	}
	return 0, false
}

// Date truncates t to a UTC calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
