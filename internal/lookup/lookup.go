// Package lookup records the categorical codes assigned by label encoding so
// that encoded values can be mapped back to their original text.
package lookup

import (
	"fmt"

	"loanetl/pkg/records"
)

// Column names of the tabular form returned by Map.Table.
const (
	ColColumn   = "column"
	ColOldValue = "old_value"
	ColNewValue = "new_value"
)

// Entry maps one original value of a column to its code.
type Entry struct {
	Column   string
	OldValue string
	NewValue int64
}

// Map is an append-only, insertion-ordered set of entries. The zero value is
// empty and ready to use. A Map is not safe for concurrent writes.
type Map struct {
	entries []Entry
	byValue map[string]map[string]int64
	byCode  map[string]map[int64]string
	order   []string
}

// New returns an empty Map.
func New() *Map { return &Map{} }

// Check reports the error Add would return for the same arguments without
// changing m.
func (m *Map) Check(column, old string, code int64) error {
	if prev, dup := m.byValue[column][old]; dup {
		return fmt.Errorf("lookup: %s %q already encoded as %d", column, old, prev)
	}
	if prev, dup := m.byCode[column][code]; dup {
		return fmt.Errorf("lookup: %s code %d already assigned to %q", column, code, prev)
	}
	return nil
}

// Add records that value old of column was encoded as code. Re-adding the
// same (column, old) pair or reusing a code within a column is an error.
func (m *Map) Add(column, old string, code int64) error {
	if err := m.Check(column, old, code); err != nil {
		return err
	}
	if m.byValue == nil {
		m.byValue = make(map[string]map[string]int64)
		m.byCode = make(map[string]map[int64]string)
	}
	vals, ok := m.byValue[column]
	if !ok {
		vals = make(map[string]int64)
		m.byValue[column] = vals
		m.byCode[column] = make(map[int64]string)
		m.order = append(m.order, column)
	}
	vals[old] = code
	m.byCode[column][code] = old
	m.entries = append(m.entries, Entry{Column: column, OldValue: old, NewValue: code})
	return nil
}

// Code returns the code assigned to old in column.
func (m *Map) Code(column, old string) (int64, bool) {
	c, ok := m.byValue[column][old]
	return c, ok
}

// Value returns the original value encoded as code in column.
func (m *Map) Value(column string, code int64) (string, bool) {
	v, ok := m.byCode[column][code]
	return v, ok
}

// Entries returns the entries of column in insertion order.
func (m *Map) Entries(column string) []Entry {
	var out []Entry
	for _, e := range m.entries {
		if e.Column == column {
			out = append(out, e)
		}
	}
	return out
}

// Columns returns the encoded columns in the order they were first added.
func (m *Map) Columns() []string { return append([]string(nil), m.order...) }

// Len returns the total number of entries.
func (m *Map) Len() int { return len(m.entries) }

// Table renders the map as a three-column table suitable for checkpointing.
func (m *Map) Table() *records.Table {
	t := records.NewTable(ColColumn, ColOldValue, ColNewValue)
	for _, e := range m.entries {
		t.Append(records.Record{
			ColColumn:   e.Column,
			ColOldValue: e.OldValue,
			ColNewValue: e.NewValue,
		})
	}
	return t
}

// FromTable rebuilds a Map from the output of Table.
func FromTable(t *records.Table) (*Map, error) {
	if err := t.Require(ColColumn, ColOldValue, ColNewValue); err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	m := New()
	for i, r := range t.Rows {
		col, ok1 := r[ColColumn].(string)
		old, ok2 := r[ColOldValue].(string)
		code, ok3 := r[ColNewValue].(int64)
		if !ok1 || !ok2 || !ok3 {
			return nil, fmt.Errorf("lookup: row %d: unexpected cell types %T, %T, %T",
				i, r[ColColumn], r[ColOldValue], r[ColNewValue])
		}
		if err := m.Add(col, old, code); err != nil {
			return nil, err
		}
	}
	return m, nil
}
