package builtin

import (
	"loanetl/internal/transformer"
	"loanetl/pkg/records"
)

// DropMissingKey removes rows whose key column is missing and returns how
// many were removed.
func DropMissingKey(t *records.Table, key string) int {
	kept := t.Rows[:0]
	for _, r := range t.Rows {
		if !records.IsMissing(r[key]) {
			kept = append(kept, r)
		}
	}
	dropped := len(t.Rows) - len(kept)
	for i := len(kept); i < len(t.Rows); i++ {
		t.Rows[i] = nil
	}
	t.Rows = kept
	return dropped
}

// LeftJoin returns a new table holding every row of left, in order, extended
// with the non-key columns of right. Rows of left without a match get nil
// for those columns.
//
// right must have a unique, non-missing key (see UniqueKey); a non-key
// column of right that already exists in left is a schema error. Neither
// input is modified.
func LeftJoin(left, right *records.Table, key string) (*records.Table, error) {
	if err := requireColumns(left, key); err != nil {
		return nil, err
	}
	if err := requireColumns(right, key); err != nil {
		return nil, err
	}
	if err := (UniqueKey{Column: key}).Apply(right); err != nil {
		return nil, err
	}

	var extra []string
	for _, c := range right.Columns {
		if c == key {
			continue
		}
		if left.Has(c) {
			return nil, transformer.SchemaErrorf(c, -1, "column exists on both sides of the join")
		}
		extra = append(extra, c)
	}

	index := make(map[string]records.Record, right.Len())
	for _, r := range right.Rows {
		index[canonicalKey(r[key])] = r
	}

	out := records.NewTable(append(append([]string(nil), left.Columns...), extra...)...)
	out.Rows = make([]records.Record, 0, left.Len())
	for _, l := range left.Rows {
		row := make(records.Record, len(out.Columns))
		for k, v := range l {
			row[k] = v
		}
		var match records.Record
		if k := l[key]; !records.IsMissing(k) {
			match = index[canonicalKey(k)]
		}
		for _, c := range extra {
			if match != nil {
				row[c] = match[c]
			} else {
				row[c] = nil
			}
		}
		out.Append(row)
	}
	return out, nil
}
