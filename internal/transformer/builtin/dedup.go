package builtin

import (
	"fmt"
	"time"

	"github.com/zeebo/xxh3"

	"loanetl/internal/transformer"
	"loanetl/pkg/records"
)

// UniqueKey rejects tables in which Column is missing in some row or holds
// the same value twice. It never drops or reorders rows: duplicates are a
// validation error so that a join or a primary key never silently fans out
// or loses data.
//
// Keys are bucketed by their xxh3 hash and compared exactly within a bucket.
type UniqueKey struct {
	Column string
}

// Apply implements transformer.Transformer.
func (u UniqueKey) Apply(t *records.Table) error {
	if err := requireColumns(t, u.Column); err != nil {
		return err
	}
	type seen struct {
		key string
		row int
	}
	buckets := make(map[uint64][]seen, t.Len())
	for i, r := range t.Rows {
		v := r[u.Column]
		if records.IsMissing(v) {
			return transformer.ValidationErrorf(u.Column, i, "missing key")
		}
		k := canonicalKey(v)
		h := xxh3.HashString(k)
		for _, s := range buckets[h] {
			if s.key == k {
				return transformer.ValidationErrorf(u.Column, i, "duplicate key %v (first at row %d)", v, s.row)
			}
		}
		buckets[h] = append(buckets[h], seen{key: k, row: i})
	}
	return nil
}

// canonicalKey renders v with a type tag so that "1" and int64(1) differ
// while int64(1) and float64(1) agree.
func canonicalKey(v any) string {
	switch x := v.(type) {
	case string:
		return "s:" + x
	case time.Time:
		return "d:" + records.Date(x).Format(time.DateOnly)
	}
	if f, ok := records.AsFloat(v); ok {
		return fmt.Sprintf("n:%v", f)
	}
	return fmt.Sprintf("%T:%v", v, v)
}
