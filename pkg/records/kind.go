package records

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/zeebo/xxh3"
)

// Kind is the logical type of a column. The string values double as the
// logical type names understood by the storage DDL mappers.
type Kind string

const (
	KindEmpty Kind = "empty" // every value missing
	KindInt   Kind = "int"
	KindFloat Kind = "float"
	KindDate  Kind = "date"
	KindText  Kind = "text"
)

// KindOf infers the logical type of col from its non-missing values.
//
// Integers widen to float when both occur. Any other mix (text with numbers,
// dates with text) is reported as an error because the column has no single
// representation in a typed store.
func (t *Table) KindOf(col string) (Kind, error) {
	k := KindEmpty
	for i, r := range t.Rows {
		v := r[col]
		if v == nil {
			continue
		}
		var vk Kind
		switch x := v.(type) {
		case int64, int:
			vk = KindInt
		case float64:
			if math.IsNaN(x) {
				continue
			}
			vk = KindFloat
		case time.Time:
			vk = KindDate
		case string:
			vk = KindText
		default:
			return "", fmt.Errorf("column %q row %d: unsupported value type %T", col, i, v)
		}
		switch {
		case k == KindEmpty || k == vk:
			k = vk
		case (k == KindInt && vk == KindFloat) || (k == KindFloat && vk == KindInt):
			k = KindFloat
		default:
			return "", fmt.Errorf("column %q row %d: mixed %s and %s values", col, i, k, vk)
		}
	}
	return k, nil
}

// Fingerprint hashes the table contents with xxh3. Columns are visited in
// sorted order and rows in table order, so two tables with equal contents
// hash the same regardless of column position. Ints and floats hash
// identically when numerically equal.
func (t *Table) Fingerprint() uint64 {
	cols := append([]string(nil), t.Columns...)
	sort.Strings(cols)

	h := xxh3.New()
	var num [8]byte
	for _, c := range cols {
		_, _ = h.WriteString(c)
		_, _ = h.Write([]byte{0})
	}
	for _, r := range t.Rows {
		for _, c := range cols {
			switch x := r[c].(type) {
			case nil:
				_, _ = h.Write([]byte{'n'})
			case string:
				_, _ = h.Write([]byte{'s'})
				_, _ = h.WriteString(x)
				_, _ = h.Write([]byte{0})
			case time.Time:
				_, _ = h.Write([]byte{'d'})
				binary.LittleEndian.PutUint64(num[:], uint64(Date(x).Unix()))
				_, _ = h.Write(num[:])
			default:
				if f, ok := AsFloat(x); ok {
					_, _ = h.Write([]byte{'f'})
					binary.LittleEndian.PutUint64(num[:], math.Float64bits(f))
					_, _ = h.Write(num[:])
					continue
				}
				_, _ = h.WriteString(fmt.Sprint(x))
			}
		}
		_, _ = h.Write([]byte{'\n'})
	}
	return h.Sum64()
}
