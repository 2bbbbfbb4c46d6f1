package builtin

import (
	"strings"

	"loanetl/pkg/records"
)

// nbsp inside a value is folded to a plain space.
const nbsp = "\u00a0"

// TrimCells trims surrounding whitespace from every string cell and turns
// blank cells into nil, the pipeline's single representation of a missing
// value.
type TrimCells struct{}

// Apply implements transformer.Transformer.
func (TrimCells) Apply(t *records.Table) error {
	for _, r := range t.Rows {
		for _, c := range t.Columns {
			v, ok := r[c]
			if !ok {
				r[c] = nil
				continue
			}
			s, isStr := v.(string)
			if !isStr {
				continue
			}
			s = strings.TrimSpace(strings.ReplaceAll(s, nbsp, " "))
			if s == "" {
				r[c] = nil
				continue
			}
			r[c] = s
		}
	}
	return nil
}
