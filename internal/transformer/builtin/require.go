// Package builtin contains the table transformers that make up the loan
// pipeline stages.
package builtin

import (
	"errors"
	"strings"

	"loanetl/internal/transformer"
	"loanetl/pkg/records"
)

// Require fails when any of Columns is absent from the table schema. Rows
// are not inspected; use it ahead of steps that would otherwise half-apply.
type Require struct {
	Columns []string
}

// Apply implements transformer.Transformer.
func (r Require) Apply(t *records.Table) error {
	return requireColumns(t, r.Columns...)
}

// requireColumns converts a records.MissingColumnsError into a table-level
// SchemaError so that callers can match transformer.ErrSchema.
func requireColumns(t *records.Table, cols ...string) error {
	err := t.Require(cols...)
	var mc *records.MissingColumnsError
	if errors.As(err, &mc) {
		return transformer.SchemaErrorf("", -1, "missing required columns: %s", strings.Join(mc.Columns, ", "))
	}
	return err
}
