// Package transformer defines the contract shared by every table-reshaping
// step of the loan pipeline and the error types those steps report.
//
// A Transformer works on a whole in-memory records.Table and either succeeds
// or returns an error; there is no partial result. Steps run in a Chain,
// which stops at the first failure.
package transformer

import (
	"fmt"

	"loanetl/pkg/records"
)

// Transformer mutates t in place.
type Transformer interface {
	Apply(t *records.Table) error
}

// Func adapts a plain function to Transformer.
type Func func(t *records.Table) error

// Apply implements Transformer.
func (f Func) Apply(t *records.Table) error { return f(t) }

// Named pairs a transformer with a label used in error messages and logs.
type Named struct {
	Name string
	Transformer
}

// Chain is an ordered list of transformers.
type Chain []Named

// Apply runs each transformer in order and stops at the first error, which
// is wrapped with the failing step's name.
func (c Chain) Apply(t *records.Table) error {
	for _, step := range c {
		if err := step.Apply(t); err != nil {
			return fmt.Errorf("%s: %w", step.Name, err)
		}
	}
	return nil
}
