package transformer

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema marks input that does not have the expected shape: a missing
	// column, an unparseable date, a non-numeric value in a numeric column.
	ErrSchema = errors.New("schema mismatch")

	// ErrValidation marks input that has the right shape but violates a
	// precondition of the computation: a zero-month term, a constant column
	// to normalize, duplicate join keys.
	ErrValidation = errors.New("input validation failed")
)

// SchemaError describes a schema mismatch. Row is the 0-based data row, or -1
// when the problem is with the table as a whole.
type SchemaError struct {
	Column string
	Row    int
	Msg    string
}

func (e *SchemaError) Error() string { return describe("schema", e.Column, e.Row, e.Msg) }

// Unwrap lets errors.Is(err, ErrSchema) match.
func (e *SchemaError) Unwrap() error { return ErrSchema }

// ValidationError describes a violated input precondition. Row is the
// 0-based data row, or -1 when not row-specific.
type ValidationError struct {
	Column string
	Row    int
	Msg    string
}

func (e *ValidationError) Error() string { return describe("validation", e.Column, e.Row, e.Msg) }

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error { return ErrValidation }

func describe(kind, col string, row int, msg string) string {
	switch {
	case col != "" && row >= 0:
		return fmt.Sprintf("%s: column %q row %d: %s", kind, col, row, msg)
	case col != "":
		return fmt.Sprintf("%s: column %q: %s", kind, col, msg)
	case row >= 0:
		return fmt.Sprintf("%s: row %d: %s", kind, row, msg)
	}
	return fmt.Sprintf("%s: %s", kind, msg)
}

// SchemaErrorf is shorthand for a table-level or row-level SchemaError.
func SchemaErrorf(col string, row int, format string, a ...any) error {
	return &SchemaError{Column: col, Row: row, Msg: fmt.Sprintf(format, a...)}
}

// ValidationErrorf is shorthand for a ValidationError.
func ValidationErrorf(col string, row int, format string, a ...any) error {
	return &ValidationError{Column: col, Row: row, Msg: fmt.Sprintf(format, a...)}
}
