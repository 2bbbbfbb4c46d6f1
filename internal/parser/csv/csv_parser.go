// Package csv reads a delimited file into a records.Table. The whole file is
// loaded: stages operate on complete tables and checkpoint them between runs.
//
// Header cells are kept exactly as written (apart from a leading UTF-8 BOM);
// renaming them is the column normalizer's job. Every data row must have as
// many fields as the header; a ragged row fails the read instead of being
// skipped, because a silently dropped loan would corrupt group medians and
// min-max ranges downstream.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"loanetl/pkg/records"
)

// ErrMalformed marks input that encoding/csv could not split into the
// expected number of fields.
var ErrMalformed = errors.New("malformed csv")

// Options configures the reader. The zero value reads comma-separated input
// with strict quoting.
type Options struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// LazyQuotes tolerates bare quotes inside unquoted fields.
	LazyQuotes bool
}

// Parser reads CSV input according to Options. It is safe to reuse across
// inputs but not for concurrent use.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// RowError reports the 1-based physical line of a malformed row.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

// Unwrap exposes both the underlying cause and ErrMalformed.
func (e *RowError) Unwrap() []error { return []error{ErrMalformed, e.Err} }

// ReadTable reads a header row followed by data rows. Cell values are
// returned as raw strings; empty cells stay "" so callers can decide what
// counts as missing.
func (p *Parser) ReadTable(r io.Reader) (*records.Table, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = p.opt.LazyQuotes
	// Width is enforced against the header below so the error can name it.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read csv header: empty input: %w", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	header = StripHeaderBOM(header)
	seen := make(map[string]struct{}, len(header))
	for _, h := range header {
		if _, dup := seen[h]; dup {
			return nil, fmt.Errorf("read csv header: duplicate column %q: %w", h, ErrMalformed)
		}
		seen[h] = struct{}{}
	}

	t := records.NewTable(header...)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return nil, &RowError{Line: line, Err: err}
		}
		line, _ := cr.FieldPos(0)
		if len(row) != len(header) {
			return nil, &RowError{
				Line: line,
				Err:  fmt.Errorf("expected %d fields, got %d", len(header), len(row)),
			}
		}
		rec := make(records.Record, len(row))
		for i, val := range row {
			rec[header[i]] = val
		}
		t.Append(rec)
	}
	return t, nil
}
