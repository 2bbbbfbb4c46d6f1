// Package datasource abstracts where the raw input tables come from so the
// extraction stages can be tested without touching the filesystem.
package datasource

import (
	"context"
	"io"
)

// Source opens a raw input for a single full read.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
