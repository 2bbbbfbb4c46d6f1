// Package storage holds the backend-agnostic contracts for writing tables to
// a relational database, the backend registry, and the batched loader that
// drives a backend's bulk-insert primitive.
package storage

import (
	"context"

	"loanetl/internal/ddl"
)

// Repository is the set of primitives the loader needs from a backend.
// Table names are passed in dotted form ("schema.table" or "table") and
// quoted by the backend.
type Repository interface {
	// CopyFrom bulk-inserts rows (aligned to columns) into table and reports
	// how many were written.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	// Exec runs a single statement.
	Exec(ctx context.Context, sql string) error
	// CreateTable renders def in the backend's dialect and executes it.
	CreateTable(ctx context.Context, def ddl.TableDef) error
	// DropTable drops table if it exists.
	DropTable(ctx context.Context, table string) error
	// Swap replaces target with staging in one transaction: target is
	// dropped if present and staging is renamed to target. Either both
	// happen or neither does.
	Swap(ctx context.Context, staging, target string) error
	// MapType maps a logical column kind to the backend's SQL type.
	MapType(kind string) string
	Close()
}

// Config selects and parameterizes a backend.
//
// DSN wins when set. Otherwise each backend builds one from the connection
// fields (sqlite uses Database as the file path).
type Config struct {
	Kind string

	DSN      string
	Host     string
	Port     int
	Database string
	User     string
	Password string

	// Table is the destination table the loader replaces.
	Table string
	// KeyColumns become the destination's primary key.
	KeyColumns []string
	// BatchSize bounds the rows per CopyFrom call.
	BatchSize int
}
