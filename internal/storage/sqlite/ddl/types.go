// Package ddl renders SQLite DDL for the loan tables.
package ddl

import "strings"

// MapType maps a logical column kind to a SQLite type affinity. Dates are
// stored as ISO-8601 text; a column with no observed values falls back to
// TEXT.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int":
		return "INTEGER"
	case "float":
		return "REAL"
	default:
		return "TEXT"
	}
}
