// Package ddl renders Postgres DDL for the loan tables.
package ddl

import "strings"

// MapType maps a logical column kind to a Postgres type:
//
//	"int"   -> BIGINT
//	"float" -> DOUBLE PRECISION
//	"date"  -> DATE
//	else    -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int":
		return "BIGINT"
	case "float":
		return "DOUBLE PRECISION"
	case "date":
		return "DATE"
	default:
		return "TEXT"
	}
}
