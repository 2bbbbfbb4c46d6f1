// Package ddl renders SQL Server DDL for the loan tables.
package ddl

import "strings"

// TextType is the default column type for text and untyped columns.
const TextType = "NVARCHAR(MAX)"

// KeyTextType replaces TextType on primary key columns; an index key cannot
// hold a MAX type.
const KeyTextType = "NVARCHAR(450)"

// MapType maps a logical column kind to a SQL Server type. Floats use FLOAT
// (8-byte) so values round-trip exactly.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int":
		return "BIGINT"
	case "float":
		return "FLOAT"
	case "date":
		return "DATE"
	default:
		return TextType
	}
}
