package ddl

import (
	"fmt"
	"strings"

	"loanetl/pkg/records"
)

// TypeMapper turns a logical column kind ("int", "float", "date", "text",
// "empty") into a dialect-specific SQL type.
type TypeMapper func(kind string) string

// FromTable derives a TableDef for t. Column types are inferred from the
// values (records.Table.KindOf) and mapped with mapType. Columns named in pk
// become the primary key and are NOT NULL; every other column is nullable.
func FromTable(fqn string, t *records.Table, mapType TypeMapper, pk ...string) (TableDef, error) {
	fqn = strings.TrimSpace(fqn)
	if fqn == "" {
		return TableDef{}, fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return TableDef{}, fmt.Errorf("ddl: at least one column is required")
	}
	keys := make(map[string]bool, len(pk))
	for _, k := range pk {
		if !t.Has(k) {
			return TableDef{}, fmt.Errorf("ddl: primary key column %q not in table", k)
		}
		keys[k] = true
	}

	def := TableDef{FQN: fqn, Columns: make([]ColumnDef, 0, len(t.Columns))}
	for _, c := range t.Columns {
		kind, err := t.KindOf(c)
		if err != nil {
			return TableDef{}, fmt.Errorf("ddl: %w", err)
		}
		def.Columns = append(def.Columns, ColumnDef{
			Name:       c,
			SQLType:    mapType(string(kind)),
			Nullable:   !keys[c],
			PrimaryKey: keys[c],
		})
	}
	return def, nil
}
