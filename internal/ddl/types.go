// Package ddl is a small dialect-neutral model of a table definition. The
// storage backends render it into their own CREATE TABLE statements.
package ddl

// ColumnDef describes one column of a TableDef.
//
// Name is unquoted; backends quote it when rendering. SQLType is already in
// the target dialect (see the backends' MapType). Default is emitted as raw
// SQL.
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the fully-qualified table name in dotted form
// ("schema.table" or just "table") and an ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// PrimaryKey returns the names of the primary key columns in column order.
func (t TableDef) PrimaryKey() []string {
	var pk []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}
	return pk
}
