package ddl

import (
	"fmt"
	"strings"

	gddl "loanetl/internal/ddl"
)

// BuildCreateTableSQL returns a T-SQL CREATE TABLE statement for t:
//
//	CREATE TABLE [schema].[table] (
//	  [col1] TYPE [NOT NULL] [DEFAULT expr],
//	  [col2] TYPE,
//	  PRIMARY KEY ([pk1], [pk2])
//	);
//
// Primary key columns typed NVARCHAR(MAX) are narrowed to KeyTextType.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("mssql ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("mssql ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("mssql ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("mssql ddl: column %s missing SQLType", name)
		}
		if c.PrimaryKey && strings.EqualFold(typ, TextType) {
			typ = KeyTextType
		}

		var sb strings.Builder
		sb.WriteString(QuoteIdent(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, QuoteIdent(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", QuoteFQN(fqn), strings.Join(cols, ",\n  ")), nil
}

// DropTableSQL drops fqn when it exists. T-SQL before 2016 has no DROP TABLE
// IF EXISTS, so the drop is guarded with OBJECT_ID.
func DropTableSQL(fqn string) string {
	q := QuoteFQN(fqn)
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NOT NULL DROP TABLE %s;", literal(q), q)
}

// RenameTableSQL renames from to the last segment of to with sp_rename. The
// new name is passed unquoted; sp_rename would keep brackets as part of it.
func RenameTableSQL(from, to string) string {
	name := to
	if i := strings.LastIndexByte(to, '.'); i >= 0 {
		name = to[i+1:]
	}
	return fmt.Sprintf("EXEC sp_rename N'%s', N'%s';", literal(QuoteFQN(from)), literal(strings.TrimSpace(name)))
}

// QuoteIdent brackets a single identifier segment, doubling any ']'.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// QuoteFQN brackets each non-empty segment of a dotted name:
//
//	"dbo.loans" -> [dbo].[loans]
func QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, QuoteIdent(p))
	}
	return strings.Join(out, ".")
}

// literal escapes s for use inside an N'...' string literal.
func literal(s string) string { return strings.ReplaceAll(s, "'", "''") }
