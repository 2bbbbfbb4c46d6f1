package ddl

import (
	"fmt"
	"sort"
	"strings"

	gddl "loanetl/internal/ddl"
)

// BuildCreateTableSQL builds a deterministic Postgres CREATE TABLE statement
// for t.
//
//   - Primary-key columns are always NOT NULL.
//   - PRIMARY KEY is a separate clause with the quoted columns sorted.
//   - Identifiers are double-quoted with embedded quotes doubled.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("postgres ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("postgres ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("postgres ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("postgres ddl: column %s missing SQLType", name)
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
		sort.Strings(pks)
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", QuoteFQN(fqn), strings.Join(cols, ",\n  ")), nil
}

// DropTableSQL drops fqn if it exists.
func DropTableSQL(fqn string) string {
	return "DROP TABLE IF EXISTS " + QuoteFQN(fqn)
}

// SwapSQL returns the statements that replace target with staging; they must
// run in one transaction. The primary key index is renamed with the table so
// the next staging table can create "<staging>_pkey" again.
func SwapSQL(staging, target string) []string {
	schema, stagingName := splitSchema(staging)
	_, targetName := splitSchema(target)
	qualify := func(name string) string {
		if schema == "" {
			return QuoteIdent(name)
		}
		return QuoteIdent(schema) + "." + QuoteIdent(name)
	}
	return []string{
		DropTableSQL(target),
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", QuoteFQN(staging), QuoteIdent(targetName)),
		fmt.Sprintf("ALTER INDEX IF EXISTS %s RENAME TO %s", qualify(stagingName+"_pkey"), QuoteIdent(targetName+"_pkey")),
	}
}

// QuoteIdent quotes a single identifier segment, e.g. `weird"name` becomes
// `"weird""name"`.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// QuoteFQN quotes a possibly schema-qualified name like "public.loans" to
// `"public"."loans"`. Empty segments are ignored.
func QuoteFQN(f string) string {
	parts := strings.Split(f, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, QuoteIdent(p))
	}
	return strings.Join(out, ".")
}

func splitSchema(fqn string) (schema, name string) {
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return fqn[:i], fqn[i+1:]
	}
	return "", fqn
}
