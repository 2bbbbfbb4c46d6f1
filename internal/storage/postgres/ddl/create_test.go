package ddl

import (
	"strconv"
	"testing"

	gddl "loanetl/internal/ddl"
)

// TestQuoteFQN verifies quoting and splitting of schema-qualified names.
func TestQuoteFQN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple table", in: "loans", want: `"loans"`},
		{name: "schema and table", in: "public.loans", want: `"public"."loans"`},
		{name: "with empty segments", in: ".public..loans.", want: `"public"."loans"`},
		{name: "with quotes", in: `sch."table"`, want: `"sch"."""table"""`},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := QuoteFQN(tt.in); got != tt.want {
				t.Fatalf("QuoteFQN(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestBuildCreateTableSQL checks NOT NULL on key columns and the sorted
// PRIMARY KEY clause.
func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	def := gddl.TableDef{
		FQN: "public.loans__staging",
		Columns: []gddl.ColumnDef{
			{Name: "loan_id", SQLType: "TEXT", Nullable: true, PrimaryKey: true},
			{Name: "customer_id", SQLType: "TEXT", PrimaryKey: true},
			{Name: "loan_amount", SQLType: "DOUBLE PRECISION", Nullable: true},
			{Name: "issue_date", SQLType: "DATE", Nullable: true, Default: "CURRENT_DATE"},
		},
	}

	got, err := BuildCreateTableSQL(def)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL() error = %v", err)
	}
	want := "" +
		`CREATE TABLE "public"."loans__staging" (` + "\n" +
		`  "loan_id" TEXT NOT NULL,` + "\n" +
		`  "customer_id" TEXT NOT NULL,` + "\n" +
		`  "loan_amount" DOUBLE PRECISION,` + "\n" +
		`  "issue_date" DATE DEFAULT CURRENT_DATE,` + "\n" +
		`  PRIMARY KEY ("customer_id", "loan_id")` + "\n" +
		`);`
	if got != want {
		t.Fatalf("BuildCreateTableSQL() =\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildCreateTableSQLErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		def  gddl.TableDef
	}{
		{"empty FQN", gddl.TableDef{Columns: []gddl.ColumnDef{{Name: "id", SQLType: "TEXT"}}}},
		{"no columns", gddl.TableDef{FQN: "loans"}},
		{"column empty name", gddl.TableDef{FQN: "loans", Columns: []gddl.ColumnDef{{SQLType: "TEXT"}}}},
		{"column missing type", gddl.TableDef{FQN: "loans", Columns: []gddl.ColumnDef{{Name: "id"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := BuildCreateTableSQL(tt.def); err == nil {
				t.Fatalf("BuildCreateTableSQL(%+v) error = nil, want non-nil", tt.def)
			}
		})
	}
}

func TestSwapSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		staging, target string
		want            []string
	}{
		{
			name:    "schema qualified",
			staging: "public.loans__staging",
			target:  "public.loans",
			want: []string{
				`DROP TABLE IF EXISTS "public"."loans"`,
				`ALTER TABLE "public"."loans__staging" RENAME TO "loans"`,
				`ALTER INDEX IF EXISTS "public"."loans__staging_pkey" RENAME TO "loans_pkey"`,
			},
		},
		{
			name:    "bare name",
			staging: "loans__staging",
			target:  "loans",
			want: []string{
				`DROP TABLE IF EXISTS "loans"`,
				`ALTER TABLE "loans__staging" RENAME TO "loans"`,
				`ALTER INDEX IF EXISTS "loans__staging_pkey" RENAME TO "loans_pkey"`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := SwapSQL(tt.staging, tt.target)
			if len(got) != len(tt.want) {
				t.Fatalf("SwapSQL() returned %d statements, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("stmt %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// BenchmarkBuildCreateTableSQLWide measures rendering for a wide table.
func BenchmarkBuildCreateTableSQLWide(b *testing.B) {
	const numCols = 64

	cols := make([]gddl.ColumnDef, 0, numCols)
	for i := 0; i < numCols; i++ {
		cols = append(cols, gddl.ColumnDef{Name: "col_" + strconv.Itoa(i), SQLType: "TEXT", Nullable: i%3 != 0})
	}
	cols[0].PrimaryKey = true
	def := gddl.TableDef{FQN: "public.wide_table", Columns: cols}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildCreateTableSQL(def); err != nil {
			b.Fatalf("BuildCreateTableSQL() error = %v", err)
		}
	}
}
