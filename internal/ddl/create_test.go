package ddl

import (
	"strings"
	"testing"

	"dplace2cldf/internal/cldf"
	"dplace2cldf/internal/convert"
	"dplace2cldf/internal/dplace"
)

var quoted = Dialect{
	Name:        "test",
	Quote:       func(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` },
	IfNotExists: true,
}

func testMapType(base string) string {
	switch base {
	case "integer":
		return "INTEGER"
	case "decimal":
		return "NUMERIC"
	case "float":
		return "REAL"
	default:
		return "TEXT"
	}
}

// converted returns the schema the named converter emits for ds.
func converted(t testing.TB, name string, ds *dplace.Dataset) cldf.TableSchema {
	t.Helper()
	convs, err := convert.Registry()
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}
	for _, c := range convs {
		if c.Name() != name {
			continue
		}
		schema, _, err := c.Convert(ds)
		if err != nil {
			t.Fatalf("%s.Convert() error = %v", name, err)
		}
		return cldf.TableSchema{Table: schema.Table, Columns: schema.Columns}
	}
	t.Fatalf("no converter %s", name)
	return cldf.TableSchema{}
}

func withCodes() *dplace.Dataset {
	return dplace.NewDataset("EA", dplace.Records{
		Variables: []dplace.Variable{{
			ID:    "EA001",
			Codes: []dplace.Code{{VarID: "EA001", Code: "1", Name: "Present"}},
		}},
	})
}

func TestCodesTableSQL(t *testing.T) {
	t.Parallel()

	def, err := FromSchema("ea_codes", converted(t, "CodeTable", withCodes()), testMapType)
	if err != nil {
		t.Fatalf("FromSchema() error = %v", err)
	}
	got, err := quoted.BuildCreateTableSQL(def)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL() error = %v", err)
	}
	want := "" +
		`CREATE TABLE IF NOT EXISTS "ea_codes" (` + "\n" +
		`  "var_id" TEXT NOT NULL,` + "\n" +
		`  "code" TEXT NOT NULL,` + "\n" +
		`  "description" TEXT,` + "\n" +
		`  "name" TEXT NOT NULL,` + "\n" +
		`  PRIMARY KEY ("var_id", "code")` + "\n" +
		`);`
	if got != want {
		t.Fatalf("BuildCreateTableSQL() =\n%s\nwant:\n%s", got, want)
	}
}

func TestFromSchemaColumnTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		table string
		want  map[string]ColumnDef
	}{
		{
			name:  "societies",
			table: "LanguageTable",
			want: map[string]ColumnDef{
				"id":                   {Name: "id", SQLType: "TEXT", PrimaryKey: true},
				"alt_names_by_society": {Name: "alt_names_by_society", SQLType: "TEXT", Nullable: true},
				"main_focal_year":      {Name: "main_focal_year", SQLType: "INTEGER", Nullable: true},
				"origLong":             {Name: "origLong", SQLType: "NUMERIC"},
				"Comment":              {Name: "Comment", SQLType: "TEXT", Nullable: true},
			},
		},
		{
			name:  "data",
			table: "ValueTable",
			want: map[string]ColumnDef{
				"id":                {Name: "id", SQLType: "INTEGER", PrimaryKey: true},
				"references":        {Name: "references", SQLType: "TEXT"},
				"comment":           {Name: "comment", SQLType: "TEXT", Nullable: true},
				"source_coded_data": {Name: "source_coded_data", SQLType: "TEXT", Nullable: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ts := converted(t, tt.table, dplace.NewDataset("EA", dplace.Records{}))
			def, err := FromSchema("t_"+tt.name, ts, testMapType)
			if err != nil {
				t.Fatalf("FromSchema() error = %v", err)
			}
			if len(def.Columns) != len(ts.Columns) {
				t.Fatalf("FromSchema() has %d columns, want %d", len(def.Columns), len(ts.Columns))
			}
			for _, c := range def.Columns {
				want, ok := tt.want[c.Name]
				if ok && c != want {
					t.Fatalf("column %s = %+v, want %+v", c.Name, c, want)
				}
			}
		})
	}
}

func TestFromSchemaErrors(t *testing.T) {
	t.Parallel()

	ts := converted(t, "CodeTable", withCodes())
	if _, err := FromSchema(" ", ts, testMapType); err == nil {
		t.Fatal("FromSchema() with empty name: want error")
	}
	if _, err := FromSchema("ea_codes", ts, nil); err == nil {
		t.Fatal("FromSchema() with nil mapper: want error")
	}
	ts.Table.PrimaryKey = []string{"Parameter_ID"}
	if _, err := FromSchema("ea_codes", ts, testMapType); err == nil {
		t.Fatal("FromSchema() with unknown primary key column: want error")
	}
}

func TestBuildCreateTableSQLRejectsBadDefs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		def         TableDef
		errContains string
	}{
		{
			name:        "no table name",
			def:         TableDef{Columns: []ColumnDef{{Name: "id", SQLType: "TEXT"}}},
			errContains: "table FQN must not be empty",
		},
		{
			name:        "no columns",
			def:         TableDef{FQN: "ea_variables"},
			errContains: "at least one column is required",
		},
		{
			name:        "blank column name",
			def:         TableDef{FQN: "ea_variables", Columns: []ColumnDef{{Name: "  ", SQLType: "TEXT"}}},
			errContains: "column with empty name",
		},
		{
			name:        "column without type",
			def:         TableDef{FQN: "ea_variables", Columns: []ColumnDef{{Name: "title"}}},
			errContains: "missing SQLType",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sql, err := quoted.BuildCreateTableSQL(tt.def)
			if err == nil {
				t.Fatalf("BuildCreateTableSQL() = %q, want error", sql)
			}
			if !strings.HasPrefix(err.Error(), "test ddl:") || !strings.Contains(err.Error(), tt.errContains) {
				t.Fatalf("BuildCreateTableSQL() error = %q, want test ddl prefix and %q", err, tt.errContains)
			}
		})
	}
}

func TestPlainDialect(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateTableSQL(TableDef{
		FQN: "  cldf.ea_variables  ",
		Columns: []ColumnDef{
			{Name: " id ", SQLType: " TEXT ", PrimaryKey: true},
			{Name: "definition", SQLType: "TEXT", Nullable: true},
		},
	})
	if err != nil {
		t.Fatalf("BuildCreateTableSQL() error = %v", err)
	}
	want := "CREATE TABLE cldf.ea_variables (\n  id TEXT NOT NULL,\n  definition TEXT,\n  PRIMARY KEY (id)\n);"
	if got != want {
		t.Fatalf("BuildCreateTableSQL() =\n%s\nwant:\n%s", got, want)
	}

	if got := quoted.QuoteFQN(`main. "odd" `); got != `"main"."""odd"""` {
		t.Fatalf("QuoteFQN() = %s", got)
	}
}

// benchmarkSink keeps the compiler from dropping benchmark results.
var benchmarkSink string

func BenchmarkSocietiesTableSQL(b *testing.B) {
	def, err := FromSchema("ea_societies", converted(b, "LanguageTable", dplace.NewDataset("EA", dplace.Records{})), testMapType)
	if err != nil {
		b.Fatalf("FromSchema() error = %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sql, err := quoted.BuildCreateTableSQL(def)
		if err != nil {
			b.Fatalf("BuildCreateTableSQL() error = %v", err)
		}
		benchmarkSink = sql
	}
}
