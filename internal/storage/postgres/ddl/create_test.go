package ddl

import (
	"context"
	"testing"

	"dplace2cldf/internal/cldf"
)

type fakeExecer struct {
	stmts []string
}

func (f *fakeExecer) Exec(_ context.Context, sql string) error {
	f.stmts = append(f.stmts, sql)
	return nil
}

func TestQuoteFQN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "ea_data", want: `"ea_data"`},
		{in: "public.ea_data", want: `"public"."ea_data"`},
		{in: `odd"name`, want: `"odd""name"`},
	}
	for _, tt := range tests {
		if got := QuoteFQN(tt.in); got != tt.want {
			t.Fatalf("QuoteFQN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnsureSchemaTable(t *testing.T) {
	t.Parallel()

	ts := cldf.TableSchema{
		Table: cldf.Table{URL: "societies.csv", PrimaryKey: []string{"ID"}},
		Columns: []cldf.Column{
			{Name: "ID"},
			{Name: "Latitude", Datatype: cldf.Bounded("decimal", -90, 90)},
			{Name: "Year", Datatype: cldf.Base("integer")},
		},
	}
	var repo fakeExecer
	if err := EnsureSchemaTable(context.Background(), &repo, "public.ea_languages", ts); err != nil {
		t.Fatalf("EnsureSchemaTable() error = %v", err)
	}
	want := "" +
		`CREATE TABLE IF NOT EXISTS "public"."ea_languages" (` + "\n" +
		`  "ID" TEXT NOT NULL,` + "\n" +
		`  "Latitude" NUMERIC,` + "\n" +
		`  "Year" BIGINT,` + "\n" +
		`  PRIMARY KEY ("ID")` + "\n" +
		`);`
	if len(repo.stmts) != 1 || repo.stmts[0] != want {
		t.Fatalf("statements = %q, want %q", repo.stmts, want)
	}
}
