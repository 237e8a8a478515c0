package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"dplace2cldf/internal/cldf"
	"dplace2cldf/internal/storage"
)

func newRepo(tb testing.TB) *Repository {
	tb.Helper()
	r, closeFn, err := NewRepository(context.Background(), Config{DSN: filepath.Join(tb.TempDir(), "test.sqlite")})
	if err != nil {
		tb.Fatalf("NewRepository: %v", err)
	}
	tb.Cleanup(closeFn)
	return r
}

func mustExec(tb testing.TB, r *Repository, stmt string) {
	tb.Helper()
	if err := r.Exec(context.Background(), stmt); err != nil {
		tb.Fatalf("exec %q: %v", stmt, err)
	}
}

func TestNewRepositoryRequiresDSN(t *testing.T) {
	t.Parallel()
	if _, _, err := NewRepository(context.Background(), Config{DSN: "  "}); err == nil {
		t.Fatal("NewRepository with empty DSN: want error")
	}
}

func TestCopyFromAndTruncate(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	mustExec(t, r, `CREATE TABLE "ea_languages" ("ID" TEXT PRIMARY KEY, "Name" TEXT, "Latitude" REAL)`)

	n, err := r.CopyFrom(ctx, "ea_languages", []string{"ID", "Name", "Latitude"}, [][]any{
		{"Ab1", "Society One", 10.5},
		{"Ab2", "Society Two", nil},
	})
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != 2 {
		t.Fatalf("CopyFrom inserted %d, want 2", n)
	}

	var count int
	var nulls int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), SUM("Latitude" IS NULL) FROM "ea_languages"`).Scan(&count, &nulls); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 2 || nulls != 1 {
		t.Fatalf("count=%d nulls=%d, want 2 and 1", count, nulls)
	}

	if err := r.Truncate(ctx, "ea_languages"); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "ea_languages"`).Scan(&count); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 0 {
		t.Fatalf("count after Truncate = %d, want 0", count)
	}
}

func TestCopyFromRollsBackBatch(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	mustExec(t, r, `CREATE TABLE "t" ("ID" TEXT PRIMARY KEY)`)

	if _, err := r.CopyFrom(ctx, "t", []string{"ID"}, [][]any{{"a"}, {"a"}}); err == nil {
		t.Fatal("CopyFrom with duplicate key: want error")
	}
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "t"`).Scan(&count); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0 after rollback", count)
	}

	if _, err := r.CopyFrom(ctx, "t", []string{"ID"}, [][]any{{"a", "b"}}); err == nil ||
		!strings.Contains(err.Error(), "row length") {
		t.Fatalf("CopyFrom with short columns: err = %v", err)
	}
	if _, err := r.CopyFrom(ctx, "t", nil, [][]any{{"a"}}); err == nil {
		t.Fatal("CopyFrom without columns: want error")
	}
	if n, err := r.CopyFrom(ctx, "t", []string{"ID"}, nil); n != 0 || err != nil {
		t.Fatalf("CopyFrom(nil rows) = %d, %v", n, err)
	}
}

func TestDDLBootstrapRegistered(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	ts := cldf.TableSchema{
		Table: cldf.Table{URL: "data.csv", PrimaryKey: []string{"ID"}},
		Columns: []cldf.Column{
			{Name: "ID", Datatype: cldf.Base("integer")},
			{Name: "Value", Required: true},
		},
	}
	w := &wrappedRepo{Repository: r}
	for i := 0; i < 2; i++ {
		if err := storage.EnsureTable(ctx, "sqlite", w, "ea_data", ts); err != nil {
			t.Fatalf("EnsureTable (run %d): %v", i+1, err)
		}
	}
	if _, err := r.CopyFrom(ctx, "ea_data", []string{"ID", "Value"}, [][]any{{int64(1), nil}}); err == nil {
		t.Fatal("insert NULL into required column: want error")
	}
	if _, err := r.CopyFrom(ctx, "ea_data", []string{"ID", "Value"}, [][]any{{int64(1), "1"}}); err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
}
