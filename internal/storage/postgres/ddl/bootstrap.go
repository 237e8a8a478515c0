package ddl

import (
	"context"

	"dplace2cldf/internal/cldf"
	gddl "dplace2cldf/internal/ddl"
)

// Execer runs one SQL statement.
type Execer interface {
	Exec(ctx context.Context, sql string) error
}

// EnsureTable creates def if it does not exist.
func EnsureTable(ctx context.Context, repo Execer, def gddl.TableDef) error {
	sql, err := BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sql)
}

// EnsureSchemaTable creates table fqn for a CLDF table schema.
func EnsureSchemaTable(ctx context.Context, repo Execer, fqn string, ts cldf.TableSchema) error {
	def, err := gddl.FromSchema(fqn, ts, MapType)
	if err != nil {
		return err
	}
	return EnsureTable(ctx, repo, def)
}
