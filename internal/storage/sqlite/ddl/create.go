package ddl

import (
	"strings"

	gddl "dplace2cldf/internal/ddl"
)

// Dialect renders double-quoted identifiers and CREATE TABLE IF NOT EXISTS.
var Dialect = gddl.Dialect{Name: "sqlite", Quote: QuoteIdent, IfNotExists: true}

// BuildCreateTableSQL returns a SQLite CREATE TABLE statement:
//
//	CREATE TABLE IF NOT EXISTS "table" (
//	  "col1" TYPE [NOT NULL],
//	  PRIMARY KEY ("pk1", "pk2")
//	);
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return Dialect.BuildCreateTableSQL(t)
}

// QuoteIdent double-quotes one identifier.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// QuoteFQN quotes each dotted segment of fqn, dropping empty ones.
func QuoteFQN(fqn string) string { return Dialect.QuoteFQN(fqn) }
