package ddl

import (
	"strings"

	gddl "dplace2cldf/internal/ddl"
)

// Dialect renders Postgres identifiers and CREATE TABLE IF NOT EXISTS.
var Dialect = gddl.Dialect{Name: "postgres", Quote: QuoteIdent, IfNotExists: true}

// BuildCreateTableSQL returns a Postgres CREATE TABLE statement for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return Dialect.BuildCreateTableSQL(t)
}

// QuoteIdent double-quotes one identifier, doubling embedded quotes.
func QuoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// QuoteFQN quotes a possibly schema-qualified name: public.t -> "public"."t".
func QuoteFQN(fqn string) string { return Dialect.QuoteFQN(fqn) }
