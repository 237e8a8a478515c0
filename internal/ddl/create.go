// Package ddl defines a small, backend-agnostic model for SQL DDL and renders
// CREATE TABLE statements from it.
//
// Backend packages (internal/storage/sqlite/ddl, internal/storage/postgres/ddl)
// supply their identifier quoting and type mapping through Dialect.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect holds the per-backend parts of rendering.
type Dialect struct {
	Name string
	// Quote quotes a single identifier segment. Nil leaves names as-is.
	Quote func(string) string
	// IfNotExists adds IF NOT EXISTS to CREATE TABLE.
	IfNotExists bool
}

// QuoteFQN quotes every dotted segment of fqn.
func (d Dialect) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, d.quote(p))
	}
	return strings.Join(out, ".")
}

func (d Dialect) quote(id string) string {
	if d.Quote == nil {
		return id
	}
	return d.Quote(id)
}

// BuildCreateTableSQL renders t as
//
//	CREATE TABLE [IF NOT EXISTS] <FQN> (
//	  <name> <type> [NOT NULL],
//	  ...,
//	  [PRIMARY KEY (<pk-cols>)]
//	);
//
// Columns with PrimaryKey set are collected into one trailing constraint in
// column order.
func (d Dialect) BuildCreateTableSQL(t TableDef) (string, error) {
	prefix := "ddl"
	if d.Name != "" {
		prefix = d.Name + " ddl"
	}
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", prefix)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", prefix)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", prefix, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s: column %s missing SQLType", prefix, name)
		}

		var sb strings.Builder
		sb.WriteString(d.quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.quote(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	create := "CREATE TABLE "
	if d.IfNotExists {
		create += "IF NOT EXISTS "
	}
	return fmt.Sprintf("%s%s (\n  %s\n);", create, d.QuoteFQN(fqn), strings.Join(cols, ",\n  ")), nil
}

// BuildCreateTableSQL renders t with the zero Dialect: no quoting and a plain
// CREATE TABLE.
func BuildCreateTableSQL(t TableDef) (string, error) {
	return Dialect{}.BuildCreateTableSQL(t)
}
