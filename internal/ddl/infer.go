package ddl

import (
	"fmt"
	"strings"

	"dplace2cldf/internal/cldf"
)

// FromSchema derives a TableDef named fqn from a CLDF table schema. Column
// types come from mapType applied to each datatype base; list-valued columns
// are stored as their joined text. Required columns and primary key columns
// are NOT NULL.
func FromSchema(fqn string, ts cldf.TableSchema, mapType TypeMapper) (TableDef, error) {
	if strings.TrimSpace(fqn) == "" {
		return TableDef{}, fmt.Errorf("ddl: table FQN must not be empty")
	}
	if mapType == nil {
		return TableDef{}, fmt.Errorf("ddl: nil type mapper")
	}
	pk := make(map[string]bool, len(ts.Table.PrimaryKey))
	for _, name := range ts.Table.PrimaryKey {
		if _, ok := ts.Column(name); !ok {
			return TableDef{}, fmt.Errorf("ddl: primary key column %s not in %s", name, ts.Table.URL)
		}
		pk[name] = true
	}

	def := TableDef{FQN: fqn, Columns: make([]ColumnDef, 0, len(ts.Columns))}
	for _, c := range ts.Columns {
		base := c.Datatype.Base
		if base == "" || c.Separator != "" {
			base = "string"
		}
		def.Columns = append(def.Columns, ColumnDef{
			Name:       c.Name,
			SQLType:    mapType(base),
			Nullable:   !c.Required && !pk[c.Name],
			PrimaryKey: pk[c.Name],
		})
	}
	return def, nil
}
