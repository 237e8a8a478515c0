package ddl

// ColumnDef describes a single column in a table definition.
//
// Name is unquoted; quoting happens at render time. SQLType is the target
// SQL type (e.g. TEXT, BIGINT).
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
}

// TableDef holds the table name and its ordered columns. FQN may be
// schema-qualified ("schema.table"); renderers quote each segment.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// TypeMapper maps a CSVW datatype base (string, integer, decimal, ...) to a
// dialect's SQL type.
type TypeMapper func(base string) string
