// Package ddl holds the SQLite dialect: type mapping, CREATE TABLE rendering
// and table bootstrap.
package ddl

import "strings"

// MapType maps a CSVW datatype base to a SQLite column type affinity.
// Booleans are stored as INTEGER 0/1; unknown bases fall back to TEXT.
func MapType(base string) string {
	switch strings.ToLower(strings.TrimSpace(base)) {
	case "integer", "int", "long":
		return "INTEGER"
	case "boolean":
		return "INTEGER"
	case "float", "double", "number":
		return "REAL"
	case "decimal":
		return "NUMERIC"
	default:
		return "TEXT"
	}
}
