// Package ddl holds the Postgres dialect: type mapping, CREATE TABLE
// rendering and table bootstrap.
package ddl

import "strings"

// MapType maps a CSVW datatype base to a Postgres SQL type.
//
//	integer           -> BIGINT
//	boolean           -> BOOLEAN
//	decimal           -> NUMERIC
//	float/double/number -> DOUBLE PRECISION
//	everything else   -> TEXT
func MapType(base string) string {
	switch strings.ToLower(strings.TrimSpace(base)) {
	case "integer", "int", "long":
		return "BIGINT"
	case "boolean":
		return "BOOLEAN"
	case "decimal":
		return "NUMERIC"
	case "float", "double", "number":
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}
