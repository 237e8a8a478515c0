package convert

import (
	"slices"
	"strings"

	"dplace2cldf/internal/cldf"
	"dplace2cldf/internal/dplace"
	"dplace2cldf/internal/errs"
)

// ColumnSpec binds one source field to the column it is written to.
type ColumnSpec struct {
	Field     string
	Transform func(any) any
	Column    cldf.Column
}

// Extractor turns one source record into a row keyed by column name.
type Extractor func(rec any) cldf.Row

func identity(v any) any { return v }

func splitOn(delim string) func(any) any {
	return func(v any) any {
		s, _ := v.(string)
		return strings.Split(s, delim)
	}
}

// BuildColumns resolves rules against the declared fields of a record type,
// in field order, and returns the resulting column specs with an extractor
// producing rows for them.
func BuildColumns(fields []dplace.Field, rules Rules) ([]ColumnSpec, Extractor, error) {
	const op = "convert.build_columns"
	for name := range rules {
		if !slices.ContainsFunc(fields, func(f dplace.Field) bool { return f.Name == name }) {
			return nil, nil, errs.Errorf(op, errs.KindSchema, "", "rule for undeclared field %q", name)
		}
	}

	var (
		specs  []ColumnSpec
		bound  []dplace.Field
		target = map[string]string{}
	)
	for _, f := range fields {
		rule, ok := rules[f.Name]
		if !ok {
			rule = RenameTo(f.Name)
		}

		var cfg ColumnConfig
		switch rule.kind {
		case ruleOmit:
			continue
		case ruleRename:
			cfg.Name = rule.name
		case ruleConfigure:
			cfg = rule.cfg
			if cfg.Name == "" {
				cfg.Name = f.Name
			}
		}
		if strings.TrimSpace(cfg.Name) == "" {
			return nil, nil, errs.Errorf(op, errs.KindSchema, "", "field %q maps to an empty column name", f.Name)
		}
		if prev, dup := target[cfg.Name]; dup {
			return nil, nil, errs.Errorf(op, errs.KindSchema, "", "fields %q and %q both map to column %q", prev, f.Name, cfg.Name)
		}
		target[cfg.Name] = f.Name

		col := cldf.Column{
			Name:        cfg.Name,
			PropertyURL: cfg.PropertyURL,
			Required:    cfg.Required,
			Datatype:    cfg.Datatype,
			Null:        cfg.Null,
		}
		transform := identity
		if sep := cfg.Separator; sep.Delimiter != "" {
			col.Separator = sep.Delimiter
			if sep.Split {
				if f.Kind != dplace.KindString {
					return nil, nil, errs.Errorf(op, errs.KindSchema, "", "cannot split %s field %q", f.Kind, f.Name)
				}
				transform = splitOn(sep.Delimiter)
			}
		}
		if col.Datatype.IsZero() {
			col.Datatype = inferDatatype(f)
		}

		specs = append(specs, ColumnSpec{Field: f.Name, Transform: transform, Column: col})
		bound = append(bound, f)
	}

	extract := func(rec any) cldf.Row {
		row := make(cldf.Row, len(specs))
		for i, s := range specs {
			row[s.Column.Name] = s.Transform(bound[i].Value(rec))
		}
		return row
	}
	return specs, extract, nil
}

func inferDatatype(f dplace.Field) cldf.Datatype {
	if f.Kind == dplace.KindFloat {
		return cldf.Base("float")
	}
	return cldf.Base("string")
}

// Columns returns the column metadata of specs in order.
func Columns(specs []ColumnSpec) []cldf.Column {
	out := make([]cldf.Column, len(specs))
	for i, s := range specs {
		out[i] = s.Column
	}
	return out
}
