package cldf

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"dplace2cldf/internal/errs"
)

// Issue is one constraint violation found by Validate. Line is the 1-based
// CSV line (the header is line 1); zero when the issue concerns a whole table.
type Issue struct {
	Table   string
	Line    int
	Column  string
	Message string
}

func (i Issue) Error() string {
	var b strings.Builder
	b.WriteString(i.Table)
	if i.Line > 0 {
		fmt.Fprintf(&b, ":%d", i.Line)
	}
	if i.Column != "" {
		b.WriteString(" [" + i.Column + "]")
	}
	b.WriteString(": " + i.Message)
	return b.String()
}

// ValidationError lists every issue found in a dataset.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Issues)+1)
	lines = append(lines, fmt.Sprintf("%d validation issue(s)", len(e.Issues)))
	for _, is := range e.Issues {
		lines = append(lines, "  "+is.Error())
	}
	return strings.Join(lines, "\n")
}

// Unwrap exposes the individual issues to errors.As.
func (e *ValidationError) Unwrap() []error {
	out := make([]error, len(e.Issues))
	for i, is := range e.Issues {
		out[i] = is
	}
	return out
}

var decimalRe = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)$`)

// checker validates single values of one column.
type checker struct {
	col    Column
	format *regexp.Regexp
}

func newChecker(col Column) (checker, error) {
	c := checker{col: col}
	if col.Datatype.Format != "" {
		re, err := compileFormat(col.Datatype.Format)
		if err != nil {
			return c, err
		}
		c.format = re
	}
	return c, nil
}

// values splits a non-null cell into the values it holds.
func (c checker) values(cell string) []string {
	if c.col.Separator == "" {
		return []string{cell}
	}
	if cell == "" {
		return nil
	}
	return strings.Split(cell, c.col.Separator)
}

func (c checker) check(v string) error {
	dt := c.col.Datatype
	if c.format != nil && !c.format.MatchString(v) {
		return fmt.Errorf("%q does not match format %q", v, dt.Format)
	}

	var (
		x   float64
		err error
	)
	switch dt.Base {
	case "integer":
		var n int64
		n, err = strconv.ParseInt(v, 10, 64)
		x = float64(n)
	case "decimal":
		if !decimalRe.MatchString(v) {
			return fmt.Errorf("%q is not a decimal", v)
		}
		x, err = strconv.ParseFloat(v, 64)
	case "float", "double", "number":
		x, err = strconv.ParseFloat(v, 64)
	case "boolean":
		switch v {
		case "true", "false", "1", "0":
			return nil
		}
		return fmt.Errorf("%q is not a boolean", v)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("%q is not a valid %s", v, dt.Base)
	}
	if dt.Minimum != nil && x < *dt.Minimum {
		return fmt.Errorf("%s is below minimum %v", v, *dt.Minimum)
	}
	if dt.Maximum != nil && x > *dt.Maximum {
		return fmt.Errorf("%s is above maximum %v", v, *dt.Maximum)
	}
	return nil
}

type fkRef struct {
	table  string
	line   int
	column string
	value  string
}

// Validate re-reads every registered table from disk and checks it against
// its schema. It returns a validation error wrapping a *ValidationError when
// any constraint is violated.
func (d *StructureDataset) Validate() error {
	var (
		issues []Issue
		// url -> column -> set of values, for foreign key targets only
		targets = map[string]map[string]map[string]struct{}{}
		refs    []fkRef
	)
	for _, ts := range d.tables {
		for _, fk := range ts.Table.ForeignKeys {
			if _, ok := d.TableSchema(fk.Resource); !ok {
				issues = append(issues, Issue{Table: ts.Table.URL, Column: fk.Column,
					Message: "foreign key references missing table " + fk.Resource})
				continue
			}
			if targets[fk.Resource] == nil {
				targets[fk.Resource] = map[string]map[string]struct{}{}
			}
			targets[fk.Resource][fk.ResourceColumn] = map[string]struct{}{}
		}
	}

	for _, ts := range d.tables {
		tableIssues, tableRefs, err := d.validateTable(ts, targets[ts.Table.URL])
		if err != nil {
			return err
		}
		issues = append(issues, tableIssues...)
		refs = append(refs, tableRefs...)
	}

	for _, r := range refs {
		ts, _ := d.tableByURL(r.table)
		fk := ts.foreignKey(r.column)
		if _, ok := targets[fk.Resource][fk.ResourceColumn][r.value]; !ok {
			issues = append(issues, Issue{Table: r.table, Line: r.line, Column: r.column,
				Message: fmt.Sprintf("%q not found in %s [%s]", r.value, fk.Resource, fk.ResourceColumn)})
		}
	}

	if len(issues) > 0 {
		return errs.E("cldf.validate", errs.KindValidation, d.dir, &ValidationError{Issues: issues})
	}
	return nil
}

func (d *StructureDataset) tableByURL(url string) (TableSchema, bool) {
	for _, ts := range d.tables {
		if ts.Table.URL == url {
			return ts, true
		}
	}
	return TableSchema{}, false
}

func (s TableSchema) foreignKey(column string) ForeignKey {
	for _, fk := range s.Table.ForeignKeys {
		if fk.Column == column {
			return fk
		}
	}
	return ForeignKey{}
}

// validateTable checks one table file. collect receives the values of columns
// that other tables reference; the returned refs are the values this table's
// own foreign key columns hold.
func (d *StructureDataset) validateTable(ts TableSchema, collect map[string]map[string]struct{}) ([]Issue, []fkRef, error) {
	url := ts.Table.URL
	path := filepath.Join(d.dir, url)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return []Issue{{Table: url, Message: "table file is missing"}}, nil, nil
	}
	if err != nil {
		return nil, nil, errs.E("cldf.validate", errs.KindIO, path, err)
	}
	defer f.Close()

	var issues []Issue
	add := func(line int, col, format string, args ...any) {
		issues = append(issues, Issue{Table: url, Line: line, Column: col, Message: fmt.Sprintf(format, args...)})
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err == io.EOF {
		add(0, "", "table file is empty")
		return issues, nil, nil
	}
	if err != nil {
		return nil, nil, errs.E("cldf.validate", errs.KindIO, path, err)
	}
	if want := ts.ColumnNames(); !slices.Equal(header, want) {
		add(1, "", "header %v does not match columns %v", header, want)
		return issues, nil, nil
	}

	checkers := make([]checker, len(ts.Columns))
	for i, col := range ts.Columns {
		if checkers[i], err = newChecker(col); err != nil {
			return nil, nil, errs.E("cldf.validate", errs.KindSchema, path, err)
		}
	}
	pkIdx := make([]int, len(ts.Table.PrimaryKey))
	for i, name := range ts.Table.PrimaryKey {
		pkIdx[i] = slices.Index(header, name)
	}
	isFK := make(map[string]bool, len(ts.Table.ForeignKeys))
	for _, fk := range ts.Table.ForeignKeys {
		if _, ok := d.TableSchema(fk.Resource); ok {
			isFK[fk.Column] = true
		}
	}

	var refs []fkRef
	seenPK := map[string]int{}
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, nil, errs.E("cldf.validate", errs.KindIO, path, fmt.Errorf("line %d: %w", line, err))
		}
		if len(rec) != len(header) {
			add(line, "", "expected %d fields, got %d", len(header), len(rec))
			continue
		}

		for i, ch := range checkers {
			cell := rec[i]
			name := ch.col.Name
			if ch.col.IsNull(cell) {
				if ch.col.Required {
					add(line, name, "required value is missing")
				}
				continue
			}
			vals := ch.values(cell)
			for _, v := range vals {
				if err := ch.check(v); err != nil {
					add(line, name, "%v", err)
				}
			}
			if set, ok := collect[name]; ok {
				for _, v := range vals {
					set[v] = struct{}{}
				}
			}
			if isFK[name] {
				for _, v := range vals {
					refs = append(refs, fkRef{table: url, line: line, column: name, value: v})
				}
			}
		}

		if len(pkIdx) > 0 {
			parts := make([]string, len(pkIdx))
			for i, ix := range pkIdx {
				parts[i] = rec[ix]
			}
			key := strings.Join(parts, "\x1f")
			if prev, dup := seenPK[key]; dup {
				add(line, strings.Join(ts.Table.PrimaryKey, ","), "duplicate primary key %q (first seen on line %d)",
					strings.Join(parts, ","), prev)
			} else {
				seenPK[key] = line
			}
		}
	}
	return issues, refs, nil
}
