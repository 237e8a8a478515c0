// Package cldf writes and validates CLDF StructureDatasets: a directory of
// CSV tables described by a CSVW JSON metadata file.
//
// A StructureDataset is assembled in three steps. AddTable registers the
// schema of each table, Write serializes every registered table together with
// the metadata, and Validate re-reads the written files and checks them
// against their declared schema (datatypes, formats, bounds, required
// columns, primary keys and foreign keys).
package cldf

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is one table row keyed by column name.
type Row map[string]any

// Datatype is a CSVW column datatype: either a bare base type or a base type
// narrowed by a format pattern and/or numeric bounds.
type Datatype struct {
	Base    string
	Format  string
	Minimum *float64
	Maximum *float64
}

// Base returns the bare datatype named b.
func Base(b string) Datatype { return Datatype{Base: b} }

// Bounded returns a numeric datatype restricted to [min, max].
func Bounded(base string, min, max float64) Datatype {
	return Datatype{Base: base, Minimum: &min, Maximum: &max}
}

// Pattern returns a string datatype whose values must match format.
func Pattern(format string) Datatype {
	return Datatype{Base: "string", Format: format}
}

// IsZero reports whether no datatype has been set.
func (d Datatype) IsZero() bool {
	return d.Base == "" && d.Format == "" && d.Minimum == nil && d.Maximum == nil
}

func (d Datatype) bare() bool {
	return d.Format == "" && d.Minimum == nil && d.Maximum == nil
}

type datatypeJSON struct {
	Base    string   `json:"base"`
	Format  string   `json:"format,omitempty"`
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`
}

// MarshalJSON renders a bare datatype as its base name and anything narrower
// as an object.
func (d Datatype) MarshalJSON() ([]byte, error) {
	if d.bare() {
		return json.Marshal(d.Base)
	}
	return json.Marshal(datatypeJSON(d))
}

func (d *Datatype) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = Datatype{Base: s}
		return nil
	}
	var tmp datatypeJSON
	if err := json.Unmarshal(b, &tmp); err != nil {
		return fmt.Errorf("datatype: %w", err)
	}
	*d = Datatype(tmp)
	return nil
}

// Column is a column description. Null lists the cell strings read as a
// missing value: nil means the CSVW default (the empty string), a non-nil
// empty slice means no cell is ever null.
type Column struct {
	Name        string
	PropertyURL string
	Required    bool
	Datatype    Datatype
	Separator   string
	Null        []string
}

// IsNull reports whether cell denotes a missing value in this column.
func (c Column) IsNull(cell string) bool {
	if c.Null == nil {
		return cell == ""
	}
	for _, n := range c.Null {
		if cell == n {
			return true
		}
	}
	return false
}

type columnJSON struct {
	Name        string    `json:"name"`
	PropertyURL string    `json:"propertyUrl,omitempty"`
	Required    bool      `json:"required,omitempty"`
	Datatype    *Datatype `json:"datatype,omitempty"`
	Separator   string    `json:"separator,omitempty"`
	Null        any       `json:"null,omitempty"`
}

func (c Column) MarshalJSON() ([]byte, error) {
	out := columnJSON{
		Name:        c.Name,
		PropertyURL: c.PropertyURL,
		Required:    c.Required,
		Separator:   c.Separator,
	}
	if !c.Datatype.IsZero() {
		dt := c.Datatype
		out.Datatype = &dt
	}
	switch {
	case c.Null == nil:
	case len(c.Null) == 1:
		out.Null = c.Null[0]
	default:
		out.Null = c.Null
	}
	return json.Marshal(out)
}

func (c *Column) UnmarshalJSON(b []byte) error {
	var tmp struct {
		columnJSON
		Null json.RawMessage `json:"null"`
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*c = Column{
		Name:        tmp.Name,
		PropertyURL: tmp.PropertyURL,
		Required:    tmp.Required,
		Separator:   tmp.Separator,
	}
	if tmp.Datatype != nil {
		c.Datatype = *tmp.Datatype
	}
	if len(tmp.Null) > 0 && string(tmp.Null) != "null" {
		var one string
		if err := json.Unmarshal(tmp.Null, &one); err == nil {
			c.Null = []string{one}
			return nil
		}
		many := []string{}
		if err := json.Unmarshal(tmp.Null, &many); err != nil {
			return fmt.Errorf("column %s: null: %w", c.Name, err)
		}
		c.Null = many
	}
	return nil
}

// ForeignKey declares that values of Column must occur in ResourceColumn of
// the table whose url is Resource.
type ForeignKey struct {
	Column         string
	Resource       string
	ResourceColumn string
}

// Table is the table-level part of a schema: where the table lives, which
// CLDF component it implements, and its keys.
type Table struct {
	URL         string
	ConformsTo  string
	PrimaryKey  []string
	ForeignKeys []ForeignKey
}

// ID is the identifier a table is addressed by when writing rows: its CLDF
// component term when it has one, its url otherwise.
func (t Table) ID() string {
	if t.ConformsTo != "" {
		return t.ConformsTo
	}
	return t.URL
}

// TableSchema is a table together with its ordered columns.
type TableSchema struct {
	Table   Table
	Columns []Column
}

// Column returns the column called name.
func (s TableSchema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the column names in order.
func (s TableSchema) ColumnNames() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}
