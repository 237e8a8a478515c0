package cldf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"dplace2cldf/internal/errs"
)

// Known datatype base names.
var knownBases = map[string]struct{}{
	"string":  {},
	"integer": {},
	"float":   {},
	"double":  {},
	"decimal": {},
	"number":  {},
	"boolean": {},
}

// StructureDataset is a CLDF StructureDataset rooted at a directory.
type StructureDataset struct {
	dir    string
	tables []TableSchema
}

// NewStructureDataset returns an empty dataset that will be written to dir.
func NewStructureDataset(dir string) *StructureDataset {
	return &StructureDataset{dir: dir}
}

// Dir returns the dataset directory.
func (d *StructureDataset) Dir() string { return d.dir }

// Tables returns the registered table schemas in registration order.
func (d *StructureDataset) Tables() []TableSchema {
	return append([]TableSchema(nil), d.tables...)
}

// TableSchema returns the registered schema whose id or url is key.
func (d *StructureDataset) TableSchema(key string) (TableSchema, bool) {
	for _, ts := range d.tables {
		if ts.Table.ID() == key || ts.Table.URL == key {
			return ts, true
		}
	}
	return TableSchema{}, false
}

// AddTable registers the schema of one table. A malformed schema (duplicate
// table, empty or duplicate column names, unknown datatypes, invalid format
// patterns, keys naming undeclared columns) is rejected with a schema error.
func (d *StructureDataset) AddTable(t Table, cols ...Column) error {
	const op = "cldf.add_table"
	if strings.TrimSpace(t.URL) == "" {
		return errs.Errorf(op, errs.KindSchema, "", "table url must not be empty")
	}
	for _, other := range d.tables {
		if other.Table.URL == t.URL || other.Table.ID() == t.ID() {
			return errs.Errorf(op, errs.KindSchema, t.URL, "table %s registered twice", t.ID())
		}
	}
	if len(cols) == 0 {
		return errs.Errorf(op, errs.KindSchema, t.URL, "at least one column is required")
	}

	seen := make(map[string]struct{}, len(cols))
	for i, c := range cols {
		if strings.TrimSpace(c.Name) == "" {
			return errs.Errorf(op, errs.KindSchema, t.URL, "column %d has an empty name", i)
		}
		if _, dup := seen[c.Name]; dup {
			return errs.Errorf(op, errs.KindSchema, t.URL, "duplicate column %q", c.Name)
		}
		seen[c.Name] = struct{}{}

		if _, ok := knownBases[c.Datatype.Base]; !ok {
			return errs.Errorf(op, errs.KindSchema, t.URL, "column %q: unknown datatype %q", c.Name, c.Datatype.Base)
		}
		if c.Datatype.Format != "" {
			if _, err := compileFormat(c.Datatype.Format); err != nil {
				return errs.Errorf(op, errs.KindSchema, t.URL, "column %q: format: %v", c.Name, err)
			}
		}
		if lo, hi := c.Datatype.Minimum, c.Datatype.Maximum; lo != nil && hi != nil && *lo > *hi {
			return errs.Errorf(op, errs.KindSchema, t.URL, "column %q: minimum %v above maximum %v", c.Name, *lo, *hi)
		}
	}
	for _, pk := range t.PrimaryKey {
		if _, ok := seen[pk]; !ok {
			return errs.Errorf(op, errs.KindSchema, t.URL, "primary key names unknown column %q", pk)
		}
	}
	for _, fk := range t.ForeignKeys {
		if _, ok := seen[fk.Column]; !ok {
			return errs.Errorf(op, errs.KindSchema, t.URL, "foreign key names unknown column %q", fk.Column)
		}
		if fk.Resource == "" || fk.ResourceColumn == "" {
			return errs.Errorf(op, errs.KindSchema, t.URL, "foreign key on %q has no reference", fk.Column)
		}
	}

	d.tables = append(d.tables, TableSchema{
		Table:   cloneTable(t),
		Columns: append([]Column(nil), cols...),
	})
	return nil
}

func cloneTable(t Table) Table {
	t.PrimaryKey = append([]string(nil), t.PrimaryKey...)
	t.ForeignKeys = append([]ForeignKey(nil), t.ForeignKeys...)
	return t
}

// compileFormat anchors a CSVW format pattern so it must match whole values.
func compileFormat(format string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + format + ")$")
}

// Open loads the metadata of an existing dataset in dir so it can be validated
// or read.
func Open(dir string) (*StructureDataset, error) {
	const op = "cldf.open"
	path := filepath.Join(dir, MetadataFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.E(op, errs.KindIO, path, err)
	}
	var md metadata
	if err := json.Unmarshal(b, &md); err != nil {
		return nil, errs.E(op, errs.KindSchema, path, fmt.Errorf("decode metadata: %w", err))
	}

	d := NewStructureDataset(dir)
	for _, tj := range md.Tables {
		if err := d.AddTable(tj.table(), tj.Schema.Columns...); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// metadata is the CSVW JSON document describing the dataset.
type metadata struct {
	Context    []any       `json:"@context"`
	ConformsTo string      `json:"dc:conformsTo"`
	Tables     []tableJSON `json:"tables"`
}

type tableJSON struct {
	URL        string     `json:"url"`
	ConformsTo string     `json:"dc:conformsTo,omitempty"`
	Schema     schemaJSON `json:"tableSchema"`
}

type schemaJSON struct {
	Columns     []Column         `json:"columns"`
	PrimaryKey  []string         `json:"primaryKey,omitempty"`
	ForeignKeys []foreignKeyJSON `json:"foreignKeys,omitempty"`
}

type foreignKeyJSON struct {
	ColumnReference string        `json:"columnReference"`
	Reference       referenceJSON `json:"reference"`
}

type referenceJSON struct {
	Resource        string `json:"resource"`
	ColumnReference string `json:"columnReference"`
}

func newMetadata(tables []TableSchema) metadata {
	md := metadata{
		Context:    []any{"http://www.w3.org/ns/csvw", map[string]string{"@language": "en"}},
		ConformsTo: StructureDatasetTerm,
		Tables:     make([]tableJSON, 0, len(tables)),
	}
	for _, ts := range tables {
		tj := tableJSON{
			URL:        ts.Table.URL,
			ConformsTo: ts.Table.ConformsTo,
			Schema: schemaJSON{
				Columns:    ts.Columns,
				PrimaryKey: ts.Table.PrimaryKey,
			},
		}
		for _, fk := range ts.Table.ForeignKeys {
			tj.Schema.ForeignKeys = append(tj.Schema.ForeignKeys, foreignKeyJSON{
				ColumnReference: fk.Column,
				Reference: referenceJSON{
					Resource:        fk.Resource,
					ColumnReference: fk.ResourceColumn,
				},
			})
		}
		md.Tables = append(md.Tables, tj)
	}
	return md
}

func (tj tableJSON) table() Table {
	t := Table{
		URL:        tj.URL,
		ConformsTo: tj.ConformsTo,
		PrimaryKey: tj.Schema.PrimaryKey,
	}
	for _, fk := range tj.Schema.ForeignKeys {
		t.ForeignKeys = append(t.ForeignKeys, ForeignKey{
			Column:         fk.ColumnReference,
			Resource:       fk.Reference.Resource,
			ResourceColumn: fk.Reference.ColumnReference,
		})
	}
	return t
}
