package convert

import (
	"iter"

	"dplace2cldf/internal/cldf"
	"dplace2cldf/internal/dplace"
)

// Schema is the argument list for registering one table: the table and its
// ordered columns.
type Schema struct {
	Table   cldf.Table
	Columns []cldf.Column
}

// Converter produces one CLDF table from a D-PLACE dataset.
type Converter interface {
	// Name identifies the converter in logs.
	Name() string
	// Skip reports whether the table is left out for ds.
	Skip(ds *dplace.Dataset) bool
	// Convert returns the table schema and its rows keyed by table id. The
	// row sequence is lazy and may be consumed once.
	Convert(ds *dplace.Dataset) (Schema, map[string]iter.Seq[cldf.Row], error)
}

// table is the generic converter for record type T.
type table[T any] struct {
	name      string
	def       cldf.Table
	records   func(*dplace.Dataset) []T
	skippable bool
	columns   []ColumnSpec
	extract   Extractor
}

func newTable[T any](name string, def cldf.Table, fields []dplace.Field, rules Rules,
	records func(*dplace.Dataset) []T, skippable bool) (*table[T], error) {
	cols, extract, err := BuildColumns(fields, rules)
	if err != nil {
		return nil, err
	}
	return &table[T]{
		name:      name,
		def:       def,
		records:   records,
		skippable: skippable,
		columns:   cols,
		extract:   extract,
	}, nil
}

func (t *table[T]) Name() string { return t.name }

// Skip reports true only for skippable tables whose dataset has no records.
func (t *table[T]) Skip(ds *dplace.Dataset) bool {
	return t.skippable && len(t.records(ds)) == 0
}

func (t *table[T]) Convert(ds *dplace.Dataset) (Schema, map[string]iter.Seq[cldf.Row], error) {
	return t.schema(), map[string]iter.Seq[cldf.Row]{t.def.ID(): t.rows(ds)}, nil
}

// schema returns a fresh copy of the table and column metadata.
func (t *table[T]) schema() Schema {
	def := t.def
	def.PrimaryKey = append([]string(nil), t.def.PrimaryKey...)
	def.ForeignKeys = append([]cldf.ForeignKey(nil), t.def.ForeignKeys...)
	return Schema{Table: def, Columns: Columns(t.columns)}
}

func (t *table[T]) rows(ds *dplace.Dataset) iter.Seq[cldf.Row] {
	return func(yield func(cldf.Row) bool) {
		for _, rec := range t.records(ds) {
			if !yield(t.extract(rec)) {
				return
			}
		}
	}
}
