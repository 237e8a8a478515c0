// Package convert maps D-PLACE records onto CLDF tables.
//
// Each target table is described declaratively: a cldf.Table, the ordered
// field list of its source record type and a Rules table saying, per field,
// whether the field is dropped, renamed or configured as a column. BuildColumns
// turns that description into column specs and a row extractor; a Converter
// applies them to one dataset.
package convert

import "dplace2cldf/internal/cldf"

// Separator describes a multi-valued text field. When Split is set the value
// is broken into a list on Delimiter; otherwise it is kept as the delimited
// string and Delimiter only becomes the column separator.
type Separator struct {
	Delimiter string
	Split     bool
}

var (
	// CommaList splits alternate society names.
	CommaList = Separator{Delimiter: ", ", Split: true}
	// CommaJoined keeps comma-delimited values as one string.
	CommaJoined = Separator{Delimiter: ", "}
	// SemicolonJoined keeps relation and citation lists as one string.
	SemicolonJoined = Separator{Delimiter: "; "}
)

// ColumnConfig configures the column a field becomes. Zero values mean
// defaults: Name falls back to the field name, a zero Datatype is inferred
// from the field kind, a zero Separator marks a single-valued field.
type ColumnConfig struct {
	Name        string
	PropertyURL string
	Required    bool
	Datatype    cldf.Datatype
	Separator   Separator
	Null        []string
}

type ruleKind int

const (
	ruleConfigure ruleKind = iota
	ruleOmit
	ruleRename
)

// Rule says what happens to one source field.
type Rule struct {
	kind ruleKind
	name string
	cfg  ColumnConfig
}

// Omit drops the field.
func Omit() Rule { return Rule{kind: ruleOmit} }

// RenameTo keeps the field as a plain column called name.
func RenameTo(name string) Rule { return Rule{kind: ruleRename, name: name} }

// Configure turns the field into the column described by cfg.
func Configure(cfg ColumnConfig) Rule { return Rule{kind: ruleConfigure, cfg: cfg} }

// Rules maps source field names to rules. Fields without a rule pass through
// unchanged.
type Rules map[string]Rule

// NoNull marks a column whose cells are never read as missing.
func NoNull() []string { return []string{} }
