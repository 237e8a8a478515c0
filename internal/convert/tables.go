package convert

import (
	"fmt"
	"iter"

	"dplace2cldf/internal/cldf"
	"dplace2cldf/internal/dplace"
	"dplace2cldf/internal/errs"
)

// Table file names.
const (
	SocietiesURL = "societies.csv"
	RelationsURL = "societies_mapping.csv"
	VariablesURL = "variables.csv"
	CodesURL     = "codes.csv"
	DataURL      = "data.csv"
)

// codeDatatype is shared by codes.csv and data.csv. The unescaped dot is
// deliberate: upstream data (MODIS/data.csv:5884) relies on it.
var codeDatatype = cldf.Pattern(`-?\d+(?:.\d+)?(?:E[+-]\d+)?|NA`)

var languageDef = cldf.Table{
	URL:        SocietiesURL,
	ConformsTo: cldf.LanguageTable,
	PrimaryKey: []string{"id"},
}

var languageRules = Rules{
	"id": Configure(ColumnConfig{PropertyURL: cldf.TermID, Required: true}),
	"xd_id": Configure(ColumnConfig{
		Required: true,
		Datatype: cldf.Pattern(`xd\d+`),
	}),
	"pref_name_for_society":            Configure(ColumnConfig{PropertyURL: cldf.TermName, Required: true}),
	"glottocode":                       Configure(ColumnConfig{PropertyURL: cldf.TermGlottocode, Required: true}),
	"ORIG_name_and_ID_in_this_dataset": Configure(ColumnConfig{Required: true}),
	"alt_names_by_society":             Configure(ColumnConfig{Separator: CommaList}),
	"main_focal_year": Configure(ColumnConfig{
		Datatype: cldf.Base("integer"),
		Null:     []string{"NA"},
	}),
	"HRAF_name_ID": Configure(ColumnConfig{Datatype: cldf.Pattern(`.+ \([^)]+\)`)}),
	"HRAF_link":    Configure(ColumnConfig{Datatype: cldf.Pattern(`http://.+|in process`)}),
	"origLat": Configure(ColumnConfig{
		Datatype: cldf.Bounded("decimal", -90, 90),
		Required: true,
	}),
	// Widened to -190: EA/societies.csv:1279 carries an out-of-range
	// original longitude.
	"origLong": Configure(ColumnConfig{
		Datatype: cldf.Bounded("decimal", -190, 180),
		Required: true,
	}),
	"Lat": Configure(ColumnConfig{
		PropertyURL: cldf.TermLatitude,
		Datatype:    cldf.Bounded("decimal", -90, 90),
		Required:    true,
	}),
	"Long": Configure(ColumnConfig{
		PropertyURL: cldf.TermLongitude,
		Datatype:    cldf.Bounded("decimal", -180, 180),
		Required:    true,
	}),
	"Comment": Configure(ColumnConfig{PropertyURL: cldf.TermComment}),
}

// NewLanguageTable converts societies into the LanguageTable. Skipped when a
// dataset has no societies.
func NewLanguageTable() (Converter, error) {
	t, err := newTable("LanguageTable", languageDef, dplace.FieldsOf[dplace.Society](), languageRules,
		(*dplace.Dataset).Societies, true)
	if err != nil {
		return nil, err
	}
	return t, nil
}

var relatedDef = cldf.Table{
	URL:        RelationsURL,
	PrimaryKey: []string{"id"},
	ForeignKeys: []cldf.ForeignKey{
		{Column: "id", Resource: SocietiesURL, ResourceColumn: "id"},
	},
}

var relatedRules = Rules{
	"id":      Configure(ColumnConfig{PropertyURL: cldf.TermID, Required: true}),
	"related": Configure(ColumnConfig{Separator: SemicolonJoined}),
}

// NewLanguageRelatedTable converts society relations into
// societies_mapping.csv. Skipped when a dataset has no relations.
func NewLanguageRelatedTable() (Converter, error) {
	t, err := newTable("LanguageRelatedTable", relatedDef, dplace.FieldsOf[dplace.SocietyRelation](), relatedRules,
		(*dplace.Dataset).SocietyRelations, true)
	if err != nil {
		return nil, err
	}
	return t, nil
}

var parameterDef = cldf.Table{
	URL:        VariablesURL,
	ConformsTo: cldf.ParameterTable,
	PrimaryKey: []string{"id"},
}

var parameterRules = Rules{
	"id": Configure(ColumnConfig{PropertyURL: cldf.TermID, Required: true}),
	"category": Configure(ColumnConfig{
		Separator: CommaJoined,
		Required:  true,
	}),
	"title":      Configure(ColumnConfig{PropertyURL: cldf.TermName, Required: true}),
	"definition": Configure(ColumnConfig{PropertyURL: cldf.TermDescription}),
	"type": Configure(ColumnConfig{
		Datatype: cldf.Pattern(`Categorical|Ordinal|Continuous`),
		Required: true,
	}),
	"source": Configure(ColumnConfig{PropertyURL: cldf.TermSource}),
	"notes":  Configure(ColumnConfig{PropertyURL: cldf.TermComment}),
	"codes":  Omit(),
}

// NewParameterTable converts variables into the ParameterTable. Never skipped.
func NewParameterTable() (Converter, error) {
	t, err := newTable("ParameterTable", parameterDef, dplace.FieldsOf[dplace.Variable](), parameterRules,
		(*dplace.Dataset).Variables, false)
	if err != nil {
		return nil, err
	}
	return t, nil
}

var codeDef = cldf.Table{
	URL:        CodesURL,
	ConformsTo: cldf.CodeTable,
	PrimaryKey: []string{"var_id", "code"},
	ForeignKeys: []cldf.ForeignKey{
		{Column: "var_id", Resource: VariablesURL, ResourceColumn: "id"},
	},
}

// codeFields is the record shape codes.csv is built from.
var codeFields = []string{"var_id", "code", "description", "name"}

var codeRules = Rules{
	"var_id": Configure(ColumnConfig{PropertyURL: cldf.TermParameterReference, Required: true}),
	"code": Configure(ColumnConfig{
		Datatype: codeDatatype,
		Required: true,
	}),
	"description": Configure(ColumnConfig{PropertyURL: cldf.TermDescription}),
	"name":        Configure(ColumnConfig{PropertyURL: cldf.TermName, Required: true}),
}

// codeTable fails instead of emitting an empty table when run on a dataset
// without codes.
type codeTable struct {
	*table[dplace.Code]
}

func (t codeTable) Convert(ds *dplace.Dataset) (Schema, map[string]iter.Seq[cldf.Row], error) {
	if len(t.records(ds)) == 0 {
		return Schema{}, nil, errs.Errorf("convert.code_table", errs.KindDataShape, ds.Dir(),
			"dataset %s has no codes", ds.ID())
	}
	return t.table.Convert(ds)
}

// NewCodeTable converts the code books of all variables into the CodeTable.
// Skipped when a dataset has no codes.
func NewCodeTable() (Converter, error) {
	fields, err := pickFields(dplace.FieldsOf[dplace.Code](), codeFields)
	if err != nil {
		return nil, err
	}
	t, err := newTable("CodeTable", codeDef, fields, codeRules, (*dplace.Dataset).Codes, true)
	if err != nil {
		return nil, err
	}
	return codeTable{t}, nil
}

// pickFields returns the named fields of all, in the order of names.
func pickFields(all []dplace.Field, names []string) ([]dplace.Field, error) {
	out := make([]dplace.Field, 0, len(names))
	for _, n := range names {
		found := false
		for _, f := range all {
			if f.Name == n {
				out = append(out, f)
				found = true
				break
			}
		}
		if !found {
			return nil, errs.Errorf("convert.fields", errs.KindSchema, "", "record has no field %q", n)
		}
	}
	return out, nil
}

var valueDef = cldf.Table{
	URL:        DataURL,
	ConformsTo: cldf.ValueTable,
	PrimaryKey: []string{"id"},
}

// valueIDColumn is the synthesized leading column of data.csv.
var valueIDColumn = cldf.Column{
	Name:        "id",
	PropertyURL: cldf.TermID,
	Required:    true,
	Datatype:    cldf.Base("integer"),
}

var valueRules = Rules{
	"soc_id": Configure(ColumnConfig{PropertyURL: cldf.TermLanguageReference, Required: true}),
	"sub_case": Configure(ColumnConfig{
		Null:     NoNull(),
		Required: true,
	}),
	"year": Configure(ColumnConfig{
		Datatype: cldf.Pattern(`-?\d+(?:-\d+)?|(?:NA)?`),
		Null:     NoNull(),
		Required: true,
	}),
	"var_id": Configure(ColumnConfig{PropertyURL: cldf.TermParameterReference, Required: true}),
	"code": Configure(ColumnConfig{
		PropertyURL: cldf.TermCodeReference,
		Datatype:    codeDatatype,
		Required:    true,
	}),
	"comment": Configure(ColumnConfig{PropertyURL: cldf.TermComment}),
	"references": Configure(ColumnConfig{
		PropertyURL: cldf.TermSource,
		Separator:   SemicolonJoined,
		Null:        NoNull(),
		Required:    true,
	}),
}

// foreignKeysFor returns the foreign keys of data.csv. The reference to
// societies.csv exists only when that table is emitted.
func foreignKeysFor(hasLanguageTable bool) []cldf.ForeignKey {
	if !hasLanguageTable {
		return nil
	}
	return []cldf.ForeignKey{
		{Column: "soc_id", Resource: SocietiesURL, ResourceColumn: "id"},
	}
}

// valueTable numbers observations and drops the societies reference when
// the language table is skipped.
type valueTable struct {
	*table[dplace.Datum]
	languages Converter
}

func (t valueTable) Convert(ds *dplace.Dataset) (Schema, map[string]iter.Seq[cldf.Row], error) {
	schema := t.schema()
	schema.Table.ForeignKeys = foreignKeysFor(!t.languages.Skip(ds))
	schema.Columns = append([]cldf.Column{valueIDColumn}, schema.Columns...)

	rows := func(yield func(cldf.Row) bool) {
		for i, d := range t.records(ds) {
			row := t.extract(d)
			row[valueIDColumn.Name] = i + 1
			if !yield(row) {
				return
			}
		}
	}
	return schema, map[string]iter.Seq[cldf.Row]{t.def.ID(): rows}, nil
}

// NewValueTable converts observations into the ValueTable. Never skipped.
// languages decides whether data.csv references societies.csv.
func NewValueTable(languages Converter) (Converter, error) {
	if languages == nil {
		return nil, fmt.Errorf("convert: value table needs the language table converter")
	}
	t, err := newTable("ValueTable", valueDef, dplace.FieldsOf[dplace.Datum](), valueRules,
		(*dplace.Dataset).Data, false)
	if err != nil {
		return nil, err
	}
	return valueTable{table: t, languages: languages}, nil
}
