// Package dplace reads D-PLACE dataset repositories.
//
// A repository root holds one directory per dataset under datasets/. Each
// dataset directory carries up to five CSV files:
//
//	societies.csv          one row per society
//	societies_mapping.csv  cross-dataset society relations
//	variables.csv          one row per coded variable
//	codes.csv              the code book, keyed by (var_id, code)
//	data.csv               one row per coded observation
//
// Record types declare their shape through csv struct tags; FieldsOf exposes
// that shape to callers that need to map records generically.
package dplace

// Society is one row of societies.csv.
type Society struct {
	ID            string  `csv:"id"`
	XDID          string  `csv:"xd_id"`
	PrefName      string  `csv:"pref_name_for_society"`
	Glottocode    string  `csv:"glottocode"`
	OrigNameAndID string  `csv:"ORIG_name_and_ID_in_this_dataset"`
	AltNames      string  `csv:"alt_names_by_society"`
	MainFocalYear string  `csv:"main_focal_year"`
	HRAFNameID    string  `csv:"HRAF_name_ID"`
	HRAFLink      string  `csv:"HRAF_link"`
	OrigLat       float64 `csv:"origLat"`
	OrigLong      float64 `csv:"origLong"`
	Lat           float64 `csv:"Lat"`
	Long          float64 `csv:"Long"`
	Comment       string  `csv:"Comment"`
}

// SocietyRelation is one row of societies_mapping.csv. Related is the raw
// "; "-delimited list of related societies.
type SocietyRelation struct {
	ID      string `csv:"id"`
	Related string `csv:"related"`
}

// Variable is one row of variables.csv together with its code book.
type Variable struct {
	Category   string `csv:"category"`
	ID         string `csv:"id"`
	Title      string `csv:"title"`
	Definition string `csv:"definition"`
	Type       string `csv:"type"`
	Source     string `csv:"source"`
	Changes    string `csv:"changes"`
	Notes      string `csv:"notes"`
	Codes      []Code `csv:"codes"`
}

// Code is one row of codes.csv.
type Code struct {
	VarID       string `csv:"var_id"`
	Code        string `csv:"code"`
	Description string `csv:"description"`
	Name        string `csv:"name"`
}

// Datum is one coded observation, a row of data.csv.
type Datum struct {
	SocID           string `csv:"soc_id"`
	SubCase         string `csv:"sub_case"`
	Year            string `csv:"year"`
	VarID           string `csv:"var_id"`
	Code            string `csv:"code"`
	Comment         string `csv:"comment"`
	References      string `csv:"references"`
	SourceCodedData string `csv:"source_coded_data"`
	AdminComment    string `csv:"admin_comment"`
}

// Records groups the record sequences of one dataset.
type Records struct {
	Societies []Society
	Relations []SocietyRelation
	Variables []Variable
	Data      []Datum
}

// Dataset is one loaded D-PLACE dataset. All sequences keep file order.
type Dataset struct {
	id  string
	dir string
	rec Records
}

// NewDataset returns a dataset holding rec under the given identifier.
func NewDataset(id string, rec Records) *Dataset {
	return &Dataset{id: id, rec: rec}
}

func (d *Dataset) ID() string                          { return d.id }
func (d *Dataset) Dir() string                         { return d.dir }
func (d *Dataset) Societies() []Society                { return d.rec.Societies }
func (d *Dataset) SocietyRelations() []SocietyRelation { return d.rec.Relations }
func (d *Dataset) Variables() []Variable               { return d.rec.Variables }
func (d *Dataset) Data() []Datum                       { return d.rec.Data }

func (d *Dataset) String() string { return "dplace.Dataset(" + d.id + ")" }
