package cldf

// Namespace is the CLDF ontology namespace; every term below lives in it.
const Namespace = "http://cldf.clld.org/v1.0/terms.rdf#"

// Module and component terms.
const (
	StructureDatasetTerm = Namespace + "StructureDataset"
	LanguageTable        = Namespace + "LanguageTable"
	ParameterTable       = Namespace + "ParameterTable"
	CodeTable            = Namespace + "CodeTable"
	ValueTable           = Namespace + "ValueTable"
)

// Property terms used as column propertyUrl values.
const (
	TermID                 = Namespace + "id"
	TermName               = Namespace + "name"
	TermDescription        = Namespace + "description"
	TermComment            = Namespace + "comment"
	TermSource             = Namespace + "source"
	TermGlottocode         = Namespace + "glottocode"
	TermLatitude           = Namespace + "latitude"
	TermLongitude          = Namespace + "longitude"
	TermLanguageReference  = Namespace + "languageReference"
	TermParameterReference = Namespace + "parameterReference"
	TermCodeReference      = Namespace + "codeReference"
)

// MetadataFile is the file name of the CSVW metadata written next to the tables.
const MetadataFile = "StructureDataset-metadata.json"
