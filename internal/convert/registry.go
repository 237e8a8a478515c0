package convert

import "sync"

var registry = sync.OnceValues(func() ([]Converter, error) {
	languages, err := NewLanguageTable()
	if err != nil {
		return nil, err
	}
	related, err := NewLanguageRelatedTable()
	if err != nil {
		return nil, err
	}
	parameters, err := NewParameterTable()
	if err != nil {
		return nil, err
	}
	codes, err := NewCodeTable()
	if err != nil {
		return nil, err
	}
	values, err := NewValueTable(languages)
	if err != nil {
		return nil, err
	}
	return []Converter{languages, related, parameters, codes, values}, nil
})

// Registry returns the converters in table creation order. The list is built
// on first use; callers get their own copy.
func Registry() ([]Converter, error) {
	convs, err := registry()
	if err != nil {
		return nil, err
	}
	return append([]Converter(nil), convs...), nil
}
