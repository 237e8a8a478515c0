package dplace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"golang.org/x/text/unicode/norm"

	"dplace2cldf/internal/errs"
)

const utf8BOM = "\uFEFF"

// readTable parses the CSV file at path into records of type T. Columns are
// matched to T's declared fields by header name; extra columns are ignored.
// A missing file yields no records.
func readTable[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.E("dplace.read", errs.KindIO, path, err)
	}
	defer f.Close()

	out, err := decodeTable[T](f)
	if err != nil {
		var e *errs.Error
		if errors.As(err, &e) {
			e.Path = path
			return nil, e
		}
		return nil, errs.E("dplace.read", errs.KindDataShape, path, err)
	}
	return out, nil
}

// decodeTable reads a header row followed by data rows from r.
func decodeTable[T any](r io.Reader) ([]T, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = stripHeaderBOM(header)

	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[h] = i
	}

	type binding struct {
		field Field
		col   int
	}
	var bindings []binding
	var missing []string
	for _, fld := range FieldsOf[T]() {
		if fld.Kind == KindNested {
			continue
		}
		ix, ok := pos[fld.Name]
		if !ok {
			missing = append(missing, fld.Name)
			continue
		}
		bindings = append(bindings, binding{field: fld, col: ix})
	}
	if len(missing) > 0 {
		return nil, errs.Errorf("dplace.read", errs.KindDataShape, "",
			"missing column(s) %s", strings.Join(missing, ", "))
	}

	var out []T
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("parse line %d: %w", line, err)
		}
		if len(rec) != len(header) {
			return nil, errs.Errorf("dplace.read", errs.KindDataShape, "",
				"line %d: expected %d fields, got %d", line, len(header), len(rec))
		}

		var v T
		rv := reflect.ValueOf(&v).Elem()
		for _, b := range bindings {
			cell := norm.NFC.String(rec[b.col])
			if err := b.field.set(rv, cell); err != nil {
				return nil, errs.Errorf("dplace.read", errs.KindDataShape, "",
					"line %d: column %s: %q is not a %s", line, b.field.Name, cell, b.field.Kind)
			}
		}
		out = append(out, v)
	}
}

// stripHeaderBOM removes a UTF-8 BOM from the first header cell if present.
func stripHeaderBOM(headers []string) []string {
	if len(headers) == 0 {
		return headers
	}
	headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	return headers
}
