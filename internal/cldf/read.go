package cldf

import (
	"encoding/csv"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strconv"

	"dplace2cldf/internal/errs"
)

// Records yields the rows of a written table as typed cells in column order.
// Null cells are nil, integer columns yield int64, numeric columns float64,
// boolean columns bool; everything else, list columns included, is the cell
// text. Iteration stops after the first error.
func (d *StructureDataset) Records(key string) iter.Seq2[[]any, error] {
	return func(yield func([]any, error) bool) {
		ts, ok := d.TableSchema(key)
		if !ok {
			yield(nil, errs.Errorf("cldf.read", errs.KindSchema, d.dir, "no table %s", key))
			return
		}
		path := filepath.Join(d.dir, ts.Table.URL)
		f, err := os.Open(path)
		if err != nil {
			yield(nil, errs.E("cldf.read", errs.KindIO, path, err))
			return
		}
		defer f.Close()

		r := csv.NewReader(f)
		r.ReuseRecord = true
		if _, err := r.Read(); err != nil {
			if err != io.EOF {
				yield(nil, errs.E("cldf.read", errs.KindIO, path, err))
			}
			return
		}
		line := 1
		for {
			rec, err := r.Read()
			if err == io.EOF {
				return
			}
			line++
			if err == nil && len(rec) != len(ts.Columns) {
				err = fmt.Errorf("expected %d fields, got %d", len(ts.Columns), len(rec))
			}
			if err != nil {
				yield(nil, errs.E("cldf.read", errs.KindDataShape, path, fmt.Errorf("line %d: %w", line, err)))
				return
			}
			out := make([]any, len(rec))
			for i, col := range ts.Columns {
				v, err := typedCell(col, rec[i])
				if err != nil {
					yield(nil, errs.E("cldf.read", errs.KindDataShape, path,
						fmt.Errorf("line %d: column %s: %w", line, col.Name, err)))
					return
				}
				out[i] = v
			}
			if !yield(out, nil) {
				return
			}
		}
	}
}

func typedCell(col Column, cell string) (any, error) {
	if col.IsNull(cell) {
		return nil, nil
	}
	if col.Separator != "" {
		return cell, nil
	}
	switch col.Datatype.Base {
	case "integer":
		return strconv.ParseInt(cell, 10, 64)
	case "decimal", "float", "double", "number":
		return strconv.ParseFloat(cell, 64)
	case "boolean":
		return strconv.ParseBool(cell)
	default:
		return cell, nil
	}
}
