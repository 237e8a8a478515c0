package cldf

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"dplace2cldf/internal/errs"
)

// TableReport summarizes one written table.
type TableReport struct {
	ID     string
	URL    string
	Rows   int
	Digest string // xxh3-64 of the written CSV bytes, hex
}

// Report summarizes a Write call, one entry per table in registration order.
type Report struct {
	Tables []TableReport
}

// Table returns the report of the table with the given id or url.
func (r Report) Table(key string) (TableReport, bool) {
	for _, t := range r.Tables {
		if t.ID == key || t.URL == key {
			return t, true
		}
	}
	return TableReport{}, false
}

// Write serializes every registered table and the metadata document to the
// dataset directory. rows maps table ids to their row sequences; a registered
// table without rows is written with its header only. Each sequence is
// consumed exactly once.
func (d *StructureDataset) Write(rows map[string]iter.Seq[Row]) (Report, error) {
	const op = "cldf.write"

	for id := range rows {
		if _, ok := d.TableSchema(id); !ok {
			return Report{}, errs.Errorf(op, errs.KindSchema, d.dir, "rows given for unregistered table %s", id)
		}
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return Report{}, errs.E(op, errs.KindIO, d.dir, err)
	}

	var rep Report
	for _, ts := range d.tables {
		seq := rows[ts.Table.ID()]
		if seq == nil {
			seq = rows[ts.Table.URL]
		}
		tr, err := d.writeTable(ts, seq)
		if err != nil {
			return Report{}, err
		}
		rep.Tables = append(rep.Tables, tr)
	}

	if err := d.writeMetadata(); err != nil {
		return Report{}, err
	}
	return rep, nil
}

func (d *StructureDataset) writeTable(ts TableSchema, seq iter.Seq[Row]) (TableReport, error) {
	const op = "cldf.write"
	path := filepath.Join(d.dir, ts.Table.URL)
	f, err := os.Create(path)
	if err != nil {
		return TableReport{}, errs.E(op, errs.KindIO, path, err)
	}
	defer f.Close()

	h := xxh3.New()
	w := csv.NewWriter(io.MultiWriter(f, h))
	if err := w.Write(ts.ColumnNames()); err != nil {
		return TableReport{}, errs.E(op, errs.KindIO, path, err)
	}

	n := 0
	if seq != nil {
		record := make([]string, len(ts.Columns))
		for row := range seq {
			n++
			if err := checkRowKeys(ts, row); err != nil {
				return TableReport{}, errs.E(op, errs.KindSchema, path, fmt.Errorf("row %d: %w", n, err))
			}
			for i, col := range ts.Columns {
				cell, err := formatCell(col, row[col.Name])
				if err != nil {
					return TableReport{}, errs.E(op, errs.KindSchema, path, fmt.Errorf("row %d: column %s: %w", n, col.Name, err))
				}
				record[i] = cell
			}
			if err := w.Write(record); err != nil {
				return TableReport{}, errs.E(op, errs.KindIO, path, err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return TableReport{}, errs.E(op, errs.KindIO, path, err)
	}
	if err := f.Close(); err != nil {
		return TableReport{}, errs.E(op, errs.KindIO, path, err)
	}

	return TableReport{
		ID:     ts.Table.ID(),
		URL:    ts.Table.URL,
		Rows:   n,
		Digest: fmt.Sprintf("%016x", h.Sum64()),
	}, nil
}

func checkRowKeys(ts TableSchema, row Row) error {
	var unknown []string
	for k := range row {
		if _, ok := ts.Column(k); !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("unknown column(s) %s", strings.Join(unknown, ", "))
}

// formatCell renders one value the way it is stored in the CSV file.
func formatCell(col Column, v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []string:
		if col.Separator == "" {
			return "", fmt.Errorf("list value for a column without separator")
		}
		return strings.Join(x, col.Separator), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

func (d *StructureDataset) writeMetadata() error {
	path := filepath.Join(d.dir, MetadataFile)
	b, err := json.MarshalIndent(newMetadata(d.tables), "", "    ")
	if err != nil {
		return errs.E("cldf.write", errs.KindSchema, path, err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return errs.E("cldf.write", errs.KindIO, path, err)
	}
	return nil
}
