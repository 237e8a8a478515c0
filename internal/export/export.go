// Package export loads the tables of a written CLDF dataset into a SQL
// database through the storage backends.
package export

import (
	"context"
	"path"
	"strings"
	"time"
	"unicode"

	"dplace2cldf/internal/cldf"
	"dplace2cldf/internal/errs"
	"dplace2cldf/internal/logging"
	"dplace2cldf/internal/storage"
)

// Config selects the target database.
type Config struct {
	Kind        string
	DSN         string
	TablePrefix string
	BatchSize   int
}

// TableResult reports one loaded table.
type TableResult struct {
	URL   string
	Name  string
	Rows  int64
	Taken time.Duration
}

// Result lists the loaded tables in dataset order.
type Result struct {
	Tables []TableResult
}

// Rows returns the total number of loaded rows.
func (r Result) Rows() int64 {
	var n int64
	for _, t := range r.Tables {
		n += t.Rows
	}
	return n
}

// TableName builds <prefix><dataset>_<stem of url>. Runes outside
// [A-Za-z0-9_] become '_'.
func TableName(prefix, dataset, url string) string {
	stem := strings.TrimSuffix(path.Base(url), path.Ext(url))
	return sanitize(prefix + dataset + "_" + stem)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '_'
	}, s)
}

// Export creates and fills one database table per dataset table. Existing
// rows are replaced, so re-running an export is idempotent.
func Export(ctx context.Context, ds *cldf.StructureDataset, dataset string, cfg Config) (Result, error) {
	const op = "export"
	var res Result
	if strings.TrimSpace(cfg.Kind) == "" {
		return res, errs.Errorf(op, errs.KindConfig, "", "no storage kind")
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 500
	}

	repo, err := storage.New(ctx, storage.Config{Kind: cfg.Kind, DSN: cfg.DSN})
	if err != nil {
		return res, errs.E(op, errs.KindConfig, cfg.Kind, err)
	}
	defer repo.Close()

	log := logging.L().With("dataset", dataset, "kind", cfg.Kind)
	for _, ts := range ds.Tables() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		name := TableName(cfg.TablePrefix, dataset, ts.Table.URL)
		start := time.Now()

		if err := storage.EnsureTable(ctx, cfg.Kind, repo, name, ts); err != nil {
			return res, errs.E(op, errs.KindIO, name, err)
		}
		if err := repo.Truncate(ctx, name); err != nil {
			return res, errs.E(op, errs.KindIO, name, err)
		}
		n, err := storage.LoadBatches(ctx, ts.ColumnNames(), ds.Records(ts.Table.URL), batch,
			func(ctx context.Context, cols []string, rows [][]any) (int64, error) {
				return repo.CopyFrom(ctx, name, cols, rows)
			})
		if err != nil {
			return res, errs.E(op, errs.KindIO, name, err)
		}

		tr := TableResult{URL: ts.Table.URL, Name: name, Rows: n, Taken: time.Since(start)}
		res.Tables = append(res.Tables, tr)
		log.Info("export: table loaded", "table", name, "rows", n, "took", tr.Taken.Truncate(time.Millisecond))
	}
	return res, nil
}
