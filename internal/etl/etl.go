// Package etl drives the conversion of a D-PLACE repository into CLDF
// StructureDatasets: read each dataset, run the converters, write, validate
// and optionally export the result.
package etl

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"os"
	"path/filepath"
	"time"

	"dplace2cldf/internal/cldf"
	"dplace2cldf/internal/convert"
	"dplace2cldf/internal/dplace"
	"dplace2cldf/internal/errs"
	"dplace2cldf/internal/export"
	"dplace2cldf/internal/logging"
	"dplace2cldf/internal/metrics"
)

// Writer receives the tables of one dataset. *cldf.StructureDataset
// implements it.
type Writer interface {
	AddTable(t cldf.Table, cols ...cldf.Column) error
	Write(rows map[string]iter.Seq[cldf.Row]) (cldf.Report, error)
	Validate() error
}

var _ Writer = (*cldf.StructureDataset)(nil)

// Steps of a dataset conversion, as reported to metrics.
const (
	StepRead     = "read"
	StepConvert  = "convert"
	StepWrite    = "write"
	StepValidate = "validate"
	StepExport   = "export"
)

type observeFn func(step string, err error, d time.Duration)

// ConvertDataset runs converters over ds in order, skipping those whose Skip
// reports true, registers their tables with w, writes every table at once
// and validates the result. A validation failure is returned as an error.
func ConvertDataset(ds *dplace.Dataset, w Writer, converters []convert.Converter) (cldf.Report, error) {
	return convertDataset(ds, w, converters, func(string, error, time.Duration) {})
}

func convertDataset(ds *dplace.Dataset, w Writer, converters []convert.Converter, observe observeFn) (cldf.Report, error) {
	log := logging.L().With("dataset", ds.ID())

	start := time.Now()
	tables := map[string]iter.Seq[cldf.Row]{}
	err := func() error {
		for _, c := range converters {
			if c.Skip(ds) {
				log.Debug("etl: converter skipped", "converter", c.Name())
				continue
			}
			schema, rows, err := c.Convert(ds)
			if err != nil {
				return fmt.Errorf("%s: %w", c.Name(), err)
			}
			if err := w.AddTable(schema.Table, schema.Columns...); err != nil {
				return fmt.Errorf("%s: %w", c.Name(), err)
			}
			maps.Copy(tables, rows)
		}
		return nil
	}()
	observe(StepConvert, err, time.Since(start))
	if err != nil {
		return cldf.Report{}, err
	}

	start = time.Now()
	rep, err := w.Write(tables)
	observe(StepWrite, err, time.Since(start))
	if err != nil {
		return cldf.Report{}, err
	}
	for _, t := range rep.Tables {
		log.Debug("etl: table written", "table", t.URL, "rows", t.Rows, "digest", t.Digest)
	}

	start = time.Now()
	err = w.Validate()
	observe(StepValidate, err, time.Since(start))
	if err != nil {
		return rep, err
	}
	return rep, nil
}

// Options configure a Run.
type Options struct {
	// Job labels metrics.
	Job        string
	SourceRoot string
	TargetRoot string
	// Export loads every validated dataset into a database when Kind is set.
	Export export.Config
	// Converters default to convert.Registry().
	Converters []convert.Converter
}

// DatasetResult describes one converted dataset.
type DatasetResult struct {
	ID     string
	Dir    string
	Report cldf.Report
	Export *export.Result
}

// Result lists the converted datasets in processing order.
type Result struct {
	Datasets []DatasetResult
}

// Run converts every dataset below opts.SourceRoot into its own directory
// below opts.TargetRoot. The first error aborts the run; datasets converted
// before it stay on disk and are listed in the result.
func Run(ctx context.Context, opts Options) (Result, error) {
	const op = "etl.run"
	var res Result

	converters := opts.Converters
	if converters == nil {
		var err error
		if converters, err = convert.Registry(); err != nil {
			return res, err
		}
	}
	repo, err := dplace.Open(opts.SourceRoot)
	if err != nil {
		return res, err
	}
	if err := os.MkdirAll(opts.TargetRoot, 0o755); err != nil {
		return res, errs.E(op, errs.KindIO, opts.TargetRoot, err)
	}

	log := logging.L()
	log.Info("etl: run started", "source", opts.SourceRoot, "target", opts.TargetRoot)
	observe := func(step string, err error, d time.Duration) {
		metrics.RecordStep(opts.Job, step, err, d)
	}

	start := time.Now()
	for ds, err := range repo.Datasets() {
		observe(StepRead, err, time.Since(start))
		if err != nil {
			metrics.RecordDatasets(opts.Job, metrics.StatusFailure)
			log.Error("etl: dataset unreadable", "err", err)
			return res, err
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		dr, err := runDataset(ctx, ds, opts, converters, observe)
		if err != nil {
			metrics.RecordDatasets(opts.Job, metrics.StatusFailure)
			log.Error("etl: dataset failed", "dataset", ds.ID(), "err", err)
			return res, fmt.Errorf("dataset %s: %w", ds.ID(), err)
		}
		metrics.RecordDatasets(opts.Job, metrics.StatusValidated)
		res.Datasets = append(res.Datasets, dr)
		start = time.Now()
	}
	log.Info("etl: run finished", "datasets", len(res.Datasets))
	return res, nil
}

func runDataset(ctx context.Context, ds *dplace.Dataset, opts Options,
	converters []convert.Converter, observe observeFn) (DatasetResult, error) {
	id := ds.ID()
	log := logging.L().With("dataset", id)

	dir := filepath.Join(opts.TargetRoot, id)
	target := cldf.NewStructureDataset(dir)
	rep, err := convertDataset(ds, target, converters, observe)
	if err != nil {
		return DatasetResult{}, err
	}
	rows := 0
	for _, t := range rep.Tables {
		metrics.RecordRows(opts.Job, t.URL, t.Rows)
		rows += t.Rows
	}
	log.Info("etl: dataset converted", "dir", dir, "tables", len(rep.Tables), "rows", rows)

	dr := DatasetResult{ID: id, Dir: dir, Report: rep}
	if opts.Export.Kind == "" {
		return dr, nil
	}
	start := time.Now()
	exp, err := export.Export(ctx, target, id, opts.Export)
	observe(StepExport, err, time.Since(start))
	if err != nil {
		return dr, err
	}
	dr.Export = &exp
	log.Info("etl: dataset exported", "kind", opts.Export.Kind, "rows", exp.Rows())
	return dr, nil
}
