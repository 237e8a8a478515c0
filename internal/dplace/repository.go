package dplace

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"dplace2cldf/internal/errs"
)

// File names inside a dataset directory.
const (
	SocietiesFile  = "societies.csv"
	RelationsFile  = "societies_mapping.csv"
	VariablesFile  = "variables.csv"
	CodesFile      = "codes.csv"
	DataFile       = "data.csv"
	datasetsSubdir = "datasets"
)

// Repository is a D-PLACE repository rooted at a directory that contains a
// datasets/ subdirectory.
type Repository struct {
	root string
}

// Open returns the repository at root. It fails if root has no datasets/
// directory.
func Open(root string) (*Repository, error) {
	dir := filepath.Join(root, datasetsSubdir)
	st, err := os.Stat(dir)
	if err != nil {
		return nil, errs.E("dplace.open", errs.KindIO, dir, err)
	}
	if !st.IsDir() {
		return nil, errs.Errorf("dplace.open", errs.KindIO, dir, "not a directory")
	}
	return &Repository{root: root}, nil
}

// IDs lists the dataset identifiers in lexical order.
func (r *Repository) IDs() ([]string, error) {
	dir := filepath.Join(r.root, datasetsSubdir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.E("dplace.list", errs.KindIO, dir, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

// Datasets yields every dataset in lexical identifier order, loading each one
// only when the iteration reaches it. Iteration stops after the first error,
// which names the dataset that failed to load.
func (r *Repository) Datasets() iter.Seq2[*Dataset, error] {
	return func(yield func(*Dataset, error) bool) {
		ids, err := r.IDs()
		if err != nil {
			yield(nil, err)
			return
		}
		for _, id := range ids {
			ds, err := r.Dataset(id)
			if err != nil {
				yield(nil, fmt.Errorf("dataset %s: %w", id, err))
				return
			}
			if !yield(ds, nil) {
				return
			}
		}
	}
}

// Dataset loads the dataset with the given identifier.
func (r *Repository) Dataset(id string) (*Dataset, error) {
	dir := filepath.Join(r.root, datasetsSubdir, id)
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return nil, errs.Errorf("dplace.dataset", errs.KindIO, dir, "no such dataset %q", id)
	}

	var (
		rec Records
		err error
	)
	if rec.Societies, err = readTable[Society](filepath.Join(dir, SocietiesFile)); err != nil {
		return nil, err
	}
	if rec.Relations, err = readTable[SocietyRelation](filepath.Join(dir, RelationsFile)); err != nil {
		return nil, err
	}
	if rec.Variables, err = readTable[Variable](filepath.Join(dir, VariablesFile)); err != nil {
		return nil, err
	}
	codes, err := readTable[Code](filepath.Join(dir, CodesFile))
	if err != nil {
		return nil, err
	}
	if err := attachCodes(rec.Variables, codes); err != nil {
		return nil, errs.E("dplace.dataset", errs.KindDataShape, filepath.Join(dir, CodesFile), err)
	}
	if rec.Data, err = readTable[Datum](filepath.Join(dir, DataFile)); err != nil {
		return nil, err
	}

	return &Dataset{id: id, dir: dir, rec: rec}, nil
}

// attachCodes appends each code, in file order, to the variable it belongs to.
func attachCodes(vars []Variable, codes []Code) error {
	byID := make(map[string]int, len(vars))
	for i, v := range vars {
		byID[v.ID] = i
	}
	for _, c := range codes {
		i, ok := byID[c.VarID]
		if !ok {
			return fmt.Errorf("code %q references unknown variable %q", c.Code, c.VarID)
		}
		vars[i].Codes = append(vars[i].Codes, c)
	}
	return nil
}

// Codes returns every code of every variable, in variable order.
func (d *Dataset) Codes() []Code {
	var out []Code
	for _, v := range d.rec.Variables {
		out = append(out, v.Codes...)
	}
	return out
}
