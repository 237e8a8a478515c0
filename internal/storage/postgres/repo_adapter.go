package postgres

import (
	"context"
	"fmt"

	"dplace2cldf/internal/cldf"
	"dplace2cldf/internal/storage"
	pgddl "dplace2cldf/internal/storage/postgres/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

// wrappedRepo delegates to *Repository and adds Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("postgres", func(ctx context.Context, repo storage.Repository, fqn string, ts cldf.TableSchema) error {
		if err := pgddl.EnsureSchemaTable(ctx, repo, fqn, ts); err != nil {
			return fmt.Errorf("apply DDL: %w", err)
		}
		return nil
	})
}
