package storage

import (
	"context"
	"fmt"
	"sync"

	"dplace2cldf/internal/cldf"
)

// DDLBootstrapper creates table fqn for a CLDF table schema using the
// backend's dialect. It must be idempotent.
type DDLBootstrapper func(ctx context.Context, repo Repository, fqn string, ts cldf.TableSchema) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL adds or replaces the bootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable creates fqn with the bootstrapper registered for kind.
func EnsureTable(ctx context.Context, kind string, repo Repository, fqn string, ts cldf.TableSchema) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, fqn, ts)
}
