// Package storage holds the backend-agnostic contracts for exporting CLDF
// tables to a SQL database, a registry of backends keyed by kind, and a
// batched loader.
//
// Backends register themselves in init; import internal/storage/all to link
// every supported backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Config selects and configures a backend.
type Config struct {
	Kind string // "sqlite", "postgres"
	DSN  string
}

// Repository is a connection to one database.
type Repository interface {
	// CopyFrom bulk-inserts rows aligned to columns into table and returns the
	// number of rows inserted.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	// Truncate removes every row of table.
	Truncate(ctx context.Context, table string) error
	// Exec runs one statement, typically DDL.
	Exec(ctx context.Context, sql string) error
	Close()
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register adds or replaces the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s (registered: %s)", cfg.Kind, strings.Join(ListKinds(), ", "))
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
