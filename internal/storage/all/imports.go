// Package all links every built-in storage backend. Import it for its side
// effects:
//
//	import _ "dplace2cldf/internal/storage/all"
//
// which registers the "postgres" and "sqlite" kinds with storage.New and
// storage.EnsureTable.
package all

import (
	_ "dplace2cldf/internal/storage/postgres"
	_ "dplace2cldf/internal/storage/sqlite"
)
