// Package sqlite implements a SQLite-backed storage.Repository.
package sqlite

import "time"

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.
	//   "file:dplace.sqlite?_pragma=busy_timeout(5000)"
	//   "./cldf/dplace.sqlite"
	DSN string

	// PingTimeout bounds the initial connectivity check. Zero means 5s.
	PingTimeout time.Duration
}
