// Package sqlite implements a SQLite-backed storage.Repository.
package sqlite

import (
	"strings"

	"loanetl/internal/storage"
)

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:loans.db?_pragma=busy_timeout(5000)"
	//   "loans.db"
	DSN string
}

// ConfigFrom derives a Config from cfg. An explicit DSN wins; otherwise
// cfg.Database is used as the file path.
func ConfigFrom(cfg storage.Config) Config {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		dsn = strings.TrimSpace(cfg.Database)
	}
	return Config{DSN: dsn}
}
