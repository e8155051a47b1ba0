// Package store persists trip records, trip types and settings in a local
// sqlite database. Records are stored as JSON blobs alongside a few indexed
// columns used for listing and analytics queries; schema changes are managed
// through embedded migrations.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/commute.report/internal/config"
)

// Store wraps the sqlite handle. Callers get the full database/sql surface
// plus the typed accessors defined in this package.
type Store struct {
	*sql.DB

	historyCap int
	typeCap    int
}

// Options tunes the retention caps. Zero values fall back to the defaults.
type Options struct {
	HistoryCap int // maximum stored trips, oldest evicted beyond this
	TypeCap    int // maximum trip types
}

// Open opens (or creates) the database at path, applies the connection
// pragmas and runs all pending migrations.
func Open(path string, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %s: %w", pragma, err)
		}
	}

	s := &Store{
		DB:         db,
		historyCap: opts.HistoryCap,
		typeCap:    opts.TypeCap,
	}
	if s.historyCap <= 0 {
		s.historyCap = config.DefaultTripHistoryCap
	}
	if s.typeCap <= 0 {
		s.typeCap = config.DefaultTripTypeCap
	}

	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}
