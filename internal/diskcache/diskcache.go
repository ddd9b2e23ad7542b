// Package diskcache is the on-disk compiled-program store backed by
// modernc.org/sqlite, the teacher's own SQL driver dependency. It is
// the concrete answer to spec.md §6's "An implementer MAY add
// serialization": one table keyed by the SHA-256 of the source text,
// storing bytecode.Program.Encode output alongside the originating
// source path.
package diskcache

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Uzendayo/Nuua/internal/bytecode"
)

const schema = `
CREATE TABLE IF NOT EXISTS programs (
	hash        TEXT PRIMARY KEY,
	source_path TEXT NOT NULL,
	data        BLOB NOT NULL
);
`

// Store is a sqlite-backed cache of encoded bytecode.Program values.
type Store struct {
	db *sql.DB
}

// Open creates or opens the sqlite database at path and ensures its
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("diskcache: opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("diskcache: creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get looks up a previously cached program by source hash. The bool
// return is false, with a nil error, on a clean miss.
func (s *Store) Get(hash string) (*bytecode.Program, bool, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM programs WHERE hash = ?`, hash).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("diskcache: querying %s: %w", hash, err)
	}
	prog, err := bytecode.Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("diskcache: decoding %s: %w", hash, err)
	}
	return prog, true, nil
}

// Put stores p under hash, overwriting any previous entry for the
// same hash.
func (s *Store) Put(hash, sourcePath string, p *bytecode.Program) error {
	data, err := p.Encode()
	if err != nil {
		return fmt.Errorf("diskcache: encoding program for %s: %w", hash, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO programs (hash, source_path, data) VALUES (?, ?, ?)
		 ON CONFLICT(hash) DO UPDATE SET source_path = excluded.source_path, data = excluded.data`,
		hash, sourcePath, data,
	)
	if err != nil {
		return fmt.Errorf("diskcache: storing %s: %w", hash, err)
	}
	return nil
}
