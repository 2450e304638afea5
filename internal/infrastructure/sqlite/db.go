// Package sqlite provides SQLite-backed persistence for registry sessions.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"pitcrew/internal/log"
	"pitcrew/internal/session/domain"
)

// Schema bootstraps the sessions table. One session per registry URL.
const Schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	guid TEXT NOT NULL UNIQUE,
	registry_url TEXT NOT NULL UNIQUE,
	username TEXT,
	token TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// OpenRepository opens (creating if necessary) the session database at dbPath
// and returns a domain.Repository backed by it.
func OpenRepository(dbPath string) (domain.Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating session db directory: %w", err)
	}

	log.Debug(log.CatDB, "Opening session database", "path", dbPath)
	db, err := sql.Open("sqlite3", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging session database: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrapping session schema: %w", err)
	}

	log.Info(log.CatDB, "Session database ready", "path", dbPath)
	return newSessionRepository(db), nil
}

// NewRepositoryWithDB wraps an existing database handle. The caller keeps
// ownership of db lifecycle only until Close is called on the repository.
func NewRepositoryWithDB(db *sql.DB) domain.Repository {
	return newSessionRepository(db)
}
