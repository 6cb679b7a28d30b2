package database

import (
	"database/sql"
	"fmt"

	"neo_explorer/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the SQLite staging store holding parsed NEO and close-approach rows.
// Rows read back are unlinked; they are linked by NewNEODatabase like file-loaded records.
type DB struct {
	db *sql.DB
}

// New creates and initializes a new database connection
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer, and PRAGMAs below are per connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := optimizeSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to optimize database: %w", err)
	}

	database := &DB{db: db}

	if err := database.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// optimizeSQLite tunes SQLite for large one-shot bulk imports
func optimizeSQLite(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		// 64MB page cache, held in RAM
		"PRAGMA cache_size=-64000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA busy_timeout=5000",
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// NEORepository returns the repository for staged NEO rows
func (d *DB) NEORepository() NEORepository {
	return NewNEORepository(d.db)
}

// ApproachRepository returns the repository for staged close-approach rows
func (d *DB) ApproachRepository() ApproachRepository {
	return NewApproachRepository(d.db)
}

// IsPopulated reports whether a staged import ran to completion.
// Rows left behind by an interrupted import do not count.
func (d *DB) IsPopulated() (bool, error) {
	var count int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM import_meta WHERE id = 1`).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to read import marker: %w", err)
	}
	return count > 0, nil
}

// MarkComplete records a finished import. It must be the last write of an import.
func (d *DB) MarkComplete(neos, approaches int) error {
	_, err := d.db.Exec(
		`INSERT OR REPLACE INTO import_meta (id, neos, approaches, completed_at) VALUES (1, ?, ?, CURRENT_TIMESTAMP)`,
		neos, approaches,
	)
	if err != nil {
		return fmt.Errorf("failed to write import marker: %w", err)
	}
	return nil
}

// Reset deletes every staged row and the import marker in a single transaction
func (d *DB) Reset() error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"import_meta", "approaches", "neos"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// LoadAll reads back every staged NEO and approach, unlinked
func (d *DB) LoadAll() ([]*models.NearEarthObject, []*models.CloseApproach, error) {
	neos, err := d.NEORepository().LoadAll()
	if err != nil {
		return nil, nil, err
	}
	approaches, err := d.ApproachRepository().LoadAll()
	if err != nil {
		return nil, nil, err
	}
	return neos, approaches, nil
}

// initSchema creates the database schema if it doesn't exist
func (d *DB) initSchema() error {
	neosSchema := `CREATE TABLE IF NOT EXISTS neos (
		designation TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		diameter REAL,
		hazardous INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	approachesSchema := `CREATE TABLE IF NOT EXISTS approaches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		designation TEXT NOT NULL,
		time TIMESTAMP NOT NULL,
		distance REAL NOT NULL,
		velocity REAL NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	metaSchema := `CREATE TABLE IF NOT EXISTS import_meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		neos INTEGER NOT NULL,
		approaches INTEGER NOT NULL,
		completed_at TIMESTAMP NOT NULL
	);`

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_neos_name ON neos(name)`,
		`CREATE INDEX IF NOT EXISTS idx_approaches_designation ON approaches(designation)`,
	}

	if _, err := d.db.Exec(neosSchema); err != nil {
		return fmt.Errorf("failed to create neos table: %w", err)
	}

	if _, err := d.db.Exec(approachesSchema); err != nil {
		return fmt.Errorf("failed to create approaches table: %w", err)
	}

	if _, err := d.db.Exec(metaSchema); err != nil {
		return fmt.Errorf("failed to create import_meta table: %w", err)
	}

	for _, idx := range indexes {
		if _, err := d.db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
