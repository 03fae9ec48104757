// Package database persists per-file download counters in SQLite so counts
// survive a server restart. The in-memory tracker stays authoritative while
// the process runs; this store is loaded once at startup and written behind a
// small batching buffer.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// Open opens the SQLite database at the given path and initializes the schema
// if needed.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer; SQLite serializes writes anyway.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(5 * time.Minute)

	// WAL allows a reader to coexist with the writer.
	if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Wait and retry instead of failing immediately with SQLITE_BUSY.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := conn.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	if err := runMigrations(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// RecordDownload increments the persisted counter for name by one.
func (db *DB) RecordDownload(name string) error {
	return db.AddDownloads(name, 1)
}

// AddDownloads increments the persisted counter for name by n. Used by the
// write buffer to flush batched increments.
func (db *DB) AddDownloads(name string, n int64) error {
	_, err := db.conn.Exec(`
		INSERT INTO file_stats (name, count) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET count = count + excluded.count
	`, name, n)
	if err != nil {
		return fmt.Errorf("failed to record download of %s: %w", name, err)
	}
	return nil
}

// FileCounts returns every persisted download counter, for seeding the
// in-memory tracker at startup.
func (db *DB) FileCounts() (map[string]int64, error) {
	rows, err := db.conn.Query("SELECT name, count FROM file_stats")
	if err != nil {
		return nil, fmt.Errorf("failed to load file counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("failed to scan file count: %w", err)
		}
		counts[name] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate file counts: %w", err)
	}

	return counts, nil
}
