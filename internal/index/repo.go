package index

import (
	"database/sql"
	"errors"
	"fmt"
	"path"
	"time"
)

// UpsertFile inserts or replaces a file row and its outgoing local-file
// references within a transaction.
func (db *DB) UpsertFile(filePath, checksum string, refs []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO files (path, base, checksum, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			base       = excluded.base,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, filePath, path.Base(filePath), checksum, time.Now())
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}

	// Replace refs: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM refs WHERE source = ?`, filePath)
	if len(refs) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO refs (source, target) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare ref insert: %w", err)
		}
		defer stmt.Close()
		for _, target := range refs {
			if _, err := stmt.Exec(filePath, target); err != nil {
				return fmt.Errorf("index: insert ref: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteFile removes a file row and its outgoing references.
func (db *DB) DeleteFile(filePath string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM refs WHERE source = ?`, filePath)
	_, _ = tx.Exec(`DELETE FROM files WHERE path = ?`, filePath)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a file, or an empty string
// when the file is not indexed.
func (db *DB) GetChecksum(filePath string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM files WHERE path = ?`, filePath).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns the checksum of every indexed file keyed by path.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ByBase returns every indexed path whose base name exactly matches base,
// ordered for deterministic suggestion output.
func (db *DB) ByBase(base string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT path FROM files WHERE base = ? ORDER BY path`, base)
	if err != nil {
		return nil, fmt.Errorf("index: by base: %w", err)
	}
	return scanPaths(rows)
}

// MatchBase returns paths whose base name is a case-insensitive substring
// match with base, in either direction. Exact matches are excluded — use
// ByBase for those.
func (db *DB) MatchBase(base string) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT path FROM files
		WHERE base != ?
		  AND (instr(lower(base), lower(?)) > 0 OR instr(lower(?), lower(base)) > 0)
		ORDER BY path
	`, base, base, base)
	if err != nil {
		return nil, fmt.Errorf("index: match base: %w", err)
	}
	return scanPaths(rows)
}

// Refs returns every source path holding a local-file link to target.
func (db *DB) Refs(target string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT source FROM refs WHERE target = ? ORDER BY source`, target)
	if err != nil {
		return nil, fmt.Errorf("index: refs: %w", err)
	}
	return scanPaths(rows)
}

func scanPaths(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
