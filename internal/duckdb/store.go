// Package duckdb persists annotated sites to a DuckDB database so
// downstream diversity statistics can query site classes with SQL instead
// of re-parsing TSV output.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for annotated-site storage.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS site_info (
		ref_id VARCHAR,
		ref_pos BIGINT,
		ref_allele VARCHAR,
		gene_id VARCHAR,
		site_type VARCHAR,
		snp_a VARCHAR,
		snp_t VARCHAR,
		snp_c VARCHAR,
		snp_g VARCHAR,
		PRIMARY KEY (ref_id, ref_pos)
	)`); err != nil {
		return err
	}

	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		started TIMESTAMP,
		genome VARCHAR,
		features VARCHAR,
		site_count BIGINT
	)`)
	return err
}

// RecordRun appends run metadata.
func (s *Store) RecordRun(started time.Time, genomePath, featuresPath string, siteCount int64) error {
	_, err := s.db.Exec(`INSERT INTO runs VALUES (?, ?, ?, ?)`,
		started, genomePath, featuresPath, siteCount)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// SiteCount returns the number of stored annotated sites.
func (s *Store) SiteCount() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM site_info`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sites: %w", err)
	}
	return n, nil
}

// ClearSites removes all stored annotated sites.
func (s *Store) ClearSites() error {
	_, err := s.db.Exec(`DELETE FROM site_info`)
	return err
}
