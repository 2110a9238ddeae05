package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
)

// Catalog is a SQLite index over saved runs, so listing and filtering do not
// need to open every metadata.json.
type Catalog struct {
	*sql.DB
	insert *sql.Stmt
}

// CatalogEntry is one indexed run.
type CatalogEntry struct {
	ID        string
	Name      string
	Kind      string
	Map       string
	Timestamp time.Time
	Rows      int
	Diverged  int
	Dir       string
	Summary   map[string]float64
}

// Query filters catalog listings. Empty fields match everything.
type Query struct {
	Kind  string
	Map   string
	Limit int
}

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
	id        TEXT PRIMARY KEY,
	name      TEXT,
	kind      TEXT NOT NULL,
	map       TEXT NOT NULL,
	created   INTEGER NOT NULL,
	rows      INTEGER NOT NULL,
	diverged  INTEGER NOT NULL,
	dir       TEXT NOT NULL,
	summary   TEXT
);
CREATE INDEX IF NOT EXISTS runs_kind_map ON runs (kind, map);
`

// OpenCatalog opens (creating if needed) the catalog database at path.
func OpenCatalog(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	if _, err := db.Exec(createRunsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create catalog tables: %w", err)
	}

	stmt, err := db.Prepare(`INSERT OR REPLACE INTO runs
		(id, name, kind, map, created, rows, diverged, dir, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{DB: db, insert: stmt}, nil
}

func (c *Catalog) Insert(meta *RunMetadata, dir string) error {
	summary, err := json.Marshal(meta.Summary)
	if err != nil {
		return err
	}
	_, err = c.insert.Exec(
		meta.ID,
		meta.Name,
		meta.Kind,
		meta.Map,
		meta.Timestamp.UnixNano(),
		meta.Rows,
		meta.Diverged,
		dir,
		string(summary),
	)
	return err
}

// List returns matching runs, newest first.
func (c *Catalog) List(q Query) ([]CatalogEntry, error) {
	sqlStr := `SELECT id, name, kind, map, created, rows, diverged, dir, summary FROM runs WHERE 1=1`
	var args []any
	if q.Kind != "" {
		sqlStr += ` AND kind = ?`
		args = append(args, q.Kind)
	}
	if q.Map != "" {
		sqlStr += ` AND map = ?`
		args = append(args, q.Map)
	}
	sqlStr += ` ORDER BY created DESC, id DESC`
	if q.Limit > 0 {
		sqlStr += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := c.Query(sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]CatalogEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Get returns one run; sql.ErrNoRows when unknown.
func (c *Catalog) Get(id string) (*CatalogEntry, error) {
	row := c.QueryRow(`SELECT id, name, kind, map, created, rows, diverged, dir, summary FROM runs WHERE id = ?`, id)
	return scanEntry(row)
}

func (c *Catalog) Delete(id string) error {
	_, err := c.Exec(`DELETE FROM runs WHERE id = ?`, id)
	return err
}

func (c *Catalog) Close() error {
	c.insert.Close()
	return c.DB.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*CatalogEntry, error) {
	var (
		e       CatalogEntry
		name    sql.NullString
		summary sql.NullString
		created int64
	)
	if err := s.Scan(&e.ID, &name, &e.Kind, &e.Map, &created, &e.Rows, &e.Diverged, &e.Dir, &summary); err != nil {
		return nil, err
	}
	e.Name = name.String
	e.Timestamp = time.Unix(0, created)
	if summary.Valid && summary.String != "" && summary.String != "null" {
		if err := json.Unmarshal([]byte(summary.String), &e.Summary); err != nil {
			return nil, fmt.Errorf("run %s: bad summary: %w", e.ID, err)
		}
	}
	return &e, nil
}
