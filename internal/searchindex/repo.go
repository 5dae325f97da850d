package searchindex

import (
	"fmt"
	"time"
)

// Entry kinds.
const (
	KindNote    = "note"
	KindSection = "section"
)

// Entry is one indexed row: a note or a lesson section.
type Entry struct {
	Key   string // note: "<location>#<note id>", section: "<unit>-<page>-<section id>"
	Kind  string
	Unit  int
	Title string
}

// SearchResult represents one search hit.
type SearchResult struct {
	Key     string `json:"key"`
	Kind    string `json:"kind"`
	Unit    int    `json:"unit"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Upsert inserts or replaces an entry and its FTS row within a transaction.
func (db *DB) Upsert(e Entry, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("searchindex: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO entries (key, kind, unit, title, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			kind       = excluded.kind,
			unit       = excluded.unit,
			title      = excluded.title,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, e.Key, e.Kind, e.Unit, e.Title, body, time.Now())
	if err != nil {
		return fmt.Errorf("searchindex: upsert entry: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, e.Key, e.Title, body); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes an entry and its FTS row.
func (db *DB) Delete(key string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("searchindex: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, key)
	_, _ = tx.Exec(`DELETE FROM entries WHERE key = ?`, key)

	return tx.Commit()
}

// Clear drops every entry. Used before a full rebuild.
func (db *DB) Clear() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("searchindex: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsClear(tx)
	_, _ = tx.Exec(`DELETE FROM entries`)

	return tx.Commit()
}

// Count returns the number of indexed entries of the given kind, or of all
// kinds when kind is empty.
func (db *DB) Count(kind string) (int, error) {
	var n int
	var err error
	if kind == "" {
		err = db.conn.QueryRow(`SELECT count(*) FROM entries`).Scan(&n)
	} else {
		err = db.conn.QueryRow(`SELECT count(*) FROM entries WHERE kind = ?`, kind).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("searchindex: count: %w", err)
	}
	return n, nil
}
