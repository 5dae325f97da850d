//go:build sqlite_fts5

package searchindex

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
			key UNINDEXED,
			title,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, key, title, body string) error {
	_, _ = tx.Exec(`DELETE FROM entries_fts WHERE key = ?`, key)
	_, err := tx.Exec(`INSERT INTO entries_fts (key, title, body) VALUES (?, ?, ?)`,
		key, title, body)
	if err != nil {
		return fmt.Errorf("searchindex: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, key string) {
	_, _ = tx.Exec(`DELETE FROM entries_fts WHERE key = ?`, key)
}

func ftsClear(tx *sql.Tx) {
	_, _ = tx.Exec(`DELETE FROM entries_fts`)
}

// Search performs an FTS5 full-text search and returns matching entries with
// snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT e.key,
		       e.kind,
		       e.unit,
		       e.title,
		       snippet(entries_fts, 2, '<b>', '</b>', '...', 64)
		FROM entries_fts f
		JOIN entries e ON e.key = f.key
		WHERE entries_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searchindex: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Key, &r.Kind, &r.Unit, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
