//go:build !sqlite_fts5

package searchindex

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses a LIKE fallback on the entries table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _ string) error {
	// Body is already stored in the entries table; nothing extra to do.
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

func ftsClear(_ *sql.Tx) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT key, kind, unit, title, substr(body, 1, 200)
		FROM entries
		WHERE title LIKE ? OR body LIKE ?
		LIMIT ?
	`, like, like, limit)
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
