// Package testutil provides shared test helpers for setting up data dirs and databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/oikos/internal/searchindex"
	"github.com/starford/oikos/internal/storage"
)

// TestDB creates a temporary SQLite search index that is automatically cleaned up.
func TestDB(t *testing.T) *searchindex.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "oikos-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := searchindex.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDataDir creates a temporary data directory with a storage.Provider.
func TestDataDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dataDir := t.TempDir()
	files, err := storage.NewFS(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	return dataDir, files
}
