package searchindex

import (
	"log/slog"
	"os"
	"testing"

	"github.com/starford/oikos/internal/contentstore"
	"github.com/starford/oikos/internal/models"
	"github.com/starford/oikos/internal/noteindex"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "oikos-index-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertAndSearch(t *testing.T) {
	db := testDB(t)

	e := Entry{Key: "1-1-s1", Kind: KindSection, Unit: 1, Title: "Elasticity"}
	if err := db.Upsert(e, "price elasticity of demand"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	results, err := db.Search("elasticity", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	r := results[0]
	if r.Key != "1-1-s1" || r.Kind != KindSection || r.Unit != 1 {
		t.Errorf("result = %+v", r)
	}
	if r.Snippet == "" {
		t.Error("snippet empty")
	}
}

func TestUpsertReplaces(t *testing.T) {
	db := testDB(t)

	e := Entry{Key: "k", Kind: KindNote, Unit: 1, Title: "T"}
	_ = db.Upsert(e, "alpha")
	_ = db.Upsert(e, "beta")

	if n, _ := db.Count(""); n != 1 {
		t.Errorf("count = %d, want 1 after double upsert", n)
	}
	if res, _ := db.Search("alpha", 10); len(res) != 0 {
		t.Errorf("old body still searchable: %+v", res)
	}
	if res, _ := db.Search("beta", 10); len(res) != 1 {
		t.Errorf("new body not searchable")
	}
}

func TestDeleteAndClear(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert(Entry{Key: "a", Kind: KindNote, Unit: 1}, "one")
	_ = db.Upsert(Entry{Key: "b", Kind: KindSection, Unit: 1}, "two")

	if err := db.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n, _ := db.Count(KindNote); n != 0 {
		t.Errorf("note count = %d after delete", n)
	}
	if n, _ := db.Count(""); n != 1 {
		t.Errorf("total = %d, want 1", n)
	}

	if err := db.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n, _ := db.Count(""); n != 0 {
		t.Errorf("total = %d after clear", n)
	}
}

func TestSearchLimit(t *testing.T) {
	db := testDB(t)
	for _, key := range []string{"a", "b", "c"} {
		_ = db.Upsert(Entry{Key: key, Kind: KindNote, Unit: 1}, "common token")
	}
	res, err := db.Search("common", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 {
		t.Errorf("results = %d, want limit 2", len(res))
	}
}

func TestRebuildFromState(t *testing.T) {
	db := testDB(t)

	store := contentstore.New()
	store.UpsertPage(1, "One", 1, []models.Section{
		{ID: "s1", Type: models.SectionText, Text: "marginal utility"},
		{ID: "g1", Type: models.SectionGraph, Graph: &models.GraphSpec{Title: "Budget", Description: "line"}},
	})

	notes := noteindex.New(nil)
	_, _ = notes.Add(noteindex.Location{Unit: 1, Page: 1, Section: "s1"}, "check marginal case")

	if err := Rebuild(db, store, notes, slog.Default()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	if n, _ := db.Count(KindSection); n != 2 {
		t.Errorf("section entries = %d, want 2", n)
	}
	if n, _ := db.Count(KindNote); n != 1 {
		t.Errorf("note entries = %d, want 1", n)
	}

	// Graph sections index their title and description.
	if res, _ := db.Search("Budget", 10); len(res) != 1 {
		t.Errorf("graph section not searchable")
	}

	// Rebuild is idempotent: no duplicates.
	if err := Rebuild(db, store, notes, slog.Default()); err != nil {
		t.Fatal(err)
	}
	if n, _ := db.Count(""); n != 3 {
		t.Errorf("total = %d after second rebuild, want 3", n)
	}
}

func TestNoteKeyShape(t *testing.T) {
	loc := noteindex.Location{Unit: 2, Page: 3, Section: "s1"}
	if got := NoteKey(loc, 42); got != "2-3-s1#42" {
		t.Errorf("NoteKey = %q", got)
	}
	if got := SectionKey(2, 3, "s1"); got != "2-3-s1" {
		t.Errorf("SectionKey = %q", got)
	}
}
