package snapshot

import (
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/starford/oikos/internal/apperr"
	"github.com/starford/oikos/internal/contentstore"
	"github.com/starford/oikos/internal/models"
	"github.com/starford/oikos/internal/noteindex"
)

func seededStores(t *testing.T) (*contentstore.Store, *noteindex.Index) {
	t.Helper()
	store := contentstore.New()
	store.UpsertPage(1, "One", 1, []models.Section{
		{ID: "s1", Type: models.SectionText, Text: "body"},
	})
	store.AddTest(models.Test{ID: 1, Unit: "One"})
	store.AddSummary(models.Summary{Unit: "One", Summary: "short"})

	notes := noteindex.New(nil)
	if _, err := notes.Add(noteindex.Location{Unit: 1, Page: 1, Section: "s1"}, "remember this"); err != nil {
		t.Fatal(err)
	}
	return store, notes
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	store, notes := seededStores(t)
	state := State{
		Lessons:   store.ListLessonsOrdered(),
		Tests:     store.ListTests(),
		Notes:     notes.Snapshot(),
		Summaries: store.ListSummaries(),
	}

	data, err := Encode(state, time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	p, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Lessons == nil || p.Tests == nil || p.Notes == nil || p.Summaries == nil {
		t.Fatal("encoded document must carry all four collections")
	}
	if p.ExportDate != "2026-08-27T12:00:00Z" {
		t.Errorf("export_date = %q", p.ExportDate)
	}

	store2 := contentstore.New()
	notes2 := noteindex.New(nil)
	res := Merge(p, store2, notes2, slog.Default())
	if len(res.Applied) != 4 || res.Skipped != nil {
		t.Fatalf("merge = %+v, want all four applied", res)
	}

	if _, err := store2.GetLesson(1); err != nil {
		t.Errorf("lesson lost in round trip: %v", err)
	}
	got := notes2.ListByLocation(noteindex.Location{Unit: 1, Page: 1, Section: "s1"})
	if len(got) != 1 || got[0].Text != "remember this" {
		t.Errorf("notes lost in round trip: %+v", got)
	}
}

func TestEncodeEmptyStateIsTotal(t *testing.T) {
	data, err := Encode(State{}, time.Now())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"lessons", "tests", "notes", "summaries", "export_date"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing key %q in empty export", key)
		}
	}
	if string(doc["lessons"]) != "[]" {
		t.Errorf("lessons = %s, want []", doc["lessons"])
	}
	if string(doc["notes"]) != "{}" {
		t.Errorf("notes = %s, want {}", doc["notes"])
	}
}

func TestDecodeMalformedTopLevel(t *testing.T) {
	if _, err := Decode([]byte("{broken")); !errors.Is(err, apperr.ErrMalformedJSON) {
		t.Errorf("err = %v, want ErrMalformedJSON", err)
	}
}

func TestMergePartialLeavesAbsentCollections(t *testing.T) {
	store, notes := seededStores(t)

	doc := `{"notes": {"2-1-s9": [{"id": 123, "text": "imported", "created_at": "2026-01-01T00:00:00Z"}]}}`
	p, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	res := Merge(p, store, notes, slog.Default())
	if len(res.Applied) != 1 || res.Applied[0] != "notes" {
		t.Fatalf("applied = %v, want [notes]", res.Applied)
	}

	// Notes replaced wholesale.
	if notes.Count() != 1 {
		t.Errorf("notes count = %d, want 1", notes.Count())
	}
	got := notes.ListByLocation(noteindex.Location{Unit: 2, Page: 1, Section: "s9"})
	if len(got) != 1 || got[0].Text != "imported" {
		t.Errorf("imported notes = %+v", got)
	}

	// Everything else untouched.
	if _, err := store.GetLesson(1); err != nil {
		t.Errorf("lessons should be untouched: %v", err)
	}
	if len(store.ListTests()) != 1 || len(store.ListSummaries()) != 1 {
		t.Error("tests/summaries should be untouched")
	}
}

func TestMergeSkipsBadCollectionKeepsRest(t *testing.T) {
	store, notes := seededStores(t)

	doc := `{"lessons": "definitely not an array", "summaries": [{"unit": "Two", "summary": "new"}]}`
	p, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode must stay lax below top level: %v", err)
	}

	res := Merge(p, store, notes, slog.Default())
	if _, skipped := res.Skipped["lessons"]; !skipped {
		t.Errorf("lessons should be skipped: %+v", res)
	}
	if len(res.Applied) != 1 || res.Applied[0] != "summaries" {
		t.Errorf("applied = %v, want [summaries]", res.Applied)
	}

	// Skipped collection keeps the previous value.
	if _, err := store.GetLesson(1); err != nil {
		t.Errorf("lessons should keep previous value: %v", err)
	}
	sums := store.ListSummaries()
	if len(sums) != 1 || sums[0].Unit != "Two" {
		t.Errorf("summaries = %+v, want replaced", sums)
	}
}

func TestMergeQuarantinesBadNoteKeys(t *testing.T) {
	store := contentstore.New()
	notes := noteindex.New(nil)

	doc := `{"notes": {
		"1-1-s1": [{"id": 1, "text": "good", "created_at": "2026-01-01T00:00:00Z"}],
		"garbagekey": [{"id": 2, "text": "kept anyway", "created_at": "2026-01-01T00:00:00Z"}]
	}}`
	p, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	res := Merge(p, store, notes, slog.Default())
	if len(res.Applied) != 1 {
		t.Fatalf("merge = %+v", res)
	}

	if notes.Count() != 2 {
		t.Fatalf("count = %d, want 2 (no note may be dropped)", notes.Count())
	}
	quarantined := notes.ListByLocation(noteindex.Location{Unit: 0, Page: 0, Section: "garbagekey"})
	if len(quarantined) != 1 || quarantined[0].Text != "kept anyway" {
		t.Errorf("quarantined = %+v", quarantined)
	}
}

func TestMergeLegacyLessonsAndNoteKeys(t *testing.T) {
	store := contentstore.New()
	notes := noteindex.New(nil)

	doc := `{
		"lessons": [{"id": 7, "title": "Legacy", "content": {"sections": [{"id": "s1", "type": "text", "content": "x"}]}}],
		"notes": {"7-s1": [{"id": 5, "text": "old note", "created_at": "2026-01-01T00:00:00Z"}]}
	}`
	p, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	res := Merge(p, store, notes, slog.Default())
	if len(res.Applied) != 2 {
		t.Fatalf("merge = %+v", res)
	}

	lesson, err := store.GetLesson(7)
	if err != nil {
		t.Fatalf("legacy lesson not migrated: %v", err)
	}
	if len(lesson.Pages) != 1 || lesson.Pages[0].PageNumber != 1 {
		t.Errorf("legacy pages = %+v", lesson.Pages)
	}

	got := notes.ListByLocation(noteindex.Location{Unit: 7, Page: 1, Section: "s1"})
	if len(got) != 1 {
		t.Errorf("legacy note key not parsed to page 1: %+v", notes.Snapshot())
	}
}
