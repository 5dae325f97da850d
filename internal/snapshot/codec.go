// Package snapshot serializes the complete application state to and from a
// single JSON document. Encoding is total: all four collections are always
// present, empty as [] or {}. Decoding is deliberately lax: only top-level
// malformed JSON is an error, and each collection is interpreted per field at
// merge time so that a file carrying only "notes" never touches lessons.
package snapshot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/oikos/internal/apperr"
	"github.com/starford/oikos/internal/contentstore"
	"github.com/starford/oikos/internal/models"
	"github.com/starford/oikos/internal/noteindex"
)

// State is the unit of export/import.
type State struct {
	Lessons   []models.Lesson
	Tests     []models.Test
	Notes     map[noteindex.Location][]models.Note
	Summaries []models.Summary
}

// document is the wire form. ExportDate is ISO-8601.
type document struct {
	Lessons    json.RawMessage `json:"lessons"`
	Tests      json.RawMessage `json:"tests"`
	Notes      json.RawMessage `json:"notes"`
	Summaries  json.RawMessage `json:"summaries"`
	ExportDate string          `json:"export_date"`
}

// Encode produces the snapshot JSON document. Field presence is
// deterministic so that round-tripping is total.
func Encode(s State, now time.Time) ([]byte, error) {
	if s.Lessons == nil {
		s.Lessons = []models.Lesson{}
	}
	if s.Tests == nil {
		s.Tests = []models.Test{}
	}
	if s.Notes == nil {
		s.Notes = map[noteindex.Location][]models.Note{}
	}
	if s.Summaries == nil {
		s.Summaries = []models.Summary{}
	}

	doc := struct {
		Lessons    []models.Lesson                      `json:"lessons"`
		Tests      []models.Test                        `json:"tests"`
		Notes      map[noteindex.Location][]models.Note `json:"notes"`
		Summaries  []models.Summary                     `json:"summaries"`
		ExportDate string                               `json:"export_date"`
	}{s.Lessons, s.Tests, s.Notes, s.Summaries, now.UTC().Format(time.RFC3339)}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return data, nil
}

// Partial holds the collections present in a decoded document, still as raw
// JSON. A nil field (absent or JSON null) means the corresponding in-memory
// collection must be left untouched.
type Partial struct {
	Lessons    json.RawMessage
	Tests      json.RawMessage
	Notes      json.RawMessage
	Summaries  json.RawMessage
	ExportDate string
}

// Decode parses a snapshot document. It fails only when the input is not
// valid JSON; nested collection content is staged opaquely and interpreted
// during Merge (fail-late). Unknown top-level keys are ignored.
func Decode(data []byte) (*Partial, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedJSON, err)
	}
	return &Partial{
		Lessons:    presentRaw(doc.Lessons),
		Tests:      presentRaw(doc.Tests),
		Notes:      presentRaw(doc.Notes),
		Summaries:  presentRaw(doc.Summaries),
		ExportDate: doc.ExportDate,
	}, nil
}

// presentRaw collapses JSON null to absent.
func presentRaw(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}

// MergeResult reports which collections an import touched.
type MergeResult struct {
	Applied []string          `json:"applied"`
	Skipped map[string]string `json:"skipped,omitempty"`
}

// Merge applies a decoded partial snapshot: every collection present fully
// replaces the in-memory one, every collection absent is a no-op. A
// collection whose content fails interpretation is skipped with a reason and
// the previous value kept; the other collections still apply.
func Merge(p *Partial, store *contentstore.Store, notes *noteindex.Index, logger *slog.Logger) MergeResult {
	res := MergeResult{Skipped: make(map[string]string)}

	apply := func(field string, err error, ok func()) {
		if err != nil {
			logger.Warn("snapshot: field skipped",
				slog.String("field", field),
				slog.String("error", err.Error()))
			res.Skipped[field] = err.Error()
			return
		}
		ok()
		res.Applied = append(res.Applied, field)
	}

	if p.Lessons != nil {
		lessons, err := contentstore.DecodeLessons(p.Lessons)
		apply("lessons", err, func() { store.ReplaceLessons(lessons) })
	}
	if p.Tests != nil {
		var tests []models.Test
		err := json.Unmarshal(p.Tests, &tests)
		apply("tests", err, func() { store.ReplaceTests(tests) })
	}
	if p.Notes != nil {
		parsed, err := decodeNotes(p.Notes, logger)
		apply("notes", err, func() { notes.Replace(parsed) })
	}
	if p.Summaries != nil {
		var summaries []models.Summary
		err := json.Unmarshal(p.Summaries, &summaries)
		apply("summaries", err, func() { store.ReplaceSummaries(summaries) })
	}

	if len(res.Skipped) == 0 {
		res.Skipped = nil
	}
	return res
}

// decodeNotes parses the location-keyed note map. Keys that do not parse as
// locations are quarantined under unit 0 with the raw key as the section so
// that no note is ever dropped; unit 0 never resolves, so such notes show up
// with the unknown-unit label.
func decodeNotes(raw json.RawMessage, logger *slog.Logger) (map[noteindex.Location][]models.Note, error) {
	var byKey map[string][]models.Note
	if err := json.Unmarshal(raw, &byKey); err != nil {
		return nil, fmt.Errorf("snapshot: notes: %w", err)
	}

	out := make(map[noteindex.Location][]models.Note, len(byKey))
	for key, list := range byKey {
		loc, err := noteindex.ParseLocation(key)
		if err != nil {
			logger.Warn("snapshot: unparseable note location kept",
				slog.String("key", key),
				slog.String("error", err.Error()))
			loc = noteindex.Location{Unit: 0, Page: 0, Section: key}
		}
		out[loc] = append(out[loc], list...)
	}
	return out, nil
}
