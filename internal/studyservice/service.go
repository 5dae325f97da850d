// Package studyservice coordinates the content store, note index, search
// index, and event broker behind one API. Handlers and MCP tools talk to
// this layer only.
package studyservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/oikos/internal/apperr"
	"github.com/starford/oikos/internal/contentstore"
	"github.com/starford/oikos/internal/models"
	"github.com/starford/oikos/internal/noteindex"
	"github.com/starford/oikos/internal/searchindex"
	"github.com/starford/oikos/internal/snapshot"
	"github.com/starford/oikos/internal/sse"
	"github.com/starford/oikos/internal/storage"
)

// Service is the orchestration layer over the study state.
type Service struct {
	store  *contentstore.Store
	notes  *noteindex.Index
	db     *searchindex.DB
	files  storage.Provider
	broker *sse.Broker
	logger *slog.Logger
}

// NewService creates a new study service. broker may be nil (no events).
func NewService(store *contentstore.Store, notes *noteindex.Index, db *searchindex.DB, files storage.Provider, broker *sse.Broker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, notes: notes, db: db, files: files, broker: broker, logger: logger}
}

// Lessons returns all lessons ordered by unit number.
func (s *Service) Lessons(_ context.Context) []models.Lesson {
	return s.store.ListLessonsOrdered()
}

// Lesson returns one lesson by unit number.
func (s *Service) Lesson(_ context.Context, unit int) (models.Lesson, error) {
	return s.store.GetLesson(unit)
}

// UpsertPage inserts or replaces one page of a unit and reindexes its
// sections.
func (s *Service) UpsertPage(_ context.Context, unit int, title string, pageNumber int, sections []models.Section) contentstore.Outcome {
	outcome := s.store.UpsertPage(unit, title, pageNumber, sections)

	resolvedTitle, _ := s.store.ResolveTitle(unit)
	for _, section := range sections {
		e := searchindex.Entry{
			Key:   searchindex.SectionKey(unit, pageNumber, section.ID),
			Kind:  searchindex.KindSection,
			Unit:  unit,
			Title: resolvedTitle,
		}
		if err := s.db.Upsert(e, searchindex.SectionBody(section)); err != nil {
			s.logger.Warn("index section failed", slog.String("key", e.Key), slog.String("error", err.Error()))
		}
	}

	s.publish("content.updated", map[string]string{
		"unit":    fmt.Sprint(unit),
		"page":    fmt.Sprint(pageNumber),
		"outcome": outcome.String(),
	})
	return outcome
}

// AddNote appends a note at the given location. Blank text is reported as
// apperr.ErrEmptyText and changes nothing.
func (s *Service) AddNote(_ context.Context, loc noteindex.Location, text string) (models.Note, error) {
	note, err := s.notes.Add(loc, text)
	if err != nil {
		return models.Note{}, err
	}

	title, ok := s.store.ResolveTitle(loc.Unit)
	if !ok {
		title = noteindex.UnknownUnitTitle
	}
	if err := searchindex.IndexNote(s.db, loc, note, title); err != nil {
		s.logger.Warn("index note failed", slog.String("location", loc.String()), slog.String("error", err.Error()))
	}

	s.publish("note.created", map[string]string{"location": loc.String()})
	return note, nil
}

// DeleteNote removes the note at the given position within a location's
// list. An invalid position is apperr.ErrIndexOutOfRange; callers downgrade
// it to a no-op.
func (s *Service) DeleteNote(_ context.Context, loc noteindex.Location, index int) error {
	removed, err := s.notes.Delete(loc, index)
	if err != nil {
		return err
	}
	if err := searchindex.DeleteNote(s.db, loc, removed.ID); err != nil {
		s.logger.Warn("unindex note failed", slog.String("location", loc.String()), slog.String("error", err.Error()))
	}

	s.publish("note.deleted", map[string]string{"location": loc.String()})
	return nil
}

// NotesAt returns the notes at one location in insertion order.
func (s *Service) NotesAt(_ context.Context, loc noteindex.Location) []models.Note {
	return s.notes.ListByLocation(loc)
}

// AllNotes returns every note with its resolved unit title, recency-first
// within a section.
func (s *Service) AllNotes(_ context.Context) []noteindex.Entry {
	return s.notes.ListAll(s.store.ResolveTitle)
}

// Tests returns all quizzes.
func (s *Service) Tests(_ context.Context) []models.Test {
	return s.store.ListTests()
}

// Test returns one quiz by id.
func (s *Service) Test(_ context.Context, id int) (models.Test, error) {
	return s.store.GetTest(id)
}

// AddTest appends a quiz to the collection.
func (s *Service) AddTest(_ context.Context, t models.Test) {
	s.store.AddTest(t)
	s.publish("content.updated", map[string]string{"kind": "test"})
}

// AddSummaryJSON parses a raw-JSON summary entry ({"unit": ..., "summary":
// ...}) and appends it. Malformed input is apperr.ErrMalformedJSON and
// changes nothing.
func (s *Service) AddSummaryJSON(_ context.Context, raw []byte) (models.Summary, error) {
	var sum models.Summary
	if err := json.Unmarshal(raw, &sum); err != nil {
		return models.Summary{}, fmt.Errorf("%w: %v", apperr.ErrMalformedJSON, err)
	}
	if strings.TrimSpace(sum.Summary) == "" {
		return models.Summary{}, apperr.ErrEmptyText
	}
	s.store.AddSummary(sum)
	return sum, nil
}

// Summaries returns all summaries in insertion order.
func (s *Service) Summaries(_ context.Context) []models.Summary {
	return s.store.ListSummaries()
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]searchindex.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Export encodes the complete state, writes a timestamped file under the
// export folder, and returns its relative path and the document.
func (s *Service) Export(_ context.Context, now time.Time) (string, []byte, error) {
	state := snapshot.State{
		Lessons:   s.store.ListLessonsOrdered(),
		Tests:     s.store.ListTests(),
		Notes:     s.notes.Snapshot(),
		Summaries: s.store.ListSummaries(),
	}
	return snapshot.WriteExport(s.files, state, now)
}

// Import applies a snapshot document with partial-merge semantics and
// rebuilds the search index. Only top-level malformed JSON is an error; the
// state is untouched in that case.
func (s *Service) Import(_ context.Context, data []byte) (snapshot.MergeResult, error) {
	partial, err := snapshot.Decode(data)
	if err != nil {
		return snapshot.MergeResult{}, err
	}
	res := snapshot.Merge(partial, s.store, s.notes, s.logger)

	if err := searchindex.Rebuild(s.db, s.store, s.notes, s.logger); err != nil {
		s.logger.Warn("reindex after import failed", slog.String("error", err.Error()))
	}

	s.publish("snapshot.imported", map[string]string{
		"applied": strings.Join(res.Applied, ","),
	})
	return res, nil
}

// Stats returns collection sizes for the stats.updated event and health
// reporting.
func (s *Service) Stats() map[string]int {
	return map[string]int{
		"units":     len(s.store.ListLessonsOrdered()),
		"tests":     len(s.store.ListTests()),
		"notes":     s.notes.Count(),
		"summaries": len(s.store.ListSummaries()),
	}
}

func (s *Service) publish(kind string, data map[string]string) {
	if s.broker != nil {
		s.broker.PublishChange(kind, data)
	}
}
