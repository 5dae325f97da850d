package searchindex

import (
	"fmt"
	"log/slog"

	"github.com/starford/oikos/internal/contentstore"
	"github.com/starford/oikos/internal/models"
	"github.com/starford/oikos/internal/noteindex"
)

// NoteKey returns the index key for a note at a location.
func NoteKey(loc noteindex.Location, id int64) string {
	return fmt.Sprintf("%s#%d", loc.String(), id)
}

// SectionKey returns the index key for a section.
func SectionKey(unit, page int, sectionID string) string {
	return noteindex.Location{Unit: unit, Page: page, Section: sectionID}.String()
}

// Rebuild clears the index and reindexes every lesson section and note from
// the in-memory state. Individual failures are logged and skipped; the index
// is derived data and self-heals on the next rebuild.
func Rebuild(db *DB, store *contentstore.Store, notes *noteindex.Index, logger *slog.Logger) error {
	if err := db.Clear(); err != nil {
		return err
	}

	for _, lesson := range store.ListLessonsOrdered() {
		for _, page := range lesson.Pages {
			for _, section := range page.Sections {
				e := Entry{
					Key:   SectionKey(lesson.UnitNumber, page.PageNumber, section.ID),
					Kind:  KindSection,
					Unit:  lesson.UnitNumber,
					Title: lesson.Title,
				}
				if err := db.Upsert(e, SectionBody(section)); err != nil {
					logger.Warn("searchindex: section index failed",
						slog.String("key", e.Key), slog.String("error", err.Error()))
				}
			}
		}
	}

	for _, entry := range notes.ListAll(store.ResolveTitle) {
		if err := IndexNote(db, entry.Location, entry.Note, entry.UnitTitle); err != nil {
			logger.Warn("searchindex: note index failed",
				slog.String("location", entry.Location.String()),
				slog.String("error", err.Error()))
		}
	}

	return nil
}

// IndexNote upserts a single note into the index.
func IndexNote(db *DB, loc noteindex.Location, note models.Note, unitTitle string) error {
	return db.Upsert(Entry{
		Key:   NoteKey(loc, note.ID),
		Kind:  KindNote,
		Unit:  loc.Unit,
		Title: unitTitle,
	}, note.Text)
}

// DeleteNote removes a single note from the index.
func DeleteNote(db *DB, loc noteindex.Location, id int64) error {
	return db.Delete(NoteKey(loc, id))
}

// SectionBody extracts the searchable text of a section.
func SectionBody(s models.Section) string {
	if s.Type == models.SectionGraph {
		if s.Graph == nil {
			return ""
		}
		return s.Graph.Title + " " + s.Graph.Description
	}
	return s.Text
}
