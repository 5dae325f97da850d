package noteindex

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/starford/oikos/internal/apperr"
	"github.com/starford/oikos/internal/models"
)

// UnknownUnitTitle is the sentinel label used in listings when a note's
// location references a unit that no longer exists. The note itself is
// always retained.
const UnknownUnitTitle = "Unknown unit"

// Resolver maps a unit number to its title. The second return value is false
// when no such unit exists.
type Resolver func(unit int) (string, bool)

// Entry is one row of a global note listing.
type Entry struct {
	Note      models.Note `json:"note"`
	UnitTitle string      `json:"unit_title"`
	Location  Location    `json:"location"`
}

// Index maps locations to ordered note lists. Notes at a location keep
// insertion order; ids are timestamp-derived and strictly increasing.
type Index struct {
	mu     sync.Mutex
	notes  map[Location][]models.Note
	lastID int64
	logger *slog.Logger
	now    func() time.Time
}

// New creates an empty note index.
func New(logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		notes:  make(map[Location][]models.Note),
		logger: logger,
		now:    time.Now,
	}
}

// Add appends a note with a fresh id and the current timestamp to the list at
// loc, creating the list if absent. Blank text (after trimming) is rejected
// with apperr.ErrEmptyText and leaves the index unchanged.
func (ix *Index) Add(loc Location, text string) (models.Note, error) {
	if strings.TrimSpace(text) == "" {
		return models.Note{}, apperr.ErrEmptyText
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	now := ix.now()
	id := now.UnixMilli()
	if id <= ix.lastID {
		id = ix.lastID + 1
	}
	ix.lastID = id

	note := models.Note{ID: id, Text: text, CreatedAt: now}
	ix.notes[loc] = append(ix.notes[loc], note)
	return note, nil
}

// Delete removes the note at the given position within loc's list, keeping
// the order of the remaining notes, and returns the removed note. An invalid
// position is reported as apperr.ErrIndexOutOfRange; callers treat it as a
// warning, never as fatal.
func (ix *Index) Delete(loc Location, index int) (models.Note, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	list := ix.notes[loc]
	if index < 0 || index >= len(list) {
		ix.logger.Warn("noteindex: delete out of range",
			slog.String("location", loc.String()),
			slog.Int("index", index),
			slog.Int("count", len(list)))
		return models.Note{}, apperr.ErrIndexOutOfRange
	}
	removed := list[index]
	list = append(list[:index], list[index+1:]...)
	if len(list) == 0 {
		delete(ix.notes, loc)
	} else {
		ix.notes[loc] = list
	}
	return removed, nil
}

// ListByLocation returns the notes at loc in insertion order. A location
// without notes yields an empty slice, not an error.
func (ix *Index) ListByLocation(loc Location) []models.Note {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	out := make([]models.Note, len(ix.notes[loc]))
	copy(out, ix.notes[loc])
	return out
}

// ListAll returns every stored note with its location and the owning unit's
// title per resolve. Locations whose unit cannot be resolved get
// UnknownUnitTitle. Output is sorted by (unit asc, page asc, note id desc)
// for recency-first display within a section.
func (ix *Index) ListAll(resolve Resolver) []Entry {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	out := make([]Entry, 0, len(ix.notes))
	for loc, list := range ix.notes {
		title, ok := resolve(loc.Unit)
		if !ok {
			title = UnknownUnitTitle
		}
		for _, n := range list {
			out = append(out, Entry{Note: n, UnitTitle: title, Location: loc})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Location.Unit != b.Location.Unit {
			return a.Location.Unit < b.Location.Unit
		}
		if a.Location.Page != b.Location.Page {
			return a.Location.Page < b.Location.Page
		}
		return a.Note.ID > b.Note.ID
	})
	return out
}

// Count returns the total number of stored notes.
func (ix *Index) Count() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	n := 0
	for _, list := range ix.notes {
		n += len(list)
	}
	return n
}

// Snapshot returns a deep copy of the location map for export.
func (ix *Index) Snapshot() map[Location][]models.Note {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	out := make(map[Location][]models.Note, len(ix.notes))
	for loc, list := range ix.notes {
		cp := make([]models.Note, len(list))
		copy(cp, list)
		out[loc] = cp
	}
	return out
}

// Replace swaps in an imported location map wholesale and advances the id
// counter past every imported note so new ids stay unique.
func (ix *Index) Replace(notes map[Location][]models.Note) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.notes = make(map[Location][]models.Note, len(notes))
	for loc, list := range notes {
		cp := make([]models.Note, len(list))
		copy(cp, list)
		ix.notes[loc] = cp
		for _, n := range cp {
			if n.ID > ix.lastID {
				ix.lastID = n.ID
			}
		}
	}
}
