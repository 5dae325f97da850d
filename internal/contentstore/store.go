// Package contentstore holds the in-memory lesson tree plus the flat test
// and summary collections. Content is validated at the boundary (import,
// manual entry, library files); once admitted it is trusted on read.
package contentstore

import (
	"sort"
	"sync"

	"github.com/starford/oikos/internal/apperr"
	"github.com/starford/oikos/internal/models"
)

// Outcome reports what UpsertPage did.
type Outcome int

const (
	// CreatedUnit means no lesson with the unit number existed, so one was
	// created with the given title and a single page.
	CreatedUnit Outcome = iota
	// AppendedPage means the page number was new for an existing lesson.
	AppendedPage
	// ReplacedPage means a page with that number already existed and its
	// sections were swapped in place. Page numbers stay unique per lesson;
	// appending a duplicate is never an option.
	ReplacedPage
)

func (o Outcome) String() string {
	switch o {
	case CreatedUnit:
		return "created_unit"
	case AppendedPage:
		return "appended_page"
	case ReplacedPage:
		return "replaced_page"
	default:
		return "unknown"
	}
}

// Store is the process-wide content container. All mutation happens through
// methods that keep the ordering invariants: lessons sorted by unit number,
// pages sorted by page number, both unique.
type Store struct {
	mu        sync.RWMutex
	lessons   []models.Lesson
	tests     []models.Test
	summaries []models.Summary
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// UpsertPage inserts or replaces one page of a unit. A missing unit is
// created with the given title; an existing unit keeps its current title
// unless the stored one is empty.
func (s *Store) UpsertPage(unit int, title string, pageNumber int, sections []models.Section) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := models.Page{PageNumber: pageNumber, Sections: sections}

	for i := range s.lessons {
		if s.lessons[i].UnitNumber != unit {
			continue
		}
		if s.lessons[i].Title == "" {
			s.lessons[i].Title = title
		}
		for j := range s.lessons[i].Pages {
			if s.lessons[i].Pages[j].PageNumber == pageNumber {
				s.lessons[i].Pages[j] = page
				return ReplacedPage
			}
		}
		s.lessons[i].Pages = append(s.lessons[i].Pages, page)
		sortPages(s.lessons[i].Pages)
		return AppendedPage
	}

	s.lessons = append(s.lessons, models.Lesson{
		UnitNumber: unit,
		Title:      title,
		Pages:      []models.Page{page},
	})
	sortLessons(s.lessons)
	return CreatedUnit
}

// ListLessonsOrdered returns all lessons ordered by unit number ascending.
func (s *Store) ListLessonsOrdered() []models.Lesson {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyLessons(s.lessons)
}

// GetLesson returns the lesson with the given unit number.
func (s *Store) GetLesson(unit int) (models.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.lessons {
		if l.UnitNumber == unit {
			return copyLesson(l), nil
		}
	}
	return models.Lesson{}, apperr.ErrNotFound
}

// RemoveUnit deletes a lesson. Notes pointing at it become orphans and are
// kept; listings label them with the unknown-unit sentinel.
func (s *Store) RemoveUnit(unit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.lessons {
		if l.UnitNumber == unit {
			s.lessons = append(s.lessons[:i], s.lessons[i+1:]...)
			return nil
		}
	}
	return apperr.ErrNotFound
}

// ResolveTitle is a noteindex.Resolver over the stored lessons.
func (s *Store) ResolveTitle(unit int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.lessons {
		if l.UnitNumber == unit {
			return l.Title, true
		}
	}
	return "", false
}

// ReplaceLessons swaps in an imported lesson list wholesale, restoring the
// ordering invariants on the way in. Duplicate unit numbers, and duplicate
// page numbers within a lesson, keep the first occurrence.
func (s *Store) ReplaceLessons(lessons []models.Lesson) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int]struct{}, len(lessons))
	out := make([]models.Lesson, 0, len(lessons))
	for _, l := range lessons {
		if _, dup := seen[l.UnitNumber]; dup {
			continue
		}
		seen[l.UnitNumber] = struct{}{}
		l.Pages = dedupePages(l.Pages)
		out = append(out, l)
	}
	sortLessons(out)
	s.lessons = out
}

// AddTest appends a quiz to the flat test list.
func (s *Store) AddTest(t models.Test) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tests = append(s.tests, t)
}

// GetTest returns the test with the given id.
func (s *Store) GetTest(id int) (models.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tests {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Test{}, apperr.ErrNotFound
}

// ListTests returns all tests in insertion order.
func (s *Store) ListTests() []models.Test {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Test, len(s.tests))
	copy(out, s.tests)
	return out
}

// ReplaceTests swaps in an imported test list wholesale.
func (s *Store) ReplaceTests(tests []models.Test) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tests = make([]models.Test, len(tests))
	copy(s.tests, tests)
}

// AddSummary appends a summary. The collection is append-only.
func (s *Store) AddSummary(sum models.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append(s.summaries, sum)
}

// ListSummaries returns all summaries in insertion order.
func (s *Store) ListSummaries() []models.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Summary, len(s.summaries))
	copy(out, s.summaries)
	return out
}

// ReplaceSummaries swaps in an imported summary list wholesale.
func (s *Store) ReplaceSummaries(summaries []models.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = make([]models.Summary, len(summaries))
	copy(s.summaries, summaries)
}

func sortLessons(lessons []models.Lesson) {
	sort.SliceStable(lessons, func(i, j int) bool {
		return lessons[i].UnitNumber < lessons[j].UnitNumber
	})
}

func sortPages(pages []models.Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].PageNumber < pages[j].PageNumber
	})
}

// dedupePages drops pages whose number was already seen, keeping the first
// occurrence, and returns the remainder sorted by page number.
func dedupePages(pages []models.Page) []models.Page {
	seen := make(map[int]struct{}, len(pages))
	out := make([]models.Page, 0, len(pages))
	for _, p := range pages {
		if _, dup := seen[p.PageNumber]; dup {
			continue
		}
		seen[p.PageNumber] = struct{}{}
		out = append(out, p)
	}
	sortPages(out)
	return out
}

func copyLessons(lessons []models.Lesson) []models.Lesson {
	out := make([]models.Lesson, len(lessons))
	for i, l := range lessons {
		out[i] = copyLesson(l)
	}
	return out
}

func copyLesson(l models.Lesson) models.Lesson {
	cp := l
	cp.Pages = make([]models.Page, len(l.Pages))
	copy(cp.Pages, l.Pages)
	return cp
}
