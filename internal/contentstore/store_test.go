package contentstore

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/starford/oikos/internal/apperr"
	"github.com/starford/oikos/internal/models"
)

func textSection(id, text string) models.Section {
	return models.Section{ID: id, Type: models.SectionText, Text: text}
}

func TestUpsertPageOutcomes(t *testing.T) {
	s := New()

	if got := s.UpsertPage(1, "Intro", 1, []models.Section{textSection("s1", "a")}); got != CreatedUnit {
		t.Errorf("first upsert = %v, want CreatedUnit", got)
	}
	if got := s.UpsertPage(1, "Intro", 2, []models.Section{textSection("s1", "b")}); got != AppendedPage {
		t.Errorf("new page = %v, want AppendedPage", got)
	}
	if got := s.UpsertPage(1, "Intro", 2, []models.Section{textSection("s1", "c")}); got != ReplacedPage {
		t.Errorf("same page = %v, want ReplacedPage", got)
	}

	lesson, err := s.GetLesson(1)
	if err != nil {
		t.Fatalf("GetLesson: %v", err)
	}
	if len(lesson.Pages) != 2 {
		t.Fatalf("pages = %d, want 2 (duplicate page number must replace, not append)", len(lesson.Pages))
	}
	if lesson.Pages[1].Sections[0].Text != "c" {
		t.Errorf("page 2 content = %q, want replaced content", lesson.Pages[1].Sections[0].Text)
	}
}

func TestUpsertKeepsExistingTitle(t *testing.T) {
	s := New()
	s.UpsertPage(1, "Original", 1, nil)
	s.UpsertPage(1, "Renamed", 2, nil)

	title, ok := s.ResolveTitle(1)
	if !ok || title != "Original" {
		t.Errorf("title = %q, %v; want Original", title, ok)
	}
}

func TestLessonsOrderedByUnit(t *testing.T) {
	s := New()
	s.UpsertPage(3, "C", 1, nil)
	s.UpsertPage(1, "A", 1, nil)
	s.UpsertPage(2, "B", 1, nil)

	lessons := s.ListLessonsOrdered()
	for i, want := range []int{1, 2, 3} {
		if lessons[i].UnitNumber != want {
			t.Errorf("lessons[%d].UnitNumber = %d, want %d", i, lessons[i].UnitNumber, want)
		}
	}
}

func TestPagesSortedAfterOutOfOrderUpsert(t *testing.T) {
	s := New()
	s.UpsertPage(1, "A", 3, nil)
	s.UpsertPage(1, "A", 1, nil)

	lesson, _ := s.GetLesson(1)
	if lesson.Pages[0].PageNumber != 1 || lesson.Pages[1].PageNumber != 3 {
		t.Errorf("page order = %d, %d", lesson.Pages[0].PageNumber, lesson.Pages[1].PageNumber)
	}
}

func TestGetLessonMissing(t *testing.T) {
	s := New()
	if _, err := s.GetLesson(42); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRemoveUnit(t *testing.T) {
	s := New()
	s.UpsertPage(1, "A", 1, nil)

	if err := s.RemoveUnit(1); err != nil {
		t.Fatalf("RemoveUnit: %v", err)
	}
	if _, ok := s.ResolveTitle(1); ok {
		t.Error("unit still resolvable after removal")
	}
	if err := s.RemoveUnit(1); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second remove err = %v, want ErrNotFound", err)
	}
}

func TestReplaceLessonsDedupAndSort(t *testing.T) {
	s := New()
	s.ReplaceLessons([]models.Lesson{
		{UnitNumber: 2, Title: "B", Pages: []models.Page{{PageNumber: 2}, {PageNumber: 1}}},
		{UnitNumber: 1, Title: "A"},
		{UnitNumber: 2, Title: "B duplicate"},
	})

	lessons := s.ListLessonsOrdered()
	if len(lessons) != 2 {
		t.Fatalf("len = %d, want 2 (duplicate unit dropped)", len(lessons))
	}
	if lessons[0].UnitNumber != 1 || lessons[1].UnitNumber != 2 {
		t.Errorf("order = %d, %d", lessons[0].UnitNumber, lessons[1].UnitNumber)
	}
	if lessons[1].Title != "B" {
		t.Errorf("kept title = %q, want first occurrence", lessons[1].Title)
	}
	if lessons[1].Pages[0].PageNumber != 1 {
		t.Errorf("pages not re-sorted: first page = %d", lessons[1].Pages[0].PageNumber)
	}
}

func TestReplaceLessonsDedupesPageNumbers(t *testing.T) {
	s := New()

	lessons, err := DecodeLessons(json.RawMessage(`[{
		"unit_number": 1,
		"title": "One",
		"pages": [
			{"page_number": 2, "sections": [{"id": "s1", "type": "text", "text": "first"}]},
			{"page_number": 2, "sections": [{"id": "s1", "type": "text", "text": "twin"}]},
			{"page_number": 1, "sections": []}
		]
	}]`))
	if err != nil {
		t.Fatalf("DecodeLessons: %v", err)
	}
	s.ReplaceLessons(lessons)

	lesson, err := s.GetLesson(1)
	if err != nil {
		t.Fatalf("GetLesson: %v", err)
	}
	if len(lesson.Pages) != 2 {
		t.Fatalf("pages = %d, want 2 (duplicate page numbers must collapse)", len(lesson.Pages))
	}
	if lesson.Pages[1].PageNumber != 2 || lesson.Pages[1].Sections[0].Text != "first" {
		t.Errorf("page 2 = %+v, want first occurrence kept", lesson.Pages[1])
	}

	// A later upsert must hit the surviving page, never a stale twin.
	if got := s.UpsertPage(1, "One", 2, []models.Section{textSection("s1", "replaced")}); got != ReplacedPage {
		t.Fatalf("upsert = %v, want ReplacedPage", got)
	}
	lesson, _ = s.GetLesson(1)
	if len(lesson.Pages) != 2 || lesson.Pages[1].Sections[0].Text != "replaced" {
		t.Errorf("after upsert pages = %+v", lesson.Pages)
	}
}

func TestTestsAndSummaries(t *testing.T) {
	s := New()
	s.AddTest(models.Test{ID: 7, Unit: "Unit A"})

	got, err := s.GetTest(7)
	if err != nil || got.Unit != "Unit A" {
		t.Fatalf("GetTest = %+v, %v", got, err)
	}
	if _, err := s.GetTest(8); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing test err = %v", err)
	}

	s.AddSummary(models.Summary{Unit: "Unit A", Summary: "first"})
	s.AddSummary(models.Summary{Unit: "Unit A", Summary: "second"})
	sums := s.ListSummaries()
	if len(sums) != 2 || sums[0].Summary != "first" {
		t.Errorf("summaries = %+v, want append-only insertion order", sums)
	}
}
