package contentstore

import (
	"testing"
)

func TestDecodeCanonicalLessons(t *testing.T) {
	raw := []byte(`[
		{"unit_number": 2, "title": "Two", "pages": [
			{"page_number": 1, "sections": [{"id": "s1", "type": "text", "content": "hello"}]}
		]}
	]`)

	lessons, err := DecodeLessons(raw)
	if err != nil {
		t.Fatalf("DecodeLessons: %v", err)
	}
	if len(lessons) != 1 || lessons[0].UnitNumber != 2 {
		t.Fatalf("lessons = %+v", lessons)
	}
	if lessons[0].Pages[0].Sections[0].Text != "hello" {
		t.Errorf("section text = %q", lessons[0].Pages[0].Sections[0].Text)
	}
}

func TestDecodeLegacyFlatLesson(t *testing.T) {
	raw := []byte(`[
		{"id": 4, "title": "Legacy", "content": {"sections": [
			{"id": "s1", "type": "text", "content": "old body"},
			{"id": "s2", "type": "formula", "content": "x = y"}
		]}}
	]`)

	lessons, err := DecodeLessons(raw)
	if err != nil {
		t.Fatalf("DecodeLessons: %v", err)
	}
	l := lessons[0]
	if l.UnitNumber != 4 {
		t.Errorf("unit = %d, want legacy id promoted", l.UnitNumber)
	}
	if len(l.Pages) != 1 || l.Pages[0].PageNumber != 1 {
		t.Fatalf("legacy lesson pages = %+v, want single page 1", l.Pages)
	}
	if len(l.Pages[0].Sections) != 2 {
		t.Errorf("sections = %d, want 2", len(l.Pages[0].Sections))
	}
}

func TestDecodeLessonMissingIdentity(t *testing.T) {
	raw := []byte(`[{"title": "No identity"}]`)
	if _, err := DecodeLessons(raw); err == nil {
		t.Error("lesson without unit_number or id should fail")
	}
}

func TestDecodeGraphSection(t *testing.T) {
	raw := []byte(`[
		{"unit_number": 1, "title": "Graphs", "pages": [
			{"page_number": 1, "sections": [
				{"id": "g1", "type": "graph", "content": {
					"title": "Budget line",
					"description": "Two periods",
					"graph_type": "two-period-consumer",
					"params": {"r1": 100}
				}}
			]}
		]}
	]`)

	lessons, err := DecodeLessons(raw)
	if err != nil {
		t.Fatalf("DecodeLessons: %v", err)
	}
	g := lessons[0].Pages[0].Sections[0].Graph
	if g == nil {
		t.Fatal("graph payload not decoded")
	}
	if g.GraphType != "two-period-consumer" || g.Params["r1"] != 100 {
		t.Errorf("graph = %+v", g)
	}
}
