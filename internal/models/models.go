// Package models defines the domain types for Oikos.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Section types.
const (
	SectionText    = "text"
	SectionFormula = "formula"
	SectionGraph   = "graph"
)

// Question types. The wire values are inherited from the earliest content
// files and must stay stable across imports.
const (
	QuestionMultiple = "multiple"
	QuestionClassic  = "classic"
)

// GraphSpec describes a parametrized graph section. Params feed the topic
// curve evaluators; rendering is left entirely to the client.
type GraphSpec struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	GraphType   string             `json:"graph_type,omitempty"`
	Params      map[string]float64 `json:"params,omitempty"`
}

// Section is an atomic content block within a page. Type selects the payload:
// "text" and "formula" carry Text, "graph" carries Graph. The JSON form keeps
// the polymorphic "content" field of the original content files.
type Section struct {
	ID    string
	Type  string
	Text  string
	Graph *GraphSpec
}

type sectionJSON struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// MarshalJSON emits the polymorphic content field: a string for text and
// formula sections, a GraphSpec object for graph sections.
func (s Section) MarshalJSON() ([]byte, error) {
	var content any
	if s.Type == SectionGraph {
		g := s.Graph
		if g == nil {
			g = &GraphSpec{}
		}
		content = g
	} else {
		content = s.Text
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(sectionJSON{ID: s.ID, Type: s.Type, Content: raw})
}

// UnmarshalJSON decodes the polymorphic content field. Graph sections that
// predate graph_type/params (plain {title, description} objects) are accepted
// as-is.
func (s *Section) UnmarshalJSON(data []byte) error {
	var aux sectionJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.ID = aux.ID
	s.Type = aux.Type
	s.Text = ""
	s.Graph = nil

	if len(aux.Content) == 0 {
		return nil
	}
	if aux.Type == SectionGraph {
		var g GraphSpec
		if err := json.Unmarshal(aux.Content, &g); err != nil {
			return fmt.Errorf("section %q: graph content: %w", aux.ID, err)
		}
		s.Graph = &g
		return nil
	}
	if err := json.Unmarshal(aux.Content, &s.Text); err != nil {
		return fmt.Errorf("section %q: content: %w", aux.ID, err)
	}
	return nil
}

// Page is an ordered subdivision of a unit's content. Within a lesson page
// numbers are unique and sorted ascending.
type Page struct {
	PageNumber int       `json:"page_number"`
	Sections   []Section `json:"sections"`
}

// Lesson is a top-level content unit.
type Lesson struct {
	UnitNumber int    `json:"unit_number"`
	Title      string `json:"title"`
	Pages      []Page `json:"pages"`
}

// Question is a single quiz question. Correct is nil for classic
// (free-response) questions and an option index for multiple choice.
type Question struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
	Correct  *int     `json:"correct,omitempty"`
}

// Test is a self-test quiz attached to a unit.
type Test struct {
	ID        int        `json:"id"`
	Unit      string     `json:"unit"`
	Questions []Question `json:"questions"`
}

// Summary is a freeform, append-only unit summary.
type Summary struct {
	Unit    string `json:"unit"`
	Summary string `json:"summary"`
}

// Note is a free-text annotation attached to exactly one section location.
// IDs are timestamp-derived and unique within a running instance.
type Note struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
