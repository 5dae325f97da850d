package api

import (
	"github.com/starford/oikos/internal/models"
)

// UpsertPageRequest is the manual data-entry body for one page of a unit.
// Sections use the same polymorphic shape as the content files.
type UpsertPageRequest struct {
	Title      string           `json:"title"`
	PageNumber int              `json:"page_number"`
	Sections   []models.Section `json:"sections"`
}

// UpsertPageResponse reports what the upsert did.
type UpsertPageResponse struct {
	Unit    int    `json:"unit"`
	Page    int    `json:"page"`
	Outcome string `json:"outcome"`
}

// AddNoteRequest attaches a note to a section location.
type AddNoteRequest struct {
	Unit    int    `json:"unit"`
	Page    int    `json:"page"`
	Section string `json:"section"`
	Text    string `json:"text"`
}

// SelectTestRequest selects a quiz for the session.
type SelectTestRequest struct {
	TestID int `json:"test_id"`
}

// AnswerRequest records one answer. Selected is the option index for
// multiple-choice questions; Text holds a classic (free-response) answer.
type AnswerRequest struct {
	QuestionID string `json:"question_id"`
	Selected   *int   `json:"selected,omitempty"`
	Text       string `json:"text,omitempty"`
}
