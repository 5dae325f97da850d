package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/oikos/internal/session"
	"github.com/starford/oikos/internal/studyservice"
	"github.com/starford/oikos/internal/topics"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *studyservice.Service, reg *topics.Registry, sessions *session.Manager, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, reg)

	r := chi.NewRouter()
	r.Use(SessionMiddleware(sessions))

	// Content.
	r.Get("/units", h.ListUnits)
	r.Get("/units/{unit}", h.GetUnit)
	r.Put("/units/{unit}/pages", h.UpsertPage)

	// Topics and curves.
	r.Get("/topics", h.ListTopics)
	r.Get("/topics/{slug}/curve", h.TopicCurve)

	// Notes.
	r.Post("/notes", h.AddNote)
	r.Get("/notes", h.ListAllNotes)
	r.Get("/notes/at", h.NotesAt)
	r.Delete("/notes/at", h.DeleteNoteAt)

	// Quizzes.
	r.Get("/tests", h.ListTests)
	r.Get("/quiz", h.QuizView)
	r.Post("/quiz/select", h.SelectTest)
	r.Post("/quiz/answer", h.Answer)
	r.Post("/quiz/reveal", h.ToggleReveal)
	r.Post("/quiz/deselect", h.DeselectTest)

	// Summaries.
	r.Post("/summaries", h.AddSummary)
	r.Get("/summaries", h.ListSummaries)

	// Search.
	r.Get("/search", h.Search)

	// Session state.
	r.Get("/session", h.GetSession)
	r.Put("/session/nav", h.SetNav)

	// Snapshot transfer.
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)

	// SSE endpoint.
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
