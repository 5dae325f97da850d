package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/oikos/internal/apperr"
	"github.com/starford/oikos/internal/session"
	"github.com/starford/oikos/internal/studyservice"
	"github.com/starford/oikos/internal/topics"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *studyservice.Service
	topics *topics.Registry
}

// NewHandler creates a new Handler.
func NewHandler(svc *studyservice.Service, reg *topics.Registry) *Handler {
	return &Handler{svc: svc, topics: reg}
}

// unitParam extracts the numeric unit number from the URL.
func unitParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "unit"))
}

// ListUnits handles GET /api/units.
func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	lessons := h.svc.Lessons(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"units": lessons,
		"total": len(lessons),
	})
}

// GetUnit handles GET /api/units/{unit}.
func (h *Handler) GetUnit(w http.ResponseWriter, r *http.Request) {
	unit, err := unitParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("unit must be numeric"))
		return
	}
	lesson, err := h.svc.Lesson(r.Context(), unit)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, lesson)
}

// UpsertPage handles PUT /api/units/{unit}/pages. This is the manual
// data-entry surface for one page: malformed JSON is rejected at this
// boundary with no state change, page-number collisions replace in place.
func (h *Handler) UpsertPage(w http.ResponseWriter, r *http.Request) {
	unit, err := unitParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("unit must be numeric"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	var req UpsertPageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.PageNumber < 1 {
		writeJSON(w, http.StatusBadRequest, errorBody("page_number must be >= 1"))
		return
	}

	outcome := h.svc.UpsertPage(r.Context(), unit, req.Title, req.PageNumber, req.Sections)
	writeJSON(w, http.StatusOK, UpsertPageResponse{
		Unit:    unit,
		Page:    req.PageNumber,
		Outcome: outcome.String(),
	})
}

// ListTests handles GET /api/tests.
func (h *Handler) ListTests(w http.ResponseWriter, r *http.Request) {
	tests := h.svc.Tests(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"tests": tests,
		"total": len(tests),
	})
}

// ListTopics handles GET /api/topics.
func (h *Handler) ListTopics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"topics": h.topics.List(),
	})
}

// TopicCurve handles GET /api/topics/{slug}/curve. Query parameters are the
// curve parameters; unknown ones are ignored, missing ones use the topic's
// defaults.
func (h *Handler) TopicCurve(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	topic, err := h.topics.Get(slug)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}

	params := make(map[string]float64)
	for key, vals := range r.URL.Query() {
		if len(vals) == 0 {
			continue
		}
		if f, perr := strconv.ParseFloat(vals[0], 64); perr == nil {
			params[key] = f
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"slug":   topic.Slug,
		"series": topic.Curve(params),
	})
}

// AddSummary handles POST /api/summaries. The body is the raw summary JSON
// exactly as the original entry surface accepted it.
func (h *Handler) AddSummary(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	sum, err := h.svc.AddSummaryJSON(r.Context(), body)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrMalformedJSON):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		case errors.Is(err, apperr.ErrEmptyText):
			writeJSON(w, http.StatusBadRequest, errorBody("summary is required"))
		default:
			slog.Error("add summary failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, sum)
}

// ListSummaries handles GET /api/summaries.
func (h *Handler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	sums := h.svc.Summaries(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"summaries": sums,
		"total":     len(sums),
	})
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// GetSession handles GET /api/session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":  sess.ID,
		"nav": sess.Nav(),
	})
}

// SetNav handles PUT /api/session/nav.
func (h *Handler) SetNav(w http.ResponseWriter, r *http.Request) {
	var nav session.Navigation
	if err := json.NewDecoder(r.Body).Decode(&nav); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if !session.ValidTab(nav.ActiveTab) {
		writeJSON(w, http.StatusBadRequest, errorBody("unknown tab"))
		return
	}
	sess := sessionFrom(r)
	sess.SetNav(nav)
	writeJSON(w, http.StatusOK, nav)
}
