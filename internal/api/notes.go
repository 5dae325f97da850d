package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starford/oikos/internal/apperr"
	"github.com/starford/oikos/internal/noteindex"
)

// locationQuery builds a note location from unit/page/section query
// parameters. page defaults to 1 when omitted.
func locationQuery(r *http.Request) (noteindex.Location, error) {
	q := r.URL.Query()
	unit, err := strconv.Atoi(q.Get("unit"))
	if err != nil {
		return noteindex.Location{}, errors.New("unit must be numeric")
	}
	page := 1
	if p := q.Get("page"); p != "" {
		page, err = strconv.Atoi(p)
		if err != nil {
			return noteindex.Location{}, errors.New("page must be numeric")
		}
	}
	section := q.Get("section")
	if section == "" {
		return noteindex.Location{}, errors.New("section is required")
	}
	return noteindex.Location{Unit: unit, Page: page, Section: section}, nil
}

// AddNote handles POST /api/notes. Blank text is silently ignored (204):
// the original entry surface never surfaced it as an error either.
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req AddNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Section == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("section is required"))
		return
	}
	page := req.Page
	if page == 0 {
		page = 1
	}
	loc := noteindex.Location{Unit: req.Unit, Page: page, Section: req.Section}

	note, err := h.svc.AddNote(r.Context(), loc, req.Text)
	if err != nil {
		if errors.Is(err, apperr.ErrEmptyText) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		slog.Error("add note failed", slog.String("location", loc.String()), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"location": loc.String(),
		"note":     note,
	})
}

// ListAllNotes handles GET /api/notes: every note with its resolved unit
// title. Orphaned locations keep their notes and carry the unknown-unit
// label.
func (h *Handler) ListAllNotes(w http.ResponseWriter, r *http.Request) {
	entries := h.svc.AllNotes(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"notes": entries,
		"total": len(entries),
	})
}

// NotesAt handles GET /api/notes/at.
func (h *Handler) NotesAt(w http.ResponseWriter, r *http.Request) {
	loc, err := locationQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"location": loc.String(),
		"notes":    h.svc.NotesAt(r.Context(), loc),
	})
}

// DeleteNoteAt handles DELETE /api/notes/at?index=N. Deleting a
// non-existent position is a logged no-op, never an error response.
func (h *Handler) DeleteNoteAt(w http.ResponseWriter, r *http.Request) {
	loc, err := locationQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be numeric"))
		return
	}

	if err := h.svc.DeleteNote(r.Context(), loc, index); err != nil && !errors.Is(err, apperr.ErrIndexOutOfRange) {
		slog.Error("delete note failed", slog.String("location", loc.String()), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
