package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/starford/oikos/internal/apperr"
	"github.com/starford/oikos/internal/snapshot"
)

// Export handles GET /api/export: encodes the full state, saves a
// timestamped copy under the export folder, and returns the document as a
// download.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	path, data, err := h.svc.Export(r.Context(), now)
	if err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+snapshot.ExportFileName(now)+`"`)
	w.Header().Set("X-Export-Path", path)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Import handles POST /api/import. The body is a snapshot document; each
// collection present fully replaces the in-memory one, absent collections
// are untouched. Malformed top-level JSON is rejected with no state change.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 50<<20)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	res, err := h.svc.Import(r.Context(), body)
	if err != nil {
		if errors.Is(err, apperr.ErrMalformedJSON) {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON file"))
			return
		}
		slog.Error("import failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
