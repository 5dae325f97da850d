package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/starford/oikos/internal/apperr"
	"github.com/starford/oikos/internal/quiz"
)

// SelectTest handles POST /api/quiz/select: Browsing → InProgress, answers
// reset.
func (h *Handler) SelectTest(w http.ResponseWriter, r *http.Request) {
	var req SelectTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	test, err := h.svc.Test(r.Context(), req.TestID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	sess := sessionFrom(r)
	sess.Quiz.Select(test)
	writeJSON(w, http.StatusOK, sess.Quiz.View())
}

// Answer handles POST /api/quiz/answer. Answers stay mutable while revealed.
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	sess := sessionFrom(r)
	err := sess.Quiz.Answer(req.QuestionID, quiz.Answer{Selected: req.Selected, Text: req.Text})
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("no such question in the selected test"))
		case errors.Is(err, apperr.ErrIndexOutOfRange):
			writeJSON(w, http.StatusBadRequest, errorBody("selected option out of range"))
		default:
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, sess.Quiz.View())
}

// ToggleReveal handles POST /api/quiz/reveal: InProgress ⇄ Revealed,
// non-destructive. The revealed view carries the graded results.
func (h *Handler) ToggleReveal(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if _, err := sess.Quiz.ToggleReveal(); err != nil {
		writeJSON(w, http.StatusConflict, errorBody("no test selected"))
		return
	}
	writeJSON(w, http.StatusOK, sess.Quiz.View())
}

// DeselectTest handles POST /api/quiz/deselect: back to Browsing, answers
// discarded.
func (h *Handler) DeselectTest(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.Quiz.Deselect()
	writeJSON(w, http.StatusOK, sess.Quiz.View())
}

// QuizView handles GET /api/quiz.
func (h *Handler) QuizView(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	writeJSON(w, http.StatusOK, sess.Quiz.View())
}
