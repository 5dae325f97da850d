// Package quiz implements the per-session self-test state machine:
// Browsing → InProgress ⇄ Revealed. There is no terminal state; a session is
// reusable across tests. Answers live only in memory and are never part of a
// snapshot.
package quiz

import (
	"sync"

	"github.com/starford/oikos/internal/apperr"
	"github.com/starford/oikos/internal/models"
)

// Phase is the quiz state machine phase.
type Phase int

const (
	// Browsing means no test is selected.
	Browsing Phase = iota
	// InProgress means a test is selected, answers are mutable, correctness
	// is hidden.
	InProgress
	// Revealed keeps answers mutable but shows correctness.
	Revealed
)

func (p Phase) String() string {
	switch p {
	case Browsing:
		return "browsing"
	case InProgress:
		return "in_progress"
	case Revealed:
		return "revealed"
	default:
		return "unknown"
	}
}

// Answer is a transient per-question answer: an option index for multiple
// choice, free text for classic questions.
type Answer struct {
	Selected *int   `json:"selected,omitempty"`
	Text     string `json:"text,omitempty"`
}

// QuestionResult is the graded view of one question while revealed.
// Multiple-choice questions grade by index equality; classic questions are
// never auto-graded, so Correct stays nil for them.
type QuestionResult struct {
	QuestionID  string `json:"question_id"`
	Answered    bool   `json:"answered"`
	Correct     *bool  `json:"correct,omitempty"`
	CorrectText string `json:"correct_text,omitempty"`
}

// View is the renderable session state.
type View struct {
	Phase   string            `json:"phase"`
	Test    *models.Test      `json:"test,omitempty"`
	Answers map[string]Answer `json:"answers,omitempty"`
	Results []QuestionResult  `json:"results,omitempty"`
}

// Session holds the currently selected test, the per-question answers, and
// the answer-reveal toggle.
type Session struct {
	mu      sync.Mutex
	phase   Phase
	test    *models.Test
	answers map[string]Answer
}

// NewSession creates a session in the Browsing phase.
func NewSession() *Session {
	return &Session{phase: Browsing, answers: make(map[string]Answer)}
}

// Select moves to InProgress with the given test, discarding any previous
// answers.
func (s *Session) Select(t models.Test) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.test = &t
	s.answers = make(map[string]Answer)
	s.phase = InProgress
}

// Deselect returns to Browsing from any phase and discards the in-memory
// answers.
func (s *Session) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.test = nil
	s.answers = make(map[string]Answer)
	s.phase = Browsing
}

// Answer records an answer for a question of the selected test. Answers stay
// mutable while revealed. Unknown questions and out-of-range option indexes
// are rejected at this boundary.
func (s *Session) Answer(questionID string, ans Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.test == nil {
		return apperr.ErrNotFound
	}
	var q *models.Question
	for i := range s.test.Questions {
		if s.test.Questions[i].ID == questionID {
			q = &s.test.Questions[i]
			break
		}
	}
	if q == nil {
		return apperr.ErrNotFound
	}
	if q.Type == models.QuestionMultiple {
		if ans.Selected == nil || *ans.Selected < 0 || *ans.Selected >= len(q.Options) {
			return apperr.ErrIndexOutOfRange
		}
	}
	s.answers[questionID] = ans
	return nil
}

// ToggleReveal flips between InProgress and Revealed without touching
// answers. It fails when no test is selected.
func (s *Session) ToggleReveal() (Phase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case InProgress:
		s.phase = Revealed
	case Revealed:
		s.phase = InProgress
	default:
		return Browsing, apperr.ErrNotFound
	}
	return s.phase, nil
}

// View returns the current session state, including graded results while
// revealed.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{Phase: s.phase.String()}
	if s.test == nil {
		return v
	}
	t := *s.test
	v.Test = &t

	v.Answers = make(map[string]Answer, len(s.answers))
	for id, a := range s.answers {
		v.Answers[id] = a
	}

	if s.phase == Revealed {
		v.Results = gradeLocked(s.test, s.answers)
	}
	return v
}

func gradeLocked(t *models.Test, answers map[string]Answer) []QuestionResult {
	results := make([]QuestionResult, 0, len(t.Questions))
	for _, q := range t.Questions {
		ans, answered := answers[q.ID]
		r := QuestionResult{QuestionID: q.ID, Answered: answered}

		if q.Type == models.QuestionMultiple && q.Correct != nil {
			ci := *q.Correct
			if ci >= 0 && ci < len(q.Options) {
				r.CorrectText = q.Options[ci]
			}
			if answered && ans.Selected != nil {
				correct := *ans.Selected == ci
				r.Correct = &correct
			}
		}
		results = append(results, r)
	}
	return results
}
