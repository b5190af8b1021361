package assessment

import (
	"errors"
	"fmt"

	"github.com/soulmatch/soulmatch-backend/internal/model"
)

var (
	ErrInvalidPhase = errors.New("operation not allowed in the current phase")
	ErrOutOfRange   = errors.New("value out of range")
	ErrIncomplete   = errors.New("all questions must be answered before submitting")
)

const (
	MinAnswerValue = 0
	MaxAnswerValue = 100
)

// Session is the wizard state machine for one user's questionnaire.
// It performs no I/O; callers load and save its State through a SessionStore.
type Session struct {
	questions []model.Question
	state     model.SessionState
}

// NewSession returns a fresh session in the intro phase.
func NewSession(questions []model.Question) *Session {
	return &Session{
		questions: questions,
		state: model.SessionState{
			Answers: model.AnswerSet{},
			Phase:   model.PhaseIntro,
		},
	}
}

// Restore rebuilds a session from persisted state. Entries that could not have
// been produced by the session itself (unknown ids, out-of-range values or index)
// are dropped or clamped.
func Restore(questions []model.Question, state model.SessionState) *Session {
	s := NewSession(questions)

	known := make(map[int]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}
	for id, v := range state.Answers {
		if known[id] && v >= MinAnswerValue && v <= MaxAnswerValue {
			s.state.Answers[id] = v
		}
	}

	s.state.CurrentQuestionIndex = s.clamp(state.CurrentQuestionIndex)
	if state.Phase.Valid() {
		s.state.Phase = state.Phase
	}
	return s
}

// State returns a copy of the session's persisted state.
func (s *Session) State() model.SessionState {
	return model.SessionState{
		Answers:              s.state.Answers.Clone(),
		CurrentQuestionIndex: s.state.CurrentQuestionIndex,
		Phase:                s.state.Phase,
	}
}

// Phase returns the current wizard phase.
func (s *Session) Phase() model.Phase {
	return s.state.Phase
}

// Start enters the question phase. Without resume the answers and position are discarded.
func (s *Session) Start(resume bool) error {
	if s.state.Phase == model.PhaseSubmitting {
		return ErrInvalidPhase
	}
	if !resume || s.state.Phase == model.PhaseComplete {
		s.state.Answers = model.AnswerSet{}
		s.state.CurrentQuestionIndex = 0
	}
	s.state.Phase = model.PhaseQuestions
	return nil
}

// SetAnswer records value for the question at questionIndex.
func (s *Session) SetAnswer(questionIndex, value int) error {
	if s.state.Phase != model.PhaseQuestions {
		return ErrInvalidPhase
	}
	if questionIndex < 0 || questionIndex >= len(s.questions) {
		return fmt.Errorf("%w: question index %d", ErrOutOfRange, questionIndex)
	}
	if value < MinAnswerValue || value > MaxAnswerValue {
		return fmt.Errorf("%w: answer %d", ErrOutOfRange, value)
	}
	s.state.Answers[s.questions[questionIndex].ID] = value
	return nil
}

// Next moves one question forward; it is a no-op on the last question.
func (s *Session) Next() error {
	return s.move(1)
}

// Prev moves one question back; it is a no-op on the first question.
func (s *Session) Prev() error {
	return s.move(-1)
}

func (s *Session) move(delta int) error {
	if s.state.Phase != model.PhaseQuestions {
		return ErrInvalidPhase
	}
	s.state.CurrentQuestionIndex = s.clamp(s.state.CurrentQuestionIndex + delta)
	return nil
}

func (s *Session) clamp(i int) int {
	last := len(s.questions) - 1
	switch {
	case last < 0, i < 0:
		return 0
	case i > last:
		return last
	default:
		return i
	}
}

// Progress is the position in the questionnaire as a percentage, for display only.
func (s *Session) Progress() float64 {
	if len(s.questions) < 2 {
		return 0
	}
	return float64(s.state.CurrentQuestionIndex) / float64(len(s.questions)-1) * 100
}

// CanSubmit reports whether every question has an answer.
func (s *Session) CanSubmit() bool {
	if len(s.state.Answers) != len(s.questions) {
		return false
	}
	for _, q := range s.questions {
		if _, ok := s.state.Answers[q.ID]; !ok {
			return false
		}
	}
	return true
}

// Resumable reports whether there is progress worth offering to continue.
func (s *Session) Resumable() bool {
	switch s.state.Phase {
	case model.PhaseIntro, model.PhaseQuestions:
		return len(s.state.Answers) > 0
	}
	return false
}

// BeginSubmit moves the session into the submitting phase.
func (s *Session) BeginSubmit() error {
	if s.state.Phase != model.PhaseQuestions {
		return ErrInvalidPhase
	}
	if !s.CanSubmit() {
		return ErrIncomplete
	}
	s.state.Phase = model.PhaseSubmitting
	return nil
}

// FailSubmit returns a submitting session to the question phase, answers intact.
func (s *Session) FailSubmit() {
	if s.state.Phase == model.PhaseSubmitting {
		s.state.Phase = model.PhaseQuestions
	}
}

// CompleteSubmit marks the submission as successful.
func (s *Session) CompleteSubmit() error {
	if s.state.Phase != model.PhaseSubmitting {
		return ErrInvalidPhase
	}
	s.state.Phase = model.PhaseComplete
	return nil
}

// Items pairs every question with its answer, in questionnaire order.
// It is only meaningful once CanSubmit is true.
func (s *Session) Items() []AnsweredQuestion {
	items := make([]AnsweredQuestion, 0, len(s.questions))
	for _, q := range s.questions {
		items = append(items, AnsweredQuestion{Question: q, Value: s.state.Answers[q.ID]})
	}
	return items
}

// AnsweredQuestion is a question together with the user's slider value.
type AnsweredQuestion struct {
	Question model.Question
	Value    int
}

// View renders the client-facing snapshot of the session.
func (s *Session) View() model.SessionView {
	return model.SessionView{
		Phase:                s.state.Phase,
		Answers:              s.state.Answers.Clone(),
		CurrentQuestionIndex: s.state.CurrentQuestionIndex,
		QuestionCount:        len(s.questions),
		Progress:             s.Progress(),
		CanSubmit:            s.CanSubmit(),
		Resumable:            s.Resumable(),
	}
}
