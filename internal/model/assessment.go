package model

// Phase enumerates the states of the assessment wizard.
type Phase string

const (
	PhaseIntro      Phase = "intro"
	PhaseQuestions  Phase = "questions"
	PhaseSubmitting Phase = "submitting"
	PhaseComplete   Phase = "complete"
)

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	switch p {
	case PhaseIntro, PhaseQuestions, PhaseSubmitting, PhaseComplete:
		return true
	}
	return false
}

// AnswerSet maps question ids to slider values in [0,100].
type AnswerSet map[int]int

// Clone returns an independent copy of the answer set.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// SessionState is the persisted part of a user's assessment session.
type SessionState struct {
	Answers              AnswerSet `json:"answers"`
	CurrentQuestionIndex int       `json:"current_question_index"`
	Phase                Phase     `json:"phase"`
}

// SessionView is what clients see of their session.
type SessionView struct {
	Phase                Phase     `json:"phase"`
	Answers              AnswerSet `json:"answers"`
	CurrentQuestionIndex int       `json:"current_question_index"`
	QuestionCount        int       `json:"question_count"`
	Progress             float64   `json:"progress"`
	CanSubmit            bool      `json:"can_submit"`
	Resumable            bool      `json:"resumable"`
}

// StartAssessmentRequest is the payload for entering the question phase.
type StartAssessmentRequest struct {
	Resume bool `json:"resume"`
}

// SetAnswerRequest is the payload for answering a single question.
type SetAnswerRequest struct {
	QuestionIndex *int `json:"question_index" binding:"required,min=0,max=19"`
	Value         *int `json:"value" binding:"required,min=0,max=100"`
}
