package websocket

import (
	"github.com/soulmatch/soulmatch-backend/internal/model"
	"github.com/soulmatch/soulmatch-backend/internal/response"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionState  Action = "state"
	ActionStart  Action = "start"
	ActionAnswer Action = "answer"
	ActionNext   Action = "next"
	ActionPrev   Action = "prev"
	ActionSubmit Action = "submit"
	ActionCancel Action = "cancel"
	ActionPing   Action = "ping"
)

// RequestPayload is every client message. Only the fields of the given action are read.
type RequestPayload struct {
	Action        Action `json:"action"`
	Resume        bool   `json:"resume,omitempty"`
	QuestionIndex *int   `json:"question_index,omitempty"`
	Value         *int   `json:"value,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState      Event = "state"
	EventSubmitting Event = "submitting"
	EventCompleted  Event = "completed"
	EventError      Event = "error"
	EventPong       Event = "pong"
)

// StateResponse carries the session after every wizard action.
type StateResponse struct {
	Event Event             `json:"event"`
	State model.SessionView `json:"state"`
}

// CompletedResponse is pushed when a submission has been scored and stored.
type CompletedResponse struct {
	Event       Event                     `json:"event"`
	Personality *model.PersonalityProfile `json:"personality"`
}

type ErrorResponse struct {
	Event  Event             `json:"event"`
	Code   response.ErrCode  `json:"code"`
	Error  string            `json:"error"`
	Detail string            `json:"detail,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// AckResponse is an event without payload (pong, submitting).
type AckResponse struct {
	Event Event `json:"event"`
}
