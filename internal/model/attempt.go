package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptOutcome enumerates how a submission ended.
type AttemptOutcome string

const (
	AttemptCompleted AttemptOutcome = "completed"
	AttemptFailed    AttemptOutcome = "failed"
	AttemptCancelled AttemptOutcome = "cancelled"
	AttemptRejected  AttemptOutcome = "rejected"
)

// AssessmentAttempt is one entry of the submission log.
type AssessmentAttempt struct {
	ID         int64          `json:"id"`
	UserID     uuid.UUID      `json:"user_id"`
	Outcome    AttemptOutcome `json:"outcome"`
	TypeCode   *string        `json:"type_code,omitempty"`
	Error      *string        `json:"error,omitempty"`
	DurationMS int64          `json:"duration_ms"`
	CreatedAt  time.Time      `json:"created_at"`
}
