package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired   ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid    ErrCode = "TOKEN_INVALID"
	ErrTokenExpired    ErrCode = "TOKEN_EXPIRED"
	ErrMissingIdentity ErrCode = "MISSING_IDENTITY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Assessment ────────────────────────────────────────────────────
	ErrIncompleteSubmission ErrCode = "INCOMPLETE_SUBMISSION"
	ErrSubmissionInProgress ErrCode = "SUBMISSION_IN_PROGRESS"
	ErrSubmissionCancelled  ErrCode = "SUBMISSION_CANCELLED"
	ErrNothingToCancel      ErrCode = "NOTHING_TO_CANCEL"
	ErrInvalidPhase         ErrCode = "INVALID_PHASE"
	ErrScoringFailed        ErrCode = "SCORING_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."
	case ErrMissingIdentity:
		return "No profile was found for your account. Please sign in again."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."

	// ─── Assessment ────────────────────────────────────────────────────
	case ErrIncompleteSubmission:
		return "Please answer all questions before submitting."
	case ErrSubmissionInProgress:
		return "Your answers are already being analysed."
	case ErrSubmissionCancelled:
		return "The analysis was cancelled. Your answers are saved."
	case ErrNothingToCancel:
		return "There is no analysis running."
	case ErrInvalidPhase:
		return "This action is not available at this step of the test."
	case ErrScoringFailed:
		return "We could not analyse your answers. Your answers are saved, please try again."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
