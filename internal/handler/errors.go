package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/soulmatch/soulmatch-backend/internal/assessment"
	"github.com/soulmatch/soulmatch-backend/internal/response"
	"github.com/soulmatch/soulmatch-backend/internal/service"
)

// classify maps a service error onto its HTTP status and API error code.
// detail is the raw upstream message for scoring failures.
func classify(err error) (status int, code response.ErrCode, detail string) {
	var scoringErr *service.ScoringError
	switch {
	case errors.As(err, &scoringErr):
		return http.StatusBadGateway, response.ErrScoringFailed, scoringErr.Err.Error()
	case errors.Is(err, service.ErrIncompleteSubmission):
		return http.StatusUnprocessableEntity, response.ErrIncompleteSubmission, ""
	case errors.Is(err, service.ErrMissingIdentity):
		return http.StatusNotFound, response.ErrMissingIdentity, ""
	case errors.Is(err, service.ErrSubmissionInProgress):
		return http.StatusConflict, response.ErrSubmissionInProgress, ""
	case errors.Is(err, service.ErrSubmissionCancelled):
		return http.StatusConflict, response.ErrSubmissionCancelled, ""
	case errors.Is(err, service.ErrNothingToCancel):
		return http.StatusConflict, response.ErrNothingToCancel, ""
	case errors.Is(err, assessment.ErrInvalidPhase):
		return http.StatusConflict, response.ErrInvalidPhase, ""
	case errors.Is(err, assessment.ErrOutOfRange):
		return http.StatusBadRequest, response.ErrValidation, err.Error()
	default:
		return http.StatusInternalServerError, response.ErrInternal, ""
	}
}

// failService writes the error envelope for err. Unexpected errors are logged.
func failService(c *gin.Context, log zerolog.Logger, err error) {
	status, code, detail := classify(err)
	if code == response.ErrInternal {
		log.Error().Err(err).
			Str("path", c.FullPath()).
			Str("request_id", c.GetString(response.ContextKeyRequestID)).
			Msg("Request failed")
	}
	if detail != "" {
		response.FailWithDetail(c, status, code, detail)
		return
	}
	response.Fail(c, status, code)
}
