package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/soulmatch/soulmatch-backend/internal/middleware"
	"github.com/soulmatch/soulmatch-backend/internal/response"
	"github.com/soulmatch/soulmatch-backend/internal/service"
	"github.com/soulmatch/soulmatch-backend/internal/validator"
)

// PersonalityHandler serves stored assessment results.
type PersonalityHandler struct {
	personalityService *service.PersonalityService
	log                zerolog.Logger
}

// NewPersonalityHandler creates a new PersonalityHandler.
func NewPersonalityHandler(personalityService *service.PersonalityService, log zerolog.Logger) *PersonalityHandler {
	return &PersonalityHandler{
		personalityService: personalityService,
		log:                log.With().Str("component", "personality_handler").Logger(),
	}
}

type attemptsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Get godoc
// GET /api/v1/personality
func (h *PersonalityHandler) Get(c *gin.Context) {
	p, err := h.personalityService.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// ListAttempts godoc
// GET /api/v1/personality/attempts?limit=20
func (h *PersonalityHandler) ListAttempts(c *gin.Context) {
	var q attemptsQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempts, err := h.personalityService.Attempts(c.Request.Context(), middleware.GetUserID(c), q.Limit)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	limit := q.Limit
	if limit == 0 {
		limit = service.DefaultAttemptLimit
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": attempts}, &response.Pagination{
		Limit:      limit,
		TotalItems: len(attempts),
	})
}
