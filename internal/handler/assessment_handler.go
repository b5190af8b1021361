package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/soulmatch/soulmatch-backend/internal/middleware"
	"github.com/soulmatch/soulmatch-backend/internal/model"
	"github.com/soulmatch/soulmatch-backend/internal/response"
	"github.com/soulmatch/soulmatch-backend/internal/service"
	"github.com/soulmatch/soulmatch-backend/internal/validator"
)

// AssessmentHandler exposes the questionnaire wizard over REST.
type AssessmentHandler struct {
	assessmentService *service.AssessmentService
	log               zerolog.Logger
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(assessmentService *service.AssessmentService, log zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentService: assessmentService,
		log:               log.With().Str("component", "assessment_handler").Logger(),
	}
}

// GetQuestions godoc
// GET /api/v1/assessment/questions
func (h *AssessmentHandler) GetQuestions(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"questions": h.assessmentService.Questions()})
}

// GetState godoc
// GET /api/v1/assessment/state
// Returns the session, including whether there is progress to resume.
func (h *AssessmentHandler) GetState(c *gin.Context) {
	view, err := h.assessmentService.GetState(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Start godoc
// POST /api/v1/assessment/start
// Body is optional; {"resume": true} continues stored progress.
func (h *AssessmentHandler) Start(c *gin.Context) {
	var req model.StartAssessmentRequest
	if c.Request.ContentLength != 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	view, err := h.assessmentService.Start(c.Request.Context(), middleware.GetUserID(c), req.Resume)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// SetAnswer godoc
// PUT /api/v1/assessment/answers
func (h *AssessmentHandler) SetAnswer(c *gin.Context) {
	var req model.SetAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.assessmentService.SetAnswer(c.Request.Context(), middleware.GetUserID(c), *req.QuestionIndex, *req.Value)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Next godoc
// POST /api/v1/assessment/next
func (h *AssessmentHandler) Next(c *gin.Context) {
	view, err := h.assessmentService.Next(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Prev godoc
// POST /api/v1/assessment/prev
func (h *AssessmentHandler) Prev(c *gin.Context) {
	view, err := h.assessmentService.Prev(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Submit godoc
// POST /api/v1/assessment/submit
// Scores the answers and stores the personality. Blocks until scoring finishes.
func (h *AssessmentHandler) Submit(c *gin.Context) {
	profile, err := h.assessmentService.Submit(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// Cancel godoc
// POST /api/v1/assessment/cancel
// Aborts a running submission; the answers stay in place.
func (h *AssessmentHandler) Cancel(c *gin.Context) {
	view, err := h.assessmentService.Cancel(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}
