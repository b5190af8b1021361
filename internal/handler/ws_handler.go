package handler

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/soulmatch/soulmatch-backend/internal/middleware"
	"github.com/soulmatch/soulmatch-backend/internal/model"
	"github.com/soulmatch/soulmatch-backend/internal/response"
	"github.com/soulmatch/soulmatch-backend/internal/service"
	"github.com/soulmatch/soulmatch-backend/internal/validator"
	ws "github.com/soulmatch/soulmatch-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the assessment wizard over a WebSocket.
type WSHandler struct {
	assessmentService *service.AssessmentService
	submitLimiter     *middleware.RateLimiter
	log               zerolog.Logger
	upgrader          websocket.Upgrader
}

// NewWSHandler creates a new WSHandler. submitLimiter may be nil.
func NewWSHandler(assessmentService *service.AssessmentService, submitLimiter *middleware.RateLimiter, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		assessmentService: assessmentService,
		submitLimiter:     submitLimiter,
		log:               log.With().Str("component", "ws_handler").Logger(),
		upgrader:          buildUpgrader(allowedOrigins),
	}
}

// AssessmentStream godoc
// WS /ws/v1/assessment/stream?token=...
// Every wizard action answers with a state event. A submit runs in the background
// so that a cancel sent on the same socket can interrupt it.
func (h *WSHandler) AssessmentStream(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(raw)
	defer conn.Close()

	wsLog := h.log.With().Str("user_id", userID.String()).Logger()
	wsLog.Info().Msg("User connected")

	ctx := c.Request.Context()
	var submissions sync.WaitGroup
	defer submissions.Wait()

	for {
		var msg ws.RequestPayload
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionState:
			h.reply(conn, wsLog)(h.assessmentService.GetState(ctx, userID))
		case ws.ActionStart:
			h.reply(conn, wsLog)(h.assessmentService.Start(ctx, userID, msg.Resume))
		case ws.ActionAnswer:
			h.handleAnswer(ctx, conn, wsLog, userID, &msg)
		case ws.ActionNext:
			h.reply(conn, wsLog)(h.assessmentService.Next(ctx, userID))
		case ws.ActionPrev:
			h.reply(conn, wsLog)(h.assessmentService.Prev(ctx, userID))
		case ws.ActionCancel:
			h.reply(conn, wsLog)(h.assessmentService.Cancel(ctx, userID))
		case ws.ActionSubmit:
			if h.submitLimiter != nil && !h.submitLimiter.Allow("user:"+userID.String()) {
				_ = conn.WriteError(response.ErrRateLimitExceeded, "", nil)
				continue
			}
			_ = conn.WriteTyped(ws.AckResponse{Event: ws.EventSubmitting})
			submissions.Add(1)
			go func() {
				defer submissions.Done()
				h.handleSubmit(ctx, conn, wsLog, userID)
			}()
		case ws.ActionPing:
			_ = conn.WriteTyped(ws.AckResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			_ = conn.WriteError(response.ErrInvalidPayload, "unknown action: "+string(msg.Action), nil)
		}
	}
}

// reply returns a sink that writes a state event or the mapped error.
func (h *WSHandler) reply(conn *ws.Conn, log zerolog.Logger) func(model.SessionView, error) {
	return func(view model.SessionView, err error) {
		if err != nil {
			h.writeServiceError(conn, log, err)
			return
		}
		_ = conn.WriteTyped(ws.StateResponse{Event: ws.EventState, State: view})
	}
}

func (h *WSHandler) handleAnswer(ctx context.Context, conn *ws.Conn, log zerolog.Logger, userID uuid.UUID, msg *ws.RequestPayload) {
	req := model.SetAnswerRequest{QuestionIndex: msg.QuestionIndex, Value: msg.Value}
	if fields := validator.Struct(&req); fields != nil {
		_ = conn.WriteError(response.ErrValidation, "", fields)
		return
	}
	h.reply(conn, log)(h.assessmentService.SetAnswer(ctx, userID, *req.QuestionIndex, *req.Value))
}

func (h *WSHandler) handleSubmit(ctx context.Context, conn *ws.Conn, log zerolog.Logger, userID uuid.UUID) {
	profile, err := h.assessmentService.Submit(ctx, userID)
	if err != nil {
		h.writeServiceError(conn, log, err)
		return
	}
	log.Info().Str("type_code", profile.TypeCode).Msg("Assessment completed")
	_ = conn.WriteTyped(ws.CompletedResponse{Event: ws.EventCompleted, Personality: profile})
}

func (h *WSHandler) writeServiceError(conn *ws.Conn, log zerolog.Logger, err error) {
	_, code, detail := classify(err)
	if code == response.ErrInternal {
		log.Error().Err(err).Msg("WebSocket action failed")
	}
	_ = conn.WriteError(code, detail, nil)
}
