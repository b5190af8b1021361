package router

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/soulmatch/soulmatch-backend/internal/config"
	"github.com/soulmatch/soulmatch-backend/internal/handler"
	"github.com/soulmatch/soulmatch-backend/internal/middleware"
	"github.com/soulmatch/soulmatch-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Assessment  *handler.AssessmentHandler
	Personality *handler.PersonalityHandler
	WS          *handler.WSHandler
	System      *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// submitLimiter guards the submit endpoint per user.
func SetupRouter(
	auth middleware.TokenValidator,
	handlers *Handlers,
	submitLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// promhttp negotiates its own compression.
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Skipper: func(c *gin.Context) bool {
			return strings.HasPrefix(c.Request.URL.Path, "/metrics")
		},
	}))

	// Health check and metrics.
	router.GET("/health", handlers.System.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ─── 1. Assessment Group (User JWT) ────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireUserJWT(auth))
	{
		assessment := api.Group("/assessment")
		assessment.GET("/questions", middleware.CacheControl(3600), handlers.Assessment.GetQuestions)

		live := assessment.Group("", middleware.NoStore())
		{
			live.GET("/state", handlers.Assessment.GetState)
			live.POST("/start", handlers.Assessment.Start)
			live.PUT("/answers", handlers.Assessment.SetAnswer)
			live.POST("/next", handlers.Assessment.Next)
			live.POST("/prev", handlers.Assessment.Prev)
			live.POST("/submit", submitLimiter.PerUser(), handlers.Assessment.Submit)
			live.POST("/cancel", handlers.Assessment.Cancel)
		}

		personality := api.Group("/personality", middleware.NoStore())
		{
			personality.GET("", handlers.Personality.Get)
			personality.GET("/attempts", handlers.Personality.ListAttempts)
		}
	}

	// ─── 2. WebSocket Group (User WS Auth) ─────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireUserWSAuth(auth))
	{
		ws.GET("/assessment/stream", handlers.WS.AssessmentStream)
	}

	log.Info().Int("routes", len(router.Routes())).Msg("Router configured")
	return router
}
