package router

import (
	"net/http"
	"time"

	"github.com/certlab/certprep-backend/internal/config"
	"github.com/certlab/certprep-backend/internal/handler"
	"github.com/certlab/certprep-backend/internal/middleware"
	"github.com/certlab/certprep-backend/internal/response"
	"github.com/certlab/certprep-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Exam    *handler.ExamHandler
	Result  *handler.ResultHandler
	Monitor *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1")
	{
		publicAPI.GET("/certifications", handlers.Exam.ListCertifications)
	}

	// Rate limiter for exam starts (10 per minute per IP). Progress saves
	// and clock polls are frequent by nature and stay unthrottled.
	startLimiter := middleware.NewRateLimiter(10, time.Minute)

	// ─── 1. Exam Group (JWT) ───────────────────────────────────────────
	examAPI := router.Group("/api/v1/exams")
	examAPI.Use(middleware.RequireAuth(authService))
	{
		examAPI.POST("", startLimiter.Middleware(), handlers.Exam.StartExam)
		examAPI.GET("/sessions/:session_id", handlers.Exam.GetSession)
		examAPI.PUT("/sessions/:session_id/progress", handlers.Exam.SaveProgress)
		examAPI.POST("/sessions/:session_id/submit", handlers.Exam.SubmitExam)
		examAPI.GET("/sessions/:session_id/clock", handlers.Exam.GetClock)
	}

	// ─── 2. Result Group (JWT) ─────────────────────────────────────────
	resultAPI := router.Group("/api/v1/results")
	resultAPI.Use(middleware.RequireAuth(authService))
	{
		resultAPI.GET("", handlers.Result.ListResults)
		resultAPI.GET("/:result_id", handlers.Result.GetResult)
	}

	// ─── 3. WebSocket Group (WS Auth) ──────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/monitor", handlers.Monitor.Stream)
	}

	return router
}
