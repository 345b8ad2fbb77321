package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prepworks/prepworks-backend/internal/config"
	"github.com/prepworks/prepworks-backend/internal/handler"
	"github.com/prepworks/prepworks-backend/internal/middleware"
	"github.com/prepworks/prepworks-backend/internal/response"
	"github.com/prepworks/prepworks-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Subject    *handler.SubjectHandler
	Exam       *handler.ExamHandler
	Diagnostic *handler.DiagnosticHandler
	Assistant  *handler.AssistantHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// CORS: restrict to the configured list if set, otherwise allow all so
	// dev works without extra config.
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

	// Request ID first so every response carries metadata, then compression.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	// Uploaded answer sheets, served with aggressive caching (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Auth group (public, rate limited).
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes.
		auth.GET("/me", middleware.RequireStudentJWT(authService), handlers.Auth.Me)
		auth.POST("/logout", middleware.RequireStudentJWT(authService), handlers.Auth.Logout)
	}

	// Student API group (JWT + single device).
	api := router.Group("/api/v1")
	api.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		api.GET("/subjects", handlers.Subject.List)

		// Attempt lifecycle.
		api.POST("/attempts", handlers.Exam.Start)
		api.GET("/attempts/history", handlers.Exam.History)
		api.GET("/attempts/:attempt_id", handlers.Exam.GetAttempt)
		api.GET("/attempts/:attempt_id/questions", handlers.Exam.Questions)
		api.GET("/attempts/:attempt_id/state", handlers.Exam.State)
		api.POST("/attempts/:attempt_id/answers", handlers.Exam.Answer)
		api.POST("/attempts/:attempt_id/theory", handlers.Exam.TheoryAnswer)
		api.POST("/attempts/:attempt_id/navigate", handlers.Exam.Navigate)
		api.POST("/attempts/:attempt_id/request-submit", handlers.Exam.RequestSubmit)
		api.POST("/attempts/:attempt_id/cancel-submit", handlers.Exam.CancelSubmit)
		api.POST("/attempts/:attempt_id/submit", handlers.Exam.Submit)
		api.GET("/attempts/:attempt_id/review", handlers.Exam.Review)
		api.POST("/attempts/:attempt_id/leave", handlers.Exam.Leave)

		// Placement quiz.
		api.POST("/diagnostic", handlers.Diagnostic.Start)
		api.POST("/diagnostic/:attempt_id/submit", handlers.Diagnostic.Submit)

		// Study assistant.
		api.POST("/assistant/chat", handlers.Assistant.Chat)
		api.GET("/attempts/:attempt_id/explain/:question_id", handlers.Assistant.Explain)
	}

	// WebSocket group (token via query param).
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/attempts/:attempt_id/stream", handlers.WS.AttemptStream)
	}

	return router
}
