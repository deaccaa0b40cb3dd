package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/pdfmentor-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pdfmentor-backend/internal/http/middleware"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	AuthMiddleware   *httpMW.AuthMiddleware
	UserHandler      *httpH.UserHandler
	EducationHandler *httpH.EducationHandler
	ChatHandler      *httpH.ChatHandler
	RealtimeHandler  *httpH.RealtimeHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readycheck", cfg.HealthHandler.ReadyCheck)
	}

	protected := r.Group("/api")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
		}

		// Education
		if h := cfg.EducationHandler; h != nil {
			protected.GET("/summary/:doc_id", h.GetSummary)
			protected.GET("/mindmap/:doc_id", h.GetMindmap)
			protected.GET("/quiz/:doc_id", h.GetQuiz)
			protected.POST("/quiz/:quiz_id/submit", h.SubmitQuiz)
			protected.POST("/track/:doc_id/read", h.TrackRead)
			protected.GET("/progress/session/:session_id", h.SessionProgress)
			protected.POST("/documents/:doc_id/study-materials", h.GenerateStudyMaterials)
		}

		// Chat
		if h := cfg.ChatHandler; h != nil {
			protected.POST("/chat/sessions", h.CreateSession)
			protected.GET("/chat/sessions", h.ListSessions)
			protected.GET("/chat/sessions/:id/messages", h.ListMessages)
			protected.POST("/chat/sessions/:id/documents", h.AttachDocuments)
			protected.POST("/chat/stream", h.Stream)
		}
	}

	return r
}
