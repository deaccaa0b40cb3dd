package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/pdfmentor-backend/internal/http"
	httpH "github.com/yungbote/pdfmentor-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pdfmentor-backend/internal/http/middleware"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
	"github.com/yungbote/pdfmentor-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	User      *httpH.UserHandler
	Education *httpH.EducationHandler
	Chat      *httpH.ChatHandler
	Realtime  *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, services Services, sseHub *realtime.SSEHub, db *gorm.DB, clients *Clients) Handlers {
	log.Info("Wiring handlers...")
	checks := map[string]httpH.Pinger{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if clients.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return clients.Redis.Ping(ctx).Err() }
	}
	return Handlers{
		Health:    httpH.NewHealthHandler(checks),
		User:      httpH.NewUserHandler(log, services.User),
		Education: httpH.NewEducationHandler(log, services.Progress, services.Quiz, services.Materials),
		Chat:      httpH.NewChatHandler(log, services.Chat),
		Realtime:  httpH.NewRealtimeHandler(log, sseHub),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *http.Server {
	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewServer(http.RouterConfig{
		Log:              log,
		ServiceName:      serviceName,
		AllowedOrigins:   cfg.AllowedOrigins,
		AuthMiddleware:   middleware.Auth,
		UserHandler:      handlers.User,
		EducationHandler: handlers.Education,
		ChatHandler:      handlers.Chat,
		RealtimeHandler:  handlers.Realtime,
		HealthHandler:    handlers.Health,
	})
}
