package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/pdfmentor-backend/internal/data/db"
	"github.com/yungbote/pdfmentor-backend/internal/data/repos"
	"github.com/yungbote/pdfmentor-backend/internal/http"
	"github.com/yungbote/pdfmentor-backend/internal/observability"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
	"github.com/yungbote/pdfmentor-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Repos    repos.Set
	Services Services
	Clients  *Clients
	SSEHub   *realtime.SSEHub

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	pg, err := db.NewPostgresService(log, cfg.Postgres)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	theDB := pg.DB()
	if err := db.AutoMigrateAll(theDB); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	ssehub := realtime.NewSSEHub(log)
	reposet := repos.NewSet(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clients, ssehub)
	handlerset := wireHandlers(log, serviceset, ssehub, theDB, clients)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, cfg, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		SSEHub:       ssehub,
		pg:           pg,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background work: the bus forwarder that feeds this
// instance's hub.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Clients != nil && a.Clients.SSEBus != nil {
		if err := a.Clients.SSEBus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start SSE forwarder: %w", err)
		}
	}
	return nil
}

func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("HTTP server listening", "addr", addr)
	return a.Server.Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.pg != nil {
		_ = a.pg.Close()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
