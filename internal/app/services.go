package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/pdfmentor-backend/internal/data/repos"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
	"github.com/yungbote/pdfmentor-backend/internal/realtime"
	"github.com/yungbote/pdfmentor-backend/internal/services"
)

type Services struct {
	User      services.UserService
	Auth      services.AuthService
	Progress  services.ProgressService
	Quiz      services.QuizService
	Materials services.StudyMaterialsService
	Chat      services.ChatService
	Notify    services.Notifier
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r repos.Set, clients *Clients, hub *realtime.SSEHub) Services {
	log.Info("Wiring services...")

	// With a bus every instance's forwarder feeds its own hub, so publishing
	// also reaches local streams.
	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if clients.SSEBus != nil {
		emitter = &services.RedisEmitter{Bus: clients.SSEBus, Log: log}
	}
	notify := services.NewNotifier(emitter)

	user := services.NewUserService(db, log, r.Users)
	progress := services.NewProgressService(db, log, cfg.ProgressPolicy, r, notify)
	log.Info("Progress policy", "policy", string(progress.Policy()))

	return Services{
		User:      user,
		Auth:      services.NewAuthService(log, user, cfg.Auth),
		Progress:  progress,
		Quiz:      services.NewQuizService(db, log, cfg.ProgressPolicy, r, notify),
		Materials: services.NewStudyMaterialsService(db, log, clients.LLM, r, notify),
		Chat: services.NewChatService(db, log, cfg.Chat, r, services.ChatDeps{
			Model:    clients.LLM,
			Embedder: clients.LLM,
			Passages: clients.Passages,
			Web:      clients.Web,
			Progress: progress,
			Notify:   notify,
		}),
		Notify: notify,
	}
}
