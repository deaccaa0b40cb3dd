package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

type SSEClient struct {
	ID       uuid.UUID
	UserID   uint
	Channels map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
	once     sync.Once
	Logger   *logger.Logger
}

// UserChannel is the per-user channel every stream of that user listens on.
func UserChannel(userID uint) string {
	return "user:" + uintString(userID)
}
