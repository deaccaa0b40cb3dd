package bus

import (
	"context"

	"github.com/yungbote/pdfmentor-backend/internal/realtime"
)

// Bus fans realtime messages out across server instances.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
