package chat

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/pdfmentor-backend/internal/domain"
	"github.com/yungbote/pdfmentor-backend/internal/platform/dbctx"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

type ChatMessageRepo interface {
	Create(dbc dbctx.Context, rows []*types.ChatMessage) ([]*types.ChatMessage, error)
	// ListRecent returns the newest limit messages in chronological order.
	ListRecent(dbc dbctx.Context, sessionID uint, limit int) ([]*types.ChatMessage, error)
	ListBySession(dbc dbctx.Context, sessionID uint, limit int) ([]*types.ChatMessage, error)
}

type chatMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatMessageRepo(db *gorm.DB, log *logger.Logger) ChatMessageRepo {
	return &chatMessageRepo{db: db, log: log.With("repo", "ChatMessageRepo")}
}

func (r *chatMessageRepo) Create(dbc dbctx.Context, rows []*types.ChatMessage) ([]*types.ChatMessage, error) {
	if len(rows) == 0 {
		return []*types.ChatMessage{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *chatMessageRepo) ListRecent(dbc dbctx.Context, sessionID uint, limit int) ([]*types.ChatMessage, error) {
	if sessionID == 0 {
		return nil, fmt.Errorf("missing session_id")
	}
	if limit <= 0 {
		return []*types.ChatMessage{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.ChatMessage
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.ChatMessage{}).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	reverse(out)
	return out, nil
}

func (r *chatMessageRepo) ListBySession(dbc dbctx.Context, sessionID uint, limit int) ([]*types.ChatMessage, error) {
	if sessionID == 0 {
		return nil, fmt.Errorf("missing session_id")
	}
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.ChatMessage
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.ChatMessage{}).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func reverse(rows []*types.ChatMessage) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}
