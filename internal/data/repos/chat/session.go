package chat

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	types "github.com/yungbote/pdfmentor-backend/internal/domain"
	"github.com/yungbote/pdfmentor-backend/internal/platform/dbctx"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

type ChatSessionRepo interface {
	Create(dbc dbctx.Context, userID uint, name string) (*types.ChatSession, error)
	// GetByIDForUser returns nil, nil when the session is missing or owned by someone else.
	GetByIDForUser(dbc dbctx.Context, userID, sessionID uint) (*types.ChatSession, error)
	ListByUser(dbc dbctx.Context, userID uint, limit int) ([]*types.ChatSession, error)
}

type chatSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatSessionRepo(db *gorm.DB, log *logger.Logger) ChatSessionRepo {
	return &chatSessionRepo{db: db, log: log.With("repo", "ChatSessionRepo")}
}

func (r *chatSessionRepo) Create(dbc dbctx.Context, userID uint, name string) (*types.ChatSession, error) {
	if userID == 0 {
		return nil, errors.New("missing user_id")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = types.DefaultSessionName
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	row := &types.ChatSession{UserID: userID, Name: name}
	if err := txx.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *chatSessionRepo) GetByIDForUser(dbc dbctx.Context, userID, sessionID uint) (*types.ChatSession, error) {
	if userID == 0 || sessionID == 0 {
		return nil, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var row types.ChatSession
	err := txx.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *chatSessionRepo) ListByUser(dbc dbctx.Context, userID uint, limit int) ([]*types.ChatSession, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.ChatSession
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
