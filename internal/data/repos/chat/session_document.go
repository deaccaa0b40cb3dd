package chat

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/pdfmentor-backend/internal/domain"
	"github.com/yungbote/pdfmentor-backend/internal/platform/dbctx"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

type ChatSessionDocumentRepo interface {
	// Attach links documents to a session. Existing links are left alone.
	Attach(dbc dbctx.Context, sessionID uint, documentIDs []uint) error
	ListDocumentIDs(dbc dbctx.Context, sessionID uint) ([]uint, error)
}

type chatSessionDocumentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatSessionDocumentRepo(db *gorm.DB, log *logger.Logger) ChatSessionDocumentRepo {
	return &chatSessionDocumentRepo{db: db, log: log.With("repo", "ChatSessionDocumentRepo")}
}

func (r *chatSessionDocumentRepo) Attach(dbc dbctx.Context, sessionID uint, documentIDs []uint) error {
	if sessionID == 0 || len(documentIDs) == 0 {
		return nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	rows := make([]*types.ChatSessionDocument, 0, len(documentIDs))
	for _, id := range documentIDs {
		if id == 0 {
			continue
		}
		rows = append(rows, &types.ChatSessionDocument{ChatSessionID: sessionID, DocumentID: id})
	}
	if len(rows) == 0 {
		return nil
	}
	return txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_session_id"}, {Name: "pdf_document_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}

func (r *chatSessionDocumentRepo) ListDocumentIDs(dbc dbctx.Context, sessionID uint) ([]uint, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var ids []uint
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.ChatSessionDocument{}).
		Where("chat_session_id = ?", sessionID).
		Order("added_at ASC").
		Order("id ASC").
		Pluck("pdf_document_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
