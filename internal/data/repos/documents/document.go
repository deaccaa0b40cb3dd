package documents

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/pdfmentor-backend/internal/domain"
	"github.com/yungbote/pdfmentor-backend/internal/platform/dbctx"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

type DocumentRepo interface {
	Create(dbc dbctx.Context, row *types.Document) (*types.Document, error)
	// GetByIDForUser returns nil, nil when the document is missing or owned by someone else.
	GetByIDForUser(dbc dbctx.Context, userID, documentID uint) (*types.Document, error)
	ListByIDsForUser(dbc dbctx.Context, userID uint, documentIDs []uint) ([]*types.Document, error)
	UpdateFields(dbc dbctx.Context, documentID uint, updates map[string]interface{}) error
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return &documentRepo{db: db, log: baseLog.With("repo", "DocumentRepo")}
}

func (r *documentRepo) Create(dbc dbctx.Context, row *types.Document) (*types.Document, error) {
	if row == nil {
		return nil, errors.New("nil document")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *documentRepo) GetByIDForUser(dbc dbctx.Context, userID, documentID uint) (*types.Document, error) {
	if userID == 0 || documentID == 0 {
		return nil, nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Document
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", documentID, userID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *documentRepo) ListByIDsForUser(dbc dbctx.Context, userID uint, documentIDs []uint) ([]*types.Document, error) {
	if len(documentIDs) == 0 {
		return []*types.Document{}, nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Document
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND id IN ?", userID, documentIDs).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *documentRepo) UpdateFields(dbc dbctx.Context, documentID uint, updates map[string]interface{}) error {
	if documentID == 0 || len(updates) == 0 {
		return nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Document{}).
		Where("id = ?", documentID).
		Updates(updates).Error
}
