package learning

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/pdfmentor-backend/internal/domain"
	"github.com/yungbote/pdfmentor-backend/internal/platform/dbctx"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

type ProgressRepo interface {
	// GetForUpdate returns the (user, document, session) row or nil. On Postgres
	// the row stays locked until the surrounding transaction ends.
	GetForUpdate(dbc dbctx.Context, userID, documentID, sessionID uint) (*types.Progress, error)
	// Upsert updates a loaded row by id; a new row is inserted, or merged into
	// the triple's existing row.
	Upsert(dbc dbctx.Context, row *types.Progress) error
	// CreateIfMissing inserts row unless the triple already has one.
	CreateIfMissing(dbc dbctx.Context, row *types.Progress) error
	ListBySession(dbc dbctx.Context, userID, sessionID uint) ([]*types.Progress, error)
	// ListAfter pages through all rows in id order.
	ListAfter(dbc dbctx.Context, afterID uint, limit int) ([]*types.Progress, error)
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

var progressConflict = []clause.Column{{Name: "user_id"}, {Name: "pdf_document_id"}, {Name: "chat_session_id"}}

func (r *progressRepo) GetForUpdate(dbc dbctx.Context, userID, documentID, sessionID uint) (*types.Progress, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx)
	if q.Dialector != nil && q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row types.Progress
	err := q.Where("user_id = ? AND pdf_document_id = ? AND chat_session_id = ?", userID, documentID, sessionID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *progressRepo) Upsert(dbc dbctx.Context, row *types.Progress) error {
	if row == nil {
		return errors.New("nil progress")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row.ID != 0 {
		row.LastUpdated = time.Now().UTC()
		return transaction.WithContext(dbc.Ctx).
			Model(&types.Progress{}).
			Where("id = ?", row.ID).
			Updates(map[string]interface{}{
				"has_read":            row.HasRead,
				"quiz_completed":      row.QuizCompleted,
				"quiz_score":          row.QuizScore,
				"progress_percentage": row.ProgressPercentage,
				"last_updated":        row.LastUpdated,
			}).Error
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: progressConflict,
			DoUpdates: clause.AssignmentColumns([]string{
				"has_read",
				"quiz_completed",
				"quiz_score",
				"progress_percentage",
				"last_updated",
			}),
		}).
		Create(row).Error
}

func (r *progressRepo) CreateIfMissing(dbc dbctx.Context, row *types.Progress) error {
	if row == nil {
		return errors.New("nil progress")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: progressConflict, DoNothing: true}).
		Create(row).Error
}

func (r *progressRepo) ListBySession(dbc dbctx.Context, userID, sessionID uint) ([]*types.Progress, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Progress
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND chat_session_id = ?", userID, sessionID).
		Order("pdf_document_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *progressRepo) ListAfter(dbc dbctx.Context, afterID uint, limit int) ([]*types.Progress, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 500
	}
	var out []*types.Progress
	if err := transaction.WithContext(dbc.Ctx).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
