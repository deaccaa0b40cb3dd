package learning

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/pdfmentor-backend/internal/domain"
	"github.com/yungbote/pdfmentor-backend/internal/platform/dbctx"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

type QuizRepo interface {
	// Create inserts the quiz with its questions and answers.
	Create(dbc dbctx.Context, quiz *types.Quiz) (*types.Quiz, error)
	GetByID(dbc dbctx.Context, quizID uint) (*types.Quiz, error)
	// GetByDocumentID returns the document's quiz with questions and answers ordered by id.
	GetByDocumentID(dbc dbctx.Context, documentID uint) (*types.Quiz, error)
	ListByDocumentIDs(dbc dbctx.Context, documentIDs []uint) ([]*types.Quiz, error)
	ExistsForDocument(dbc dbctx.Context, documentID uint) (bool, error)
	GetWithQuestions(dbc dbctx.Context, quizID uint) (*types.Quiz, error)
}

type quizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return &quizRepo{db: db, log: baseLog.With("repo", "QuizRepo")}
}

func (r *quizRepo) Create(dbc dbctx.Context, quiz *types.Quiz) (*types.Quiz, error) {
	if quiz == nil {
		return nil, errors.New("nil quiz")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(quiz).Error; err != nil {
		return nil, err
	}
	return quiz, nil
}

func (r *quizRepo) GetByID(dbc dbctx.Context, quizID uint) (*types.Quiz, error) {
	if quizID == 0 {
		return nil, nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var q types.Quiz
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", quizID).Take(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *quizRepo) GetByDocumentID(dbc dbctx.Context, documentID uint) (*types.Quiz, error) {
	if documentID == 0 {
		return nil, nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var q types.Quiz
	err := withQuestions(transaction.WithContext(dbc.Ctx)).
		Where("pdf_document_id = ?", documentID).
		Order("id ASC").
		First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *quizRepo) ListByDocumentIDs(dbc dbctx.Context, documentIDs []uint) ([]*types.Quiz, error) {
	if len(documentIDs) == 0 {
		return []*types.Quiz{}, nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Quiz
	if err := transaction.WithContext(dbc.Ctx).
		Where("pdf_document_id IN ?", documentIDs).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *quizRepo) ExistsForDocument(dbc dbctx.Context, documentID uint) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Quiz{}).
		Where("pdf_document_id = ?", documentID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *quizRepo) GetWithQuestions(dbc dbctx.Context, quizID uint) (*types.Quiz, error) {
	if quizID == 0 {
		return nil, nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var q types.Quiz
	err := withQuestions(transaction.WithContext(dbc.Ctx)).
		Where("id = ?", quizID).
		Take(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func withQuestions(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Questions.Answers", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}
