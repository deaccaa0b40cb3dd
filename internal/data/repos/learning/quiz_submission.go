package learning

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/pdfmentor-backend/internal/domain"
	"github.com/yungbote/pdfmentor-backend/internal/platform/dbctx"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

type QuizSubmissionRepo interface {
	Create(dbc dbctx.Context, row *types.QuizSubmission) (*types.QuizSubmission, error)
	// BestScores maps quiz id to the highest score the user reached in the session.
	BestScores(dbc dbctx.Context, userID, sessionID uint, quizIDs []uint) (map[uint]float64, error)
	CountForQuiz(dbc dbctx.Context, userID, quizID uint) (int64, error)
}

type quizSubmissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) QuizSubmissionRepo {
	return &quizSubmissionRepo{db: db, log: baseLog.With("repo", "QuizSubmissionRepo")}
}

func (r *quizSubmissionRepo) Create(dbc dbctx.Context, row *types.QuizSubmission) (*types.QuizSubmission, error) {
	if row == nil {
		return nil, errors.New("nil submission")
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

func (r *quizSubmissionRepo) BestScores(dbc dbctx.Context, userID, sessionID uint, quizIDs []uint) (map[uint]float64, error) {
	out := map[uint]float64{}
	if len(quizIDs) == 0 {
		return out, nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []struct {
		QuizID uint
		Best   float64
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.QuizSubmission{}).
		Select("quiz_id, MAX(score) AS best").
		Where("user_id = ? AND chat_session_id = ? AND quiz_id IN ?", userID, sessionID, quizIDs).
		Group("quiz_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.QuizID] = row.Best
	}
	return out, nil
}

func (r *quizSubmissionRepo) CountForQuiz(dbc dbctx.Context, userID, quizID uint) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.QuizSubmission{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
