package services

import (
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/yungbote/pdfmentor-backend/internal/data/repos"
	types "github.com/yungbote/pdfmentor-backend/internal/domain"
	"github.com/yungbote/pdfmentor-backend/internal/platform/apierr"
	"github.com/yungbote/pdfmentor-backend/internal/platform/dbctx"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

// QuizView is a quiz as shown to a learner: answers carry no correctness.
type QuizView struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	Questions   []QuizQuestionView `json:"questions"`
}

type QuizQuestionView struct {
	ID      uint             `json:"id"`
	Text    string           `json:"text"`
	Type    string           `json:"type"`
	Answers []QuizAnswerView `json:"answers"`
}

type QuizAnswerView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// AnswerChoice is one selected answer.
type AnswerChoice struct {
	QuestionID uint `json:"question_id" validate:"required,gt=0"`
	AnswerID   uint `json:"answer_id" validate:"required,gt=0"`
}

// QuizSubmission is a learner's set of choices. Questions may be left out;
// they count as wrong.
type QuizSubmission struct {
	Answers []AnswerChoice `json:"answers" validate:"dive"`
}

type QuizResult struct {
	QuizID             uint    `json:"quiz_id"`
	Score              float64 `json:"score"`
	CorrectAnswers     int     `json:"correct_answers"`
	TotalQuestions     int     `json:"total_questions"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

type QuizService interface {
	GetQuizForDocument(dbc dbctx.Context, documentID uint) (*QuizView, error)
	Submit(dbc dbctx.Context, quizID, sessionID uint, sub QuizSubmission) (*QuizResult, error)
}

type quizService struct {
	db          *gorm.DB
	log         *logger.Logger
	policy      ProgressPolicy
	validate    *validator.Validate
	documents   repos.DocumentRepo
	sessions    repos.ChatSessionRepo
	quizzes     repos.QuizRepo
	submissions repos.QuizSubmissionRepo
	progress    repos.ProgressRepo
	notify      Notifier
}

func NewQuizService(db *gorm.DB, baseLog *logger.Logger, policy ProgressPolicy, r repos.Set, notify Notifier) QuizService {
	if policy == "" {
		policy = DefaultProgressPolicy
	}
	return &quizService{
		db:          db,
		log:         baseLog.With("service", "QuizService"),
		policy:      policy,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		documents:   r.Documents,
		sessions:    r.Sessions,
		quizzes:     r.Quizzes,
		submissions: r.Submissions,
		progress:    r.Progress,
		notify:      notify,
	}
}

func (s *quizService) GetQuizForDocument(dbc dbctx.Context, documentID uint) (*QuizView, error) {
	userID, err := requireUserID(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	doc, err := s.documents.GetByIDForUser(dbc, userID, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apierr.NotFound("PDF not found")
	}
	quiz, err := s.quizzes.GetByDocumentID(dbc, documentID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, apierr.NotFound("No quiz available for this PDF")
	}
	return viewOf(quiz), nil
}

func (s *quizService) Submit(dbc dbctx.Context, quizID, sessionID uint, sub QuizSubmission) (*QuizResult, error) {
	userID, err := requireUserID(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(sub); err != nil {
		return nil, apierr.Validation("invalid submission: %v", err)
	}

	var result *QuizResult
	var saved *types.Progress
	err = transactionRoot(dbc, s.db).WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}

		quiz, err := s.quizzes.GetWithQuestions(inner, quizID)
		if err != nil {
			return err
		}
		if quiz == nil {
			return apierr.NotFound("Quiz not found")
		}
		doc, err := s.documents.GetByIDForUser(inner, userID, quiz.DocumentID)
		if err != nil {
			return err
		}
		if doc == nil {
			return apierr.NotFound("Quiz not found")
		}
		session, err := s.sessions.GetByIDForUser(inner, userID, sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return apierr.NotFound("Chat session not found")
		}

		chosen, err := indexChoices(quiz, sub.Answers)
		if err != nil {
			return err
		}
		correct, total := grade(quiz, chosen)
		score := scoreOf(correct, total)

		if _, err := s.submissions.Create(inner, &types.QuizSubmission{
			UserID:        userID,
			QuizID:        quiz.ID,
			ChatSessionID: sessionID,
			Score:         score,
		}); err != nil {
			return err
		}

		row, err := s.progress.GetForUpdate(inner, userID, quiz.DocumentID, sessionID)
		if err != nil {
			return err
		}
		if row == nil {
			row = &types.Progress{UserID: userID, DocumentID: quiz.DocumentID, ChatSessionID: sessionID}
		}
		if s.policy == PolicyQuizGates {
			row.HasRead = true
		}
		row.QuizCompleted = true
		row.QuizScore = &score
		row.ProgressPercentage = s.policy.Percentage(stateOf(row, true))
		if err := s.progress.Upsert(inner, row); err != nil {
			return err
		}

		saved = row
		result = &QuizResult{
			QuizID:             quiz.ID,
			Score:              score,
			CorrectAnswers:     correct,
			TotalQuestions:     total,
			ProgressPercentage: row.ProgressPercentage,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("quiz submitted", "user_id", userID, "quiz_id", quizID, "session_id", sessionID, "score", result.Score)
	if s.notify != nil {
		s.notify.QuizSubmitted(userID, result)
		s.notify.ProgressUpdated(userID, saved)
	}
	return result, nil
}

// indexChoices maps question id to chosen answer id, rejecting repeats and
// questions that are not part of the quiz.
func indexChoices(quiz *types.Quiz, choices []AnswerChoice) (map[uint]uint, error) {
	known := make(map[uint]bool, len(quiz.Questions))
	for _, q := range quiz.Questions {
		known[q.ID] = true
	}
	out := make(map[uint]uint, len(choices))
	for _, c := range choices {
		if !known[c.QuestionID] {
			return nil, apierr.Validation("question %d is not part of quiz %d", c.QuestionID, quiz.ID)
		}
		if _, dup := out[c.QuestionID]; dup {
			return nil, apierr.Validation("question %d answered more than once", c.QuestionID)
		}
		out[c.QuestionID] = c.AnswerID
	}
	return out, nil
}

// grade counts questions whose chosen answer is the first correct answer by id.
func grade(quiz *types.Quiz, chosen map[uint]uint) (correct, total int) {
	total = len(quiz.Questions)
	for _, q := range quiz.Questions {
		want, ok := correctAnswerID(q)
		if !ok {
			continue
		}
		if got, answered := chosen[q.ID]; answered && got == want {
			correct++
		}
	}
	return correct, total
}

func correctAnswerID(q types.QuizQuestion) (uint, bool) {
	for _, a := range q.Answers {
		if a.IsCorrect {
			return a.ID, true
		}
	}
	return 0, false
}

func scoreOf(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct*100) / float64(total)
}

func viewOf(q *types.Quiz) *QuizView {
	out := &QuizView{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Questions:   make([]QuizQuestionView, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		qv := QuizQuestionView{
			ID:      question.ID,
			Text:    question.QuestionText,
			Type:    question.QuestionType,
			Answers: make([]QuizAnswerView, 0, len(question.Answers)),
		}
		for _, a := range question.Answers {
			qv.Answers = append(qv.Answers, QuizAnswerView{ID: a.ID, Text: a.AnswerText})
		}
		out.Questions = append(out.Questions, qv)
	}
	return out
}

