package services

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/pdfmentor-backend/internal/data/repos"
	"github.com/yungbote/pdfmentor-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pdfmentor-backend/internal/domain"
	"github.com/yungbote/pdfmentor-backend/internal/platform/ctxutil"
	"github.com/yungbote/pdfmentor-backend/internal/platform/dbctx"
	"github.com/yungbote/pdfmentor-backend/internal/platform/llm"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

type testEnv struct {
	db     *gorm.DB
	log    *logger.Logger
	repos  repos.Set
	notify *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &testEnv{
		db:     db,
		log:    log,
		repos:  repos.NewSet(db, log),
		notify: &recordingNotifier{},
	}
}

func (e *testEnv) progressService(policy ProgressPolicy) ProgressService {
	return NewProgressService(e.db, e.log, policy, e.repos, e.notify)
}

func (e *testEnv) quizService(policy ProgressPolicy) QuizService {
	return NewQuizService(e.db, e.log, policy, e.repos, e.notify)
}

func asUser(u *types.User) dbctx.Context {
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: u.ID, ExternalID: u.ExternalID})
	return dbctx.From(ctx)
}

func newMockClient(mock *llm.MockProvider) *llm.Client {
	return llm.NewWithProvider(mock, llm.Config{
		Temperature: 0.3,
		MaxTokens:   1024,
		Retry:       llm.RetryConfig{MaxAttempts: 1},
	}, logger.Nop())
}

type recordingNotifier struct {
	mu        sync.Mutex
	progress  []*types.Progress
	quizzes   []*QuizResult
	materials []*StudyMaterials
	sessions  []*types.ChatSession
}

func (n *recordingNotifier) ProgressUpdated(_ uint, p *types.Progress) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.progress = append(n.progress, p)
}

func (n *recordingNotifier) QuizSubmitted(_ uint, r *QuizResult) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.quizzes = append(n.quizzes, r)
}

func (n *recordingNotifier) StudyMaterialsGenerated(_ uint, r *StudyMaterials) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.materials = append(n.materials, r)
}

func (n *recordingNotifier) ChatSessionCreated(_ uint, s *types.ChatSession) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sessions = append(n.sessions, s)
}

// correctChoices answers the first correct answer of every question, wrong
// for the last `wrong` questions.
func correctChoices(q *types.Quiz, wrong int) []AnswerChoice {
	out := make([]AnswerChoice, 0, len(q.Questions))
	for i, question := range q.Questions {
		pick := question.Answers[0].ID
		if i >= len(q.Questions)-wrong {
			pick = question.Answers[1].ID
		}
		out = append(out, AnswerChoice{QuestionID: question.ID, AnswerID: pick})
	}
	return out
}
