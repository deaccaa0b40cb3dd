package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/pdfmentor-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pdfmentor-backend/internal/domain"
	"github.com/yungbote/pdfmentor-backend/internal/platform/apierr"
)

func TestGetQuizForDocumentHidesCorrectness(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, env.db)
	doc := testutil.SeedDocument(t, ctx, env.db, u.ID, "bio.pdf")
	testutil.SeedQuiz(t, ctx, env.db, doc.ID, 3)

	view, err := env.quizService(PolicyQuizGates).GetQuizForDocument(asUser(u), doc.ID)
	require.NoError(t, err)
	require.Len(t, view.Questions, 3)
	require.Len(t, view.Questions[0].Answers, 4)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	require.False(t, strings.Contains(string(raw), "correct"), "quiz view leaks correctness: %s", raw)
}

func TestGetQuizForDocumentNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, ctx, env.db)
	other := testutil.SeedUser(t, ctx, env.db)
	withQuiz := testutil.SeedDocument(t, ctx, env.db, owner.ID, "bio.pdf")
	without := testutil.SeedDocument(t, ctx, env.db, owner.ID, "plain.pdf")
	testutil.SeedQuiz(t, ctx, env.db, withQuiz.ID, 2)
	svc := env.quizService(PolicyQuizGates)

	view, err := svc.GetQuizForDocument(asUser(other), withQuiz.ID)
	require.Nil(t, view)
	require.True(t, errors.Is(err, apierr.ErrNotFound))

	_, err = svc.GetQuizForDocument(asUser(owner), without.ID)
	var apiErr *apierr.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "No quiz available for this PDF", apiErr.Error())
}

func TestSubmitAppendsEverySubmission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, env.db)
	doc := testutil.SeedDocument(t, ctx, env.db, u.ID, "bio.pdf")
	session := testutil.SeedSession(t, ctx, env.db, u.ID)
	quiz := testutil.SeedQuiz(t, ctx, env.db, doc.ID, 5)
	svc := env.quizService(PolicyQuizGates)

	first, err := svc.Submit(asUser(u), quiz.ID, session.ID, QuizSubmission{Answers: correctChoices(quiz, 0)})
	require.NoError(t, err)
	require.Equal(t, 100.0, first.Score)

	second, err := svc.Submit(asUser(u), quiz.ID, session.ID, QuizSubmission{Answers: correctChoices(quiz, 5)})
	require.NoError(t, err)
	require.Equal(t, 0.0, second.Score)

	var rows []types.QuizSubmission
	require.NoError(t, env.db.Where("quiz_id = ? AND chat_session_id = ?", quiz.ID, session.ID).Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	require.NotEqual(t, rows[0].ID, rows[1].ID)
	require.Equal(t, 100.0, rows[0].Score)
	require.Equal(t, 0.0, rows[1].Score)
	require.Len(t, env.notify.quizzes, 2)
}

func TestSubmitScoresExactly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, env.db)
	doc := testutil.SeedDocument(t, ctx, env.db, u.ID, "bio.pdf")
	session := testutil.SeedSession(t, ctx, env.db, u.ID)
	quiz := testutil.SeedQuiz(t, ctx, env.db, doc.ID, 3)
	svc := env.quizService(PolicyScoreBlend)

	// One correct, one wrong, one left out.
	choices := correctChoices(quiz, 1)[:2]
	choices[1].AnswerID = quiz.Questions[1].Answers[2].ID
	res, err := svc.Submit(asUser(u), quiz.ID, session.ID, QuizSubmission{Answers: choices})
	require.NoError(t, err)
	require.Equal(t, 1, res.CorrectAnswers)
	require.Equal(t, 3, res.TotalQuestions)
	require.Equal(t, 100.0/3, res.Score)
}

func TestSubmitWithoutOpeningDocument(t *testing.T) {
	for _, tc := range []struct {
		policy   ProgressPolicy
		hasRead  bool
		progress float64
	}{
		{PolicyQuizGates, true, 100},
		{PolicyScoreBlend, false, 30},
	} {
		t.Run(string(tc.policy), func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			u := testutil.SeedUser(t, ctx, env.db)
			doc := testutil.SeedDocument(t, ctx, env.db, u.ID, "bio.pdf")
			session := testutil.SeedSession(t, ctx, env.db, u.ID)
			quiz := testutil.SeedQuiz(t, ctx, env.db, doc.ID, 5)

			res, err := env.quizService(tc.policy).Submit(asUser(u), quiz.ID, session.ID, QuizSubmission{Answers: correctChoices(quiz, 2)})
			require.NoError(t, err)
			require.Equal(t, 60.0, res.Score)
			require.Equal(t, tc.progress, res.ProgressPercentage)

			rows, err := env.repos.Progress.ListBySession(asUser(u), u.ID, session.ID)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			require.Equal(t, tc.hasRead, rows[0].HasRead)
			require.True(t, rows[0].QuizCompleted)
			require.Equal(t, tc.progress, rows[0].ProgressPercentage)
		})
	}
}

func TestSubmitEmptyQuizScoresZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, env.db)
	doc := testutil.SeedDocument(t, ctx, env.db, u.ID, "bio.pdf")
	session := testutil.SeedSession(t, ctx, env.db, u.ID)
	quiz := testutil.SeedQuiz(t, ctx, env.db, doc.ID, 0)

	res, err := env.quizService(PolicyQuizGates).Submit(asUser(u), quiz.ID, session.ID, QuizSubmission{})
	require.NoError(t, err)
	require.Equal(t, 0.0, res.Score)
	require.Equal(t, 0, res.TotalQuestions)
}

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, env.db)
	doc := testutil.SeedDocument(t, ctx, env.db, u.ID, "bio.pdf")
	session := testutil.SeedSession(t, ctx, env.db, u.ID)
	quiz := testutil.SeedQuiz(t, ctx, env.db, doc.ID, 2)
	other := testutil.SeedQuiz(t, ctx, env.db, testutil.SeedDocument(t, ctx, env.db, u.ID, "x.pdf").ID, 1)
	svc := env.quizService(PolicyQuizGates)

	q0 := quiz.Questions[0]
	cases := map[string][]AnswerChoice{
		"zero answer id":   {{QuestionID: q0.ID, AnswerID: 0}},
		"zero question id": {{QuestionID: 0, AnswerID: q0.Answers[0].ID}},
		"duplicate question": {
			{QuestionID: q0.ID, AnswerID: q0.Answers[0].ID},
			{QuestionID: q0.ID, AnswerID: q0.Answers[1].ID},
		},
		"foreign question": {{QuestionID: other.Questions[0].ID, AnswerID: other.Questions[0].Answers[0].ID}},
	}
	for name, choices := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Submit(asUser(u), quiz.ID, session.ID, QuizSubmission{Answers: choices})
			require.True(t, errors.Is(err, apierr.ErrValidation), "got %v", err)
		})
	}

	var n int64
	require.NoError(t, env.db.Model(&types.QuizSubmission{}).Count(&n).Error)
	require.Zero(t, n)
}

func TestSubmitNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, ctx, env.db)
	other := testutil.SeedUser(t, ctx, env.db)
	doc := testutil.SeedDocument(t, ctx, env.db, owner.ID, "bio.pdf")
	ownerSession := testutil.SeedSession(t, ctx, env.db, owner.ID)
	otherSession := testutil.SeedSession(t, ctx, env.db, other.ID)
	quiz := testutil.SeedQuiz(t, ctx, env.db, doc.ID, 1)
	svc := env.quizService(PolicyQuizGates)

	_, err := svc.Submit(asUser(owner), quiz.ID+100, ownerSession.ID, QuizSubmission{})
	require.True(t, errors.Is(err, apierr.ErrNotFound))

	_, err = svc.Submit(asUser(other), quiz.ID, otherSession.ID, QuizSubmission{})
	require.True(t, errors.Is(err, apierr.ErrNotFound))

	_, err = svc.Submit(asUser(owner), quiz.ID, otherSession.ID, QuizSubmission{})
	require.True(t, errors.Is(err, apierr.ErrNotFound))
}
