package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/pdfmentor-backend/internal/data/repos/testutil"
	"github.com/yungbote/pdfmentor-backend/internal/platform/apierr"
)

func TestReadThenQuizScenario(t *testing.T) {
	for _, tc := range []struct {
		policy    ProgressPolicy
		afterRead float64
		final     float64
	}{
		{PolicyQuizGates, 50, 100},
		{PolicyScoreBlend, 50, 90},
	} {
		t.Run(string(tc.policy), func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			u := testutil.SeedUser(t, ctx, env.db)
			doc := testutil.SeedDocument(t, ctx, env.db, u.ID, "cells.pdf")
			session := testutil.SeedSession(t, ctx, env.db, u.ID)
			quiz := testutil.SeedQuiz(t, ctx, env.db, doc.ID, 5)

			progress := env.progressService(tc.policy)
			row, err := progress.TrackDocumentOpened(asUser(u), doc.ID, session.ID)
			require.NoError(t, err)
			require.True(t, row.HasRead)
			require.Equal(t, tc.afterRead, row.ProgressPercentage)

			res, err := env.quizService(tc.policy).Submit(asUser(u), quiz.ID, session.ID, QuizSubmission{Answers: correctChoices(quiz, 1)})
			require.NoError(t, err)
			require.Equal(t, 80.0, res.Score)
			require.Equal(t, 4, res.CorrectAnswers)
			require.Equal(t, 5, res.TotalQuestions)
			require.Equal(t, tc.final, res.ProgressPercentage)

			// Re-opening after the quiz keeps the quiz contribution.
			row, err = progress.TrackDocumentOpened(asUser(u), doc.ID, session.ID)
			require.NoError(t, err)
			require.Equal(t, tc.final, row.ProgressPercentage)
		})
	}
}

func TestTrackDocumentOpenedWithoutQuiz(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, env.db)
	doc := testutil.SeedDocument(t, ctx, env.db, u.ID, "notes.pdf")
	session := testutil.SeedSession(t, ctx, env.db, u.ID)

	row, err := env.progressService(PolicyQuizGates).TrackDocumentOpened(asUser(u), doc.ID, session.ID)
	require.NoError(t, err)
	require.Equal(t, 100.0, row.ProgressPercentage)

	row, err = env.progressService(PolicyScoreBlend).TrackDocumentOpened(asUser(u), doc.ID, session.ID)
	require.NoError(t, err)
	require.Equal(t, 50.0, row.ProgressPercentage)

	require.Len(t, env.notify.progress, 2)
}

func TestTrackDocumentOpenedRejectsForeignRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, ctx, env.db)
	intruder := testutil.SeedUser(t, ctx, env.db)
	doc := testutil.SeedDocument(t, ctx, env.db, owner.ID, "private.pdf")
	ownerSession := testutil.SeedSession(t, ctx, env.db, owner.ID)
	intruderSession := testutil.SeedSession(t, ctx, env.db, intruder.ID)

	svc := env.progressService(PolicyQuizGates)
	_, err := svc.TrackDocumentOpened(asUser(intruder), doc.ID, intruderSession.ID)
	require.True(t, errors.Is(err, apierr.ErrNotFound), "foreign document: %v", err)

	_, err = svc.TrackDocumentOpened(asUser(intruder), doc.ID, ownerSession.ID)
	require.True(t, errors.Is(err, apierr.ErrNotFound), "foreign session: %v", err)

	rows, err := env.repos.Progress.ListBySession(asUser(owner), owner.ID, ownerSession.ID)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestListSessionProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, env.db)
	session := testutil.SeedSession(t, ctx, env.db, u.ID)
	read := testutil.SeedDocument(t, ctx, env.db, u.ID, "read.pdf")
	untouched := testutil.SeedDocument(t, ctx, env.db, u.ID, "untouched.pdf")
	testutil.AttachDocument(t, ctx, env.db, session.ID, read.ID)
	testutil.AttachDocument(t, ctx, env.db, session.ID, untouched.ID)
	quiz := testutil.SeedQuiz(t, ctx, env.db, read.ID, 4)

	quizzes := env.quizService(PolicyQuizGates)
	_, err := quizzes.Submit(asUser(u), quiz.ID, session.ID, QuizSubmission{Answers: correctChoices(quiz, 2)})
	require.NoError(t, err)
	_, err = quizzes.Submit(asUser(u), quiz.ID, session.ID, QuizSubmission{Answers: correctChoices(quiz, 1)})
	require.NoError(t, err)

	items, err := env.progressService(PolicyQuizGates).ListSessionProgress(asUser(u), session.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	first, second := items[0], items[1]
	require.Equal(t, read.ID, first.DocumentID)
	require.True(t, first.HasQuiz)
	require.NotNil(t, first.QuizID)
	require.Equal(t, quiz.ID, *first.QuizID)
	require.NotNil(t, first.QuizScore)
	require.Equal(t, 75.0, *first.QuizScore)
	require.True(t, first.QuizCompleted)
	require.Equal(t, 100.0, first.ProgressPercentage)

	require.Equal(t, untouched.ID, second.DocumentID)
	require.False(t, second.HasQuiz)
	require.Nil(t, second.QuizScore)
	require.Zero(t, second.ProgressPercentage)

	stranger := testutil.SeedUser(t, ctx, env.db)
	_, err = env.progressService(PolicyQuizGates).ListSessionProgress(asUser(stranger), session.ID)
	require.True(t, errors.Is(err, apierr.ErrNotFound))
}

func TestInitializeProgressIsNoOpWhenRowExists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, env.db)
	doc := testutil.SeedDocument(t, ctx, env.db, u.ID, "notes.pdf")
	session := testutil.SeedSession(t, ctx, env.db, u.ID)
	svc := env.progressService(PolicyQuizGates)

	_, err := svc.TrackDocumentOpened(asUser(u), doc.ID, session.ID)
	require.NoError(t, err)
	require.NoError(t, svc.InitializeProgress(asUser(u), doc.ID, session.ID))

	rows, err := env.repos.Progress.ListBySession(asUser(u), u.ID, session.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 100.0, rows[0].ProgressPercentage)
}

func TestRecomputeAllAppliesCurrentPolicy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, env.db)
	plain := testutil.SeedDocument(t, ctx, env.db, u.ID, "notes.pdf")
	quizzed := testutil.SeedDocument(t, ctx, env.db, u.ID, "cells.pdf")
	testutil.SeedQuiz(t, ctx, env.db, quizzed.ID, 3)
	session := testutil.SeedSession(t, ctx, env.db, u.ID)

	gates := env.progressService(PolicyQuizGates)
	_, err := gates.TrackDocumentOpened(asUser(u), plain.ID, session.ID)
	require.NoError(t, err)
	_, err = gates.TrackDocumentOpened(asUser(u), quizzed.ID, session.ID)
	require.NoError(t, err)

	blend := env.progressService(PolicyScoreBlend)
	changed, err := blend.RecomputeAll(asUser(u), true)
	require.NoError(t, err)
	require.Equal(t, 1, changed)

	rows, err := env.repos.Progress.ListBySession(asUser(u), u.ID, session.ID)
	require.NoError(t, err)
	require.Equal(t, 100.0, rows[0].ProgressPercentage)

	changed, err = blend.RecomputeAll(asUser(u), false)
	require.NoError(t, err)
	require.Equal(t, 1, changed)

	rows, err = env.repos.Progress.ListBySession(asUser(u), u.ID, session.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 50.0, rows[0].ProgressPercentage)
	require.Equal(t, 50.0, rows[1].ProgressPercentage)

	changed, err = blend.RecomputeAll(asUser(u), false)
	require.NoError(t, err)
	require.Zero(t, changed)
}
