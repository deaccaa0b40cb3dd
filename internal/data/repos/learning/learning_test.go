package learning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/pdfmentor-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pdfmentor-backend/internal/domain"
	"github.com/yungbote/pdfmentor-backend/internal/platform/dbctx"
)

func TestQuizRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewQuizRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx)
	doc := testutil.SeedDocument(t, ctx, tx, u.ID, "bio.pdf")
	bare := testutil.SeedDocument(t, ctx, tx, u.ID, "empty.pdf")

	exists, err := repo.ExistsForDocument(dbc, doc.ID)
	require.NoError(t, err)
	require.False(t, exists)

	seeded := testutil.SeedQuiz(t, ctx, tx, doc.ID, 3)

	exists, err = repo.ExistsForDocument(dbc, doc.ID)
	require.NoError(t, err)
	require.True(t, exists)

	q, err := repo.GetByDocumentID(dbc, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, q)
	require.Equal(t, seeded.ID, q.ID)
	require.Len(t, q.Questions, 3)
	for i := 1; i < len(q.Questions); i++ {
		require.Less(t, q.Questions[i-1].ID, q.Questions[i].ID)
	}
	require.Len(t, q.Questions[0].Answers, 4)
	require.True(t, q.Questions[0].Answers[0].IsCorrect)

	missing, err := repo.GetByDocumentID(dbc, bare.ID)
	require.NoError(t, err)
	require.Nil(t, missing)

	full, err := repo.GetWithQuestions(dbc, seeded.ID)
	require.NoError(t, err)
	require.Len(t, full.Questions, 3)

	list, err := repo.ListByDocumentIDs(dbc, []uint{doc.ID, bare.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestQuizSubmissionRepoBestScores(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewQuizSubmissionRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx)
	doc := testutil.SeedDocument(t, ctx, tx, u.ID, "bio.pdf")
	s1 := testutil.SeedSession(t, ctx, tx, u.ID)
	s2 := testutil.SeedSession(t, ctx, tx, u.ID)
	quiz := testutil.SeedQuiz(t, ctx, tx, doc.ID, 2)

	for _, sub := range []*types.QuizSubmission{
		{UserID: u.ID, QuizID: quiz.ID, ChatSessionID: s1.ID, Score: 50},
		{UserID: u.ID, QuizID: quiz.ID, ChatSessionID: s1.ID, Score: 100},
		{UserID: u.ID, QuizID: quiz.ID, ChatSessionID: s2.ID, Score: 0},
	} {
		_, err := repo.Create(dbc, sub)
		require.NoError(t, err)
	}

	best, err := repo.BestScores(dbc, u.ID, s1.ID, []uint{quiz.ID})
	require.NoError(t, err)
	require.Equal(t, 100.0, best[quiz.ID])

	best, err = repo.BestScores(dbc, u.ID, s2.ID, []uint{quiz.ID})
	require.NoError(t, err)
	require.Equal(t, 0.0, best[quiz.ID])

	n, err := repo.CountForQuiz(dbc, u.ID, quiz.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}

func TestProgressRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewProgressRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx)
	doc := testutil.SeedDocument(t, ctx, tx, u.ID, "bio.pdf")
	s := testutil.SeedSession(t, ctx, tx, u.ID)

	row, err := repo.GetForUpdate(dbc, u.ID, doc.ID, s.ID)
	require.NoError(t, err)
	require.Nil(t, row)

	require.NoError(t, repo.CreateIfMissing(dbc, &types.Progress{UserID: u.ID, DocumentID: doc.ID, ChatSessionID: s.ID}))
	require.NoError(t, repo.CreateIfMissing(dbc, &types.Progress{UserID: u.ID, DocumentID: doc.ID, ChatSessionID: s.ID, ProgressPercentage: 77}))

	row, err = repo.GetForUpdate(dbc, u.ID, doc.ID, s.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	require.Zero(t, row.ProgressPercentage)

	require.NoError(t, repo.Upsert(dbc, &types.Progress{
		UserID:             u.ID,
		DocumentID:         doc.ID,
		ChatSessionID:      s.ID,
		HasRead:            true,
		QuizCompleted:      true,
		QuizScore:          testutil.PtrFloat(80),
		ProgressPercentage: 90,
	}))

	rows, err := repo.ListBySession(dbc, u.ID, s.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.True(t, rows[0].HasRead)
	require.True(t, rows[0].QuizCompleted)
	require.Equal(t, 90.0, rows[0].ProgressPercentage)
	require.NotNil(t, rows[0].QuizScore)
	require.Equal(t, 80.0, *rows[0].QuizScore)
}
