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
	"github.com/yungbote/pdfmentor-backend/internal/platform/llm"
)

const generatedQuizJSON = `{
  "title": "Cell Biology",
  "questions": [
    {"question": "Powerhouse?", "type": "multiple_choice", "answers": [
      {"text": "Mitochondria", "correct": true},
      {"text": "Nucleus", "correct": false}
    ]},
    {"question": "Holds DNA?", "answers": [
      {"text": "Ribosome", "correct": false},
      {"text": "Nucleus", "correct": true}
    ]}
  ]
}`

const generatedMindmapJSON = `{
  "title": "ignored",
  "nodes": [
    {"id": "c", "label": "Cells", "type": "central", "level": 0},
    {"id": "t1", "label": "Organelles", "type": "topic", "level": 1}
  ],
  "links": [{"source": "c", "target": "t1"}]
}`

func newStudyService(env *testEnv, mock *llm.MockProvider) StudyMaterialsService {
	return NewStudyMaterialsService(env.db, env.log, newMockClient(mock), env.repos, env.notify)
}

func TestGenerateStudyMaterials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, env.db)
	doc := testutil.SeedDocument(t, ctx, env.db, u.ID, "cells.pdf")

	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage("  A short summary.  ")},
		llm.MockResponse{Content: json.RawMessage(generatedMindmapJSON)},
		llm.MockResponse{Content: json.RawMessage(generatedQuizJSON)},
	)
	svc := newStudyService(env, mock)

	out, err := svc.Generate(asUser(u), doc.ID, StudyMaterialsRequest{Text: "cells have organelles"})
	require.NoError(t, err)
	require.Equal(t, "A short summary.", out.Summary)
	require.False(t, out.MindmapFallback)
	require.Equal(t, "Mindmap for cells.pdf", out.Mindmap.Title)
	require.Len(t, out.Mindmap.Nodes, 2)
	require.NotNil(t, out.QuizID)
	require.Equal(t, "Cell Biology", out.QuizTitle)
	require.Len(t, env.notify.materials, 1)

	summary, err := svc.GetSummary(asUser(u), doc.ID)
	require.NoError(t, err)
	require.Equal(t, "A short summary.", summary)

	mm, err := svc.GetMindmap(asUser(u), doc.ID)
	require.NoError(t, err)
	require.Equal(t, "Organelles", mm.Nodes[1].Label)

	quiz, err := env.repos.Quizzes.GetByDocumentID(asUser(u), doc.ID)
	require.NoError(t, err)
	require.NotNil(t, quiz)
	require.Equal(t, "Auto-generated quiz", *quiz.Description)
	require.Len(t, quiz.Questions, 2)
	require.Equal(t, types.QuestionMultipleChoice, quiz.Questions[1].QuestionType)
	require.True(t, quiz.Questions[1].Answers[1].IsCorrect)

	require.True(t, strings.Contains(mock.Calls[2].Prompt, "5 multiple-choice questions"))
}

func TestGenerateKeepsExistingQuiz(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, env.db)
	doc := testutil.SeedDocument(t, ctx, env.db, u.ID, "cells.pdf")
	existing := testutil.SeedQuiz(t, ctx, env.db, doc.ID, 2)

	mock := llm.NewMockProvider()
	svc := newStudyService(env, mock)

	out, err := svc.Generate(asUser(u), doc.ID, StudyMaterialsRequest{Text: "x", SkipSummary: true, SkipMindmap: true})
	require.NoError(t, err)
	require.Equal(t, existing.ID, *out.QuizID)
	require.Zero(t, mock.CallCount())
}

func TestGenerateDegradesSummaryAndMindmap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, env.db)
	doc := testutil.SeedDocument(t, ctx, env.db, u.ID, "notes.pdf")

	mock := llm.NewMockProvider(
		llm.MockResponse{Err: errors.New("overloaded")},
		llm.MockResponse{Content: json.RawMessage(`{"not": "a mindmap"}`)},
	)
	svc := newStudyService(env, mock)

	out, err := svc.Generate(asUser(u), doc.ID, StudyMaterialsRequest{Text: "x", SkipQuiz: true})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out.Summary, "Summary generation failed: "))
	require.True(t, out.MindmapFallback)
	require.Len(t, out.Mindmap.Nodes, 1)
	require.Equal(t, "notes.pdf", out.Mindmap.Nodes[0].Label)
	require.Nil(t, out.QuizID)

	mm, err := svc.GetMindmap(asUser(u), doc.ID)
	require.NoError(t, err)
	require.Equal(t, "Mindmap for notes.pdf", mm.Title)
}

func TestGenerateInvalidQuizLeavesNoRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, env.db)
	doc := testutil.SeedDocument(t, ctx, env.db, u.ID, "cells.pdf")

	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"title": "", "questions": []}`)})
	svc := newStudyService(env, mock)

	_, err := svc.Generate(asUser(u), doc.ID, StudyMaterialsRequest{Text: "x", SkipSummary: true, SkipMindmap: true})
	require.Error(t, err)

	var n int64
	require.NoError(t, env.db.Model(&types.Quiz{}).Where("pdf_document_id = ?", doc.ID).Count(&n).Error)
	require.Zero(t, n)
	require.Empty(t, env.notify.materials)
}

func TestStudyMaterialsPlaceholdersAndOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, env.db)
	doc := testutil.SeedDocument(t, ctx, env.db, u.ID, "empty.pdf")
	svc := newStudyService(env, llm.NewMockProvider())

	summary, err := svc.GetSummary(asUser(u), doc.ID)
	require.NoError(t, err)
	require.Equal(t, NoSummaryPlaceholder, summary)

	_, err = svc.GetMindmap(asUser(u), doc.ID)
	require.True(t, errors.Is(err, apierr.ErrNotFound))

	other := testutil.SeedUser(t, ctx, env.db)
	_, err = svc.GetSummary(asUser(other), doc.ID)
	require.True(t, errors.Is(err, apierr.ErrNotFound))

	_, err = svc.Generate(asUser(u), doc.ID, StudyMaterialsRequest{Text: "   "})
	require.True(t, errors.Is(err, apierr.ErrValidation))
}
