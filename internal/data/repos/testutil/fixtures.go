package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	types "github.com/yungbote/pdfmentor-backend/internal/domain"
)

var externalSeq atomic.Int64

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB) *types.User {
	tb.Helper()
	n := externalSeq.Add(1)
	u := &types.User{
		ExternalID: fmt.Sprintf("user_test_%d", n),
		Username:   fmt.Sprintf("tester%d", n),
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedDocument(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uint, filename string) *types.Document {
	tb.Helper()
	d := &types.Document{
		UserID:    userID,
		Filename:  filename,
		FileSize:  1024,
		PageCount: 3,
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed document: %v", err)
	}
	return d
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uint) *types.ChatSession {
	tb.Helper()
	s := &types.ChatSession{UserID: userID, Name: types.DefaultSessionName}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

func AttachDocument(tb testing.TB, ctx context.Context, tx *gorm.DB, sessionID, docID uint) {
	tb.Helper()
	link := &types.ChatSessionDocument{ChatSessionID: sessionID, DocumentID: docID}
	if err := tx.WithContext(ctx).Create(link).Error; err != nil {
		tb.Fatalf("attach document: %v", err)
	}
}

// SeedQuiz creates a quiz with n multiple choice questions of four answers
// each; the first answer of every question is the correct one.
func SeedQuiz(tb testing.TB, ctx context.Context, tx *gorm.DB, docID uint, n int) *types.Quiz {
	tb.Helper()
	q := &types.Quiz{DocumentID: docID, Title: "Quiz"}
	for i := 0; i < n; i++ {
		question := types.QuizQuestion{
			QuestionText: fmt.Sprintf("Question %d?", i+1),
			QuestionType: types.QuestionMultipleChoice,
		}
		for j := 0; j < 4; j++ {
			question.Answers = append(question.Answers, types.QuizAnswer{
				AnswerText: fmt.Sprintf("Answer %d.%d", i+1, j+1),
				IsCorrect:  j == 0,
			})
		}
		q.Questions = append(q.Questions, question)
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return q
}

func SeedMessage(tb testing.TB, ctx context.Context, tx *gorm.DB, sessionID uint, userID *uint, content string) *types.ChatMessage {
	tb.Helper()
	m := &types.ChatMessage{
		SessionID:     sessionID,
		UserID:        userID,
		IsUserMessage: userID != nil,
		Content:       content,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed message: %v", err)
	}
	return m
}

func PtrUint(v uint) *uint { return &v }

func PtrFloat(v float64) *float64 { return &v }
