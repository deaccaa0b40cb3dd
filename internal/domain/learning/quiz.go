package learning

import "time"

const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionShortAnswer    = "short_answer"
)

// Quiz belongs to one document. The generator keeps it to one per document.
type Quiz struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DocumentID  uint      `gorm:"column:pdf_document_id;not null;index" json:"pdf_document_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	Questions []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string { return "quizzes" }

type QuizQuestion struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	QuizID       uint   `gorm:"not null;index" json:"quiz_id"`
	QuestionText string `gorm:"type:text;not null" json:"question_text"`
	QuestionType string `gorm:"not null;default:'multiple_choice'" json:"question_type"`

	Answers []QuizAnswer `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`
}

func (QuizQuestion) TableName() string { return "quiz_questions" }

// QuizAnswer: one answer per question is expected to be correct. Nothing in
// the schema enforces it; grading uses the first correct answer by id.
type QuizAnswer struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
	AnswerText string `gorm:"type:text;not null" json:"answer_text"`
	IsCorrect  bool   `gorm:"not null;default:false" json:"is_correct"`
}

func (QuizAnswer) TableName() string { return "quiz_answers" }

// QuizSubmission is append-only; every attempt is its own row.
type QuizSubmission struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	QuizID        uint      `gorm:"not null;index" json:"quiz_id"`
	ChatSessionID uint      `gorm:"not null;index" json:"chat_session_id"`
	Score         float64   `gorm:"not null" json:"score"`
	CompletedAt   time.Time `gorm:"autoCreateTime" json:"completed_at"`
}

func (QuizSubmission) TableName() string { return "user_quiz_submissions" }
