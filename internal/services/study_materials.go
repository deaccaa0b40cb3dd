package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/pdfmentor-backend/internal/data/repos"
	types "github.com/yungbote/pdfmentor-backend/internal/domain"
	"github.com/yungbote/pdfmentor-backend/internal/platform/apierr"
	"github.com/yungbote/pdfmentor-backend/internal/platform/dbctx"
	"github.com/yungbote/pdfmentor-backend/internal/platform/llm"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

const (
	NoSummaryPlaceholder = "No summary available."

	quizTextLimit      = 15000
	quizQuestionCount  = 5
	quizAnswersPerItem = 4
	quizDescription    = "Auto-generated quiz"
)

// StudyMaterialsRequest carries the document's extracted text. Extraction
// happens upstream; any part can be skipped.
type StudyMaterialsRequest struct {
	Text        string `json:"text" binding:"required"`
	SkipSummary bool   `json:"skip_summary"`
	SkipMindmap bool   `json:"skip_mindmap"`
	SkipQuiz    bool   `json:"skip_quiz"`
}

type StudyMaterials struct {
	DocumentID      uint           `json:"pdf_id"`
	Summary         string         `json:"summary,omitempty"`
	Mindmap         *types.Mindmap `json:"mindmap,omitempty"`
	MindmapFallback bool           `json:"mindmap_fallback"`
	QuizID          *uint          `json:"quiz_id,omitempty"`
	QuizTitle       string         `json:"quiz_title,omitempty"`
}

type StudyMaterialsService interface {
	GetSummary(dbc dbctx.Context, documentID uint) (string, error)
	GetMindmap(dbc dbctx.Context, documentID uint) (*types.Mindmap, error)
	Generate(dbc dbctx.Context, documentID uint, req StudyMaterialsRequest) (*StudyMaterials, error)
}

type studyMaterialsService struct {
	db        *gorm.DB
	log       *logger.Logger
	gen       TextGenerator
	documents repos.DocumentRepo
	quizzes   repos.QuizRepo
	notify    Notifier
}

func NewStudyMaterialsService(db *gorm.DB, baseLog *logger.Logger, gen TextGenerator, r repos.Set, notify Notifier) StudyMaterialsService {
	return &studyMaterialsService{
		db:        db,
		log:       baseLog.With("service", "StudyMaterialsService"),
		gen:       gen,
		documents: r.Documents,
		quizzes:   r.Quizzes,
		notify:    notify,
	}
}

func (s *studyMaterialsService) ownedDocument(dbc dbctx.Context, documentID uint) (*types.Document, uint, error) {
	userID, err := requireUserID(dbc.Ctx)
	if err != nil {
		return nil, 0, err
	}
	doc, err := s.documents.GetByIDForUser(dbc, userID, documentID)
	if err != nil {
		return nil, 0, err
	}
	if doc == nil {
		return nil, 0, apierr.NotFound("PDF not found")
	}
	return doc, userID, nil
}

func (s *studyMaterialsService) GetSummary(dbc dbctx.Context, documentID uint) (string, error) {
	doc, _, err := s.ownedDocument(dbc, documentID)
	if err != nil {
		return "", err
	}
	if doc.Summary == nil || strings.TrimSpace(*doc.Summary) == "" {
		return NoSummaryPlaceholder, nil
	}
	return *doc.Summary, nil
}

func (s *studyMaterialsService) GetMindmap(dbc dbctx.Context, documentID uint) (*types.Mindmap, error) {
	doc, _, err := s.ownedDocument(dbc, documentID)
	if err != nil {
		return nil, err
	}
	mm := decodeMindmap(doc.Mindmap)
	if mm == nil {
		return nil, apierr.NotFound("No mindmap available for this PDF")
	}
	return mm, nil
}

// Generate fills in the summary and mindmap and creates a quiz when the
// document has none. Summary and mindmap failures degrade; a quiz failure is
// returned after its rows are rolled back.
func (s *studyMaterialsService) Generate(dbc dbctx.Context, documentID uint, req StudyMaterialsRequest) (*StudyMaterials, error) {
	doc, userID, err := s.ownedDocument(dbc, documentID)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apierr.Validation("text is required")
	}

	out := &StudyMaterials{DocumentID: doc.ID}
	updates := map[string]interface{}{}

	if !req.SkipSummary {
		summary, err := s.summarize(dbc, doc.Filename, text)
		if err != nil {
			s.log.Error("summary generation failed", "pdf_id", doc.ID, "error", err)
			summary = "Summary generation failed: " + err.Error()
		}
		out.Summary = summary
		updates["pdf_summary"] = summary
	}

	if !req.SkipMindmap {
		mm, fallback := s.mindmap(dbc, doc.Filename, text)
		raw, err := json.Marshal(mm)
		if err != nil {
			return nil, fmt.Errorf("encode mindmap: %w", err)
		}
		out.Mindmap = &mm
		out.MindmapFallback = fallback
		updates["mindmap"] = datatypes.JSON(raw)
	}

	if err := s.documents.UpdateFields(dbc, doc.ID, updates); err != nil {
		return nil, err
	}

	if !req.SkipQuiz {
		quiz, err := s.generateQuiz(dbc, doc.ID, text)
		if err != nil {
			return nil, err
		}
		if quiz != nil {
			id := quiz.ID
			out.QuizID = &id
			out.QuizTitle = quiz.Title
		}
	}

	if s.notify != nil {
		s.notify.StudyMaterialsGenerated(userID, out)
	}
	return out, nil
}

func (s *studyMaterialsService) summarize(dbc dbctx.Context, filename, text string) (string, error) {
	prompt := fmt.Sprintf(`Please provide a concise summary of the following document titled %q.
Focus on the key points, main arguments, and important conclusions.
The summary should be 3-5 paragraphs long.

DOCUMENT TEXT:
%s

SUMMARY:`, filename, text)
	out, err := s.gen.GenerateText(dbc.Ctx, llm.Request{Prompt: prompt, Temperature: 0.2, MaxTokens: 2048})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// mindmap never fails; the second result reports whether the fallback was used.
func (s *studyMaterialsService) mindmap(dbc dbctx.Context, filename, text string) (types.Mindmap, bool) {
	prompt := `Analyze the following text and create a mindmap structure.
Focus on the main concepts and their relationships.
Use one central node (level 0), at most 5 topics (level 1) and 3-4 subtopics per topic (level 2).
Keep labels concise (1-5 words). Link every topic to the central node and every subtopic to its topic.

TEXT:
` + text
	raw, err := s.gen.GenerateJSON(dbc.Ctx, llm.Request{Prompt: prompt, Temperature: 0.3}, mindmapSchema)
	if err != nil {
		s.log.Error("mindmap generation failed", "error", err)
		return types.FallbackMindmap(filename), true
	}
	var mm types.Mindmap
	if err := json.Unmarshal(raw, &mm); err != nil || len(mm.Nodes) == 0 {
		s.log.Error("mindmap decode failed", "error", err)
		return types.FallbackMindmap(filename), true
	}
	mm.Title = "Mindmap for " + filename
	if mm.Links == nil {
		mm.Links = []types.MindmapLink{}
	}
	return mm, false
}

type generatedQuiz struct {
	Title     string `json:"title"`
	Questions []struct {
		Question string `json:"question"`
		Type     string `json:"type"`
		Answers  []struct {
			Text    string `json:"text"`
			Correct bool   `json:"correct"`
		} `json:"answers"`
	} `json:"questions"`
}

// generateQuiz returns the existing quiz untouched when there already is one.
func (s *studyMaterialsService) generateQuiz(dbc dbctx.Context, documentID uint, text string) (*types.Quiz, error) {
	existing, err := s.quizzes.GetByDocumentID(dbc, documentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if r := []rune(text); len(r) > quizTextLimit {
		text = string(r[:quizTextLimit])
	}
	prompt := fmt.Sprintf(`Create a multiple-choice quiz based on the following content.
The quiz should test understanding of the key concepts and information.
Generate %d multiple-choice questions, each with %d answer options.
Include exactly one correct answer for each question.

CONTENT:
%s`, quizQuestionCount, quizAnswersPerItem, text)

	raw, err := s.gen.GenerateJSON(dbc.Ctx, llm.Request{Prompt: prompt, Temperature: 0.3, MaxTokens: 2048}, quizSchema)
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}
	var parsed generatedQuiz
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode quiz: %w", err)
	}

	desc := quizDescription
	quiz := &types.Quiz{DocumentID: documentID, Title: strings.TrimSpace(parsed.Title), Description: &desc}
	for _, q := range parsed.Questions {
		qType := strings.TrimSpace(q.Type)
		if qType == "" {
			qType = types.QuestionMultipleChoice
		}
		question := types.QuizQuestion{QuestionText: q.Question, QuestionType: qType}
		for _, a := range q.Answers {
			question.Answers = append(question.Answers, types.QuizAnswer{AnswerText: a.Text, IsCorrect: a.Correct})
		}
		quiz.Questions = append(quiz.Questions, question)
	}

	err = transactionRoot(dbc, s.db).WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.quizzes.Create(dbctx.Context{Ctx: dbc.Ctx, Tx: tx}, quiz)
		return err
	})
	if err != nil {
		s.log.Error("quiz insert rolled back", "pdf_id", documentID, "error", err)
		return nil, err
	}
	return quiz, nil
}

func decodeMindmap(raw datatypes.JSON) *types.Mindmap {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var mm types.Mindmap
	if err := json.Unmarshal(raw, &mm); err != nil {
		return nil
	}
	return &mm
}

var mindmapSchema = &llm.Schema{
	Name:        "mindmap",
	Description: "Concept mindmap of a document",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"nodes": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":    map[string]any{"type": "string"},
						"label": map[string]any{"type": "string"},
						"type":  map[string]any{"type": "string", "enum": []any{"central", "topic", "subtopic"}},
						"level": map[string]any{"type": "integer", "minimum": 0, "maximum": 2},
					},
					"required": []any{"id", "label", "type", "level"},
				},
			},
			"links": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"source": map[string]any{"type": "string"},
						"target": map[string]any{"type": "string"},
						"label":  map[string]any{"type": "string"},
					},
					"required": []any{"source", "target"},
				},
			},
		},
		"required": []any{"title", "nodes", "links"},
	},
}

var quizSchema = &llm.Schema{
	Name:        "quiz",
	Description: "Multiple choice quiz with exactly one correct answer per question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string", "minLength": 1},
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{"type": "string", "minLength": 1},
						"type":     map[string]any{"type": "string", "enum": []any{"multiple_choice", "true_false", "short_answer"}},
						"answers": map[string]any{
							"type":     "array",
							"minItems": 2,
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"text":    map[string]any{"type": "string"},
									"correct": map[string]any{"type": "boolean"},
								},
								"required": []any{"text", "correct"},
							},
						},
					},
					"required": []any{"question", "answers"},
				},
			},
		},
		"required": []any{"title", "questions"},
	},
}
