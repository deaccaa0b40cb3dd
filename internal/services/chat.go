package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
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
	NoHistoryPlaceholder      = "No previous messages in this chat."
	NoPassagesPlaceholder     = "No relevant PDFs found."
	RetrievalErrorPlaceholder = "Error retrieving PDF context."
	NoSearchPlaceholder       = "No additional web info found."
)

const (
	StreamEventMetadata = "metadata"
	StreamEventContent  = "content"
	StreamEventEnd      = "end"
)

var tracer = otel.Tracer("pdfmentor/services")

type ChatConfig struct {
	HistoryLimit int
	TopN         int
	Temperature  float64
	MaxTokens    int
}

func DefaultChatConfig() ChatConfig {
	return ChatConfig{HistoryLimit: 10, TopN: 5, Temperature: 0.3, MaxTokens: 3072}
}

// ChatRequest starts one turn. A nil or zero SessionID starts a new session.
type ChatRequest struct {
	SessionID          *uint  `json:"session_id"`
	Query              string `json:"query"`
	ContextDocumentIDs []uint `json:"context_pdfs"`
	SearchMode         bool   `json:"isSearchMode"`
}

type StreamMetadata struct {
	Search        string  `json:"search"`
	Duration      float64 `json:"duration"`
	ChatSessionID uint    `json:"chat_session_id"`
}

// StreamEvent is one frame of the chat stream.
type StreamEvent struct {
	Type string          `json:"type"`
	Data *StreamMetadata `json:"data,omitempty"`
	Text string          `json:"text,omitempty"`
}

// EmitFunc writes an event to the client. An error means the client is gone.
type EmitFunc func(StreamEvent) error

type ChatTurn struct {
	SessionID    uint
	User         *types.ChatMessage
	Assistant    *types.ChatMessage
	Disconnected bool
}

type ChatService interface {
	CreateSession(dbc dbctx.Context, name string) (*types.ChatSession, error)
	ListSessions(dbc dbctx.Context, limit int) ([]*types.ChatSession, error)
	ListMessages(dbc dbctx.Context, sessionID uint, limit int) ([]*types.ChatMessage, error)
	// AttachDocuments adds owned documents to the session and starts their progress at 0%.
	AttachDocuments(dbc dbctx.Context, sessionID uint, documentIDs []uint) ([]uint, error)
	// Stream runs one chat turn. Only errors returned before the first event
	// are failures; everything after degrades in-band.
	Stream(dbc dbctx.Context, req ChatRequest, emit EmitFunc) (*ChatTurn, error)
}

type chatService struct {
	db       *gorm.DB
	log      *logger.Logger
	cfg      ChatConfig
	repos    repos.Set
	progress ProgressService
	model    ChatModel
	embedder Embedder
	passages PassageSearcher
	web      WebSearcher
	notify   Notifier
}

type ChatDeps struct {
	Model    ChatModel
	Embedder Embedder
	Passages PassageSearcher
	Web      WebSearcher
	Progress ProgressService
	Notify   Notifier
}

func NewChatService(db *gorm.DB, baseLog *logger.Logger, cfg ChatConfig, r repos.Set, deps ChatDeps) ChatService {
	def := DefaultChatConfig()
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = def.HistoryLimit
	}
	if cfg.TopN <= 0 {
		cfg.TopN = def.TopN
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = def.Temperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	return &chatService{
		db:       db,
		log:      baseLog.With("service", "ChatService"),
		cfg:      cfg,
		repos:    r,
		progress: deps.Progress,
		model:    deps.Model,
		embedder: deps.Embedder,
		passages: deps.Passages,
		web:      deps.Web,
		notify:   deps.Notify,
	}
}

func (s *chatService) CreateSession(dbc dbctx.Context, name string) (*types.ChatSession, error) {
	userID, err := requireUserID(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.repos.Sessions.Create(dbc, userID, name)
	if err != nil {
		return nil, err
	}
	if s.notify != nil {
		s.notify.ChatSessionCreated(userID, session)
	}
	return session, nil
}

func (s *chatService) ListSessions(dbc dbctx.Context, limit int) ([]*types.ChatSession, error) {
	userID, err := requireUserID(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	return s.repos.Sessions.ListByUser(dbc, userID, limit)
}

func (s *chatService) ListMessages(dbc dbctx.Context, sessionID uint, limit int) ([]*types.ChatMessage, error) {
	if _, err := s.ownedSession(dbc, sessionID); err != nil {
		return nil, err
	}
	return s.repos.Messages.ListBySession(dbc, sessionID, limit)
}

func (s *chatService) AttachDocuments(dbc dbctx.Context, sessionID uint, documentIDs []uint) ([]uint, error) {
	userID, err := requireUserID(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	ids := uniqueIDs(documentIDs)
	if len(ids) == 0 {
		return nil, apierr.Validation("no documents given")
	}

	err = transactionRoot(dbc, s.db).WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if _, err := s.ownedSession(inner, sessionID); err != nil {
			return err
		}
		docs, err := s.repos.Documents.ListByIDsForUser(inner, userID, ids)
		if err != nil {
			return err
		}
		if len(docs) != len(ids) {
			return apierr.NotFound("PDF not found")
		}
		if err := s.repos.SessionDocuments.Attach(inner, sessionID, ids); err != nil {
			return err
		}
		if s.progress == nil {
			return nil
		}
		for _, id := range ids {
			if err := s.progress.InitializeProgress(inner, id, sessionID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *chatService) Stream(dbc dbctx.Context, req ChatRequest, emit EmitFunc) (*ChatTurn, error) {
	start := time.Now()
	ctx := dbc.Ctx
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, apierr.Validation("query is required")
	}

	ctx, span := tracer.Start(ctx, "chat.Stream")
	defer span.End()
	dbc = dbctx.Context{Ctx: ctx, Tx: dbc.Tx}

	session, err := s.resolveSession(dbc, userID, req.SessionID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("chat.session_id", int64(session.ID)),
		attribute.Bool("chat.search_mode", req.SearchMode),
		attribute.Int("chat.context_docs", len(req.ContextDocumentIDs)),
	)

	history, err := s.repos.Messages.ListRecent(dbc, session.ID, s.cfg.HistoryLimit)
	if err != nil {
		s.log.Warn("history lookup failed", "session_id", session.ID, "error", err)
		history = nil
	}

	var (
		docContext, searchContext string
		searchRaw                 []byte
		passages                  []string
		passagesErr               error
		webResult                 map[string]any
		webErr                    error
	)
	var g errgroup.Group
	if len(req.ContextDocumentIDs) > 0 {
		g.Go(func() error {
			passages, passagesErr = s.retrievePassages(dbc, userID, query, req.ContextDocumentIDs)
			return passagesErr
		})
	}
	if req.SearchMode {
		g.Go(func() error {
			webResult, webErr = s.webSearch(ctx, query)
			return webErr
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
	}
	if len(req.ContextDocumentIDs) > 0 {
		docContext = s.documentContext(passages, passagesErr)
	}
	if req.SearchMode {
		searchContext, searchRaw = s.searchContext(webResult, webErr)
	}

	prompt := BuildChatPrompt(docContext, FormatHistory(history), query)

	turn := &ChatTurn{SessionID: session.ID}
	meta := &StreamMetadata{
		Search:        searchContext,
		Duration:      time.Since(start).Seconds(),
		ChatSessionID: session.ID,
	}
	if err := emit(StreamEvent{Type: StreamEventMetadata, Data: meta}); err != nil {
		turn.Disconnected = true
	}

	var answer strings.Builder
	if !turn.Disconnected {
		turn.Disconnected = s.forward(ctx, prompt, emit, &answer)
	}

	// Bookkeeping survives a client that went away.
	persistCtx := context.WithoutCancel(ctx)
	userMsg, botMsg, err := s.persistTurn(dbctx.Context{Ctx: persistCtx, Tx: dbc.Tx}, session.ID, userID, query, answer.String(), searchRaw)
	if err != nil {
		s.log.Error("persist chat turn failed", "session_id", session.ID, "error", err)
		span.RecordError(err)
	}
	turn.User, turn.Assistant = userMsg, botMsg

	if !turn.Disconnected {
		if err := emit(StreamEvent{Type: StreamEventEnd}); err != nil {
			turn.Disconnected = true
		}
	}
	s.log.Info("chat turn finished",
		"session_id", session.ID,
		"answer_len", answer.Len(),
		"disconnected", turn.Disconnected,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return turn, nil
}

// forward relays model chunks until the model finishes or the client leaves.
// It reports whether the client left.
func (s *chatService) forward(ctx context.Context, prompt string, emit EmitFunc, answer *strings.Builder) bool {
	// Stops the producer when the client write fails first.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	chunks, err := s.model.StreamText(ctx, llm.Request{
		Prompt:      prompt,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		s.log.Error("model stream failed to start", "error", err)
		return ctx.Err() != nil
	}
	for {
		select {
		case <-ctx.Done():
			s.log.Info("client disconnected, stopping stream")
			return true
		case chunk, ok := <-chunks:
			if !ok {
				return ctx.Err() != nil
			}
			if ctx.Err() != nil {
				return true
			}
			if chunk.Err != nil {
				s.log.Warn("skipping bad chunk", "error", chunk.Err)
				continue
			}
			if chunk.Text == "" {
				continue
			}
			if err := emit(StreamEvent{Type: StreamEventContent, Text: chunk.Text}); err != nil {
				s.log.Info("client disconnected, stopping stream", "error", err)
				return true
			}
			answer.WriteString(chunk.Text)
		}
	}
}

func (s *chatService) resolveSession(dbc dbctx.Context, userID uint, sessionID *uint) (*types.ChatSession, error) {
	if sessionID != nil && *sessionID != 0 {
		session, err := s.repos.Sessions.GetByIDForUser(dbc, userID, *sessionID)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, apierr.NotFound("Chat session not found")
		}
		return session, nil
	}
	session, err := s.repos.Sessions.Create(dbc, userID, "")
	if err != nil {
		return nil, err
	}
	if s.notify != nil {
		s.notify.ChatSessionCreated(userID, session)
	}
	return session, nil
}

func (s *chatService) ownedSession(dbc dbctx.Context, sessionID uint) (*types.ChatSession, error) {
	userID, err := requireUserID(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.repos.Sessions.GetByIDForUser(dbc, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apierr.NotFound("Chat session not found")
	}
	return session, nil
}

// documentContext never fails; problems become placeholder text.
var errRetrievalUnavailable = errors.New("retrieval not configured")

// retrievePassages searches the caller's own documents among documentIDs. A
// nil slice with a nil error means none of them matched.
func (s *chatService) retrievePassages(dbc dbctx.Context, userID uint, query string, documentIDs []uint) ([]string, error) {
	if s.embedder == nil || s.passages == nil {
		return nil, errRetrievalUnavailable
	}
	docs, err := s.repos.Documents.ListByIDsForUser(dbc, userID, uniqueIDs(documentIDs))
	if err != nil {
		return nil, fmt.Errorf("load context documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	owned := make([]uint, 0, len(docs))
	for _, d := range docs {
		owned = append(owned, d.ID)
	}

	vecs, err := s.embedder.Embed(dbc.Ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, errors.New("embed query: empty result")
	}
	passages, err := s.passages.SearchPassages(dbc.Ctx, vecs[0], s.cfg.TopN, owned)
	if err != nil {
		return nil, fmt.Errorf("search passages: %w", err)
	}
	return passages, nil
}

func (s *chatService) documentContext(passages []string, err error) string {
	if err != nil {
		s.log.Error("Error retrieving PDF context", "error", err)
		return RetrievalErrorPlaceholder
	}
	if len(passages) == 0 {
		return NoPassagesPlaceholder
	}
	return strings.Join(passages, "\n")
}

func (s *chatService) webSearch(ctx context.Context, query string) (map[string]any, error) {
	if s.web == nil {
		return nil, nil
	}
	result, err := s.web.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	return result, nil
}

// searchContext returns the text for the metadata event and the raw JSON to
// keep on the assistant message.
func (s *chatService) searchContext(result map[string]any, err error) (string, []byte) {
	if err != nil {
		s.log.Warn("web search failed", "error", err)
		return NoSearchPlaceholder, nil
	}
	if len(result) == 0 {
		return NoSearchPlaceholder, nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		s.log.Warn("web search result not serializable", "error", err)
		return NoSearchPlaceholder, nil
	}
	return string(raw), raw
}

func (s *chatService) persistTurn(dbc dbctx.Context, sessionID, userID uint, query, answer string, searchRaw []byte) (*types.ChatMessage, *types.ChatMessage, error) {
	uid := userID
	userMsg := &types.ChatMessage{
		SessionID:     sessionID,
		UserID:        &uid,
		IsUserMessage: true,
		Content:       query,
	}
	botMsg := &types.ChatMessage{
		SessionID:     sessionID,
		IsUserMessage: false,
		Content:       answer,
	}
	if len(searchRaw) > 0 {
		botMsg.SearchData = datatypes.JSON(searchRaw)
	}
	err := transactionRoot(dbc, s.db).WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.repos.Messages.Create(dbctx.Context{Ctx: dbc.Ctx, Tx: tx}, []*types.ChatMessage{userMsg, botMsg})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return userMsg, botMsg, nil
}

// FormatHistory renders messages oldest first as "<role>: <content>" lines.
func FormatHistory(messages []*types.ChatMessage) string {
	if len(messages) == 0 {
		return NoHistoryPlaceholder
	}
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role(), m.Content))
	}
	return strings.Join(lines, "\n")
}

func BuildChatPrompt(docContext, history, query string) string {
	return "You are a helpful assistant. Use the context provided to answer the user question at the end.\n\n" +
		"**Document Context:**\n" + docContext + "\n\n" +
		"**Chat History:**\n" + history + "\n\n" +
		"**User Question:** " + query
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
