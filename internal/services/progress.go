package services

import (
	"gorm.io/gorm"

	"github.com/yungbote/pdfmentor-backend/internal/data/repos"
	types "github.com/yungbote/pdfmentor-backend/internal/domain"
	"github.com/yungbote/pdfmentor-backend/internal/platform/apierr"
	"github.com/yungbote/pdfmentor-backend/internal/platform/dbctx"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

// SessionDocumentProgress is one row of the session progress listing.
type SessionDocumentProgress struct {
	DocumentID         uint           `json:"id"`
	Filename           string         `json:"filename"`
	HasRead            bool           `json:"has_read"`
	QuizCompleted      bool           `json:"quiz_completed"`
	ProgressPercentage float64        `json:"progress_percentage"`
	HasQuiz            bool           `json:"has_quiz"`
	QuizID             *uint          `json:"quiz_id"`
	QuizScore          *float64       `json:"quiz_score"`
	Summary            *string        `json:"summary"`
	Mindmap            *types.Mindmap `json:"mindmap"`
}

type ProgressService interface {
	// TrackDocumentOpened marks the document read in the session and recomputes its percentage.
	TrackDocumentOpened(dbc dbctx.Context, documentID, sessionID uint) (*types.Progress, error)
	// InitializeProgress creates a 0% row for the triple unless one exists.
	InitializeProgress(dbc dbctx.Context, documentID, sessionID uint) error
	ListSessionProgress(dbc dbctx.Context, sessionID uint) ([]SessionDocumentProgress, error)
	// RecomputeAll rewrites every stored percentage under the configured
	// policy and reports how many rows changed. It is an operator task and
	// ignores the request user.
	RecomputeAll(dbc dbctx.Context, dryRun bool) (int, error)
	Policy() ProgressPolicy
}

type progressService struct {
	db          *gorm.DB
	log         *logger.Logger
	policy      ProgressPolicy
	documents   repos.DocumentRepo
	sessions    repos.ChatSessionRepo
	sessionDocs repos.ChatSessionDocumentRepo
	quizzes     repos.QuizRepo
	submissions repos.QuizSubmissionRepo
	progress    repos.ProgressRepo
	notify      Notifier
}

func NewProgressService(db *gorm.DB, baseLog *logger.Logger, policy ProgressPolicy, r repos.Set, notify Notifier) ProgressService {
	if policy == "" {
		policy = DefaultProgressPolicy
	}
	return &progressService{
		db:          db,
		log:         baseLog.With("service", "ProgressService", "policy", string(policy)),
		policy:      policy,
		documents:   r.Documents,
		sessions:    r.Sessions,
		sessionDocs: r.SessionDocuments,
		quizzes:     r.Quizzes,
		submissions: r.Submissions,
		progress:    r.Progress,
		notify:      notify,
	}
}

func (s *progressService) Policy() ProgressPolicy { return s.policy }

func (s *progressService) TrackDocumentOpened(dbc dbctx.Context, documentID, sessionID uint) (*types.Progress, error) {
	userID, err := requireUserID(dbc.Ctx)
	if err != nil {
		return nil, err
	}

	var out *types.Progress
	err = transactionRoot(dbc, s.db).WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if err := s.requireOwnership(inner, userID, documentID, sessionID); err != nil {
			return err
		}
		hasQuiz, err := s.quizzes.ExistsForDocument(inner, documentID)
		if err != nil {
			return err
		}
		row, err := s.progress.GetForUpdate(inner, userID, documentID, sessionID)
		if err != nil {
			return err
		}
		if row == nil {
			row = &types.Progress{UserID: userID, DocumentID: documentID, ChatSessionID: sessionID}
		}
		row.HasRead = true
		row.ProgressPercentage = s.policy.Percentage(stateOf(row, hasQuiz))
		if err := s.progress.Upsert(inner, row); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("document opened", "user_id", userID, "pdf_id", documentID, "session_id", sessionID, "progress", out.ProgressPercentage)
	if s.notify != nil {
		s.notify.ProgressUpdated(userID, out)
	}
	return out, nil
}

func (s *progressService) InitializeProgress(dbc dbctx.Context, documentID, sessionID uint) error {
	userID, err := requireUserID(dbc.Ctx)
	if err != nil {
		return err
	}
	return s.progress.CreateIfMissing(dbc, &types.Progress{
		UserID:        userID,
		DocumentID:    documentID,
		ChatSessionID: sessionID,
	})
}

func (s *progressService) ListSessionProgress(dbc dbctx.Context, sessionID uint) ([]SessionDocumentProgress, error) {
	userID, err := requireUserID(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.GetByIDForUser(dbc, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apierr.NotFound("Chat session not found")
	}

	docIDs, err := s.sessionDocs.ListDocumentIDs(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.ListByIDsForUser(dbc, userID, docIDs)
	if err != nil {
		return nil, err
	}
	rows, err := s.progress.ListBySession(dbc, userID, sessionID)
	if err != nil {
		return nil, err
	}
	byDoc := make(map[uint]*types.Progress, len(rows))
	for _, row := range rows {
		byDoc[row.DocumentID] = row
	}

	quizzes, err := s.quizzes.ListByDocumentIDs(dbc, docIDs)
	if err != nil {
		return nil, err
	}
	quizByDoc := map[uint]uint{}
	quizIDs := make([]uint, 0, len(quizzes))
	for _, q := range quizzes {
		if _, seen := quizByDoc[q.DocumentID]; !seen {
			quizByDoc[q.DocumentID] = q.ID
			quizIDs = append(quizIDs, q.ID)
		}
	}
	best, err := s.submissions.BestScores(dbc, userID, sessionID, quizIDs)
	if err != nil {
		return nil, err
	}

	out := make([]SessionDocumentProgress, 0, len(docs))
	for _, d := range docs {
		item := SessionDocumentProgress{
			DocumentID: d.ID,
			Filename:   d.Filename,
			Summary:    d.Summary,
			Mindmap:    decodeMindmap(d.Mindmap),
		}
		if p := byDoc[d.ID]; p != nil {
			item.HasRead = p.HasRead
			item.QuizCompleted = p.QuizCompleted
			item.ProgressPercentage = p.ProgressPercentage
		}
		if qid, ok := quizByDoc[d.ID]; ok {
			id := qid
			item.HasQuiz = true
			item.QuizID = &id
			if score, ok := best[qid]; ok {
				sc := score
				item.QuizScore = &sc
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *progressService) RecomputeAll(dbc dbctx.Context, dryRun bool) (int, error) {
	const pageSize = 500
	hasQuiz := map[uint]bool{}
	changed := 0
	var after uint
	for {
		page, err := s.progress.ListAfter(dbc, after, pageSize)
		if err != nil {
			return changed, err
		}
		for _, row := range page {
			after = row.ID
			quiz, ok := hasQuiz[row.DocumentID]
			if !ok {
				quiz, err = s.quizzes.ExistsForDocument(dbc, row.DocumentID)
				if err != nil {
					return changed, err
				}
				hasQuiz[row.DocumentID] = quiz
			}
			pct := s.policy.Percentage(stateOf(row, quiz))
			if pct == row.ProgressPercentage {
				continue
			}
			changed++
			s.log.Debug("progress recomputed", "progress_id", row.ID, "from", row.ProgressPercentage, "to", pct, "dry_run", dryRun)
			if dryRun {
				continue
			}
			row.ProgressPercentage = pct
			if err := s.progress.Upsert(dbc, row); err != nil {
				return changed, err
			}
		}
		if len(page) < pageSize {
			break
		}
	}
	s.log.Info("progress recompute finished", "changed", changed, "dry_run", dryRun)
	return changed, nil
}

func (s *progressService) requireOwnership(dbc dbctx.Context, userID, documentID, sessionID uint) error {
	session, err := s.sessions.GetByIDForUser(dbc, userID, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return apierr.NotFound("Chat session not found")
	}
	doc, err := s.documents.GetByIDForUser(dbc, userID, documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return apierr.NotFound("PDF not found")
	}
	return nil
}

func stateOf(row *types.Progress, hasQuiz bool) ProgressState {
	st := ProgressState{
		HasRead:       row.HasRead,
		HasQuiz:       hasQuiz,
		QuizCompleted: row.QuizCompleted,
	}
	if row.QuizScore != nil {
		st.QuizScore = *row.QuizScore
	}
	return st
}
