package services

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/pdfmentor-backend/internal/data/repos"
	types "github.com/yungbote/pdfmentor-backend/internal/domain"
	"github.com/yungbote/pdfmentor-backend/internal/platform/apierr"
	"github.com/yungbote/pdfmentor-backend/internal/platform/dbctx"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

// Identity is what a verified bearer token says about its holder.
type Identity struct {
	ExternalID string
	Username   string
	Email      string
}

type UserService interface {
	// Resolve maps a verified identity to a local user, creating it on first sight.
	Resolve(dbc dbctx.Context, id Identity) (*types.User, error)
	GetMe(dbc dbctx.Context) (*types.User, error)
}

type userService struct {
	db    *gorm.DB
	log   *logger.Logger
	users repos.UserRepo
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		db:    db,
		log:   baseLog.With("service", "UserService"),
		users: userRepo,
	}
}

func (s *userService) Resolve(dbc dbctx.Context, id Identity) (*types.User, error) {
	ext := strings.TrimSpace(id.ExternalID)
	if ext == "" {
		return nil, apierr.Unauthorized("token has no subject")
	}
	username := strings.TrimSpace(id.Username)
	if username == "" {
		username = ext
	}
	var email *string
	if e := strings.TrimSpace(id.Email); e != "" {
		email = &e
	}
	u, err := s.users.EnsureByExternalID(dbc, ext, username, email)
	if err != nil {
		s.log.Error("resolve user failed", "external_id", ext, "error", err)
		return nil, err
	}
	return u, nil
}

func (s *userService) GetMe(dbc dbctx.Context) (*types.User, error) {
	userID, err := requireUserID(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apierr.NotFound("User not found")
	}
	return u, nil
}
