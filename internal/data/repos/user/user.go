package user

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/pdfmentor-backend/internal/domain"
	"github.com/yungbote/pdfmentor-backend/internal/platform/dbctx"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

type UserRepo interface {
	GetByID(dbc dbctx.Context, id uint) (*types.User, error)
	GetByExternalID(dbc dbctx.Context, externalID string) (*types.User, error)
	// EnsureByExternalID returns the user for externalID, creating it on first sight.
	EnsureByExternalID(dbc dbctx.Context, externalID, username string, email *string) (*types.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) GetByID(dbc dbctx.Context, id uint) (*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == 0 {
		return nil, nil
	}
	var u types.User
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByExternalID(dbc dbctx.Context, externalID string) (*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, nil
	}
	var u types.User
	err := transaction.WithContext(dbc.Ctx).Where("clerk_user_id = ?", externalID).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) EnsureByExternalID(dbc dbctx.Context, externalID, username string, email *string) (*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, errors.New("missing external id")
	}
	if existing, err := r.GetByExternalID(dbc, externalID); err != nil || existing != nil {
		return existing, err
	}
	u := &types.User{ExternalID: externalID, Username: username, Email: email}
	// Concurrent first requests for the same subject race here; the loser
	// re-reads the winner's row.
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "clerk_user_id"}}, DoNothing: true}).
		Create(u).Error; err != nil {
		return nil, err
	}
	if u.ID != 0 {
		return u, nil
	}
	return r.GetByExternalID(dbc, externalID)
}
