package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/pdfmentor-backend/internal/platform/ctxutil"
	"github.com/yungbote/pdfmentor-backend/internal/platform/dbctx"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

// AuthClaims are the claims read from a session token. The subject is the
// identity provider's user id.
type AuthClaims struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type AuthConfig struct {
	JWTSecret string
	// Issuer is checked when set.
	Issuer string
	Leeway time.Duration
}

type AuthService interface {
	// SetContextFromToken verifies tokenString and returns ctx carrying the
	// resolved caller.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	log    *logger.Logger
	users  UserService
	cfg    AuthConfig
	parser *jwt.Parser
}

func NewAuthService(baseLog *logger.Logger, users UserService, cfg AuthConfig) AuthService {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &authService{
		log:    baseLog.With("service", "AuthService"),
		users:  users,
		cfg:    cfg,
		parser: jwt.NewParser(opts...),
	}
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if strings.TrimSpace(tokenString) == "" {
		return ctx, fmt.Errorf("missing token")
	}
	if as.cfg.JWTSecret == "" {
		return ctx, fmt.Errorf("auth is not configured")
	}
	claims := &AuthClaims{}
	tok, err := as.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(as.cfg.JWTSecret), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	if !tok.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	sub := strings.TrimSpace(claims.Subject)
	if sub == "" {
		return ctx, fmt.Errorf("token has no subject")
	}

	u, err := as.users.Resolve(dbctx.From(ctx), Identity{ExternalID: sub, Username: claims.Username, Email: claims.Email})
	if err != nil {
		return ctx, err
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: u.ID, ExternalID: u.ExternalID}), nil
}
