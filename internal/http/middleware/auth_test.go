package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pdfmentor-backend/internal/platform/ctxutil"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

type stubAuth struct {
	userID uint
	seen   string
}

func (s *stubAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	s.seen = token
	if token != "good" {
		return ctx, errors.New("bad token")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: s.userID}), nil
}

func authedEngine(auth *stubAuth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewAuthMiddleware(logger.Nop(), auth).RequireAuth())
	r.GET("/me", func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": rd.UserID})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	cases := []struct {
		name   string
		userID uint
		target string
		header string
		want   int
		token  string
	}{
		{name: "missing", userID: 1, target: "/me", want: http.StatusUnauthorized},
		{name: "bearer", userID: 1, target: "/me", header: "Bearer good", want: http.StatusOK, token: "good"},
		{name: "query param", userID: 1, target: "/me?token=good", want: http.StatusOK, token: "good"},
		{name: "rejected", userID: 1, target: "/me", header: "bearer nope", want: http.StatusUnauthorized, token: "nope"},
		{name: "no user", userID: 0, target: "/me", header: "Bearer good", want: http.StatusForbidden, token: "good"},
	}
	for _, tc := range cases {
		auth := &stubAuth{userID: tc.userID}
		req := httptest.NewRequest(http.MethodGet, tc.target, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		authedEngine(auth).ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: status=%d want %d body=%s", tc.name, rec.Code, tc.want, rec.Body.String())
		}
		if auth.seen != tc.token {
			t.Fatalf("%s: token=%q want %q", tc.name, auth.seen, tc.token)
		}
	}
}
