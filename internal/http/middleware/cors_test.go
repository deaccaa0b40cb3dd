package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func preflight(r *gin.Engine, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/chat/stream", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCORSAllowsLocalDevOrigins(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	for _, origin := range []string{"http://localhost:5173", "http://127.0.0.1:3000"} {
		origin := origin
		t.Run(origin, func(t *testing.T) {
			t.Parallel()
			r := gin.New()
			r.Use(CORS())
			r.OPTIONS("/api/chat/stream", func(c *gin.Context) { c.Status(http.StatusNoContent) })

			rec := preflight(r, origin)
			if rec.Code != http.StatusNoContent {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusNoContent)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != origin {
				t.Fatalf("unexpected allow-origin header: got=%q want=%q", got, origin)
			}
		})
	}
}

func TestCORSConfiguredOriginsReplaceDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS("https://app.example.com"))
	r.OPTIONS("/api/chat/stream", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	if got := preflight(r, "https://app.example.com").Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("configured origin not allowed: %q", got)
	}
	if rec := preflight(r, "http://localhost:5173"); rec.Code != http.StatusForbidden {
		t.Fatalf("default origin should be rejected, got status %d", rec.Code)
	}
}
