package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSessionIDOf(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got []string
	r := gin.New()
	record := func(c *gin.Context) { got = append(got, sessionIDOf(c)) }
	r.POST("/api/track/:doc_id/read", record)
	r.GET("/api/progress/session/:session_id", record)
	r.GET("/api/chat/sessions/:id/messages", record)
	r.GET("/api/summary/:doc_id", record)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/track/3/read?session_id=9"},
		{http.MethodGet, "/api/progress/session/11"},
		{http.MethodGet, "/api/chat/sessions/12/messages"},
		{http.MethodGet, "/api/summary/4"},
	} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, tc.path, nil))
	}

	want := []string{"9", "11", "12", ""}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got=%v want=%v", got, want)
	}
}
