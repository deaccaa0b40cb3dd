package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pdfmentor-backend/internal/http/response"
	"github.com/yungbote/pdfmentor-backend/internal/platform/dbctx"
)

func requestDB(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

func parseID(raw string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(n), nil
}

// pathID reads a positive integer path param, answering 400 when it is not one.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := parseID(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, err)
		return 0, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if strings.TrimSpace(raw) == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_"+name, fmt.Errorf("%s is required", name))
		return 0, false
	}
	id, err := parseID(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, err)
		return 0, false
	}
	return id, true
}

func queryLimit(c *gin.Context, def int) int {
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
