package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pdfmentor-backend/internal/platform/apierr"
	"github.com/yungbote/pdfmentor-backend/internal/platform/ctxutil"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps service errors to HTTP. Anything that is not an
// *apierr.Error is logged and answered with a generic 500.
func RespondServiceError(c *gin.Context, log *logger.Logger, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) && ae.Status > 0 && ae.Status < http.StatusInternalServerError {
		RespondError(c, ae.Status, ae.Code, ae)
		return
	}
	if log != nil {
		fields := []interface{}{"path", c.FullPath(), "error", err}
		fields = append(fields, ctxutil.GetTraceData(c.Request.Context()).LogFields()...)
		log.Error("request failed", fields...)
	}
	RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal server error"))
}
