package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pdfmentor-backend/internal/http/response"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
	"github.com/yungbote/pdfmentor-backend/internal/services"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	return &UserHandler{log: log.With("handler", "UserHandler"), userService: userService}
}

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(requestDB(c))
	if err != nil {
		response.RespondServiceError(c, uh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}
