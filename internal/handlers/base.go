package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/edusehat/education-service/internal/utils"
)

// BaseHandler carries the shared logging helpers embedded by every handler
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs at info level with the request-scoped logger
func (h BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.GetLoggerFromContext(c.Request.Context()).Info(msg, args...)
}

// LogError logs an error with the request-scoped logger
func (h BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	utils.GetLoggerFromContext(c.Request.Context()).Error(msg, append(args, "error", err)...)
}

// ErrorResponse is the error payload returned by all endpoints
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse wraps simple acknowledgement payloads
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
