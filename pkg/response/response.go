package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/ibp/pkg/logger"
)

// Response JSON API 统一返回结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 200 + data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Empty 200 with an empty body; the page scripts treat it as "nothing to show".
func Empty(c *gin.Context) {
	c.String(http.StatusOK, "")
}

// Text writes a plain-text body, used for the fragment endpoints' error messages.
func Text(c *gin.Context, code int, msg string) {
	c.String(code, msg)
}

// BadRequest 400 JSON
func BadRequest(c *gin.Context, msg interface{}) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: "bad request", Data: msg})
}

// NotFound 404 JSON
func NotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, Response{Code: http.StatusNotFound, Message: "Page not found"})
}

// Unauthorized 401 text
func Unauthorized(c *gin.Context, msg string) {
	c.String(http.StatusUnauthorized, msg)
	c.Abort()
}

// InternalError 500；错误写日志并上报
func InternalError(c *gin.Context, err error) {
	logger.Error("request failed", err,
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	)
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{Code: http.StatusInternalServerError, Message: "A database error occurred."})
}
