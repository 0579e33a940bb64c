package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/ibp/pkg/response"
)

const (
	AppKeyField  = "key"
	AppKeyHeader = "X-App-Key"
)

// RequireAppKey admits callers presenting the key whose bcrypt hash is configured.
// With no hash configured every call is refused.
func RequireAppKey(hash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(AppKeyHeader)
		if key == "" {
			key = c.PostForm(AppKeyField)
		}
		if key == "" {
			response.Unauthorized(c, "application key required")
			return
		}
		if hash == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) != nil {
			response.Unauthorized(c, "invalid application key")
			return
		}
		c.Next()
	}
}
