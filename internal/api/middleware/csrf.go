package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/ibp/internal/session"
	"github.com/d60-Lab/ibp/pkg/response"
)

const (
	CSRFField  = "csrf_token"
	CSRFHeader = "X-CSRF-Token"
)

// CSRF checks the session token on unsafe methods, from the form field or header.
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		sent := c.GetHeader(CSRFHeader)
		if sent == "" {
			sent = c.PostForm(CSRFField)
		}
		if sent == "" {
			response.Text(c, http.StatusBadRequest, "The CSRF token is missing.")
			c.Abort()
			return
		}
		want := session.Get(c).CSRFToken()
		if subtle.ConstantTimeCompare([]byte(sent), []byte(want)) != 1 {
			response.Text(c, http.StatusBadRequest, "The CSRF tokens do not match.")
			c.Abort()
			return
		}
		c.Next()
	}
}
