package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/ibp/internal/model"
	"github.com/d60-Lab/ibp/internal/session"
	"github.com/d60-Lab/ibp/pkg/logger"
)

const userKey = "ibp.user"

// UserLookup resolves the session principal.
type UserLookup interface {
	User(ctx context.Context, email string) (*model.User, error)
}

// RequireLogin admits authorized users; everyone else is flashed and sent home.
func RequireLogin(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.Get(c)
		email := sess.Email()
		if email == "" {
			deny(c, sess, "Anonymous login attempt failed")
			return
		}
		u, err := users.User(c.Request.Context(), email)
		if err != nil || !u.Authorized {
			deny(c, sess, fmt.Sprintf("'%s' is not authorized for access", email))
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

func deny(c *gin.Context, sess *session.Session, msg string) {
	logger.Debug(msg, zap.String("path", c.Request.URL.Path))
	sess.AddFlash(msg, session.FlashDanger)
	c.Redirect(http.StatusFound, "/")
	c.Abort()
}

// CurrentUser returns the user admitted by RequireLogin.
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*model.User); ok {
			return u
		}
	}
	return nil
}
