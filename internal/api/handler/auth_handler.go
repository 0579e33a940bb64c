package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/ibp/internal/session"
	"github.com/d60-Lab/ibp/pkg/logger"
	"github.com/d60-Lab/ibp/pkg/response"
)

// Login redirects to the identity provider.
func (h *Handler) Login(c *gin.Context) {
	target, err := h.auth.AuthCodeURL(c.Query("next"), session.Get(c).StartLogin())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// LoginCallback completes the oauth flow.
func (h *Handler) LoginCallback(c *gin.Context) {
	sess := session.Get(c)
	if msg := c.Query("error"); msg != "" {
		sess.AddFlash("google returned with error: "+msg, session.FlashDanger)
		c.Redirect(http.StatusFound, "/")
		return
	}

	user, next, err := h.auth.Login(c.Request.Context(), c.Query("code"), c.Query("state"), sess.LoginNonce())
	if err != nil {
		logger.Warn("login failed", zap.Error(err))
		sess.AddFlash("login failed: "+err.Error(), session.FlashDanger)
		c.Redirect(http.StatusFound, "/")
		return
	}
	sess.Renew()
	sess.SetEmail(user.Email)
	sess.AddFlash("successfully logged in!", session.FlashSuccess)
	c.Redirect(http.StatusFound, next)
}

func (h *Handler) Logout(c *gin.Context) {
	sess := session.Get(c)
	sess.Clear()
	sess.Renew()
	c.Redirect(http.StatusFound, "/")
}
