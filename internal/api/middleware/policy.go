package middleware

import "github.com/gin-gonic/gin"

// AuthPolicy who may call a route.
type AuthPolicy int

const (
	AuthNone AuthPolicy = iota
	AuthSession
	AuthAppKey
)

// CSRFPolicy whether unsafe methods must carry the session's CSRF token.
type CSRFPolicy int

const (
	CSRFExempt CSRFPolicy = iota
	CSRFEnforced
)

// Policy is attached to every route at registration.
type Policy struct {
	Auth AuthPolicy
	CSRF CSRFPolicy
}

var (
	Public  = Policy{Auth: AuthNone, CSRF: CSRFExempt}
	Session = Policy{Auth: AuthSession, CSRF: CSRFEnforced}
	AppKey  = Policy{Auth: AuthAppKey, CSRF: CSRFExempt}
)

// Guards holds the handlers each policy expands to.
type Guards struct {
	Login  gin.HandlerFunc
	AppKey []gin.HandlerFunc
	CSRF   gin.HandlerFunc
}

// Chain returns the guard handlers for p followed by h.
func (g Guards) Chain(p Policy, h ...gin.HandlerFunc) []gin.HandlerFunc {
	var chain []gin.HandlerFunc
	switch p.Auth {
	case AuthSession:
		chain = append(chain, g.Login)
	case AuthAppKey:
		chain = append(chain, g.AppKey...)
	}
	if p.CSRF == CSRFEnforced {
		chain = append(chain, g.CSRF)
	}
	return append(chain, h...)
}
