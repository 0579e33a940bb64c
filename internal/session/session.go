// Package session implements server-side sessions referenced by a cookie.
package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/ibp/config"
	"github.com/d60-Lab/ibp/pkg/logger"
)

const contextKey = "ibp.session"

// Flash categories, matching the page's alert classes.
const (
	FlashSuccess = "alert-success"
	FlashWarning = "alert-warning"
	FlashDanger  = "alert-danger"
)

type Flash struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

// Data is what gets persisted for a session.
type Data struct {
	Email        string  `json:"email,omitempty"`
	PostmarkDate string  `json:"postmarkdate,omitempty"`
	CSRFToken    string  `json:"csrf_token,omitempty"`
	LoginNonce   string  `json:"login_nonce,omitempty"`
	Flashes      []Flash `json:"flashes,omitempty"`
}

func (d Data) clone() Data {
	d.Flashes = append([]Flash(nil), d.Flashes...)
	return d
}

// Session is the per-request view of the session data.
type Session struct {
	id    string
	data  Data
	dirty bool

	// replaced holds ids given up by Renew, deleted from the store on save.
	replaced []string
	onRenew  func(id string)
}

func (s *Session) ID() string { return s.id }

func (s *Session) Email() string { return s.data.Email }

func (s *Session) SetEmail(email string) {
	s.data.Email = email
	s.dirty = true
}

// PostmarkDate is the last postmark date entered, "YYYY-MM-DD" or empty.
func (s *Session) PostmarkDate() string { return s.data.PostmarkDate }

func (s *Session) SetPostmarkDate(d string) {
	if s.data.PostmarkDate == d {
		return
	}
	s.data.PostmarkDate = d
	s.dirty = true
}

// CSRFToken returns the session token, creating one on first use.
func (s *Session) CSRFToken() string {
	if s.data.CSRFToken == "" {
		s.data.CSRFToken = uuid.NewString()
		s.dirty = true
	}
	return s.data.CSRFToken
}

func (s *Session) AddFlash(msg, category string) {
	s.data.Flashes = append(s.data.Flashes, Flash{Message: msg, Category: category})
	s.dirty = true
}

// Flashes pops the pending flash messages.
func (s *Session) Flashes() []Flash {
	f := s.data.Flashes
	if len(f) > 0 {
		s.data.Flashes = nil
		s.dirty = true
	}
	return f
}

// LoginNonce 登录流程中与 oauth state 绑定的随机值
func (s *Session) LoginNonce() string { return s.data.LoginNonce }

// StartLogin stores a fresh nonce for the oauth state and returns it.
func (s *Session) StartLogin() string {
	s.data.LoginNonce = uuid.NewString()
	s.dirty = true
	return s.data.LoginNonce
}

// Renew moves the session to a new id and a new CSRF token. Call it whenever
// the principal changes.
func (s *Session) Renew() {
	s.replaced = append(s.replaced, s.id)
	s.id = uuid.NewString()
	s.data.CSRFToken = ""
	s.data.LoginNonce = ""
	s.dirty = true
	if s.onRenew != nil {
		s.onRenew(s.id)
	}
}

// Clear drops the principal and pending postmark date; the CSRF token survives.
func (s *Session) Clear() {
	s.data.Email = ""
	s.data.PostmarkDate = ""
	s.dirty = true
}

// Manager loads and saves sessions around each request.
type Manager struct {
	store  Store
	cookie string
	maxAge time.Duration
	secure bool
}

func NewManager(store Store, cfg config.SessionConfig) *Manager {
	m := &Manager{store: store, cookie: cfg.CookieName, maxAge: cfg.MaxAge, secure: cfg.Secure}
	if m.cookie == "" {
		m.cookie = "ibp_session"
	}
	if m.maxAge <= 0 {
		m.maxAge = 12 * time.Hour
	}
	return m
}

func (m *Manager) CookieName() string { return m.cookie }

// Middleware attaches the session to the context and persists changes once
// the handler chain returns.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sess := &Session{}
		if id, err := c.Cookie(m.cookie); err == nil && id != "" {
			d, err := m.store.Load(ctx, id)
			if err != nil {
				logger.Warn("session load failed", zap.Error(err))
			}
			if d != nil {
				sess.id, sess.data = id, *d
			}
		}
		if sess.id == "" {
			sess.id = uuid.NewString()
		}
		setCookie := func(id string) {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(m.cookie, id, int(m.maxAge/time.Second), "/", "", m.secure, true)
		}
		setCookie(sess.id)
		sess.onRenew = func(id string) {
			h := c.Writer.Header()
			var kept []string
			for _, v := range h.Values("Set-Cookie") {
				if !strings.HasPrefix(v, m.cookie+"=") {
					kept = append(kept, v)
				}
			}
			h.Del("Set-Cookie")
			for _, v := range kept {
				h.Add("Set-Cookie", v)
			}
			setCookie(id)
		}
		c.Set(contextKey, sess)

		c.Next()

		for _, old := range sess.replaced {
			if err := m.store.Delete(ctx, old); err != nil {
				logger.Warn("session delete failed", zap.Error(err))
			}
		}
		if !sess.dirty {
			return
		}
		if err := m.store.Save(ctx, sess.id, &sess.data, m.maxAge); err != nil {
			logger.Error("session save failed", err)
		}
	}
}

// Get returns the session attached by Middleware. Outside of it a throwaway
// session is returned so handlers need no nil checks.
func Get(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	s := &Session{id: uuid.NewString()}
	c.Set(contextKey, s)
	return s
}
