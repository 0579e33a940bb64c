package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/ibp/config"
	"github.com/d60-Lab/ibp/internal/model"
	"github.com/d60-Lab/ibp/internal/session"
)

func init() { gin.SetMode(gin.TestMode) }

type users map[string]*model.User

func (u users) User(_ context.Context, email string) (*model.User, error) {
	if usr, ok := u[email]; ok {
		return usr, nil
	}
	return nil, errors.New("not found")
}

func ok(c *gin.Context) { c.String(http.StatusOK, "ok") }

// newEngine mounts a session-protected GET that logs the caller in first when ?as= is set.
func newEngine(g Guards) *gin.Engine {
	r := gin.New()
	r.Use(session.NewManager(session.NewMemoryStore(), config.SessionConfig{CookieName: "sid"}).Middleware())
	r.GET("/as", func(c *gin.Context) {
		s := session.Get(c)
		s.SetEmail(c.Query("email"))
		c.String(http.StatusOK, s.CSRFToken())
	})
	r.GET("/flashes", func(c *gin.Context) {
		var out []string
		for _, f := range session.Get(c).Flashes() {
			out = append(out, f.Message)
		}
		c.String(http.StatusOK, strings.Join(out, "|"))
	})
	r.GET("/private", g.Chain(Session, ok)...)
	r.POST("/private", g.Chain(Session, ok)...)
	r.POST("/keyed", g.Chain(AppKey, ok)...)
	return r
}

func serve(r http.Handler, req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func guards(t *testing.T) Guards {
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)
	return Guards{
		Login: RequireLogin(users{
			"ok@example.org": {Email: "ok@example.org", Authorized: true},
			"no@example.org": {Email: "no@example.org"},
		}),
		AppKey: []gin.HandlerFunc{RequireAppKey(string(hash))},
		CSRF:   CSRF(),
	}
}

func TestRequireLogin(t *testing.T) {
	r := newEngine(guards(t))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/private", nil), nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	cookies := w.Result().Cookies()
	w = serve(r, httptest.NewRequest(http.MethodGet, "/flashes", nil), cookies)
	assert.Equal(t, "Anonymous login attempt failed", w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/as?email=no@example.org", nil), cookies)
	require.Equal(t, http.StatusOK, w.Code)
	w = serve(r, httptest.NewRequest(http.MethodGet, "/private", nil), cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	w = serve(r, httptest.NewRequest(http.MethodGet, "/flashes", nil), cookies)
	assert.Equal(t, "'no@example.org' is not authorized for access", w.Body.String())

	serve(r, httptest.NewRequest(http.MethodGet, "/as?email=ok@example.org", nil), cookies)
	w = serve(r, httptest.NewRequest(http.MethodGet, "/private", nil), cookies)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRF(t *testing.T) {
	r := newEngine(guards(t))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/as?email=ok@example.org", nil), nil)
	token := w.Body.String()
	cookies := w.Result().Cookies()

	w = serve(r, httptest.NewRequest(http.MethodPost, "/private", nil), cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "The CSRF token is missing.", w.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/private", nil)
	req.Header.Set(CSRFHeader, "nope")
	w = serve(r, req, cookies)
	assert.Equal(t, "The CSRF tokens do not match.", w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/private", strings.NewReader(url.Values{CSRFField: {token}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = serve(r, req, cookies)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAppKey(t *testing.T) {
	r := newEngine(guards(t))

	w := serve(r, httptest.NewRequest(http.MethodPost, "/keyed", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/keyed", nil)
	req.Header.Set(AppKeyHeader, "wrong")
	w = serve(r, req, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// no session and no csrf token needed
	req = httptest.NewRequest(http.MethodPost, "/keyed", strings.NewReader("key=letmein"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = serve(r, req, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAppKey_NoHashConfigured(t *testing.T) {
	r := gin.New()
	r.POST("/keyed", RequireAppKey(""), ok)
	req := httptest.NewRequest(http.MethodPost, "/keyed", nil)
	req.Header.Set(AppKeyHeader, "anything")
	w := serve(r, req, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimit(1, 2), ok)

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = serve(r, httptest.NewRequest(http.MethodGet, "/", nil), nil).Code
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimit_EvictsIdleClients(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	set := newLimiterSet(1, 1)
	set.now = func() time.Time { return now }

	set.get("10.0.0.1")
	set.get("10.0.0.2")
	assert.Equal(t, 2, set.size())

	now = now.Add(5 * time.Minute)
	set.get("10.0.0.2")
	now = now.Add(6 * time.Minute)
	set.get("10.0.0.3")
	// .1 was idle for 11 minutes, .2 for 6
	assert.Equal(t, 2, set.size())
	_, kept := set.visitors["10.0.0.2"]
	assert.True(t, kept)
	_, dropped := set.visitors["10.0.0.1"]
	assert.False(t, dropped)
}

func TestRequestIDAndMetrics(t *testing.T) {
	m := NewHTTPMetrics()
	r := gin.New()
	r.Use(RequestID(), Logger(), m.Middleware(), Recovery())
	r.GET("/hello", ok)
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	r.GET("/debug/prometheus", m.Handler())

	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w := serve(r, req, nil)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/debug/prometheus", nil), nil)
	assert.Contains(t, w.Body.String(), `ibp_http_requests_total{method="GET",route="/hello",status="200"} 1`)
	assert.Contains(t, w.Body.String(), `route="/boom",status="500"`)
}
