package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/ibp/config"
	"github.com/d60-Lab/ibp/internal/api/middleware"
	"github.com/d60-Lab/ibp/internal/schema"
	"github.com/d60-Lab/ibp/internal/service"
	"github.com/d60-Lab/ibp/internal/session"
	"github.com/d60-Lab/ibp/internal/view"
	"github.com/d60-Lab/ibp/internal/warnings"
	"github.com/d60-Lab/ibp/pkg/response"
)

const postmarkMessage = "Please enter the USPS postmark date on the envelope."

// Deps everything the handlers call into.
type Deps struct {
	Inmates  service.InmateService
	Requests service.RequestService
	Comments service.CommentService
	Alerts   service.AlertService
	Units    service.UnitService
	Shipping service.ShippingService
	Auth     service.AuthService
	Metrics  service.MetricsService
	Views    *view.Renderer

	Thresholds      warnings.Thresholds
	ReturnAddress   config.AddressConfig
	UnitAddressName string
}

// Handler HTTP 处理器集合
type Handler struct {
	inmates  service.InmateService
	requests service.RequestService
	comments service.CommentService
	alerts   service.AlertService
	units    service.UnitService
	shipping service.ShippingService
	auth     service.AuthService
	metrics  service.MetricsService
	views    *view.Renderer

	th              warnings.Thresholds
	dumper          schema.Dumper
	returnAddress   config.AddressConfig
	unitAddressName string
	now             func() time.Time
}

func New(d Deps) *Handler {
	registerValidations()
	return &Handler{
		inmates:         d.Inmates,
		requests:        d.Requests,
		comments:        d.Comments,
		alerts:          d.Alerts,
		units:           d.Units,
		shipping:        d.Shipping,
		auth:            d.Auth,
		metrics:         d.Metrics,
		views:           d.Views,
		th:              d.Thresholds,
		dumper:          schema.Dumper{Thresholds: d.Thresholds},
		returnAddress:   d.ReturnAddress,
		unitAddressName: d.UnitAddressName,
		now:             time.Now,
	}
}

// page renders a full template with the layout's common values.
func (h *Handler) page(c *gin.Context, code int, name string, data gin.H) {
	sess := session.Get(c)
	if data == nil {
		data = gin.H{}
	}
	data["csrf"] = sess.CSRFToken()
	data["flashes"] = sess.Flashes()
	if u := middleware.CurrentUser(c); u != nil {
		data["user"] = u
	} else if email := sess.Email(); email != "" {
		data["user"] = gin.H{"Email": email}
	}
	c.HTML(code, name, data)
}

// fragment writes a rendered HTML fragment.
func (h *Handler) fragment(c *gin.Context, code int, name string, data interface{}) {
	out, err := h.views.Fragment(name, data)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.Data(code, "text/html; charset=utf-8", []byte(out))
}

func (h *Handler) render(name string, data interface{}) (string, error) {
	return h.views.Fragment(name, data)
}

// autoID parses the :autoid path parameter; a malformed id is a 404.
func autoID(c *gin.Context, param string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil {
		response.NotFound(c)
		return 0, false
	}
	return uint(n), true
}

// fail maps service errors: not found -> 404, anything else -> 500.
func fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		response.NotFound(c)
		return
	}
	response.InternalError(c, err)
}

// parsePostmark reads postmarkdate strictly as a calendar date.
func parsePostmark(c *gin.Context) (time.Time, bool) {
	d, err := time.Parse(schema.DateLayout, c.PostForm("postmarkdate"))
	if err != nil {
		response.Text(c, http.StatusBadRequest, postmarkMessage)
		c.Abort()
		return time.Time{}, false
	}
	session.Get(c).SetPostmarkDate(d.Format(schema.DateLayout))
	return d, true
}

// postmarkDefault is the remembered postmark date, or today.
func (h *Handler) postmarkDefault(c *gin.Context) string {
	if d := session.Get(c).PostmarkDate(); d != "" {
		return d
	}
	return h.now().Format(schema.DateLayout)
}
