package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/ibp/internal/service"
	"github.com/d60-Lab/ibp/internal/session"
	"github.com/d60-Lab/ibp/pkg/response"
)

// InmateAlerts notifies everyone waiting on the inmate and returns the
// note to put on the letter, or nothing when nobody is waiting.
func (h *Handler) InmateAlerts(c *gin.Context) {
	id, ok := autoID(c, "autoid")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	in, err := h.inmates.Get(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	alerts, err := h.alerts.NotifyAll(ctx, in)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if len(alerts) == 0 {
		response.Empty(c)
		return
	}
	h.fragment(c, http.StatusOK, "alerts", alerts)
}

func (h *Handler) AddAlert(c *gin.Context) {
	id, ok := autoID(c, "autoid")
	if !ok {
		return
	}
	sess := session.Get(c)
	var fields service.AlertFields
	if err := c.ShouldBind(&fields); err != nil {
		sess.AddFlash("alert requires a requester and a valid email", session.FlashDanger)
		c.Redirect(http.StatusFound, fmt.Sprintf("/view_inmate/%d", id))
		return
	}
	if _, err := h.alerts.Create(c.Request.Context(), id, fields); err != nil {
		fail(c, err)
		return
	}
	sess.AddFlash("alert added", session.FlashSuccess)
	c.Redirect(http.StatusFound, fmt.Sprintf("/view_inmate/%d", id))
}

func (h *Handler) DeleteAlert(c *gin.Context) {
	id, ok := autoID(c, "autoid")
	if !ok {
		return
	}
	if err := h.alerts.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Empty(c)
}
