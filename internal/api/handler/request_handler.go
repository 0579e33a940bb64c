package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/ibp/config"
	"github.com/d60-Lab/ibp/internal/model"
	"github.com/d60-Lab/ibp/internal/service"
	"github.com/d60-Lab/ibp/internal/view"
	"github.com/d60-Lab/ibp/pkg/response"
)

// AddRequest records a request for the inmate and returns its list fragment.
func (h *Handler) AddRequest(c *gin.Context) {
	id, ok := autoID(c, "autoid")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.inmates.Get(ctx, id); err != nil {
		fail(c, err)
		return
	}
	postmark, ok := parsePostmark(c)
	if !ok {
		return
	}

	req, err := h.requests.Create(ctx, id, postmark, c.DefaultPostForm("action", model.ActionFilled))
	if errors.Is(err, service.ErrInvalidAction) {
		response.Text(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	html, err := h.render("request", req)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{
		"request_autoid": strconv.FormatUint(uint64(req.AutoID), 10),
		"request":        html,
	})
}

// RequestWarnings lists the warnings for a prospective request, or nothing.
func (h *Handler) RequestWarnings(c *gin.Context) {
	id, ok := autoID(c, "autoid")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.inmates.Get(ctx, id); err != nil {
		fail(c, err)
		return
	}
	postmark, ok := parsePostmark(c)
	if !ok {
		return
	}
	msgs, err := h.requests.Warnings(ctx, id, postmark)
	if err != nil {
		fail(c, err)
		return
	}
	if len(msgs) == 0 {
		response.Empty(c)
		return
	}
	h.fragment(c, http.StatusOK, "warnings", msgs)
}

type labelData struct {
	RequestID  uint
	Postmarked time.Time
	Name       string
	Unit       *model.Unit
	Return     config.AddressConfig
}

// RequestLabel renders the printable address label.
func (h *Handler) RequestLabel(c *gin.Context) {
	id, ok := autoID(c, "autoid")
	if !ok {
		return
	}
	req, err := h.requests.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	data := labelData{RequestID: req.AutoID, Postmarked: req.DatePostmarked, Return: h.returnAddress}
	if in := req.Inmate; in != nil {
		data.Name = inmateAddressName(in)
		data.Unit = in.Unit
	}
	out, err := h.views.Document("request_label.xml", data)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", out)
}

// RequestInfo is the JSON summary used by the label printer.
func (h *Handler) RequestInfo(c *gin.Context) {
	id, ok := autoID(c, "autoid")
	if !ok {
		return
	}
	req, err := h.requests.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	in := req.Inmate
	if in == nil {
		response.Text(c, http.StatusBadRequest, "Request does not have an associated inmate")
		return
	}
	unitName, method := "N/A", "N/A"
	if in.Unit != nil {
		if in.Unit.Street1 != "" {
			unitName = in.Unit.Street1
		}
		if in.Unit.ShippingMethod != "" {
			method = in.Unit.ShippingMethod
		}
	}
	response.Success(c, gin.H{
		"inmate_jurisdiction":  in.Jurisdiction,
		"inmate_name":          in.LastName + ", " + in.FirstName,
		"inmate_id":            fmt.Sprintf("%08d", in.ID),
		"package_id":           req.AutoID,
		"unit_name":            unitName,
		"unit_shipping_method": method,
	})
}

func (h *Handler) DeleteRequest(c *gin.Context) {
	id, ok := autoID(c, "autoid")
	if !ok {
		return
	}
	if err := h.requests.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Empty(c)
}

func inmateAddressName(in *model.Inmate) string {
	return fmt.Sprintf("%s %s #%08d", view.Title(in.FirstName), view.Title(in.LastName), in.ID)
}
