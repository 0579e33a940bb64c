package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/ibp/internal/model"
	"github.com/d60-Lab/ibp/internal/service"
	"github.com/d60-Lab/ibp/pkg/logger"
	"github.com/d60-Lab/ibp/pkg/response"
)

type address struct {
	Name    string `json:"name"`
	Street1 string `json:"street1"`
	Street2 string `json:"street2"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
}

func unitAddress(name string, u *model.Unit) address {
	return address{
		Name:    name,
		Street1: u.Street1,
		Street2: u.Street2,
		City:    u.City,
		State:   u.State,
		Zipcode: u.Zipcode,
	}
}

// ReturnAddress godoc
// @Summary 寄件人地址
// @Tags shipping
// @Produce json
// @Security AppKey
// @Success 200 {object} config.AddressConfig
// @Router /return_address [get]
func (h *Handler) ReturnAddress(c *gin.Context) {
	response.Success(c, h.returnAddress)
}

// RequestAddress godoc
// @Summary 请求对应的收件地址
// @Description Refreshes the inmate from its provider first.
// @Tags shipping
// @Produce json
// @Security AppKey
// @Param autoid path int true "request autoid"
// @Success 200 {object} address
// @Failure 400 {string} string
// @Router /request_address/{autoid} [get]
func (h *Handler) RequestAddress(c *gin.Context) {
	in, ok := h.destination(c)
	if !ok {
		return
	}
	response.Success(c, unitAddress(inmateAddressName(in), in.Unit))
}

// RequestDestination godoc
// @Summary 请求对应的单位名称
// @Tags shipping
// @Produce json
// @Security AppKey
// @Param autoid path int true "request autoid"
// @Success 200 {object} map[string]string
// @Router /request_destination/{autoid} [get]
func (h *Handler) RequestDestination(c *gin.Context) {
	in, ok := h.destination(c)
	if !ok {
		return
	}
	response.Success(c, gin.H{"name": in.Unit.Name})
}

func (h *Handler) destination(c *gin.Context) (*model.Inmate, bool) {
	id, ok := autoID(c, "autoid")
	if !ok {
		return nil, false
	}
	in, err := h.shipping.Destination(c.Request.Context(), id)
	if errors.Is(err, service.ErrUnassigned) {
		response.Text(c, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return in, true
}

// UnitAutoIDs godoc
// @Summary 单位名称到 autoid 的映射
// @Tags shipping
// @Produce json
// @Security AppKey
// @Success 200 {object} map[string]int
// @Router /unit_autoids [get]
func (h *Handler) UnitAutoIDs(c *gin.Context) {
	ids, err := h.units.AutoIDs(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, ids)
}

// UnitAddress godoc
// @Summary 单位收件地址
// @Tags shipping
// @Produce json
// @Security AppKey
// @Param autoid path int true "unit autoid"
// @Success 200 {object} address
// @Router /unit_address/{autoid} [get]
func (h *Handler) UnitAddress(c *gin.Context) {
	id, ok := autoID(c, "autoid")
	if !ok {
		return
	}
	unit, err := h.units.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, unitAddress(h.unitAddressName, unit))
}

type shipForm struct {
	RequestIDs   []uint `form:"request_ids" binding:"required,min=1"`
	Weight       *int   `form:"weight" binding:"required,min=0"`
	Postage      *int   `form:"postage" binding:"required,min=0"`
	TrackingCode string `form:"tracking_code"`
	TrackingURL  string `form:"tracking_url" binding:"omitempty,url"`
}

func (f shipForm) order() service.ShipOrder {
	return service.ShipOrder{
		RequestIDs:   f.RequestIDs,
		Weight:       *f.Weight,
		Postage:      *f.Postage,
		TrackingCode: f.TrackingCode,
		TrackingURL:  f.TrackingURL,
	}
}

// ShipRequests godoc
// @Summary 批量发货
// @Description All requests must go to one unit. The shipment is recorded atomically.
// @Tags shipping
// @Accept x-www-form-urlencoded
// @Produce json
// @Security AppKey
// @Param request_ids formData []int true "request autoids" collectionFormat(multi)
// @Param weight formData int true "ounces"
// @Param postage formData int true "cents"
// @Param tracking_code formData string false "tracking code"
// @Param tracking_url formData string false "tracking url"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {string} string
// @Failure 404 {object} response.Response
// @Router /ship_requests [post]
func (h *Handler) ShipRequests(c *gin.Context) {
	var form shipForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Debug("ship form rejected", zap.Strings("errors", formErrors(err)))
		response.Text(c, http.StatusBadRequest, "form data invalid")
		return
	}

	_, err := h.shipping.Ship(c.Request.Context(), form.order())
	switch {
	case err == nil:
		response.Success(c, gin.H{})
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c)
	case errors.Is(err, service.ErrUnassigned),
		errors.Is(err, service.ErrUnitMismatch),
		errors.Is(err, service.ErrAlreadyShipped),
		errors.Is(err, service.ErrNoRequests):
		response.Text(c, http.StatusBadRequest, err.Error())
	default:
		response.InternalError(c, err)
	}
}
