package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/ibp/pkg/response"
)

func (h *Handler) MetricsPage(c *gin.Context) {
	h.page(c, http.StatusOK, "metrics.html", nil)
}

func (h *Handler) RequestCounts(c *gin.Context) {
	series, err := h.metrics.RequestCounts(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, series)
}

func (h *Handler) NewRequestCounts(c *gin.Context) {
	series, err := h.metrics.NewRequestCounts(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, series)
}

func (h *Handler) ShippingVolume(c *gin.Context) {
	series, err := h.metrics.ShippingVolume(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, series)
}
