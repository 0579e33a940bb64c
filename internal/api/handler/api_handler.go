package handler

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/ibp/internal/model"
	"github.com/d60-Lab/ibp/internal/schema"
	"github.com/d60-Lab/ibp/internal/session"
	"github.com/d60-Lab/ibp/pkg/response"
)

// SearchAPI godoc
// @Summary 搜索在押人员
// @Description A numeric query (dashes allowed) searches by id, anything else by "First Last".
// @Tags api
// @Produce json
// @Param query query string true "name or id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.Response
// @Router /api/inmate [get]
func (h *Handler) SearchAPI(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		response.BadRequest(c, "query is required")
		return
	}
	ctx := c.Request.Context()

	var (
		found []model.Inmate
		warns []string
		err   error
	)
	if id, convErr := strconv.ParseInt(strings.ReplaceAll(query, "-", ""), 10, 64); convErr == nil {
		found, warns, err = h.inmates.SearchByID(ctx, id)
	} else {
		parts := strings.Fields(query)
		if len(parts) < 2 {
			response.BadRequest(c, "both first and last name are required")
			return
		}
		found, warns, err = h.inmates.SearchByName(ctx, parts[0], strings.Join(parts[1:], " "))
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if warns == nil {
		warns = []string{}
	}
	response.Success(c, gin.H{"inmates": schema.Inmates(found), "errors": warns})
}

// inmateByKey resolves :jurisdiction/:id, fetching from the provider when not stored.
func (h *Handler) inmateByKey(c *gin.Context) (*model.Inmate, []string, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.NotFound(c)
		return nil, nil, false
	}
	in, warns, err := h.inmates.GetByKey(c.Request.Context(), c.Param("jurisdiction"), id)
	if err != nil {
		fail(c, err)
		return nil, nil, false
	}
	return in, warns, true
}

// InmateAPI godoc
// @Summary 在押人员详情
// @Tags api
// @Produce json
// @Param jurisdiction path string true "Texas or Federal"
// @Param id path int true "inmate id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} response.Response
// @Router /api/inmate/{jurisdiction}/{id} [get]
func (h *Handler) InmateAPI(c *gin.Context) {
	in, warns, ok := h.inmateByKey(c)
	if !ok {
		return
	}
	if warns == nil {
		warns = []string{}
	}
	d := h.dumper
	d.Now = h.now
	response.Success(c, gin.H{
		"inmate":               d.Inmate(in),
		"errors":               warns,
		"datePostmarked":       h.postmarkDefault(c),
		"minPostmarkTimedelta": h.th.MinPostmarkDays(),
	})
}

// bodyError writes a loader error: field messages as 400, anything else as 500.
func bodyError(c *gin.Context, err error) {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		response.BadRequest(c, verr.Fields)
		return
	}
	response.InternalError(c, err)
}

// index parses :index; ok is false after a 404 was written.
func index(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("index"), 10, 64)
	if err != nil {
		response.NotFound(c)
		return 0, false
	}
	return uint(n), true
}

// CreateRequestAPI godoc
// @Summary 新建请求
// @Tags api
// @Accept json
// @Produce json
// @Param jurisdiction path string true "jurisdiction"
// @Param id path int true "inmate id"
// @Success 200 {object} schema.Request
// @Failure 400 {object} response.Response
// @Router /api/request/{jurisdiction}/{id} [post]
func (h *Handler) CreateRequestAPI(c *gin.Context) {
	in, _, ok := h.inmateByKey(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "unreadable body")
		return
	}
	fields, err := schema.LoadRequest(body)
	if err != nil {
		bodyError(c, err)
		return
	}
	req, err := h.requests.Create(c.Request.Context(), in.AutoID, fields.DatePostmarked, fields.Action)
	if err != nil {
		fail(c, err)
		return
	}
	session.Get(c).SetPostmarkDate(fields.DatePostmarked.Format(schema.DateLayout))
	response.Success(c, schema.DumpRequest(*req))
}

// ownedRequest loads the request at :index, which must belong to the inmate.
func (h *Handler) ownedRequest(c *gin.Context) (*model.Request, bool) {
	in, _, ok := h.inmateByKey(c)
	if !ok {
		return nil, false
	}
	idx, ok := index(c)
	if !ok {
		return nil, false
	}
	req, err := h.requests.Get(c.Request.Context(), idx)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	if req.InmateAutoID != in.AutoID {
		response.NotFound(c)
		return nil, false
	}
	return req, true
}

// UpdateRequestAPI godoc
// @Summary 修改请求
// @Tags api
// @Accept json
// @Produce json
// @Param jurisdiction path string true "jurisdiction"
// @Param id path int true "inmate id"
// @Param index path int true "request index"
// @Success 200 {object} schema.Request
// @Router /api/request/{jurisdiction}/{id}/{index} [put]
func (h *Handler) UpdateRequestAPI(c *gin.Context) {
	req, ok := h.ownedRequest(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "unreadable body")
		return
	}
	fields, err := schema.LoadRequest(body)
	if err != nil {
		bodyError(c, err)
		return
	}
	req, err = h.requests.Update(c.Request.Context(), req.AutoID, fields)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, schema.DumpRequest(*req))
}

// DeleteRequestAPI godoc
// @Summary 删除请求
// @Tags api
// @Param jurisdiction path string true "jurisdiction"
// @Param id path int true "inmate id"
// @Param index path int true "request index"
// @Success 200
// @Router /api/request/{jurisdiction}/{id}/{index} [delete]
func (h *Handler) DeleteRequestAPI(c *gin.Context) {
	req, ok := h.ownedRequest(c)
	if !ok {
		return
	}
	if err := h.requests.Delete(c.Request.Context(), req.AutoID); err != nil {
		fail(c, err)
		return
	}
	response.Empty(c)
}

// CreateCommentAPI godoc
// @Summary 新建评论
// @Tags api
// @Accept json
// @Produce json
// @Param jurisdiction path string true "jurisdiction"
// @Param id path int true "inmate id"
// @Success 200 {object} schema.Comment
// @Failure 400 {object} response.Response
// @Router /api/comment/{jurisdiction}/{id} [post]
func (h *Handler) CreateCommentAPI(c *gin.Context) {
	in, _, ok := h.inmateByKey(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "unreadable body")
		return
	}
	fields, err := schema.LoadComment(body)
	if err != nil {
		bodyError(c, err)
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), in.AutoID, fields)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, schema.DumpComment(*comment))
}

func (h *Handler) ownedComment(c *gin.Context) (*model.Comment, bool) {
	in, _, ok := h.inmateByKey(c)
	if !ok {
		return nil, false
	}
	idx, ok := index(c)
	if !ok {
		return nil, false
	}
	comment, err := h.comments.Get(c.Request.Context(), idx)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	if comment.InmateAutoID != in.AutoID {
		response.NotFound(c)
		return nil, false
	}
	return comment, true
}

// UpdateCommentAPI godoc
// @Summary 修改评论
// @Tags api
// @Accept json
// @Produce json
// @Param jurisdiction path string true "jurisdiction"
// @Param id path int true "inmate id"
// @Param index path int true "comment index"
// @Success 200 {object} schema.Comment
// @Router /api/comment/{jurisdiction}/{id}/{index} [put]
func (h *Handler) UpdateCommentAPI(c *gin.Context) {
	comment, ok := h.ownedComment(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "unreadable body")
		return
	}
	fields, err := schema.LoadComment(body)
	if err != nil {
		bodyError(c, err)
		return
	}
	comment, err = h.comments.Update(c.Request.Context(), comment.AutoID, fields)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, schema.DumpComment(*comment))
}

// DeleteCommentAPI godoc
// @Summary 删除评论
// @Tags api
// @Param jurisdiction path string true "jurisdiction"
// @Param id path int true "inmate id"
// @Param index path int true "comment index"
// @Success 200
// @Router /api/comment/{jurisdiction}/{id}/{index} [delete]
func (h *Handler) DeleteCommentAPI(c *gin.Context) {
	comment, ok := h.ownedComment(c)
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), comment.AutoID); err != nil {
		fail(c, err)
		return
	}
	response.Empty(c)
}

// UnitsAPI godoc
// @Summary 单位列表
// @Tags api
// @Produce json
// @Success 200 {array} schema.UnitListItem
// @Router /api/units [get]
func (h *Handler) UnitsAPI(c *gin.Context) {
	units, err := h.units.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, schema.DumpUnits(units))
}

// ShipmentAPI godoc
// @Summary 发货记录
// @Tags api
// @Produce json
// @Param autoid path int true "shipment autoid"
// @Success 200 {object} schema.Shipment
// @Router /api/shipment/{autoid} [get]
func (h *Handler) ShipmentAPI(c *gin.Context) {
	id, ok := autoID(c, "autoid")
	if !ok {
		return
	}
	s, err := h.shipping.GetShipment(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, schema.DumpShipment(*s))
}

// UpdateShipmentAPI godoc
// @Summary 修改发货记录
// @Description Only the provided fields change.
// @Tags api
// @Accept json
// @Produce json
// @Param autoid path int true "shipment autoid"
// @Success 200 {object} schema.Shipment
// @Failure 400 {object} response.Response
// @Router /api/shipment/{autoid} [put]
func (h *Handler) UpdateShipmentAPI(c *gin.Context) {
	id, ok := autoID(c, "autoid")
	if !ok {
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "unreadable body")
		return
	}
	fields, err := schema.LoadShipment(body)
	if err != nil {
		bodyError(c, err)
		return
	}
	s, err := h.shipping.UpdateShipment(c.Request.Context(), id, fields)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, schema.DumpShipment(*s))
}
