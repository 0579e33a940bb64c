package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/ibp/internal/service"
	"github.com/d60-Lab/ibp/internal/session"
	"github.com/d60-Lab/ibp/pkg/response"
)

func (h *Handler) ListUnits(c *gin.Context) {
	units, err := h.units.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	h.page(c, http.StatusOK, "list_units.html", gin.H{"units": units})
}

// ViewUnit shows the unit edit form and saves it on POST.
func (h *Handler) ViewUnit(c *gin.Context) {
	id, ok := autoID(c, "autoid")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	unit, err := h.units.Get(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if c.Request.Method != http.MethodPost {
		h.page(c, http.StatusOK, "view_unit.html", gin.H{"unit": unit, "form": service.FieldsOf(unit)})
		return
	}

	var form service.UnitFields
	if err := c.ShouldBind(&form); err != nil {
		h.page(c, http.StatusOK, "view_unit.html", gin.H{"unit": unit, "form": form, "errors": formErrors(err)})
		return
	}
	unit, err = h.units.Update(ctx, id, form)
	if err != nil {
		fail(c, err)
		return
	}
	session.Get(c).AddFlash("unit successfully updated", session.FlashSuccess)
	h.page(c, http.StatusOK, "view_unit.html", gin.H{"unit": unit, "form": service.FieldsOf(unit)})
}

func formErrors(err error) []string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			out = append(out, fmt.Sprintf("%s: This field is required.", fe.Field()))
		case "max":
			out = append(out, fmt.Sprintf("%s: Field cannot be longer than %s characters.", fe.Field(), fe.Param()))
		case "url":
			out = append(out, fmt.Sprintf("%s: Invalid URL.", fe.Field()))
		case "oneof":
			out = append(out, fmt.Sprintf("%s: Not a valid choice.", fe.Field()))
		default:
			out = append(out, fmt.Sprintf("%s: Invalid value.", fe.Field()))
		}
	}
	return out
}
