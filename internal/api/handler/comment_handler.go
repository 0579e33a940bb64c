package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/ibp/internal/schema"
	"github.com/d60-Lab/ibp/internal/service"
	"github.com/d60-Lab/ibp/pkg/response"
)

const requiredMessage = "This field is required."

type commentForm struct {
	Author string              `form:"author" binding:"required,notblank"`
	Body   string              `form:"comment" binding:"required,notblank"`
	Errors map[string][]string `form:"-"`
}

var commentFields = map[string]string{"Author": "author", "Body": "comment"}

func commentMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return requiredMessage
	}
	return "Invalid value."
}

// AddComment stores a comment and returns the new list item plus a fresh fieldset.
func (h *Handler) AddComment(c *gin.Context) {
	id, ok := autoID(c, "autoid")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.inmates.Get(ctx, id); err != nil {
		fail(c, err)
		return
	}

	var form commentForm
	if err := c.ShouldBind(&form); err != nil {
		form.Errors = fieldErrors(err, commentFields, commentMessage)
		h.fragment(c, http.StatusBadRequest, "comment_fieldset", form)
		return
	}

	comment, err := h.comments.Create(ctx, id, schema.CommentFields{Author: form.Author, Body: form.Body})
	if errors.Is(err, service.ErrInvalidComment) {
		h.fragment(c, http.StatusBadRequest, "comment_fieldset", form)
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	html, err := h.render("comment", comment)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	fieldset, err := h.render("comment_fieldset", commentForm{})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"comment": html, "fieldset": fieldset})
}

func (h *Handler) DeleteComment(c *gin.Context) {
	id, ok := autoID(c, "autoid")
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Empty(c)
}
