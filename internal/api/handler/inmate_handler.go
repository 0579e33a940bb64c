package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/d60-Lab/ibp/internal/model"
	"github.com/d60-Lab/ibp/internal/session"
	"github.com/d60-Lab/ibp/internal/warnings"
	"github.com/d60-Lab/ibp/pkg/logger"
	"github.com/d60-Lab/ibp/pkg/response"
)

type searchForm struct {
	FirstName string `form:"first_name" binding:"required_with=LastName,excluded_with=ID,omitempty,notblank"`
	LastName  string `form:"last_name" binding:"required_with=FirstName,excluded_with=ID,omitempty,notblank"`
	ID        string `form:"id" binding:"required_without_all=FirstName LastName,omitempty,inmateid"`
}

// searchMessages in the order they are reported; only the first failing one is shown.
var searchMessages = []struct{ tag, msg string }{
	{"excluded_with", "Search by name or by inmate ID, not both."},
	{"required_without_all", "Enter a first and last name or an inmate ID."},
	{"required_with", "Both first and last name are required."},
	{"notblank", "Both first and last name are required."},
	{"inmateid", "Inmate ID must be a number."},
}

func searchErrors(err error) []string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{"Enter a first and last name or an inmate ID."}
	}
	for _, m := range searchMessages {
		for _, fe := range fieldErrs {
			if fe.Tag() == m.tag {
				return []string{m.msg}
			}
		}
	}
	return formErrors(err)
}

func (h *Handler) Index(c *gin.Context) {
	h.page(c, http.StatusOK, "index.html", nil)
}

func (h *Handler) SearchForm(c *gin.Context) {
	h.page(c, http.StatusOK, "search_inmates.html", gin.H{"form": searchForm{}})
}

// SearchInmates queries the providers by name or id and shows the matches.
func (h *Handler) SearchInmates(c *gin.Context) {
	var form searchForm
	if err := c.ShouldBind(&form); err != nil {
		h.page(c, http.StatusOK, "search_inmates.html", gin.H{"form": form, "errors": searchErrors(err)})
		return
	}
	var id int64
	if form.ID != "" {
		id, _ = parseInmateID(form.ID)
	}

	ctx := c.Request.Context()
	var (
		found []model.Inmate
		warns []string
		err   error
	)
	if id != 0 {
		found, warns, err = h.inmates.SearchByID(ctx, id)
	} else {
		found, warns, err = h.inmates.SearchByName(ctx, strings.TrimSpace(form.FirstName), strings.TrimSpace(form.LastName))
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}

	sess := session.Get(c)
	for _, w := range warns {
		sess.AddFlash(w, session.FlashWarning)
	}
	switch len(found) {
	case 0:
		logger.Debug("no search results", zap.String("last_name", form.LastName), zap.Int64("id", id))
		sess.AddFlash("no inmates matched your search", session.FlashWarning)
		h.page(c, http.StatusOK, "search_inmates.html", gin.H{"form": form})
	case 1:
		c.Redirect(http.StatusFound, fmt.Sprintf("/view_inmate/%d", found[0].AutoID))
	default:
		h.page(c, http.StatusOK, "list_inmates.html", gin.H{"inmates": found})
	}
}

// ViewInmate records the lookup and shows the inmate.
func (h *Handler) ViewInmate(c *gin.Context) {
	id, ok := autoID(c, "autoid")
	if !ok {
		return
	}
	in, err := h.inmates.View(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	logger.Debug("view inmate", zap.String("jurisdiction", in.Jurisdiction), zap.Int64("id", in.ID))
	h.page(c, http.StatusOK, "view_inmate.html", gin.H{
		"inmate":       in,
		"warnings":     warnings.ForInmate(in, h.now(), h.th),
		"postmarkdate": h.postmarkDefault(c),
		"commentForm":  commentForm{},
	})
}
