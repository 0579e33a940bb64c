package handler

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/d60-Lab/ibp/pkg/logger"
)

var registerOnce sync.Once

// registerValidations adds the form rules used by the HTML handlers to gin's validator.
func registerValidations() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			logger.Warn("gin validator is not validator/v10, custom form rules unavailable")
			return
		}
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("inmateid", func(fl validator.FieldLevel) bool {
			_, err := parseInmateID(fl.Field().String())
			return err == nil
		})
	})
}

// parseInmateID accepts ids with or without dashes ("0123-4567").
func parseInmateID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(s), "-", ""), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}

// fieldErrors groups validation failures by form field name. names maps the
// struct field to its form name; msg turns one failure into text.
func fieldErrors(err error, names map[string]string, msg func(validator.FieldError) string) map[string][]string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string][]string{"_form": {err.Error()}}
	}
	out := make(map[string][]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		name, ok := names[fe.Field()]
		if !ok {
			name = fe.Field()
		}
		out[name] = append(out[name], msg(fe))
	}
	return out
}
