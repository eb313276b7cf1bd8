package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/school-discipline/internal/apperr"
	"github.com/Spok95/school-discipline/internal/observability"
)

type errorBody struct {
	Error  string              `json:"error"`
	Fields []apperr.FieldError `json:"fields,omitempty"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrWeekLocked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondErr writes the JSON error. Internal errors are reported to Sentry and hidden
// from the client.
func respondErr(c *gin.Context, err error) {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		observability.CaptureCtxErr(c.Request.Context(), err)
		_ = c.Error(err)
		c.JSON(code, errorBody{Error: "internal error"})
		return
	}
	body := errorBody{Error: err.Error()}
	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	c.JSON(code, body)
}

// plainErr is respondErr for the plain-text endpoints.
func plainErr(c *gin.Context, err error) {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		observability.CaptureCtxErr(c.Request.Context(), err)
		_ = c.Error(err)
		c.String(code, http.StatusText(code))
		return
	}
	c.String(code, err.Error())
}

func bindJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return apperr.Invalid("body", "malformed JSON: "+err.Error())
	}
	return nil
}
