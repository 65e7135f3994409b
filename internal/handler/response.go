package handler

import (
	"errors"
	"net/http"
	"strconv"

	"pink-basket/internal/apperror"
	"pink-basket/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// respondError logs err and writes the client-safe message. Storage and
// dependency details never reach the response body.
func respondError(c echo.Context, err error, fallback string) error {
	log := logger.FromContext(c)
	status := apperror.HTTPStatus(err)

	if status >= http.StatusInternalServerError {
		log.Error(fallback, zap.Error(err))
	} else {
		log.Warn(fallback, zap.Int("status", status), zap.Error(err))
	}

	body := echo.Map{"error": apperror.PublicMessage(err, fallback)}
	var validation *apperror.ValidationError
	if errors.As(err, &validation) && validation.Field != "" {
		body["field"] = validation.Field
	}
	return c.JSON(status, body)
}

// HTTPErrorHandler keeps framework errors (404 routes, bad methods, panics)
// in the same {"error": ...} envelope as handler errors.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := apperror.HTTPStatus(err)
	message := apperror.PublicMessage(err, http.StatusText(status))

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		message = http.StatusText(status)
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, echo.Map{"error": message})
}

func parseID(raw, field string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation(field, "%s must be a positive integer", field)
	}
	return uint(id), nil
}

// bindJSON decodes and validates the request body.
func bindJSON(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperror.Validation("body", "invalid request body")
	}
	return c.Validate(req)
}
