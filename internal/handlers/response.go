package handlers

import (
	"errors"
	"net/http"

	"circuitweb/internal/common"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const internalServerError = "Internal server error"

// Map is the JSON envelope written by every handler.
type Map map[string]interface{}

// ok writes {success:true, message, ...payload}.
func ok(c echo.Context, message string, payload Map) error {
	body := Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(http.StatusOK, body)
}

// ErrorHandler renders every error as {success:false, error} and logs 5xx with
// the wrapped cause.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		he := &echo.HTTPError{}
		if !errors.As(err, &he) {
			he = echo.NewHTTPError(http.StatusInternalServerError, internalServerError).SetInternal(err)
		}

		message, isString := he.Message.(string)
		if !isString {
			message = http.StatusText(he.Code)
		}

		if he.Code >= http.StatusInternalServerError {
			cause := err
			if he.Internal != nil {
				cause = he.Internal
			}
			log.Error().Err(cause).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", he.Code).
				Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, Map{"success": false, "error": message})
		}
		if err != nil {
			log.Error().Err(err).Msg("failed to write error response")
		}
	}
}

// serviceError maps the common error taxonomy to an HTTP error. notFound is the
// client message for a missing entity. Unexpected errors surface a generic message.
func serviceError(err error, notFound string) *echo.HTTPError {
	return mapError(err, notFound, internalServerError)
}

// providerError is serviceError for identity-provider passthroughs, which surface
// the provider's own message on failure.
func providerError(err error, notFound string) *echo.HTTPError {
	return mapError(err, notFound, err.Error())
}

func mapError(err error, notFound, unexpected string) *echo.HTTPError {
	if msg, isValidation := common.ValidationMessage(err); isValidation {
		return echo.NewHTTPError(http.StatusBadRequest, msg).SetInternal(err)
	}

	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token").SetInternal(err)
	case errors.Is(err, common.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "Access denied").SetInternal(err)
	case errors.Is(err, common.ErrNotFound):
		if notFound == "" {
			notFound = "Not found"
		}
		return echo.NewHTTPError(http.StatusNotFound, notFound).SetInternal(err)
	case errors.Is(err, common.ErrUnsupported):
		return echo.NewHTTPError(http.StatusNotImplemented,
			"Operation not supported by the configured identity provider").SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, unexpected).SetInternal(err)
	}
}

// callerID returns the authenticated caller's uid.
func callerID(c echo.Context) (string, error) {
	uid, found := common.GetUserIDFromContext(c.Request().Context())
	if !found {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return uid, nil
}

func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format").SetInternal(err)
	}
	return nil
}

func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, message)
}
