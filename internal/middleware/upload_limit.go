package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"circuitweb/internal/services"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// multipartOverhead is the room left above the file cap for form framing and fields.
const multipartOverhead = 1 << 20

// UploadLimit caps request bodies at maxUploadBytes plus form framing. An
// oversize body is answered with 400 and the upload size message instead of 413.
func UploadLimit(maxUploadBytes int64) echo.MiddlewareFunc {
	limit := echoMiddleware.BodyLimitWithConfig(echoMiddleware.BodyLimitConfig{
		Limit: strconv.FormatInt(maxUploadBytes+multipartOverhead, 10) + "B",
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		limited := limit(next)
		return func(c echo.Context) error {
			err := limited(c)
			var he *echo.HTTPError
			if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
				return echo.NewHTTPError(http.StatusBadRequest, services.SizeLimitMessage(maxUploadBytes)).SetInternal(err)
			}
			return err
		}
	}
}
