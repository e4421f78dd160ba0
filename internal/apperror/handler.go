package apperror

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/jwt-auth-api/internal/utils"
)

// NewHTTPErrorHandler returns the central echo error handler. It maps typed
// *Error values, echo's own HTTPErrors and anything else onto the response
// envelope. When env is "prod" the message of a 500 is replaced so internal
// details never reach clients.
func NewHTTPErrorHandler(env string) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal Server Error"
		var fields map[string]string

		var ae *Error
		var he *echo.HTTPError
		switch {
		case errors.As(err, &ae):
			status = ae.Kind.Status()
			message = ae.Message
			fields = ae.Fields
		case errors.As(err, &he):
			status = he.Code
			if s, ok := he.Message.(string); ok {
				message = s
			} else {
				message = http.StatusText(he.Code)
			}
		}

		if status >= http.StatusInternalServerError {
			log.Printf("internal error on %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
			if env == "prod" {
				message = "Internal Server Error"
				fields = nil
			}
		}

		var payload interface{}
		if fields != nil {
			payload = fields
		}
		if werr := utils.Fail(c, status, message, payload); werr != nil {
			log.Printf("error handler write failed: %v", werr)
		}
	}
}
