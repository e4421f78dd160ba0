package utils

import "github.com/labstack/echo/v4"

// Envelope is the JSON shape shared by every response: a success flag, a
// human-readable message and either a data or an errors payload.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// Success writes a success envelope with the given status and optional data.
func Success(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// Fail writes an error envelope with the given status and optional errors payload.
func Fail(c echo.Context, status int, message string, errs interface{}) error {
	return c.JSON(status, Envelope{Success: false, Message: message, Errors: errs})
}
