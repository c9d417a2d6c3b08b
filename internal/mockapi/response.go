package mockapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response is the enveloped API response shape most endpoints use. A few
// endpoints intentionally answer bare, matching the real backend's
// inconsistency the client is built to absorb.
type Response struct {
	Success bool       `json:"success"`
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo carries the business error code and detail text.
type ErrorInfo struct {
	Code    string `json:"code"`
	Details string `json:"details"`
}

// ok writes an enveloped success response.
func ok(c echo.Context, statusCode int, data any, message string) error {
	if message == "" {
		message = "Success"
	}

	return c.JSON(statusCode, Response{
		Success: true,
		Code:    statusCode,
		Message: message,
		Data:    data,
	})
}

// fail writes an enveloped error response.
func fail(c echo.Context, statusCode int, errorCode, message string) error {
	if message == "" {
		message = http.StatusText(statusCode)
	}

	return c.JSON(statusCode, Response{
		Success: false,
		Code:    statusCode,
		Message: message,
		Error: &ErrorInfo{
			Code:    errorCode,
			Details: message,
		},
	})
}
