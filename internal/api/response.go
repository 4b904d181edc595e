package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Response is the standard envelope for every endpoint.
type Response struct {
	Data  interface{}    `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
	Meta  ResponseMeta   `json:"meta"`
}

// ErrorResponse carries a machine-readable code plus a human message.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseMeta carries response metadata common to every envelope.
type ResponseMeta struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// SuccessResponse writes data with status into c's response envelope.
func SuccessResponse(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Response{
		Data: data,
		Meta: ResponseMeta{Timestamp: time.Now().UTC(), RequestID: requestID(c)},
	})
}

// ErrorJSONResponse writes an error envelope with status, code, message.
func ErrorJSONResponse(c echo.Context, status int, code, message string) error {
	return c.JSON(status, Response{
		Error: &ErrorResponse{Code: code, Message: message},
		Meta:  ResponseMeta{Timestamp: time.Now().UTC(), RequestID: requestID(c)},
	})
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// statusForError maps a domain/engine error onto an HTTP status code
// and a stable error code string.
func statusForError(err error) (int, string) {
	switch {
	case isNotFound(err):
		return http.StatusNotFound, "not_found"
	case isInvalidInput(err):
		return http.StatusBadRequest, "invalid_input"
	case isConflict(err):
		return http.StatusConflict, "conflict"
	case isBusy(err):
		return http.StatusTooManyRequests, "busy"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
