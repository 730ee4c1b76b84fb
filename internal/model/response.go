package model

import (
	"net/http"

	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/labstack/echo/v4"
)

// ErrorBody is the body of every error response.
type ErrorBody struct {
	// The internal description of the error
	Error string `json:"error"`

	// A plain-language description of the error that can be shown to the user
	Message string `json:"message"`

	// The error category
	Kind apperr.Kind `json:"kind"`

	// The status of the request
	Status string `json:"status"`
}

// SuccessBody is the body of every successful JSON response.
type SuccessBody struct {
	Result any    `json:"result"`
	Status string `json:"status"`
}

// SuccessResponse wraps a result in the standard response body.
func SuccessResponse(data any, status int) SuccessBody {
	return SuccessBody{Result: data, Status: http.StatusText(status)}
}

// Success sends a successful response.
func Success(ctx echo.Context, data any, status int) error {
	return ctx.JSON(status, SuccessResponse(data, status))
}

// Error sends an error response for an unclassified failure.
func Error(ctx echo.Context, msg string, status int) error {
	kind := apperr.KindFromHTTPStatus(status)
	return ctx.JSON(status, ErrorBody{
		Error:   msg,
		Message: apperr.DefaultUserMessage(kind),
		Kind:    kind,
		Status:  http.StatusText(status),
	})
}

// AppError sends an error response for an arbitrary error, using its classification if it has one.
func AppError(ctx echo.Context, err error) error {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	return ctx.JSON(status, ErrorBody{
		Error:   err.Error(),
		Message: apperr.UserMessageOf(err),
		Kind:    kind,
		Status:  http.StatusText(status),
	})
}
