package model

import "github.com/labstack/echo/v4"

// RootResponse describes the service.
//
// swagger:model
type RootResponse struct {
	// The name of the service
	Service string `json:"service"`

	// The service title
	Title string `json:"title"`

	// The service version
	Version string `json:"version"`
}

// APIVersionResponse describes an API version.
//
// swagger:model
type APIVersionResponse struct {
	// The API version
	Version string `json:"version"`
}

// URLResponse holds a URL that the client should redirect the user to.
//
// swagger:model
type URLResponse struct {
	// The URL
	URL string `json:"url"`
}

// SuccessMessage sends a successful response containing only a message.
func SuccessMessage(ctx echo.Context, msg string, status int) error {
	return ctx.JSON(status, SuccessResponse(msg, status))
}
