// Package apperr defines the error taxonomy shared by every metered action. Each error carries an internal
// diagnostic message for the logs and a separate literal message that is safe to show to the person using the app.
package apperr

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/pkg/errors"
)

// Kind classifies a failure independently of the feature that produced it.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindAuth       Kind = "auth"
	KindValidation Kind = "validation"
	KindRateLimit  Kind = "rate_limit"
	KindPermission Kind = "permission"
	KindServer     Kind = "server"
	KindTimeout    Kind = "timeout"
	KindUnknown    Kind = "unknown"
)

// Kinds lists every error kind.
var Kinds = []Kind{
	KindNetwork, KindAuth, KindValidation, KindRateLimit, KindPermission, KindServer, KindTimeout, KindUnknown,
}

// Messages shown to users. They say exactly what happened and what to do next.
var defaultUserMessages = map[Kind]string{
	KindNetwork:    "We could not reach the service. Check your internet connection and try again.",
	KindAuth:       "You are not signed in. Please sign in and try again.",
	KindValidation: "The information you sent is not valid. Please check it and try again.",
	KindRateLimit:  "You have reached your usage limit. Please try again later.",
	KindPermission: "Your account does not have access to this feature.",
	KindServer:     "Something went wrong on our side. Your request was not completed. Please try again.",
	KindTimeout:    "The request took too long and was stopped. Please try again.",
	KindUnknown:    "An unexpected error happened. Please try again.",
}

// DefaultUserMessage returns the plain-language message used for a kind when no specific message is available.
func DefaultUserMessage(kind Kind) string {
	if msg, ok := defaultUserMessages[kind]; ok {
		return msg
	}
	return defaultUserMessages[KindUnknown]
}

// Error is a classified failure.
type Error struct {
	Kind        Kind
	Internal    string
	UserMessage string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Internal, e.Err.Error())
	}
	return e.Internal
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new classified error. The default message for the kind is used if userMessage is empty.
func New(kind Kind, internal, userMessage string) *Error {
	if userMessage == "" {
		userMessage = DefaultUserMessage(kind)
	}
	return &Error{Kind: kind, Internal: internal, UserMessage: userMessage}
}

// Wrap classifies an existing error.
func Wrap(err error, kind Kind, internal, userMessage string) *Error {
	e := New(kind, internal, userMessage)
	e.Err = err
	return e
}

// Validation is shorthand for a validation error.
func Validation(internal, userMessage string) *Error {
	return New(KindValidation, internal, userMessage)
}

// Server is shorthand for wrapping an upstream or persistence failure.
func Server(err error, internal string) *Error {
	return Wrap(err, KindServer, internal, "")
}

// FromContext converts a context error into a classified error. Nil is returned if the context error is nil.
func FromContext(err error, internal string) *Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, KindTimeout, internal, "")
	case errors.Is(err, context.Canceled):
		return Wrap(err, KindNetwork, internal, "The request was cancelled before it finished. Please try again.")
	default:
		return Wrap(err, KindUnknown, internal, "")
	}
}

// As returns the classified error in the chain, if there is one.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf determines the kind of an arbitrary error. Unclassified deadline and network errors are recognized.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	return KindUnknown
}

// UserMessageOf returns the user-facing message for an arbitrary error.
func UserMessageOf(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.UserMessage
	}
	return DefaultUserMessage(KindOf(err))
}

// HTTPStatus returns the HTTP status code used to report an error of the given kind.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindPermission:
		return http.StatusForbidden
	case KindTimeout:
		return http.StatusRequestTimeout
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// KindFromHTTPStatus is the inverse of HTTPStatus, used by clients to classify error responses.
func KindFromHTTPStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest:
		return KindValidation
	case status == http.StatusUnauthorized:
		return KindAuth
	case status == http.StatusForbidden:
		return KindPermission
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return KindTimeout
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusServiceUnavailable, status == http.StatusBadGateway:
		return KindNetwork
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// Retryable reports whether retrying a request that failed with the given kind could produce a different outcome.
func Retryable(kind Kind) bool {
	switch kind {
	case KindAuth, KindPermission, KindValidation:
		return false
	default:
		return true
	}
}
