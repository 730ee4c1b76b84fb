// Package provider defines the interfaces of the external text and speech providers along with the prompts sent to
// them and the strict parsing of their responses.
package provider

import (
	"context"
	"net"
	"net/http"

	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/pkg/errors"
)

// TextGenerator produces a JSON object in response to a system prompt and a user prompt.
type TextGenerator interface {
	Name() string
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

// SpeechRequest describes the speech to synthesize.
type SpeechRequest struct {
	Text  string
	Voice string
	Speed float64
}

// Speech is synthesized audio.
type Speech struct {
	Audio       []byte
	ContentType string
}

// SpeechSynthesizer converts text to audio.
type SpeechSynthesizer interface {
	Name() string
	Synthesize(ctx context.Context, req SpeechRequest) (*Speech, error)
}

// StatusError is returned when a provider responds with an unsuccessful HTTP status.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return e.Provider + " responded with status " + http.StatusText(e.StatusCode) + ": " + e.Message
}

// Classify converts a provider failure into a classified error. Context deadlines become timeouts, connection
// failures become network errors, and everything else is reported as a server error.
func Classify(err error, providerName string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}

	internal := providerName + " request failed"

	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(err, apperr.KindTimeout, providerName+" request timed out",
			"The service that handles this request took too long to answer. Nothing was saved and this request was not counted. Please try again.")
	}
	if errors.Is(err, context.Canceled) {
		return apperr.Wrap(err, apperr.KindNetwork, providerName+" request was cancelled",
			"The request was cancelled before it finished. Nothing was saved and this request was not counted.")
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusServiceUnavailable {
		return apperr.Wrap(err, apperr.KindNetwork, internal,
			"The service that handles this request is not available right now. Nothing was saved and this request was not counted. Please try again in a few minutes.")
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return apperr.Wrap(err, apperr.KindTimeout, providerName+" request timed out",
				"The service that handles this request took too long to answer. Nothing was saved and this request was not counted. Please try again.")
		}
		return apperr.Wrap(err, apperr.KindNetwork, internal,
			"We could not connect to the service that handles this request. Nothing was saved and this request was not counted. Please try again.")
	}

	return apperr.Wrap(err, apperr.KindServer, internal,
		"The service that handles this request returned an error. Nothing was saved and this request was not counted. Please try again.")
}
