// Package client is a Go client for the ToneWise API. Failed calls are retried at most twice with exponential
// backoff, except for failures that a retry can't fix.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/elucidare/tonewise/internal/httpmodel"
	"github.com/elucidare/tonewise/internal/model"
	"github.com/elucidare/tonewise/logging"
	"github.com/sirupsen/logrus"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "client"})

const (
	DefaultMaxRetries      = 2
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxInterval     = 5 * time.Second

	processingTimeHeader = "X-Processing-Time-Ms"
)

// TokenSource returns the bearer token to send with each request.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken returns a token source that always returns the same token.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) {
		return token, nil
	}
}

// Client calls the ToneWise API.
type Client struct {
	BaseURL         string
	HTTPClient      *http.Client
	Token           TokenSource
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// New creates a client with the default retry policy.
func New(baseURL string, token TokenSource) *Client {
	return &Client{
		BaseURL:         strings.TrimRight(baseURL, "/"),
		HTTPClient:      &http.Client{Timeout: 60 * time.Second},
		Token:           token,
		MaxRetries:      DefaultMaxRetries,
		InitialInterval: DefaultInitialInterval,
		MaxInterval:     DefaultMaxInterval,
	}
}

func (c *Client) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.InitialInterval
	b.MaxInterval = c.MaxInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, c.MaxRetries), ctx)
}

// response is a successful HTTP response.
type response struct {
	body    []byte
	headers http.Header
}

// do sends a request, retrying failures that might succeed on another attempt.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload interface{}) (*response, error) {
	var encoded []byte
	if payload != nil {
		var err error
		if encoded, err = json.Marshal(payload); err != nil {
			return nil, apperr.Wrap(err, apperr.KindValidation, "unable to encode the request body", "")
		}
	}

	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	attempt := 0
	var result *response
	operation := func() error {
		attempt++
		resp, err := c.send(ctx, method, target, encoded)
		if err != nil {
			kind := apperr.KindOf(err)
			log.WithFields(logrus.Fields{"attempt": attempt, "kind": kind, "path": path}).Debugf("request failed: %s", err)
			if !apperr.Retryable(kind) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = resp
		return nil
	}

	if err := backoff.Retry(operation, c.backOff(ctx)); err != nil {
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		return nil, apperr.FromContext(err, "request abandoned")
	}

	return result, nil
}

// send makes a single attempt at a request and classifies any failure.
func (c *Client) send(ctx context.Context, method, target string, encoded []byte) (*response, error) {
	var body io.Reader
	if encoded != nil {
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindValidation, "unable to build the request", "")
	}
	if encoded != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != nil {
		token, err := c.Token(ctx)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.KindAuth, "unable to obtain a token", "")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctxErr := apperr.FromContext(ctx.Err(), "request interrupted"); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperr.Wrap(err, apperr.KindNetwork, "unable to reach the service", "")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindNetwork, "unable to read the response", "")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, data)
	}

	return &response{body: data, headers: resp.Header}, nil
}

// decodeError converts an error response to a classified error.
func decodeError(status int, data []byte) error {
	var body model.ErrorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		kind := apperr.KindFromHTTPStatus(status)
		return apperr.New(kind, fmt.Sprintf("unexpected response status %d", status), "")
	}

	kind := body.Kind
	if kind == "" {
		kind = apperr.KindFromHTTPStatus(status)
	}
	return apperr.New(kind, body.Error, body.Message)
}

// decodeResult extracts the result from a standard response body.
func decodeResult(data []byte, v interface{}) error {
	envelope := struct {
		Result json.RawMessage `json:"result"`
	}{}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return apperr.Wrap(err, apperr.KindServer, "malformed response body", "")
	}
	if err := json.Unmarshal(envelope.Result, v); err != nil {
		return apperr.Wrap(err, apperr.KindServer, "malformed response result", "")
	}
	return nil
}

// AnalyzeTone analyzes the tone of a message.
func (c *Client) AnalyzeTone(ctx context.Context, text string) (*model.ToneAnalysisResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/v1/tone-analyses", nil, httpmodel.ToneAnalysisRequest{Text: text})
	if err != nil {
		return nil, err
	}

	var result model.ToneAnalysisResponse
	if err = decodeResult(resp.body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateScripts generates replies for a situation.
func (c *Client) GenerateScripts(ctx context.Context, situation, relationship string) (*model.ScriptGenerationResponse, error) {
	req := httpmodel.ScriptGenerationRequest{SituationContext: situation, RelationshipType: relationship}
	resp, err := c.do(ctx, http.MethodPost, "/v1/scripts", nil, req)
	if err != nil {
		return nil, err
	}

	var result model.ScriptGenerationResponse
	if err = decodeResult(resp.body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SynthesizeVoice speaks a message. A nil speed uses the service default.
func (c *Client) SynthesizeVoice(ctx context.Context, text, voice string, speed *float64) (*model.VoiceResult, error) {
	req := httpmodel.VoiceSynthesisRequest{Text: text, Voice: voice, Speed: speed}
	resp, err := c.do(ctx, http.MethodPost, "/v1/voice", nil, req)
	if err != nil {
		return nil, err
	}

	result := &model.VoiceResult{Audio: resp.body, ContentType: resp.headers.Get("Content-Type")}
	if ms, err := strconv.ParseInt(resp.headers.Get(processingTimeHeader), 10, 64); err == nil {
		result.ProcessingTimeMS = ms
	}
	return result, nil
}

// Usage summarizes the caller's usage on a day. The current day is summarized if the day is zero.
func (c *Client) Usage(ctx context.Context, day time.Time) (*model.UsageSummary, error) {
	query := url.Values{}
	if !day.IsZero() {
		query.Set("date", day.UTC().Format(time.DateOnly))
	}

	resp, err := c.do(ctx, http.MethodGet, "/v1/usage", query, nil)
	if err != nil {
		return nil, err
	}

	var summary model.UsageSummary
	if err = decodeResult(resp.body, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
