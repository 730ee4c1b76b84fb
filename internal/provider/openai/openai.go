// Package openai implements the text and speech providers on top of the OpenAI API.
package openai

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elucidare/tonewise/internal/provider"
	"github.com/pkg/errors"
	gopenai "github.com/sashabaranov/go-openai"
)

const (
	Name = "openai"

	defaultTextModel = "gpt-4o-mini"
	defaultTTSModel  = string(gopenai.TTSModel1)

	// Upper bound on the HTTP client. Callers bound each request more tightly through the context.
	defaultHTTPTimeout = 60 * time.Second

	// Largest accepted audio payload.
	maxAudioBytes = 20 << 20
)

// Options configures the OpenAI client.
type Options struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	TTSModel   string
	HTTPClient *http.Client
}

// Client calls the OpenAI API.
type Client struct {
	client    *gopenai.Client
	textModel string
	ttsModel  string
}

// New creates a new OpenAI client.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}

	cfg := gopenai.DefaultConfig(strings.TrimSpace(opts.APIKey))
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	cfg.HTTPClient = opts.HTTPClient
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}

	textModel := opts.TextModel
	if textModel == "" {
		textModel = defaultTextModel
	}
	ttsModel := opts.TTSModel
	if ttsModel == "" {
		ttsModel = defaultTTSModel
	}

	return &Client{
		client:    gopenai.NewClientWithConfig(cfg),
		textModel: textModel,
		ttsModel:  ttsModel,
	}, nil
}

func (c *Client) Name() string {
	return Name
}

// toStatusError converts an API error to a provider status error so that it can be classified.
func toStatusError(err error) error {
	var apiErr *gopenai.APIError
	if errors.As(err, &apiErr) {
		return &provider.StatusError{Provider: Name, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *gopenai.RequestError
	if errors.As(err, &reqErr) {
		return &provider.StatusError{Provider: Name, StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return err
}

// CompleteJSON requests a chat completion in JSON mode and returns the content of the first choice.
func (c *Client) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, gopenai.ChatCompletionRequest{
		Model:       c.textModel,
		Temperature: 0.3,
		ResponseFormat: &gopenai.ChatCompletionResponseFormat{
			Type: gopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []gopenai.ChatCompletionMessage{
			{Role: gopenai.ChatMessageRoleSystem, Content: system},
			{Role: gopenai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", toStatusError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// Synthesize converts text to MP3 audio.
func (c *Client) Synthesize(ctx context.Context, req provider.SpeechRequest) (*provider.Speech, error) {
	body, err := c.client.CreateSpeech(ctx, gopenai.CreateSpeechRequest{
		Model:          gopenai.SpeechModel(c.ttsModel),
		Input:          req.Text,
		Voice:          gopenai.SpeechVoice(req.Voice),
		ResponseFormat: gopenai.SpeechResponseFormatMp3,
		Speed:          req.Speed,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	defer body.Close()

	audio, err := io.ReadAll(io.LimitReader(body, maxAudioBytes))
	if err != nil {
		return nil, errors.Wrap(err, "unable to read the synthesized audio")
	}

	return &provider.Speech{Audio: audio, ContentType: "audio/mpeg"}, nil
}
