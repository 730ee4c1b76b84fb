package provider

import (
	"context"
	"net"
	"net/http"
	"testing"

	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validTone = `{
	"tones": {"professional": 60, "friendly": 20, "urgent": 10, "neutral": 10},
	"confidence": 0.82,
	"explanation": "The message asks for a specific action by a specific date.",
	"suggestions": ["Add a greeting at the start."]
}`

const validScripts = `{
	"responses": {
		"casual": {"content": "Sure, I can do that.", "explanation": "Short and friendly.", "confidence": 0.8},
		"professional": {"content": "Thank you. I will send it by Friday.", "explanation": "Formal and clear.", "confidence": 0.9},
		"direct": {"content": "I will send it Friday.", "explanation": "States the plan only.", "confidence": 0.7}
	}
}`

func TestParseToneResult(t *testing.T) {
	result, err := ParseToneResult(validTone)
	require.NoError(t, err)
	assert.Equal(t, 60.0, result.Tones.Professional)
	assert.Equal(t, 0.82, result.Confidence)
	assert.Equal(t, []string{"Add a greeting at the start."}, result.Suggestions)

	fenced, err := ParseToneResult("```json\n" + validTone + "\n```")
	require.NoError(t, err)
	assert.Equal(t, result, fenced)
}

func TestParseToneResultRejectsMalformedResponses(t *testing.T) {
	tests := map[string]string{
		"not json":           "The tone is friendly.",
		"array":              `[1, 2, 3]`,
		"missing suggestions": `{"tones": {"professional": 1, "friendly": 1, "urgent": 1, "neutral": 97}, "confidence": 0.5, "explanation": "x"}`,
		"missing tone key":   `{"tones": {"professional": 1, "friendly": 1, "urgent": 98}, "confidence": 0.5, "explanation": "x", "suggestions": []}`,
		"null explanation":   `{"tones": {"professional": 1, "friendly": 1, "urgent": 1, "neutral": 97}, "confidence": 0.5, "explanation": null, "suggestions": []}`,
		"wrong type":         `{"tones": {"professional": "high", "friendly": 1, "urgent": 1, "neutral": 97}, "confidence": 0.5, "explanation": "x", "suggestions": []}`,
		"confidence range":   `{"tones": {"professional": 1, "friendly": 1, "urgent": 1, "neutral": 97}, "confidence": 7, "explanation": "x", "suggestions": []}`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToneResult(raw)
			require.Error(t, err)
			assert.Equal(t, apperr.KindServer, apperr.KindOf(err))
		})
	}
}

func TestParseScriptResult(t *testing.T) {
	result, err := ParseScriptResult(validScripts)
	require.NoError(t, err)
	assert.Equal(t, "I will send it Friday.", result.Responses.Direct.Content)

	_, err = ParseScriptResult(`{"responses": {"casual": {"content": "a", "explanation": "b", "confidence": 0.5}}}`)
	assert.Equal(t, apperr.KindServer, apperr.KindOf(err))

	_, err = ParseScriptResult(`{"responses": {
		"casual": {"content": "", "explanation": "b", "confidence": 0.5},
		"professional": {"content": "a", "explanation": "b", "confidence": 0.5},
		"direct": {"content": "a", "explanation": "b", "confidence": 0.5}}}`)
	assert.Equal(t, apperr.KindServer, apperr.KindOf(err))
}

func TestCheckSpeech(t *testing.T) {
	assert.Error(t, CheckSpeech(nil))
	assert.Error(t, CheckSpeech(&Speech{ContentType: "audio/mpeg"}))
	assert.NoError(t, CheckSpeech(&Speech{Audio: []byte{0xff, 0xfb}, ContentType: "audio/mpeg"}))
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected apperr.Kind
	}{
		{"deadline", errors.Wrap(context.DeadlineExceeded, "post"), apperr.KindTimeout},
		{"net timeout", timeoutError{}, apperr.KindTimeout},
		{"connection refused", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, apperr.KindNetwork},
		{"unavailable", &StatusError{Provider: "fake", StatusCode: http.StatusServiceUnavailable}, apperr.KindNetwork},
		{"bad gateway", &StatusError{Provider: "fake", StatusCode: http.StatusBadGateway}, apperr.KindServer},
		{"other", errors.New("invalid api key"), apperr.KindServer},
		{"already classified", apperr.New(apperr.KindValidation, "x", ""), apperr.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.err, "fake")
			assert.Equal(t, tt.expected, apperr.KindOf(err))
			assert.NotEmpty(t, apperr.UserMessageOf(err))
		})
	}

	assert.NoError(t, Classify(nil, "fake"))
}

func TestPrompts(t *testing.T) {
	system, user := TonePrompt("Please send the report.")
	assert.Contains(t, system, `"suggestions"`)
	assert.Contains(t, user, "Please send the report.")

	_, user = ScriptPrompt("They asked me to work late.", "direct_report")
	assert.Contains(t, user, "direct report")
	assert.Contains(t, user, "They asked me to work late.")
}
