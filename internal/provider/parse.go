package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/elucidare/tonewise/internal/model"
)

const malformedUserMessage = "The service that handles this request sent back an answer we could not read. " +
	"Nothing was saved and this request was not counted. Please try again."

func malformed(format string, args ...interface{}) error {
	return apperr.New(apperr.KindServer, "malformed provider response: "+fmt.Sprintf(format, args...), malformedUserMessage)
}

// decodeObject decodes a JSON object and verifies that every required key is present.
func decodeObject(raw []byte, required ...string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, malformed("not a JSON object: %s", err)
	}
	if fields == nil {
		return nil, malformed("not a JSON object")
	}

	var missing []string
	for _, key := range required {
		value, ok := fields[key]
		if !ok || string(value) == "null" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, malformed("missing keys: %s", strings.Join(missing, ", "))
	}

	return fields, nil
}

// stripFences removes the Markdown code fences that some models wrap around JSON output.
func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

func checkConfidence(field string, value float64) error {
	if value < 0 || value > 1 {
		return malformed("%s out of range: %f", field, value)
	}
	return nil
}

// ParseToneResult parses a tone analysis, rejecting responses that don't have exactly the expected shape.
func ParseToneResult(raw string) (*model.ToneResult, error) {
	data := []byte(stripFences(raw))

	fields, err := decodeObject(data, "tones", "confidence", "explanation", "suggestions")
	if err != nil {
		return nil, err
	}
	if _, err = decodeObject(fields["tones"], "professional", "friendly", "urgent", "neutral"); err != nil {
		return nil, err
	}

	var result model.ToneResult
	if err = json.Unmarshal(data, &result); err != nil {
		return nil, malformed("unexpected field types: %s", err)
	}
	if err = checkConfidence("confidence", result.Confidence); err != nil {
		return nil, err
	}
	if result.Suggestions == nil {
		result.Suggestions = []string{}
	}

	return &result, nil
}

// ParseScriptResult parses a script generation, rejecting responses that don't have exactly the expected shape.
func ParseScriptResult(raw string) (*model.ScriptResult, error) {
	data := []byte(stripFences(raw))

	fields, err := decodeObject(data, "responses")
	if err != nil {
		return nil, err
	}
	responses, err := decodeObject(fields["responses"], "casual", "professional", "direct")
	if err != nil {
		return nil, err
	}
	for _, key := range []string{"casual", "professional", "direct"} {
		if _, err = decodeObject(responses[key], "content", "explanation", "confidence"); err != nil {
			return nil, err
		}
	}

	var result model.ScriptResult
	if err = json.Unmarshal(data, &result); err != nil {
		return nil, malformed("unexpected field types: %s", err)
	}

	checks := map[string]model.ScriptResponse{
		"casual":       result.Responses.Casual,
		"professional": result.Responses.Professional,
		"direct":       result.Responses.Direct,
	}
	for name, response := range checks {
		if strings.TrimSpace(response.Content) == "" {
			return nil, malformed("empty %s response", name)
		}
		if err = checkConfidence(name+".confidence", response.Confidence); err != nil {
			return nil, err
		}
	}

	return &result, nil
}

// CheckSpeech verifies that synthesized speech contains audio.
func CheckSpeech(speech *Speech) error {
	if speech == nil || len(speech.Audio) == 0 {
		return apperr.New(apperr.KindServer, "malformed provider response: empty audio payload", malformedUserMessage)
	}
	return nil
}
