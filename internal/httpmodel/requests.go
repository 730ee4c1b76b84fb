package httpmodel

import (
	"fmt"
	"strings"

	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/elucidare/tonewise/internal/provider"
	"github.com/go-playground/validator/v10"
)

// Note: the names in the comments may deviate a bit from the actual structure names in order to avoid producing
// confusing Swagger docs.

const (
	MaxToneTextLength      = 2000
	MaxSituationLength     = 1000
	MaxVoiceTextLength     = 1000
	MinVoiceSpeed          = 0.5
	MaxVoiceSpeed          = 2.0
	DefaultVoiceSpeed      = 1.0
	relationshipTypesOneOf = "manager colleague direct_report client friend family other"
	voicesOneOf            = "alloy echo nova"
)

var v = validator.New()

// ToneAnalysisRequest
//
// swagger:model
type ToneAnalysisRequest struct {

	// The message to analyze
	//
	// required: true
	// maxLength: 2000
	Text string `json:"text" validate:"required,max=2000"`
}

// Normalize trims surrounding whitespace from the request fields.
func (r *ToneAnalysisRequest) Normalize() {
	r.Text = strings.TrimSpace(r.Text)
}

// Validate verifies that the request is structurally valid.
func (r ToneAnalysisRequest) Validate() error {
	if err := v.Struct(r); err != nil {
		return apperr.Validation(
			fmt.Sprintf("invalid tone analysis request: %s", err),
			fmt.Sprintf("Please enter the message you want to analyze. It must be between 1 and %d characters long.", MaxToneTextLength),
		)
	}
	return nil
}

// ScriptGenerationRequest
//
// swagger:model
type ScriptGenerationRequest struct {

	// A description of the situation that needs a reply
	//
	// required: true
	// maxLength: 1000
	SituationContext string `json:"situation_context"`

	// The relationship between the user and the person receiving the reply
	//
	// required: true
	// enum: manager,colleague,direct_report,client,friend,family,other
	RelationshipType string `json:"relationship_type"`
}

// Normalize trims surrounding whitespace from the request fields.
func (r *ScriptGenerationRequest) Normalize() {
	r.SituationContext = strings.TrimSpace(r.SituationContext)
	r.RelationshipType = strings.ToLower(strings.TrimSpace(r.RelationshipType))
}

// Validate verifies that the request is structurally valid.
func (r ScriptGenerationRequest) Validate() error {
	if err := v.Var(r.SituationContext, fmt.Sprintf("required,max=%d", MaxSituationLength)); err != nil {
		return apperr.Validation(
			fmt.Sprintf("invalid situation context: %s", err),
			fmt.Sprintf("Please describe the situation. The description must be between 1 and %d characters long.", MaxSituationLength),
		)
	}
	if err := v.Var(r.RelationshipType, "required,oneof="+relationshipTypesOneOf); err != nil {
		return apperr.Validation(
			fmt.Sprintf("invalid relationship type %q: %s", r.RelationshipType, err),
			fmt.Sprintf("Please choose who the reply is for. The choices are: %s.", strings.Join(provider.RelationshipTypes, ", ")),
		)
	}
	return nil
}

// VoiceSynthesisRequest
//
// swagger:model
type VoiceSynthesisRequest struct {

	// The text to speak
	//
	// required: true
	// maxLength: 1000
	Text string `json:"text"`

	// The voice to use
	//
	// required: true
	// enum: alloy,echo,nova
	Voice string `json:"voice"`

	// The speaking speed, between 0.5 and 2.0. Defaults to 1.0.
	Speed *float64 `json:"speed,omitempty"`
}

// Normalize trims surrounding whitespace from the request fields.
func (r *VoiceSynthesisRequest) Normalize() {
	r.Text = strings.TrimSpace(r.Text)
	r.Voice = strings.ToLower(strings.TrimSpace(r.Voice))
}

// SpeedOrDefault returns the requested speed or the default speed if none was requested.
func (r VoiceSynthesisRequest) SpeedOrDefault() float64 {
	if r.Speed == nil {
		return DefaultVoiceSpeed
	}
	return *r.Speed
}

// Validate verifies that the request is structurally valid.
func (r VoiceSynthesisRequest) Validate() error {
	if err := v.Var(r.Text, fmt.Sprintf("required,max=%d", MaxVoiceTextLength)); err != nil {
		return apperr.Validation(
			fmt.Sprintf("invalid voice text: %s", err),
			fmt.Sprintf("Please enter the text you want to hear. It must be between 1 and %d characters long.", MaxVoiceTextLength),
		)
	}
	if err := v.Var(r.Voice, "required,oneof="+voicesOneOf); err != nil {
		return apperr.Validation(
			fmt.Sprintf("invalid voice %q: %s", r.Voice, err),
			fmt.Sprintf("Please choose a voice. The choices are: %s.", strings.Join(provider.Voices, ", ")),
		)
	}
	if speed := r.SpeedOrDefault(); speed < MinVoiceSpeed || speed > MaxVoiceSpeed {
		return apperr.Validation(
			fmt.Sprintf("invalid voice speed: %f", speed),
			fmt.Sprintf("Please choose a speed between %.1f and %.1f.", MinVoiceSpeed, MaxVoiceSpeed),
		)
	}
	return nil
}

// TierUpdate
//
// swagger:model
type TierUpdate struct {

	// The new tier
	//
	// required: true
	// enum: free,premium
	Tier string `json:"tier" validate:"required,oneof=free premium"`
}

// Normalize trims and lowercases the tier name.
func (t *TierUpdate) Normalize() {
	t.Tier = strings.ToLower(strings.TrimSpace(t.Tier))
}

// Validate verifies that the tier update is valid.
func (t TierUpdate) Validate() error {
	if err := v.Struct(t); err != nil {
		return apperr.Validation(fmt.Sprintf("invalid tier update: %s", err), "The tier must be either free or premium.")
	}
	return nil
}
