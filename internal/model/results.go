package model

import (
	"time"

	"gorm.io/datatypes"
)

// ToneScores holds the percentage of each tone detected in a message.
//
// swagger:model
type ToneScores struct {
	Professional float64 `json:"professional"`
	Friendly     float64 `json:"friendly"`
	Urgent       float64 `json:"urgent"`
	Neutral      float64 `json:"neutral"`
}

// ToneResult is the outcome of a tone analysis returned by the text provider.
type ToneResult struct {
	Tones       ToneScores `json:"tones"`
	Confidence  float64    `json:"confidence"`
	Explanation string     `json:"explanation"`
	Suggestions []string   `json:"suggestions"`
}

// ToneAnalysisResponse
//
// swagger:model
type ToneAnalysisResponse struct {
	// The identifier of the stored analysis
	ID string `json:"id"`

	ToneResult

	// The time taken to produce the analysis
	ProcessingTimeMS int64 `json:"processing_time_ms"`
}

// ScriptResponse is a single suggested reply.
//
// swagger:model
type ScriptResponse struct {
	Content     string  `json:"content"`
	Explanation string  `json:"explanation"`
	Confidence  float64 `json:"confidence"`
}

// ScriptResponses holds one suggested reply per register.
//
// swagger:model
type ScriptResponses struct {
	Casual       ScriptResponse `json:"casual"`
	Professional ScriptResponse `json:"professional"`
	Direct       ScriptResponse `json:"direct"`
}

// ScriptResult is the outcome of a script generation returned by the text provider.
type ScriptResult struct {
	Responses ScriptResponses `json:"responses"`
}

// ScriptGenerationResponse
//
// swagger:model
type ScriptGenerationResponse struct {
	// The identifier of the stored generation
	ID string `json:"id"`

	ScriptResult

	// The time taken to produce the scripts
	ProcessingTimeMS int64 `json:"processing_time_ms"`
}

// VoiceResult is synthesized speech.
type VoiceResult struct {
	Audio            []byte
	ContentType      string
	ProcessingTimeMS int64
}

// ToneAnalysis is a stored tone analysis.
//
// swagger:model
type ToneAnalysis struct {
	// The analysis identifier
	//
	// readOnly: true
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	// The user who requested the analysis
	UserID string `gorm:"not null;index" json:"-"`

	// The analyzed text
	InputText string `gorm:"not null" json:"input_text"`

	// The detected tones
	Tones datatypes.JSON `gorm:"type:jsonb;not null" json:"tones"`

	// The confidence of the analysis, between 0 and 1
	Confidence float64 `gorm:"not null" json:"confidence"`

	// An explanation of the analysis
	Explanation string `gorm:"not null" json:"explanation"`

	// Suggestions for adjusting the message
	Suggestions datatypes.JSON `gorm:"type:jsonb;not null" json:"suggestions"`

	// The time taken to produce the analysis
	ProcessingTimeMS int64 `gorm:"not null" json:"processing_time_ms"`

	// The date and time the analysis was stored
	CreatedAt time.Time `json:"created_at"`
}

// ScriptGeneration is a stored script generation.
//
// swagger:model
type ScriptGeneration struct {
	// The generation identifier
	//
	// readOnly: true
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	// The user who requested the generation
	UserID string `gorm:"not null;index" json:"-"`

	// The situation described by the user
	SituationContext string `gorm:"not null" json:"situation_context"`

	// The relationship between the user and the recipient
	RelationshipType string `gorm:"not null" json:"relationship_type"`

	// The generated responses
	Responses datatypes.JSON `gorm:"type:jsonb;not null" json:"responses"`

	// The time taken to produce the responses
	ProcessingTimeMS int64 `gorm:"not null" json:"processing_time_ms"`

	// The date and time the generation was stored
	CreatedAt time.Time `json:"created_at"`
}
