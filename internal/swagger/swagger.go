// Package api ToneWise
//
// Documentation of the ToneWise API
//
//	Schemes: http
//	BasePath: /
//	Version: V1
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
//	SecurityDefinitions:
//	  bearer:
//	    type: apiKey
//	    name: Authorization
//	    in: header
//
// swagger:meta
package swagger

import (
	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/elucidare/tonewise/internal/httpmodel"
	"github.com/elucidare/tonewise/internal/model"
)

// Note: the comments in this package don't conform to the convention of including the name of the entity that the
// comment describes. The reason for this is because the comments appear as-is in the API documentation. Confusing
// documentation is produced when the structure names appear in the API documentation.

// Error
//
// Having the same object definition for multiple HTTP response status codes seems to confuse ReDoc, so we're using
// aliases as a workaround.
//
// swagger:response errorResponse
type ErrorResponse struct {

	// in: body
	Body struct {

		// A brief technical description of the error
		Error string `json:"error"`

		// A plain-language description of the error that can be shown to the user
		Message string `json:"message"`

		// The error category
		//
		// enum: network,auth,validation,rate_limit,permission,server,timeout,unknown
		Kind apperr.Kind `json:"kind"`

		// The status of the request
		Status string `json:"status"`
	}
}

// Bad Request
//
// swagger:response badRequestResponse
type BadRequestResponse struct {
	ErrorResponse
}

// Unauthorized
//
// swagger:response unauthorizedResponse
type UnauthorizedResponse struct {
	ErrorResponse
}

// Forbidden
//
// swagger:response forbiddenResponse
type ForbiddenResponse struct {
	ErrorResponse
}

// Not Found
//
// swagger:response notFoundResponse
type NotFoundResponse struct {
	ErrorResponse
}

// Request Timeout
//
// swagger:response timeoutResponse
type TimeoutResponse struct {
	ErrorResponse
}

// Too Many Requests
//
// swagger:response rateLimitResponse
type RateLimitResponse struct {
	ErrorResponse
}

// Internal Server Error
//
// swagger:response internalServerErrorResponse
type InternalServerErrorResponse struct {
	ErrorResponse
}

// Service Unavailable
//
// swagger:response serviceUnavailableResponse
type ServiceUnavailableResponse struct {
	ErrorResponse
}

// Documentation for the successful response body wrapper.
//
// swagger:model
type ResponseBodyWrapper struct {

	// The status of the request
	Status string `json:"status"`
}

// Service Information
//
// swagger:response rootResponse
type RootResponseWrapper struct {

	// in:body
	Body struct {
		ResponseBodyWrapper

		// The service information
		Result model.RootResponse `json:"result"`
	}
}

// Service API Version Information
//
// swagger:response apiVersionResponse
type APIVersionResponseWrapper struct {

	// in:body
	Body struct {
		ResponseBodyWrapper

		// The API version information
		Result model.APIVersionResponse `json:"result"`
	}
}

// General Success Message
//
// swagger:response successMessageResponse
type SuccessMessageResponseWrapper struct {

	// in:body
	Body struct {
		ResponseBodyWrapper

		// The success message.
		Result string `json:"result"`
	}
}

// Parameters for the tone analysis endpoint.
//
// swagger:parameters analyzeTone
type AnalyzeToneParameters struct {

	// The message to analyze
	//
	// in: body
	Body httpmodel.ToneAnalysisRequest
}

// Tone Analysis
//
// swagger:response toneAnalysisResponse
type ToneAnalysisResponseWrapper struct {

	// in:body
	Body struct {
		ResponseBodyWrapper

		// The analysis
		Result model.ToneAnalysisResponse `json:"result"`
	}
}

// Parameters for the script generation endpoint.
//
// swagger:parameters generateScripts
type GenerateScriptsParameters struct {

	// The situation to respond to
	//
	// in: body
	Body httpmodel.ScriptGenerationRequest
}

// Script Generation
//
// swagger:response scriptGenerationResponse
type ScriptGenerationResponseWrapper struct {

	// in:body
	Body struct {
		ResponseBodyWrapper

		// The suggested replies
		Result model.ScriptGenerationResponse `json:"result"`
	}
}

// Parameters for the voice synthesis endpoint.
//
// swagger:parameters synthesizeVoice
type SynthesizeVoiceParameters struct {

	// The text to speak
	//
	// in: body
	Body httpmodel.VoiceSynthesisRequest
}

// Synthesized Speech
//
// swagger:response voiceResponse
type VoiceResponseWrapper struct {

	// The time taken to synthesize the speech, in milliseconds
	//
	// in: header
	ProcessingTimeMS int64 `json:"X-Processing-Time-Ms"`

	// The MP3 audio
	//
	// in: body
	Body []byte
}

// Parameters for the usage endpoint.
//
// swagger:parameters getUsage
type GetUsageParameters struct {

	// The day to summarize, in YYYY-MM-DD format. Defaults to the current day in UTC.
	//
	// in: query
	Date string `json:"date"`
}

// Usage Summary
//
// swagger:response usageSummaryResponse
type UsageSummaryResponseWrapper struct {

	// in:body
	Body struct {
		ResponseBodyWrapper

		// The usage summary
		Result model.UsageSummary `json:"result"`
	}
}

// History listing parameters.
//
// swagger:parameters listToneAnalyses listScriptGenerations
type ListHistoryParameters struct {

	// The starting offset for the listing
	//
	// in: query
	Offset int32 `json:"offset"`

	// The maximum number of results to include in the listing
	//
	// in: query
	// maximum: 100
	Limit int32 `json:"limit"`

	// The sort direction to use for the listing
	//
	// enum: asc,desc
	// in: query
	SortOrder string `json:"sort-order"`
}

// Result lookup parameters.
//
// swagger:parameters getToneAnalysis getScriptGeneration
type GetResultParameters struct {

	// The result identifier
	//
	// in: path
	// required: true
	ID string `json:"id"`
}

// Tone Analysis Listing
//
// swagger:response toneAnalysisListing
type ToneAnalysisListing struct {

	// in:body
	Body struct {
		ResponseBodyWrapper

		// The stored analyses
		Result []model.ToneAnalysis `json:"result"`
	}
}

// Stored Tone Analysis
//
// swagger:response toneAnalysis
type ToneAnalysis struct {

	// in:body
	Body struct {
		ResponseBodyWrapper

		// The stored analysis
		Result model.ToneAnalysis `json:"result"`
	}
}

// Script Generation Listing
//
// swagger:response scriptGenerationListing
type ScriptGenerationListing struct {

	// in:body
	Body struct {
		ResponseBodyWrapper

		// The stored generations
		Result []model.ScriptGeneration `json:"result"`
	}
}

// Stored Script Generation
//
// swagger:response scriptGeneration
type ScriptGeneration struct {

	// in:body
	Body struct {
		ResponseBodyWrapper

		// The stored generation
		Result model.ScriptGeneration `json:"result"`
	}
}

// Redirect URL
//
// swagger:response urlResponse
type URLResponseWrapper struct {

	// in:body
	Body struct {
		ResponseBodyWrapper

		// The URL to send the user to
		Result model.URLResponse `json:"result"`
	}
}
