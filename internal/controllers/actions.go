package controllers

import (
	"net/http"
	"strconv"

	"github.com/elucidare/tonewise/internal/httpmodel"
	"github.com/elucidare/tonewise/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// ProcessingTimeHeader reports the processing time of responses that don't have a JSON body.
const ProcessingTimeHeader = "X-Processing-Time-Ms"

// AnalyzeTone is the handler for the POST /v1/tone-analyses endpoint.
//
// swagger:route POST /v1/tone-analyses actions analyzeTone
//
// # Analyze Tone
//
// Analyzes the tone of a message. Free accounts may analyze 5 messages per day.
//
// responses:
//
//	200: toneAnalysisResponse
//	400: badRequestResponse
//	401: unauthorizedResponse
//	408: timeoutResponse
//	429: rateLimitResponse
//	500: internalServerErrorResponse
//	503: serviceUnavailableResponse
func (s Server) AnalyzeTone(ctx echo.Context) error {
	claims, err := currentUser(ctx)
	if err != nil {
		return model.AppError(ctx, err)
	}

	log := log.WithFields(logrus.Fields{"context": "analyzing tone", "user": claims.Subject})

	var req httpmodel.ToneAnalysisRequest
	if err = ctx.Bind(&req); err != nil {
		return model.AppError(ctx, badRequestBody(err))
	}

	result, err := s.Actions.AnalyzeTone(ctx.Request().Context(), claims.Subject, req)
	if err != nil {
		return model.AppError(ctx, err)
	}

	log.Debugf("analysis %s completed in %d ms", result.ID, result.ProcessingTimeMS)

	return model.Success(ctx, result, http.StatusOK)
}

// GenerateScripts is the handler for the POST /v1/scripts endpoint.
//
// swagger:route POST /v1/scripts actions generateScripts
//
// # Generate Scripts
//
// Suggests casual, professional and direct replies for a situation. Free accounts may generate scripts 3 times per
// day.
//
// responses:
//
//	200: scriptGenerationResponse
//	400: badRequestResponse
//	401: unauthorizedResponse
//	408: timeoutResponse
//	429: rateLimitResponse
//	500: internalServerErrorResponse
//	503: serviceUnavailableResponse
func (s Server) GenerateScripts(ctx echo.Context) error {
	claims, err := currentUser(ctx)
	if err != nil {
		return model.AppError(ctx, err)
	}

	log := log.WithFields(logrus.Fields{"context": "generating scripts", "user": claims.Subject})

	var req httpmodel.ScriptGenerationRequest
	if err = ctx.Bind(&req); err != nil {
		return model.AppError(ctx, badRequestBody(err))
	}

	result, err := s.Actions.GenerateScripts(ctx.Request().Context(), claims.Subject, req)
	if err != nil {
		return model.AppError(ctx, err)
	}

	log.Debugf("generation %s completed in %d ms", result.ID, result.ProcessingTimeMS)

	return model.Success(ctx, result, http.StatusOK)
}

// SynthesizeVoice is the handler for the POST /v1/voice endpoint.
//
// swagger:route POST /v1/voice actions synthesizeVoice
//
// # Synthesize Voice
//
// Converts text to speech for voice practice. Only premium accounts may use this endpoint, 10 times per month.
//
// Produces:
// - audio/mpeg
//
// responses:
//
//	200: voiceResponse
//	400: badRequestResponse
//	401: unauthorizedResponse
//	403: forbiddenResponse
//	408: timeoutResponse
//	429: rateLimitResponse
//	500: internalServerErrorResponse
//	503: serviceUnavailableResponse
func (s Server) SynthesizeVoice(ctx echo.Context) error {
	claims, err := currentUser(ctx)
	if err != nil {
		return model.AppError(ctx, err)
	}

	var req httpmodel.VoiceSynthesisRequest
	if err = ctx.Bind(&req); err != nil {
		return model.AppError(ctx, badRequestBody(err))
	}

	result, err := s.Actions.SynthesizeVoice(ctx.Request().Context(), claims.Subject, req)
	if err != nil {
		return model.AppError(ctx, err)
	}

	ctx.Response().Header().Set(ProcessingTimeHeader, strconv.FormatInt(result.ProcessingTimeMS, 10))
	return ctx.Blob(http.StatusOK, result.ContentType, result.Audio)
}
