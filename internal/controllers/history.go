package controllers

import (
	"net/http"

	"github.com/cyverse-de/echo-middleware/v2/params"
	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/elucidare/tonewise/internal/db"
	"github.com/elucidare/tonewise/internal/model"
	"github.com/elucidare/tonewise/internal/query"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const historyUnavailable = "We could not load your history right now. Please try again in a few minutes."

// extractResultID extracts and validates the result ID path parameter.
func extractResultID(ctx echo.Context) (string, error) {
	id, err := params.ValidatedPathParam(ctx, "id", "uuid_rfc4122")
	if err != nil {
		return "", apperr.Validation("the result ID must be a valid UUID", "The result ID is not valid.")
	}
	return id, nil
}

// listOptions extracts the paging parameters of a listing.
func listOptions(ctx echo.Context) (db.ListOptions, error) {
	page, err := query.ValidatePage(ctx)
	if err != nil {
		return db.ListOptions{}, err
	}
	return db.ListOptions{Offset: page.Offset, Limit: page.Limit, SortOrder: page.SortOrder}, nil
}

// ListToneAnalyses is the handler for the GET /v1/tone-analyses endpoint.
//
// swagger:route GET /v1/tone-analyses history listToneAnalyses
//
// # List Tone Analyses
//
// Lists the caller's stored tone analyses, newest first by default.
//
// responses:
//
//	200: toneAnalysisListing
//	400: badRequestResponse
//	401: unauthorizedResponse
//	500: internalServerErrorResponse
func (s Server) ListToneAnalyses(ctx echo.Context) error {
	claims, err := currentUser(ctx)
	if err != nil {
		return model.AppError(ctx, err)
	}

	log := log.WithFields(logrus.Fields{"context": "listing tone analyses", "user": claims.Subject})

	opts, err := listOptions(ctx)
	if err != nil {
		return model.AppError(ctx, err)
	}

	analyses, err := s.History.ListToneAnalyses(ctx.Request().Context(), claims.Subject, opts)
	if err != nil {
		log.Error(err)
		return model.AppError(ctx, apperr.Wrap(err, apperr.KindServer, "unable to list tone analyses", historyUnavailable))
	}

	return model.Success(ctx, analyses, http.StatusOK)
}

// GetToneAnalysis is the handler for the GET /v1/tone-analyses/{id} endpoint.
//
// swagger:route GET /v1/tone-analyses/{id} history getToneAnalysis
//
// # Get Tone Analysis
//
// Returns one of the caller's stored tone analyses.
//
// responses:
//
//	200: toneAnalysis
//	400: badRequestResponse
//	401: unauthorizedResponse
//	404: notFoundResponse
//	500: internalServerErrorResponse
func (s Server) GetToneAnalysis(ctx echo.Context) error {
	claims, err := currentUser(ctx)
	if err != nil {
		return model.AppError(ctx, err)
	}

	id, err := extractResultID(ctx)
	if err != nil {
		return model.AppError(ctx, err)
	}

	analysis, err := s.History.GetToneAnalysis(ctx.Request().Context(), claims.Subject, id)
	if err != nil {
		log.WithFields(logrus.Fields{"user": claims.Subject, "id": id}).Error(err)
		return model.AppError(ctx, apperr.Wrap(err, apperr.KindServer, "unable to look up the tone analysis", historyUnavailable))
	}
	if analysis == nil {
		return model.Error(ctx, "tone analysis "+id+" not found", http.StatusNotFound)
	}

	return model.Success(ctx, analysis, http.StatusOK)
}

// ListScriptGenerations is the handler for the GET /v1/scripts endpoint.
//
// swagger:route GET /v1/scripts history listScriptGenerations
//
// # List Script Generations
//
// Lists the caller's stored script generations, newest first by default.
//
// responses:
//
//	200: scriptGenerationListing
//	400: badRequestResponse
//	401: unauthorizedResponse
//	500: internalServerErrorResponse
func (s Server) ListScriptGenerations(ctx echo.Context) error {
	claims, err := currentUser(ctx)
	if err != nil {
		return model.AppError(ctx, err)
	}

	log := log.WithFields(logrus.Fields{"context": "listing script generations", "user": claims.Subject})

	opts, err := listOptions(ctx)
	if err != nil {
		return model.AppError(ctx, err)
	}

	generations, err := s.History.ListScriptGenerations(ctx.Request().Context(), claims.Subject, opts)
	if err != nil {
		log.Error(err)
		return model.AppError(ctx, apperr.Wrap(err, apperr.KindServer, "unable to list script generations", historyUnavailable))
	}

	return model.Success(ctx, generations, http.StatusOK)
}

// GetScriptGeneration is the handler for the GET /v1/scripts/{id} endpoint.
//
// swagger:route GET /v1/scripts/{id} history getScriptGeneration
//
// # Get Script Generation
//
// Returns one of the caller's stored script generations.
//
// responses:
//
//	200: scriptGeneration
//	400: badRequestResponse
//	401: unauthorizedResponse
//	404: notFoundResponse
//	500: internalServerErrorResponse
func (s Server) GetScriptGeneration(ctx echo.Context) error {
	claims, err := currentUser(ctx)
	if err != nil {
		return model.AppError(ctx, err)
	}

	id, err := extractResultID(ctx)
	if err != nil {
		return model.AppError(ctx, err)
	}

	generation, err := s.History.GetScriptGeneration(ctx.Request().Context(), claims.Subject, id)
	if err != nil {
		log.WithFields(logrus.Fields{"user": claims.Subject, "id": id}).Error(err)
		return model.AppError(ctx, apperr.Wrap(err, apperr.KindServer, "unable to look up the script generation", historyUnavailable))
	}
	if generation == nil {
		return model.Error(ctx, "script generation "+id+" not found", http.StatusNotFound)
	}

	return model.Success(ctx, generation, http.StatusOK)
}
