package controllers

import (
	"net/http"

	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/elucidare/tonewise/internal/model"
	"github.com/elucidare/tonewise/internal/query"
	"github.com/elucidare/tonewise/utils"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// GetUsage is the handler for the GET /v1/usage endpoint.
//
// swagger:route GET /v1/usage usage getUsage
//
// # Get Usage
//
// Summarizes the caller's usage of each feature on a day, along with the limits of the caller's plan. The current
// day is summarized if no date is given.
//
// responses:
//
//	200: usageSummaryResponse
//	400: badRequestResponse
//	401: unauthorizedResponse
//	500: internalServerErrorResponse
func (s Server) GetUsage(ctx echo.Context) error {
	claims, err := currentUser(ctx)
	if err != nil {
		return model.AppError(ctx, err)
	}

	log := log.WithFields(logrus.Fields{"context": "getting usage", "user": claims.Subject})

	day, err := query.ValidateDateQueryParam(ctx, "date", utils.StartOfDay(s.now()))
	if err != nil {
		return model.AppError(ctx, err)
	}

	summary, err := s.Usage.Summarize(ctx.Request().Context(), claims.Subject, day)
	if err != nil {
		log.Error(err)
		return model.AppError(ctx, apperr.Wrap(err, apperr.KindServer, "unable to summarize usage",
			"We could not load your usage right now. Please try again in a few minutes."))
	}

	return model.Success(ctx, summary, http.StatusOK)
}
