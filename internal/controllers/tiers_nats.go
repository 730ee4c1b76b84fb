package controllers

import (
	"context"
	"errors"

	"github.com/elucidare/tonewise/internal/events"
	"github.com/elucidare/tonewise/internal/httpmodel"
	"github.com/elucidare/tonewise/internal/model"
	"github.com/elucidare/tonewise/internal/tiers"
	"github.com/sirupsen/logrus"
)

var errMissingUserID = errors.New("a user ID is required")

// SetTierNATS is the NATS handler for setting a user's subscription tier. Other subscription systems use it to keep
// the tiers in sync.
func (s Server) SetTierNATS(subject, reply string, request *events.TierRequest) {
	log := log.WithFields(logrus.Fields{"context": "set tier", "subject": subject, "user": request.UserID})

	response := &events.TierResponse{UserID: request.UserID}

	update := httpmodel.TierUpdate{Tier: request.Tier}
	update.Normalize()
	err := update.Validate()
	if err == nil && request.UserID == "" {
		err = errMissingUserID
	}
	if err == nil {
		err = s.Tiers.Set(context.Background(), request.UserID, model.Tier(update.Tier), tiers.SourceNATS)
	}

	if err != nil {
		log.Error(err)
		response.Error = err.Error()
	} else {
		response.Tier = update.Tier
	}

	if err = s.Replier.Reply(reply, response); err != nil {
		log.Error(err)
	}
}
