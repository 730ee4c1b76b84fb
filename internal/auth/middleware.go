package auth

import (
	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/elucidare/tonewise/internal/model"
	"github.com/elucidare/tonewise/logging"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "auth"})

const signInMessage = "Please sign in again to continue."

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(tokenString string) (*Claims, error)
}

func unauthorized(ctx echo.Context, internal string) error {
	return model.AppError(ctx, apperr.New(apperr.KindAuth, internal, signInMessage))
}

// Middleware rejects requests that don't carry a valid bearer token and stores the verified claims in the request
// context.
func Middleware(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			log := log.WithFields(logrus.Fields{"path": ctx.Path()})

			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				log.Debug("missing authorization header")
				return unauthorized(ctx, "missing authorization header")
			}

			token, ok := ExtractBearerToken(header)
			if !ok {
				log.Debug("malformed authorization header")
				return unauthorized(ctx, "invalid authorization header")
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				log.Infof("token rejected: %s", err)
				return unauthorized(ctx, "invalid token")
			}

			req := ctx.Request()
			ctx.SetRequest(req.WithContext(WithClaims(req.Context(), claims)))
			return next(ctx)
		}
	}
}

// UserID returns the subject of the verified token for the current request.
func UserID(ctx echo.Context) (string, bool) {
	claims, ok := ClaimsFromContext(ctx.Request().Context())
	if !ok || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
