package throttle

import (
	"strconv"

	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/elucidare/tonewise/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// KeyFunc returns the key that requests are counted under. Requests for which it returns false aren't counted.
type KeyFunc func(ctx echo.Context) (string, bool)

// Middleware rejects requests that exceed the limiter's rate.
func Middleware(limiter Limiter, perMinute int, key KeyFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			k, ok := key(ctx)
			if !ok {
				return next(ctx)
			}

			allowed, err := limiter.Allow(ctx.Request().Context(), k)
			if err != nil {
				log.WithFields(logrus.Fields{"key": k}).Warnf("request rate check failed, allowing the request: %s", err)
				return next(ctx)
			}
			if !allowed {
				ctx.Response().Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				return model.AppError(ctx, apperr.New(
					apperr.KindRateLimit,
					"too many requests",
					"You are sending requests too quickly. Please wait a minute and try again.",
				))
			}

			ctx.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(perMinute))
			return next(ctx)
		}
	}
}
