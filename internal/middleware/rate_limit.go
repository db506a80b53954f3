package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type RateLimiter interface {
	Allow(ctx context.Context, scope string) (bool, int64, error)
}

// クライアントIPごとに回数を制限する。redisが落ちていたら通す。
func RateLimit(limiter RateLimiter, scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if limiter == nil {
			return next
		}
		return func(c echo.Context) error {
			ok, _, err := limiter.Allow(c.Request().Context(), scope+":"+c.RealIP())
			if err != nil {
				zap.L().Warn("rate limiter unavailable", zap.String("scope", scope), zap.Error(err))
				return next(c)
			}
			if !ok {
				return c.JSON(http.StatusTooManyRequests, errorJSON("Too many requests"))
			}
			return next(c)
		}
	}
}
