package middleware

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"mobilebill/internal/core/apperror"
)

// RateLimit limits requests per client IP. rate uses the limiter format, e.g. "10-M".
func RateLimit(rate string) (gin.HandlerFunc, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", rate, err)
	}
	instance := limiter.New(memory.NewStore(), r)

	return func(c *gin.Context) {
		ctx, err := instance.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			_ = c.Error(apperror.NewInternal(fmt.Errorf("rate limiter: %w", err)))
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(ctx.Reset, 10))

		if ctx.Reached {
			_ = c.Error(apperror.NewRateLimited())
			c.Abort()
			return
		}
		c.Next()
	}, nil
}
