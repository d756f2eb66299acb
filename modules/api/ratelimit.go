package api

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

const aiRateWindow = time.Minute

// aiRateLimit limits, per client IP, the requests that reach the language
// model. A non-positive limit disables it.
func (m *APIModule) aiRateLimit() fiber.Handler {
	if m.cfg.AIRateLimit <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return limiter.New(limiter.Config{
		Max:        m.cfg.AIRateLimit,
		Expiration: aiRateWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Error:   "rate_limited",
				Message: fmt.Sprintf("Rate limit exceeded. Please retry after %s seconds.", c.GetRespHeader(fiber.HeaderRetryAfter, "60")),
			})
		},
	})
}
