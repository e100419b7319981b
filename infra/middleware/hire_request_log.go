package middleware

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RequestLogger writes one structured access log line per request.
func RequestLogger() fiber.Handler {
	log := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("component", "http").
		Logger()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		requestID, _ := c.Locals("request_id").(string)
		event := log.Info()
		status := c.Response().StatusCode()
		if err != nil || status >= 500 {
			event = log.Error().Err(err)
		} else if status >= 400 {
			event = log.Warn()
		}

		event.
			Str("request_id", requestID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Str("ip", c.IP()).
			Dur("duration", time.Since(start)).
			Msg("request")

		return err
	}
}
