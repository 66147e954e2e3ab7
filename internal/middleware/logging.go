package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Logging writes a concise structured line for each HTTP request.
func Logging(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			fields := logrus.Fields{
				"request_id": RequestIDFromContext(c),
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"status":     c.Response().Status,
				"latency":    latency.String(),
			}
			if client, ok := c.Get(ContextKeyClientID).(string); ok && client != "" {
				fields["client_id"] = client
			}
			entry := log.WithFields(fields)
			if c.Response().Status >= 500 {
				entry.Warn("request failed")
			} else {
				entry.Info("request handled")
			}

			return err
		}
	}
}
