package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireScope enforces that the authenticated token grants scope.
func RequireScope(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scopes, ok := c.Get(ContextKeyScopes).([]string)
			if !ok || len(scopes) == 0 {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "missing scopes"})
			}
			for _, s := range scopes {
				if s == scope {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
		}
	}
}
