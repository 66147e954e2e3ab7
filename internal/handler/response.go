package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middlewarepkg "github.com/octobees/leads-generator/enricher/internal/middleware"
)

// APIResponse describes the standard envelope returned by the API. RequestID echoes the
// X-Request-ID of the call so clients can quote it when reporting a bad enrichment.
type APIResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, APIResponse{
		Status:    "success",
		Message:   message,
		RequestID: middlewarepkg.RequestIDFromContext(c),
		Data:      data,
	})
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, APIResponse{
		Status:    "error",
		Message:   message,
		RequestID: middlewarepkg.RequestIDFromContext(c),
	})
}

// HealthInfo reports which optional enrichment features this process runs with.
type HealthInfo struct {
	History  bool `json:"history"`
	Headless bool `json:"headless"`
}

// Health handles GET /healthz.
func Health(info HealthInfo) echo.HandlerFunc {
	return func(c echo.Context) error {
		return Success(c, http.StatusOK, "enricher healthy", map[string]any{
			"status":   "ok",
			"history":  info.History,
			"headless": info.Headless,
		})
	}
}
