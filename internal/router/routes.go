package router

import (
	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-generator/enricher/internal/auth"
	"github.com/octobees/leads-generator/enricher/internal/config"
	"github.com/octobees/leads-generator/enricher/internal/handler"
	middlewarepkg "github.com/octobees/leads-generator/enricher/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Enrichment *handler.EnrichmentHandler
	Health     handler.HealthInfo
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", handler.Health(handlers.Health))

	e.Use(middlewarepkg.RateLimiter(cfg.RateLimitEnrich, "/enrich", "/enrich/bulk"))

	e.POST("/enrich", handlers.Enrichment.Enrich)
	e.POST("/keywords", handlers.Enrichment.Keywords)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	secured.POST("/enrich/bulk", handlers.Enrichment.EnrichBulk, middlewarepkg.RequireScope(auth.ScopeBulk))

	history := secured.Group("/enrichments", middlewarepkg.RequireScope(auth.ScopeHistory))
	history.GET("", handlers.Enrichment.History)
	history.GET("/:id", handlers.Enrichment.Get)
	history.DELETE("/:id", handlers.Enrichment.Delete)
}
