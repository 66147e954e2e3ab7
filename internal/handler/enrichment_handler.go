package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-generator/enricher/internal/dto"
	"github.com/octobees/leads-generator/enricher/internal/entity"
	"github.com/octobees/leads-generator/enricher/internal/extract"
	"github.com/octobees/leads-generator/enricher/internal/repository"
	"github.com/octobees/leads-generator/enricher/internal/service"
)

// EnrichmentService is the subset of service.EnrichmentService used by the handler.
type EnrichmentService interface {
	Enrich(ctx context.Context, req dto.EnrichRequest) (service.EnrichmentResult, error)
	EnrichBulk(ctx context.Context, req dto.BulkEnrichRequest) ([]service.EnrichmentResult, error)
	Keywords(ctx context.Context, rawURL string) ([]extract.Keyword, error)
	History(ctx context.Context, filter dto.HistoryFilter) ([]entity.Enrichment, error)
	GetEnrichment(ctx context.Context, id uuid.UUID) (*entity.Enrichment, error)
	DeleteEnrichment(ctx context.Context, id uuid.UUID) error
}

// EnrichmentHandler exposes the enrichment endpoints.
type EnrichmentHandler struct {
	service EnrichmentService
}

// NewEnrichmentHandler constructs an EnrichmentHandler.
func NewEnrichmentHandler(service EnrichmentService) *EnrichmentHandler {
	return &EnrichmentHandler{service: service}
}

// Enrich handles POST /enrich.
func (h *EnrichmentHandler) Enrich(c echo.Context) error {
	var req dto.EnrichRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Enrich(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err, "failed to enrich company")
	}

	data := map[string]any{
		"record": result.Record,
		"score":  result.Score,
	}
	if result.ID != nil {
		data["id"] = result.ID.String()
	}
	return Success(c, http.StatusOK, "company enriched", data)
}

// EnrichBulk handles POST /enrich/bulk.
func (h *EnrichmentHandler) EnrichBulk(c echo.Context) error {
	var req dto.BulkEnrichRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	results, err := h.service.EnrichBulk(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err, "failed to enrich companies")
	}
	return Success(c, http.StatusOK, "companies enriched", map[string]any{"results": results})
}

// Keywords handles POST /keywords.
func (h *EnrichmentHandler) Keywords(c echo.Context) error {
	var req dto.KeywordsRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	keywords, err := h.service.Keywords(c.Request().Context(), req.URL)
	if err != nil {
		var validationErr service.ValidationError
		if errors.As(err, &validationErr) {
			return Error(c, http.StatusBadRequest, validationErr.Message)
		}
		return Error(c, http.StatusBadGateway, "failed to fetch page")
	}
	return Success(c, http.StatusOK, "", map[string]any{"url": strings.TrimSpace(req.URL), "keywords": keywords})
}

// History handles GET /enrichments.
func (h *EnrichmentHandler) History(c echo.Context) error {
	filter := dto.HistoryFilter{
		Q:       strings.TrimSpace(c.QueryParam("q")),
		Page:    parseIntDefault(c.QueryParam("page"), 1),
		PerPage: parseIntDefault(c.QueryParam("per_page"), 20),
	}

	items, err := h.service.History(c.Request().Context(), filter)
	if err != nil {
		return h.fail(c, err, "failed to list enrichments")
	}
	return Success(c, http.StatusOK, "", map[string]any{"items": items, "page": filter.Page, "per_page": filter.PerPage})
}

// Get handles GET /enrichments/:id.
func (h *EnrichmentHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid enrichment id")
	}

	item, err := h.service.GetEnrichment(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err, "failed to load enrichment")
	}
	return Success(c, http.StatusOK, "", item)
}

// Delete handles DELETE /enrichments/:id.
func (h *EnrichmentHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid enrichment id")
	}

	if err := h.service.DeleteEnrichment(c.Request().Context(), id); err != nil {
		return h.fail(c, err, "failed to delete enrichment")
	}
	return Success(c, http.StatusOK, "enrichment deleted", nil)
}

func (h *EnrichmentHandler) fail(c echo.Context, err error, message string) error {
	var validationErr service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return Error(c, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, service.ErrHistoryUnavailable):
		return Error(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, repository.ErrEnrichmentNotFound):
		return Error(c, http.StatusNotFound, "enrichment not found")
	default:
		return Error(c, http.StatusInternalServerError, message)
	}
}

func parseIntDefault(raw string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
