package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/octobees/leads-generator/enricher/internal/dto"
	"github.com/octobees/leads-generator/enricher/internal/enrich"
	"github.com/octobees/leads-generator/enricher/internal/entity"
	"github.com/octobees/leads-generator/enricher/internal/extract"
	"github.com/octobees/leads-generator/enricher/internal/fetch"
	"github.com/octobees/leads-generator/enricher/internal/repository"
	"github.com/octobees/leads-generator/enricher/internal/resolver"
	"github.com/octobees/leads-generator/enricher/internal/service/scoring"
)

// ErrHistoryUnavailable is returned by history operations when no database is configured.
var ErrHistoryUnavailable = errors.New("enrichment history requires a database")

// ValidationError indicates that the caller supplied an unusable request.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return e.Message
}

// PageFetcher retrieves a page over HTTP.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string, opts fetch.Options) (*fetch.Result, error)
}

// EnrichmentResult is a cleaned record with its lead score.
type EnrichmentResult struct {
	ID     *uuid.UUID          `json:"id,omitempty"`
	Input  string              `json:"input"`
	Record enrich.Record       `json:"record"`
	Score  scoring.ScoreResult `json:"score"`
}

// EnrichmentService coordinates enrichment, cleaning, scoring and optional persistence.
type EnrichmentService struct {
	enricher enrich.RecordEnricher
	cleaner  *RecordCleaner
	pages    PageFetcher
	repo     repository.EnrichmentsRepository
	bulk     enrich.BulkOptions
	maxBulk  int
	log      logrus.FieldLogger
}

// EnrichmentOption configures optional collaborators.
type EnrichmentOption func(*EnrichmentService)

// WithRepository stores every enrichment and enables history reads.
func WithRepository(repo repository.EnrichmentsRepository) EnrichmentOption {
	return func(s *EnrichmentService) {
		s.repo = repo
	}
}

// WithBulkOptions tunes the bulk worker pool and the maximum batch size.
func WithBulkOptions(opts enrich.BulkOptions, maxItems int) EnrichmentOption {
	return func(s *EnrichmentService) {
		s.bulk = opts
		if maxItems > 0 {
			s.maxBulk = maxItems
		}
	}
}

// NewEnrichmentService creates a new instance of EnrichmentService.
func NewEnrichmentService(enricher enrich.RecordEnricher, cleaner *RecordCleaner, pages PageFetcher, log logrus.FieldLogger, opts ...EnrichmentOption) *EnrichmentService {
	if cleaner == nil {
		cleaner = NewRecordCleaner("")
	}
	s := &EnrichmentService{
		enricher: enricher,
		cleaner:  cleaner,
		pages:    pages,
		maxBulk:  50,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HistoryEnabled reports whether enrichments are persisted.
func (s *EnrichmentService) HistoryEnabled() bool {
	return s.repo != nil
}

// Enrich runs one enrichment. Only invalid input produces an error; storage failures are
// logged and the result is still returned.
func (s *EnrichmentService) Enrich(ctx context.Context, req dto.EnrichRequest) (EnrichmentResult, error) {
	company := strings.TrimSpace(req.Company)
	if company == "" {
		return EnrichmentResult{}, ValidationError{Message: "company is required"}
	}
	rec := s.enrichOne(ctx, enrich.Request{Company: company, FastMode: req.FastMode, FieldsToExtract: req.FieldsToExtract})
	return s.finish(ctx, company, rec), nil
}

// EnrichBulk enriches a batch through the bulk worker pool, preserving input order.
func (s *EnrichmentService) EnrichBulk(ctx context.Context, req dto.BulkEnrichRequest) ([]EnrichmentResult, error) {
	var reqs []enrich.Request
	for _, company := range req.Companies {
		company = strings.TrimSpace(company)
		if company == "" {
			continue
		}
		reqs = append(reqs, enrich.Request{Company: company, FastMode: req.FastMode, FieldsToExtract: req.FieldsToExtract})
	}
	if len(reqs) == 0 {
		return nil, ValidationError{Message: "companies must contain at least one entry"}
	}
	if len(reqs) > s.maxBulk {
		return nil, ValidationError{Message: fmt.Sprintf("at most %d companies per request", s.maxBulk)}
	}

	start := time.Now()
	outputs := enrich.EnrichAll(ctx, reqs, cleaningEnricher{s}, s.bulk)
	results := make([]EnrichmentResult, 0, len(outputs))
	for _, out := range outputs {
		results = append(results, s.finish(ctx, out.Input, out.Record))
	}
	s.log.WithFields(logrus.Fields{"items": len(results), "latency": time.Since(start).String()}).Info("bulk enrichment finished")
	return results, nil
}

// Keywords fetches a page and returns its top keywords.
func (s *EnrichmentService) Keywords(ctx context.Context, rawURL string) ([]extract.Keyword, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !resolver.LooksLikeURL(rawURL) {
		return nil, ValidationError{Message: "url must be a website address"}
	}
	if s.pages == nil {
		return nil, errors.New("page fetcher not configured")
	}
	res, err := s.pages.Fetch(ctx, resolver.ASCIIHost(resolver.NormalizeURL(rawURL)), fetch.Options{Retries: 2, Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	doc, err := extract.Parse(res.HTML)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return extract.Keywords(doc), nil
}

// History returns stored enrichments respecting pagination defaults.
func (s *EnrichmentService) History(ctx context.Context, filter dto.HistoryFilter) ([]entity.Enrichment, error) {
	if s.repo == nil {
		return nil, ErrHistoryUnavailable
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}
	return s.repo.List(ctx, filter)
}

// GetEnrichment returns one stored enrichment.
func (s *EnrichmentService) GetEnrichment(ctx context.Context, id uuid.UUID) (*entity.Enrichment, error) {
	if s.repo == nil {
		return nil, ErrHistoryUnavailable
	}
	return s.repo.Get(ctx, id)
}

// DeleteEnrichment removes one stored enrichment.
func (s *EnrichmentService) DeleteEnrichment(ctx context.Context, id uuid.UUID) error {
	if s.repo == nil {
		return ErrHistoryUnavailable
	}
	return s.repo.Delete(ctx, id)
}

func (s *EnrichmentService) enrichOne(ctx context.Context, req enrich.Request) enrich.Record {
	return s.cleaner.Clean(ctx, s.enricher.Enrich(ctx, req))
}

func (s *EnrichmentService) finish(ctx context.Context, input string, rec enrich.Record) EnrichmentResult {
	result := EnrichmentResult{Input: input, Record: rec, Score: scoring.Score(rec)}
	if s.repo == nil {
		return result
	}
	stored := &entity.Enrichment{Input: input, Record: rec, Score: result.Score.Total, Breakdown: result.Score.Breakdown}
	if err := s.repo.Save(ctx, stored); err != nil {
		s.log.WithError(err).WithField("company", input).Warn("store enrichment failed")
		return result
	}
	result.ID = &stored.ID
	return result
}

// cleaningEnricher lets the bulk pool run the cleaner inside each item's deadline.
type cleaningEnricher struct {
	s *EnrichmentService
}

func (c cleaningEnricher) Enrich(ctx context.Context, req enrich.Request) enrich.Record {
	return c.s.enrichOne(ctx, req)
}
