package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/leads-generator/enricher/internal/dto"
	"github.com/octobees/leads-generator/enricher/internal/entity"
)

// ErrEnrichmentNotFound indicates there is no stored enrichment with the given id.
var ErrEnrichmentNotFound = errors.New("enrichment not found")

// EnrichmentsRepository persists enrichment history.
type EnrichmentsRepository interface {
	Save(ctx context.Context, enrichment *entity.Enrichment) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Enrichment, error)
	List(ctx context.Context, filter dto.HistoryFilter) ([]entity.Enrichment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PGXEnrichmentsRepository implements EnrichmentsRepository using pgx.
type PGXEnrichmentsRepository struct {
	pool pgxPool
}

// NewPGXEnrichmentsRepository wires a pgx backed repository.
func NewPGXEnrichmentsRepository(pool *pgxpool.Pool) *PGXEnrichmentsRepository {
	return &PGXEnrichmentsRepository{pool: pool}
}

const enrichmentColumns = `id, input, record, score, breakdown, created_at`

// Save inserts the enrichment and fills in its id and creation time.
func (r *PGXEnrichmentsRepository) Save(ctx context.Context, enrichment *entity.Enrichment) error {
	if enrichment == nil {
		return fmt.Errorf("enrichment payload is nil")
	}
	record, err := json.Marshal(enrichment.Record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	breakdown, err := json.Marshal(enrichment.Breakdown)
	if err != nil {
		return fmt.Errorf("encode breakdown: %w", err)
	}
	if enrichment.ID == uuid.Nil {
		enrichment.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO enrichments (id, input, record, score, breakdown)
        VALUES ($1, $2, $3::jsonb, $4, $5::jsonb)
        RETURNING created_at
    `, enrichment.ID, enrichment.Input, string(record), enrichment.Score, string(breakdown))
	if err := row.Scan(&enrichment.CreatedAt); err != nil {
		return fmt.Errorf("insert enrichment: %w", err)
	}
	return nil
}

// Get fetches one enrichment by id.
func (r *PGXEnrichmentsRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Enrichment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+enrichmentColumns+` FROM enrichments WHERE id = $1`, id)
	enrichment, err := scanEnrichment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEnrichmentNotFound
		}
		return nil, fmt.Errorf("query enrichment: %w", err)
	}
	return enrichment, nil
}

// List returns enrichments newest first, optionally filtered by input substring.
func (r *PGXEnrichmentsRepository) List(ctx context.Context, filter dto.HistoryFilter) ([]entity.Enrichment, error) {
	query := `SELECT ` + enrichmentColumns + ` FROM enrichments`
	var args []any
	if filter.Q != "" {
		query += ` WHERE input ILIKE $1`
		args = append(args, fmt.Sprintf("%%%s%%", filter.Q))
	}
	query += ` ORDER BY created_at DESC`
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.PerPage, (filter.Page-1)*filter.PerPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list enrichments: %w", err)
	}
	defer rows.Close()

	var out []entity.Enrichment
	for rows.Next() {
		enrichment, err := scanEnrichment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enrichment row: %w", err)
		}
		out = append(out, *enrichment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrichments: %w", err)
	}
	return out, nil
}

// Delete removes an enrichment by id.
func (r *PGXEnrichmentsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM enrichments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete enrichment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrEnrichmentNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEnrichment(row rowScanner) (*entity.Enrichment, error) {
	var (
		enrichment entity.Enrichment
		record     []byte
		breakdown  []byte
	)
	if err := row.Scan(&enrichment.ID, &enrichment.Input, &record, &enrichment.Score, &breakdown, &enrichment.CreatedAt); err != nil {
		return nil, err
	}
	if len(record) > 0 {
		if err := json.Unmarshal(record, &enrichment.Record); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &enrichment.Breakdown); err != nil {
			return nil, fmt.Errorf("decode breakdown: %w", err)
		}
	}
	return &enrichment, nil
}
