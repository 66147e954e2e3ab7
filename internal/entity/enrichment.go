package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/octobees/leads-generator/enricher/internal/enrich"
)

// Enrichment is a stored enrichment run.
type Enrichment struct {
	ID        uuid.UUID      `json:"id"`
	Input     string         `json:"input"`
	Record    enrich.Record  `json:"record"`
	Score     int            `json:"score"`
	Breakdown map[string]int `json:"breakdown"`
	CreatedAt time.Time      `json:"created_at"`
}
