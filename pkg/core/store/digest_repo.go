package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"filing_digest/pkg/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DigestRecord is one persisted digest run for a filing.
type DigestRecord struct {
	ID         string                `json:"id"`
	CIK        string                `json:"cik"`
	Accession  string                `json:"accession"`
	Symbol     string                `json:"symbol"`
	FilingType string                `json:"filing_type"`
	Summary    *models.FilingSummary `json:"summary"`
	Markdown   string                `json:"markdown"`
	Scorecard  models.Scorecard      `json:"scorecard"`
}

// DigestRepo handles the storage of accepted digests.
type DigestRepo struct{}

// NewDigestRepo creates a new repository instance.
func NewDigestRepo() *DigestRepo {
	return &DigestRepo{}
}

// Schema assumption (managed outside this service):
//
//	CREATE TABLE IF NOT EXISTS filing_digests (
//	  id UUID PRIMARY KEY,
//	  cik TEXT NOT NULL,
//	  accession TEXT NOT NULL,
//	  symbol TEXT,
//	  filing_type TEXT,
//	  summary_json JSONB,
//	  markdown TEXT,
//	  scorecard_json JSONB,
//	  updated_at TIMESTAMPTZ,
//	  UNIQUE (cik, accession)
//	);

// SaveDigest persists one digest, upserting on (cik, accession) so a
// rerun of the same filing replaces the stored markdown.
func (r *DigestRepo) SaveDigest(ctx context.Context, record *DigestRecord) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	summaryJSON, err := json.Marshal(record.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	scorecardJSON, err := json.Marshal(record.Scorecard)
	if err != nil {
		return fmt.Errorf("failed to marshal scorecard: %w", err)
	}

	query := `
		INSERT INTO filing_digests (id, cik, accession, symbol, filing_type, summary_json, markdown, scorecard_json, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (cik, accession)
		DO UPDATE SET
			symbol = EXCLUDED.symbol,
			filing_type = EXCLUDED.filing_type,
			summary_json = EXCLUDED.summary_json,
			markdown = EXCLUDED.markdown,
			scorecard_json = EXCLUDED.scorecard_json,
			updated_at = EXCLUDED.updated_at;
	`

	_, err = pool.Exec(ctx, query,
		record.ID, record.CIK, record.Accession, record.Symbol, record.FilingType,
		summaryJSON, record.Markdown, scorecardJSON, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save digest: %w", err)
	}
	return nil
}

// GetDigest retrieves the stored digest for one filing.
func (r *DigestRepo) GetDigest(ctx context.Context, cik, accession string) (*DigestRecord, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT id, symbol, filing_type, summary_json, markdown, scorecard_json
		FROM filing_digests WHERE cik = $1 AND accession = $2
	`

	record := &DigestRecord{CIK: cik, Accession: accession}
	var summaryJSON, scorecardJSON []byte
	err := pool.QueryRow(ctx, query, cik, accession).Scan(
		&record.ID, &record.Symbol, &record.FilingType, &summaryJSON, &record.Markdown, &scorecardJSON)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no digest found for %s/%s", cik, accession)
		}
		return nil, fmt.Errorf("failed to load digest: %w", err)
	}

	if err := json.Unmarshal(summaryJSON, &record.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	if err := json.Unmarshal(scorecardJSON, &record.Scorecard); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scorecard: %w", err)
	}
	return record, nil
}
