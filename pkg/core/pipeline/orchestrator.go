// Package pipeline wires the four digest stages together:
//
//	HTML -> extract -> review -> compose -> gate
//
// Digest is the pure core: no I/O, no clock, no randomness, so the same
// document bytes and metadata always produce byte-identical Markdown.
// Orchestrator wraps Digest with the service collaborators (fetch,
// narrative enrichment, persistence) for the API and CLI entrypoints.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"filing_digest/pkg/core/compose"
	"filing_digest/pkg/core/gate"
	"filing_digest/pkg/core/ixbrl"
	"filing_digest/pkg/core/store"
	"filing_digest/pkg/core/validate"
	"filing_digest/pkg/models"
)

// FilingFetcher retrieves the raw iXBRL HTML for a given SEC filing.
// Implementations may fetch from:
// - Live SEC EDGAR archives
// - A local file cache
type FilingFetcher interface {
	FetchFilingHTML(ctx context.Context, cik string, accessionNumber string) (string, error)
}

// NarrativeEnricher populates risks and outlook on a raw summary from
// the filing text, before review runs. Enrichment failures degrade to
// absent sections, never to a failed run.
type NarrativeEnricher interface {
	Enrich(ctx context.Context, summary *models.FilingSummary, filingText string) error
}

// DigestRepository persists accepted digests.
type DigestRepository interface {
	SaveDigest(ctx context.Context, record *store.DigestRecord) error
}

// Result is the product of one successful digest run.
type Result struct {
	Summary   *models.FilingSummary
	Meta      *models.ReviewMeta
	Markdown  string
	Scorecard models.Scorecard
}

// Digest executes the pure four-stage pipeline on filing HTML. A gate
// rejection is terminal: the error carries the scorecard and there is no
// retry.
func Digest(htmlContent string, meta models.FilingMeta) (*Result, error) {
	summary, err := ixbrl.NewExtractor().Extract(htmlContent, meta)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	return finishDigest(summary)
}

// finishDigest runs review, composition and the gate on an extracted
// (and possibly enriched) summary.
func finishDigest(summary *models.FilingSummary) (*Result, error) {
	reviewMeta := validate.Review(summary)
	draft := compose.Compose(summary, reviewMeta)

	accepted, scorecard, err := gate.Evaluate(draft)
	if err != nil {
		return nil, err
	}
	return &Result{
		Summary:   summary,
		Meta:      reviewMeta,
		Markdown:  accepted,
		Scorecard: scorecard,
	}, nil
}

// Request identifies one filing run for the orchestrator.
type Request struct {
	Meta      models.FilingMeta
	Accession string
}

// Orchestrator manages the end-to-end service flow around the pure
// pipeline: fetch -> extract -> enrich -> review -> compose -> gate ->
// persist.
type Orchestrator struct {
	fetcher   FilingFetcher
	extractor *ixbrl.Extractor
	enricher  NarrativeEnricher
	repo      DigestRepository
}

// NewOrchestrator creates an orchestrator. Enrichment and persistence
// are optional and injected via the setters.
func NewOrchestrator(fetcher FilingFetcher) *Orchestrator {
	return &Orchestrator{
		fetcher:   fetcher,
		extractor: ixbrl.NewExtractor(),
	}
}

// SetEnricher enables narrative enrichment of risks and outlook.
func (o *Orchestrator) SetEnricher(enricher NarrativeEnricher) {
	o.enricher = enricher
}

// SetRepository enables persistence of accepted digests.
func (o *Orchestrator) SetRepository(repo DigestRepository) {
	o.repo = repo
}

// RunForFiling executes the full flow for a single filing.
func (o *Orchestrator) RunForFiling(ctx context.Context, req Request) (*Result, error) {
	fmt.Printf("Starting digest pipeline for %s %s (CIK: %s)...\n", req.Meta.Symbol, req.Meta.FilingType, req.Meta.CIK)
	start := time.Now()

	htmlContent, err := o.fetcher.FetchFilingHTML(ctx, req.Meta.CIK, req.Accession)
	if err != nil {
		return nil, fmt.Errorf("filing fetch failed: %w", err)
	}

	summary, err := o.extractor.Extract(htmlContent, req.Meta)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	if o.enricher != nil {
		if err := o.enricher.Enrich(ctx, summary, htmlContent); err != nil {
			fmt.Printf("⚠️ WARNING: narrative enrichment failed: %v. Continuing without risks/outlook.\n", err)
		}
	}

	result, err := finishDigest(summary)
	if err != nil {
		return nil, err
	}
	fmt.Printf("✅ Digest accepted with score %d/35\n", result.Scorecard.Total)

	if o.repo != nil {
		record := &store.DigestRecord{
			CIK:        req.Meta.CIK,
			Accession:  req.Accession,
			Symbol:     req.Meta.Symbol,
			FilingType: req.Meta.FilingType,
			Summary:    result.Summary,
			Markdown:   result.Markdown,
			Scorecard:  result.Scorecard,
		}
		if err := o.repo.SaveDigest(ctx, record); err != nil {
			return nil, fmt.Errorf("storage failed: %w", err)
		}
	}

	fmt.Printf("Pipeline completed for %s in %v\n", req.Meta.Symbol, time.Since(start))
	return result, nil
}
