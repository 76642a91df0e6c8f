package narrative

import (
	"context"
	"fmt"

	"filing_digest/pkg/core/utils"
	"filing_digest/pkg/models"
)

// System prompt for risk extraction
const riskSystemPrompt = `You are an equity research analyst reviewing an SEC filing.
Identify the most important risk factors a current investor should know.

You must strictly adhere to the following JSON schema for your output:
{
  "risks": ["string (one concise risk statement)"],
  "citations": ["string (section or note the risk comes from)"]
}

Rules:
1. Only report risks explicitly discussed in the text.
2. At most five risks, most material first.
3. If no risks are discussed, return {"risks": []}.
`

// System prompt for outlook extraction
const outlookSystemPrompt = `You are an equity research analyst reviewing an SEC filing.
Summarize management's forward-looking statements.

You must strictly adhere to the following JSON schema for your output:
{
  "guidance_summary": "string or null (quantitative guidance if stated)",
  "catalysts": ["string (upcoming events or drivers management highlights)"]
}

Rules:
1. Only report statements explicitly made in the text.
2. Set guidance_summary to null when no quantitative guidance is given.
3. If nothing forward-looking is discussed, return {"guidance_summary": null, "catalysts": []}.
`

// maxExcerptChars bounds the filing text sent to the model.
// In production, should use RAG or smart chunking.
const maxExcerptChars = 15000

type riskPayload struct {
	Risks     []string `json:"risks"`
	Citations []string `json:"citations"`
}

type outlookPayload struct {
	GuidanceSummary *string  `json:"guidance_summary"`
	Catalysts       []string `json:"catalysts"`
}

// Enricher populates the risks and outlook sections of an extracted
// summary from the filing text.
type Enricher struct {
	provider  Provider
	riskAgent *RiskAgent
}

// NewEnricher creates an enricher backed by the given provider.
func NewEnricher(provider Provider) *Enricher {
	return &Enricher{provider: provider}
}

// SetRiskAgent routes risk extraction through a dedicated agent
// instead of the shared provider.
func (e *Enricher) SetRiskAgent(agent *RiskAgent) {
	e.riskAgent = agent
}

// Enrich fills summary.Risks and summary.Outlook in place. Sections the
// model reports as absent stay nil. A failed outlook call still leaves
// previously extracted risks on the summary.
func (e *Enricher) Enrich(ctx context.Context, summary *models.FilingSummary, filingText string) error {
	if e.provider == nil && e.riskAgent == nil {
		return fmt.Errorf("no AI provider configured")
	}

	excerpt := truncateExcerpt(filingText)

	risks, err := e.extractRisks(ctx, summary.CompanyName, excerpt)
	if err != nil {
		return fmt.Errorf("risk extraction failed: %w", err)
	}
	if risks != nil {
		summary.Risks = risks
	}

	outlook, err := e.extractOutlook(ctx, summary.CompanyName, excerpt)
	if err != nil {
		return fmt.Errorf("outlook extraction failed: %w", err)
	}
	if outlook != nil {
		summary.Outlook = outlook
	}

	return nil
}

func (e *Enricher) extractRisks(ctx context.Context, company string, excerpt string) (*models.Risks, error) {
	if e.riskAgent != nil {
		return e.riskAgent.IdentifyRisks(ctx, company, excerpt)
	}

	resp, err := e.provider.Generate(ctx, riskSystemPrompt, userPrompt(company, excerpt))
	if err != nil {
		return nil, err
	}
	return parseRisks(resp)
}

func (e *Enricher) extractOutlook(ctx context.Context, company string, excerpt string) (*models.Outlook, error) {
	if e.provider == nil {
		return nil, nil
	}

	resp, err := e.provider.Generate(ctx, outlookSystemPrompt, userPrompt(company, excerpt))
	if err != nil {
		return nil, err
	}

	var payload outlookPayload
	if _, err := utils.SmartParse(utils.CleanMarkdown(resp), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse outlook response: %w", err)
	}

	if payload.GuidanceSummary == nil && len(payload.Catalysts) == 0 {
		return nil, nil
	}
	return &models.Outlook{
		GuidanceSummary: payload.GuidanceSummary,
		Catalysts:       payload.Catalysts,
	}, nil
}

// parseRisks turns a model response into a Risks section, nil when the
// model found nothing.
func parseRisks(raw string) (*models.Risks, error) {
	var payload riskPayload
	if _, err := utils.SmartParse(utils.CleanMarkdown(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse risk response: %w", err)
	}
	if len(payload.Risks) == 0 {
		return nil, nil
	}
	return &models.Risks{Items: payload.Risks, Citations: payload.Citations}, nil
}

func userPrompt(company string, excerpt string) string {
	return fmt.Sprintf("Company: %s\n\nFiling Excerpt:\n%s\n\nReturn ONLY valid JSON.", company, excerpt)
}

func truncateExcerpt(text string) string {
	if len(text) > maxExcerptChars {
		return text[:maxExcerptChars] + "... [truncated]"
	}
	return text
}
