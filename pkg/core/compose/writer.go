// Package compose renders a reviewed FilingSummary into the Markdown
// digest. Rendering is fully deterministic: fixed section order, fixed
// phrasing, and a fixed length-normalization pass at the end. Anything
// the review stage elided simply produces no section here.
package compose

import (
	"strings"

	"filing_digest/pkg/core/validate"
	"filing_digest/pkg/models"
)

// guidanceSentence mirrors the review footnote inside the prose itself.
const guidanceSentence = "This summary is generated from structured filing data; quantitative guidance was not provided."

// Compose assembles the digest draft: executive summary first, then the
// metric and narrative sections, then length normalization.
func Compose(summary *models.FilingSummary, meta *models.ReviewMeta) string {
	if meta == nil {
		meta = &models.ReviewMeta{}
	}

	var sb strings.Builder
	sb.WriteString("## Executive Summary\n\n")
	sb.WriteString(executiveParagraph(summary, meta))
	sb.WriteString("\n")

	writeFinancialsSection(&sb, summary)
	writeLiquiditySection(&sb, summary)
	writeRisksSection(&sb, summary)
	writeOutlookSection(&sb, summary)

	return normalizeLength(sb.String())
}

// headline priority differs from the section order: earnings-per-share
// trails cash flow when picking the two lead metrics.
func headlineCandidates(fin *models.Financials) []*models.Metric {
	return []*models.Metric{
		&fin.Revenue,
		&fin.GrossMargin,
		&fin.OperatingIncome,
		&fin.NetIncome,
		&fin.FreeCashFlow,
		&fin.EPSDiluted,
	}
}

// executiveParagraph builds the lead paragraph: up to two material
// headline metrics (revenue and net income as the fallback pair), the
// liquidity position, the guidance note, then backfill until the
// paragraph carries at least three sentences or candidates run out.
func executiveParagraph(summary *models.FilingSummary, meta *models.ReviewMeta) string {
	fin := &summary.Financials

	var sentences []string
	used := make(map[string]bool)

	add := func(m *models.Metric) bool {
		if m == nil || used[m.Label] {
			return false
		}
		s := metricSentence(m)
		if s == "" {
			return false
		}
		used[m.Label] = true
		sentences = append(sentences, s)
		return true
	}

	picked := 0
	for _, m := range headlineCandidates(fin) {
		if picked >= 2 {
			break
		}
		if m.Material && add(m) {
			picked++
		}
	}
	if picked == 0 {
		add(&fin.Revenue)
		add(&fin.NetIncome)
	}

	if summary.Liquidity != nil {
		add(&summary.Liquidity.Cash)
		add(&summary.Liquidity.Debt)
	}

	for _, note := range meta.Footnotes {
		if note == validate.FootnoteNoGuidance {
			sentences = append(sentences, guidanceSentence)
			break
		}
	}

	for _, m := range []*models.Metric{&fin.OperatingIncome, &fin.EPSDiluted, &fin.FreeCashFlow} {
		if len(sentences) >= 3 {
			break
		}
		add(m)
	}

	return strings.Join(sentences, " ")
}

func writeFinancialsSection(sb *strings.Builder, summary *models.FilingSummary) {
	var lines []string
	for _, m := range summary.Financials.Ordered() {
		if b := metricBullet(m); b != "" {
			lines = append(lines, b)
		}
	}
	if len(lines) == 0 {
		return
	}
	sb.WriteString("\n## Financials\n\n")
	for _, line := range lines {
		sb.WriteString(line + "\n")
	}
}

func writeLiquiditySection(sb *strings.Builder, summary *models.FilingSummary) {
	if summary.Liquidity == nil {
		return
	}
	liq := summary.Liquidity
	metrics := []*models.Metric{&liq.Cash, &liq.Debt, &summary.Financials.FreeCashFlow, &liq.CurrentRatio}

	var lines []string
	for _, m := range metrics {
		if b := metricBullet(m); b != "" {
			lines = append(lines, b)
		}
	}
	if len(lines) == 0 {
		return
	}
	sb.WriteString("\n## Liquidity & Capital\n\n")
	for _, line := range lines {
		sb.WriteString(line + "\n")
	}
}

func writeRisksSection(sb *strings.Builder, summary *models.FilingSummary) {
	if summary.Risks == nil || len(summary.Risks.Items) == 0 {
		return
	}
	sb.WriteString("\n## Risks\n\n")
	for _, item := range summary.Risks.Items {
		sb.WriteString("- " + item + "\n")
	}
}

func writeOutlookSection(sb *strings.Builder, summary *models.FilingSummary) {
	if summary.Outlook == nil {
		return
	}
	out := summary.Outlook
	if out.GuidanceSummary == nil && len(out.Catalysts) == 0 {
		return
	}
	sb.WriteString("\n## Outlook\n\n")
	if out.GuidanceSummary != nil {
		sb.WriteString(*out.GuidanceSummary + "\n")
	}
	if len(out.Catalysts) > 0 {
		if out.GuidanceSummary != nil {
			sb.WriteString("\n")
		}
		for _, c := range out.Catalysts {
			sb.WriteString("- " + c + "\n")
		}
	}
}
