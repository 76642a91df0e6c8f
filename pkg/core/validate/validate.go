// Package validate reviews an extracted FilingSummary before anything
// gets written: period-over-period deltas, materiality verdicts, elision
// of empty optional sections and the consolidated source list. The
// functions are pure and reusable from tests and API handlers.
package validate

import (
	"math"

	"filing_digest/pkg/models"
)

// Materiality thresholds. The relative rule applies to every unit; the
// absolute dollar rule only to non-percentage units.
const (
	MaterialityPctThreshold = 0.03
	MaterialityAbsThreshold = 100000000.0
)

// FootnoteNoGuidance is recorded whenever the filing carries no
// quantitative guidance, whether or not prior-period data exists.
const FootnoteNoGuidance = "Quantitative guidance not provided in this filing."

// =============================================================================
// METRIC REVIEW
// =============================================================================

// ReviewMetric fills the delta fields and the materiality verdict of one
// metric, in place. Deltas need both periods reported; the relative
// delta additionally needs a nonzero prior.
func ReviewMetric(m *models.Metric) {
	m.DeltaAbs = nil
	m.DeltaPct = nil
	m.Material = false

	if m.Current == nil || m.Prior == nil {
		return
	}

	abs := *m.Current - *m.Prior
	m.DeltaAbs = &abs
	if *m.Prior != 0 {
		pct := abs / math.Abs(*m.Prior)
		m.DeltaPct = &pct
	}
	m.Material = IsMaterial(m)
}

// IsMaterial reports whether a reviewed metric moved materially: a
// relative move of at least 3%, or for non-percentage units an absolute
// move of at least $100M.
func IsMaterial(m *models.Metric) bool {
	if m.DeltaPct != nil && math.Abs(*m.DeltaPct) >= MaterialityPctThreshold {
		return true
	}
	if m.Unit != models.UnitPCT && m.DeltaAbs != nil && math.Abs(*m.DeltaAbs) >= MaterialityAbsThreshold {
		return true
	}
	return false
}

// =============================================================================
// SUMMARY REVIEW
// =============================================================================

// Review validates a raw summary in place and reports what it found.
// Financial and liquidity metrics get deltas and materiality; optional
// sections with no content are dropped entirely so that nothing
// downstream ever renders an empty block.
func Review(summary *models.FilingSummary) *models.ReviewMeta {
	meta := &models.ReviewMeta{}

	for _, m := range summary.Financials.Ordered() {
		ReviewMetric(m)
		if m.Prior != nil {
			meta.HasPrior = true
		}
		if m.Material {
			meta.MaterialMetrics = append(meta.MaterialMetrics, m.Label)
		}
	}
	summary.Financials.HasPrior = meta.HasPrior

	if summary.Liquidity != nil {
		for _, m := range summary.Liquidity.Ordered() {
			ReviewMetric(m)
		}
		liq := summary.Liquidity
		if liq.Cash.Current == nil && liq.Debt.Current == nil && liq.CurrentRatio.Current == nil {
			summary.Liquidity = nil
		}
	}

	if summary.Risks != nil && len(summary.Risks.Items) == 0 {
		summary.Risks = nil
	}
	if summary.Outlook != nil && summary.Outlook.GuidanceSummary == nil && len(summary.Outlook.Catalysts) == 0 {
		summary.Outlook = nil
	}

	summary.Sources = collectSources(summary)

	if summary.Outlook == nil || summary.Outlook.GuidanceSummary == nil {
		meta.Footnotes = append(meta.Footnotes, FootnoteNoGuidance)
	}

	return meta
}

// collectSources unions the source anchors of every metric that carries
// a current value, deduplicated in first-seen order.
func collectSources(summary *models.FilingSummary) []string {
	seen := make(map[string]bool)
	sources := make([]string, 0)

	add := func(m *models.Metric) {
		if m.Current == nil {
			return
		}
		for _, anchor := range m.SourceAnchors {
			if !seen[anchor] {
				seen[anchor] = true
				sources = append(sources, anchor)
			}
		}
	}

	for _, m := range summary.Financials.Ordered() {
		add(m)
	}
	if summary.Liquidity != nil {
		for _, m := range summary.Liquidity.Ordered() {
			add(m)
		}
	}
	return sources
}
