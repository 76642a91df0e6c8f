package compose

import (
	"fmt"
	"math"

	"filing_digest/pkg/models"
)

// formatValue renders a metric value for prose by unit.
func formatValue(v float64, unit models.Unit) string {
	switch unit {
	case models.UnitPCT:
		return fmt.Sprintf("%.1f%%", v*100)
	case models.UnitEPS:
		return formatEPS(v)
	case models.UnitCount:
		return fmt.Sprintf("%.2f", v)
	default:
		return formatUSD(v)
	}
}

// formatUSD abbreviates dollar amounts with one decimal: $94.8B, $3.4M,
// $120.0K. Amounts under a thousand render as plain dollars.
func formatUSD(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%s$%.1fB", sign, v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%s$%.1fM", sign, v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%s$%.1fK", sign, v/1e3)
	default:
		return fmt.Sprintf("%s$%.2f", sign, v)
	}
}

// formatEPS renders per-share amounts with two decimals.
func formatEPS(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%.2f", sign, v)
}

func direction(v float64, up, down string) string {
	if v < 0 {
		return down
	}
	return up
}

// metricSentence renders one executive-summary sentence, or "" when the
// metric has no current value. The relative move wins over the absolute
// move; a metric without a prior period gets no movement phrase at all.
// The first source anchor is cited in parentheses.
func metricSentence(m *models.Metric) string {
	if m == nil || m.Current == nil {
		return ""
	}

	var phrase string
	switch {
	case m.DeltaPct != nil:
		phrase = fmt.Sprintf("%s %.1f%% to %s",
			direction(*m.DeltaPct, "rose", "fell"),
			math.Abs(*m.DeltaPct)*100,
			formatValue(*m.Current, m.Unit))
	case m.DeltaAbs != nil:
		phrase = fmt.Sprintf("%s by %s to %s",
			direction(*m.DeltaAbs, "increased", "decreased"),
			formatValue(math.Abs(*m.DeltaAbs), m.Unit),
			formatValue(*m.Current, m.Unit))
	default:
		phrase = fmt.Sprintf("was %s", formatValue(*m.Current, m.Unit))
	}

	if len(m.SourceAnchors) > 0 {
		return fmt.Sprintf("%s %s (%s).", m.Label, phrase, m.SourceAnchors[0])
	}
	return fmt.Sprintf("%s %s.", m.Label, phrase)
}

// metricBullet renders one section bullet, or "" when the metric has no
// current value.
func metricBullet(m *models.Metric) string {
	if m == nil || m.Current == nil {
		return ""
	}
	line := fmt.Sprintf("- %s: %s", m.Label, formatValue(*m.Current, m.Unit))
	switch {
	case m.DeltaPct != nil:
		line += fmt.Sprintf(" (%s %.1f%%)", direction(*m.DeltaPct, "up", "down"), math.Abs(*m.DeltaPct)*100)
	case m.DeltaAbs != nil:
		line += fmt.Sprintf(" (%s %s)", direction(*m.DeltaAbs, "up", "down"), formatValue(math.Abs(*m.DeltaAbs), m.Unit))
	}
	return line
}
