// Package ixbrl extracts the target financial and liquidity facts from
// one SEC inline-XBRL filing document (10-Q or 10-K HTML).
//
// The extractor is deliberately forgiving about content and strict about
// structure: a document the HTML machinery cannot traverse is a fatal
// ParseError, while any individual fact that is missing or unparsable
// simply yields a nil value downstream.
package ixbrl

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"filing_digest/pkg/models"

	"github.com/PuerkitoBio/goquery"
)

// ParseError reports a filing document that could not be traversed at
// all. Missing facts are never parse errors.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("filing document parse failed: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Extractor pulls structured facts out of iXBRL filing HTML. Filing
// identity (CIK, ticker, dates) always comes from the caller; nothing is
// inferred from the document.
type Extractor struct{}

// NewExtractor creates an extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses the filing and assembles a raw FilingSummary. Risks,
// outlook and the source list stay empty here; review owns deltas,
// materiality and elision.
func (e *Extractor) Extract(htmlContent string, meta models.FilingMeta) (*models.FilingSummary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	contexts := parseContexts(doc)
	facts := collectFacts(doc, contexts)

	summary := &models.FilingSummary{
		CIK:         meta.CIK,
		Symbol:      meta.Symbol,
		CompanyName: meta.CompanyName,
		FilingType:  meta.FilingType,
		FilingDate:  meta.FilingDate,
		PeriodEnd:   meta.PeriodEnd,
	}
	summary.Financials = buildFinancials(facts)
	summary.Liquidity = buildLiquidity(facts)
	return summary, nil
}

// =============================================================================
// CONTEXT TABLE - map context ids to period end dates
// =============================================================================

// parseContexts walks every XBRL context element. Duration contexts
// resolve to their endDate, instant contexts to their instant. A context
// whose date does not parse as YYYY-MM-DD is dropped silently.
func parseContexts(doc *goquery.Document) map[string]string {
	table := make(map[string]string)
	doc.Find("xbrli\\:context, context").Each(func(_ int, s *goquery.Selection) {
		id := attrOf(s, "id")
		if id == "" {
			return
		}
		end := strings.TrimSpace(s.Find("xbrli\\:endDate, endDate").First().Text())
		if end == "" {
			end = strings.TrimSpace(s.Find("xbrli\\:instant, instant").First().Text())
		}
		if end == "" {
			return
		}
		if _, err := time.Parse("2006-01-02", end); err != nil {
			return
		}
		table[id] = end
	})
	return table
}

// =============================================================================
// FACT SCAN - collect inline facts and assign reporting periods
// =============================================================================

// fact is one inline tag matched against the concept table.
type fact struct {
	concept string
	value   *float64
	endDate string // resolved period end, "" when the context is unknown
}

// factSet holds the matched facts in document order plus the period
// assignment derived from them.
type factSet struct {
	byConcept map[string][]fact
	current   string
	prior     string
	fallback  bool // nothing resolved to a date: use document order
}

// collectFacts scans every ix:nonFraction and ix:nonNumeric element and
// keeps the ones whose name matches a target concept.
func collectFacts(doc *goquery.Document, contexts map[string]string) *factSet {
	fs := &factSet{byConcept: make(map[string][]fact)}
	dates := make(map[string]bool)

	doc.Find("ix\\:nonFraction, ix\\:nonNumeric").Each(func(_ int, s *goquery.Selection) {
		concept := attrOf(s, "name")
		if !targetConcepts[concept] {
			return
		}
		f := fact{
			concept: concept,
			value:   parseFactValue(s.Text(), attrOf(s, "sign"), attrOf(s, "scale"), attrOf(s, "format")),
			endDate: contexts[attrOf(s, "contextRef")],
		}
		fs.byConcept[concept] = append(fs.byConcept[concept], f)
		if f.endDate != "" {
			dates[f.endDate] = true
		}
	})

	fs.selectPeriods(dates)
	return fs
}

// selectPeriods picks the two most recent distinct period ends seen
// across the matched facts. ISO dates sort lexicographically, so string
// order is date order. With no resolvable dates at all the extractor
// degrades to document order, on purpose and without complaint.
func (fs *factSet) selectPeriods(dates map[string]bool) {
	if len(dates) == 0 {
		fs.fallback = true
		return
	}
	sorted := make([]string, 0, len(dates))
	for d := range dates {
		sorted = append(sorted, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))
	fs.current = sorted[0]
	if len(sorted) > 1 {
		fs.prior = sorted[1]
	}
}

// pick resolves one metric key. The first candidate concept that
// produced any fact wins outright, even when its facts cover only one
// period.
func (fs *factSet) pick(key string) (string, *float64, *float64) {
	for _, concept := range conceptCandidates[key] {
		facts := fs.byConcept[concept]
		if len(facts) == 0 {
			continue
		}
		if fs.fallback {
			cur := facts[0].value
			var prev *float64
			if len(facts) > 1 {
				prev = facts[1].value
			}
			return concept, cur, prev
		}
		return concept, valueAt(facts, fs.current), valueAt(facts, fs.prior)
	}
	return "", nil, nil
}

// valueAt returns the first usable value reported for the given period.
func valueAt(facts []fact, endDate string) *float64 {
	if endDate == "" {
		return nil
	}
	for _, f := range facts {
		if f.endDate == endDate && f.value != nil {
			return f.value
		}
	}
	return nil
}

// attrOf reads an attribute by name, tolerating the lower-casing the
// HTML parser applies to attribute names (contextRef arrives as
// contextref).
func attrOf(s *goquery.Selection, name string) string {
	if v, ok := s.Attr(name); ok {
		return v
	}
	v, _ := s.Attr(strings.ToLower(name))
	return v
}

// =============================================================================
// METRIC ASSEMBLY - direct and derived metrics
// =============================================================================

func buildFinancials(fs *factSet) models.Financials {
	revConcept, revCur, revPrev := fs.pick(keyRevenue)
	gpConcept, gpCur, gpPrev := fs.pick(keyGrossProfit)
	opConcept, opCur, opPrev := fs.pick(keyOperatingIncome)
	niConcept, niCur, niPrev := fs.pick(keyNetIncome)
	basicConcept, basicCur, basicPrev := fs.pick(keyEPSBasic)
	dilConcept, dilCur, dilPrev := fs.pick(keyEPSDiluted)

	return models.Financials{
		Revenue:         newMetric("Revenue", models.UnitUSD, revCur, revPrev, revConcept),
		GrossMargin:     grossMarginMetric(revCur, revPrev, gpCur, gpPrev, revConcept, gpConcept),
		OperatingIncome: newMetric("Operating Income", models.UnitUSD, opCur, opPrev, opConcept),
		NetIncome:       newMetric("Net Income", models.UnitUSD, niCur, niPrev, niConcept),
		EPSBasic:        newMetric("EPS (Basic)", models.UnitEPS, basicCur, basicPrev, basicConcept),
		EPSDiluted:      newMetric("EPS (Diluted)", models.UnitEPS, dilCur, dilPrev, dilConcept),
		FreeCashFlow:    freeCashFlowMetric(fs),
	}
}

func buildLiquidity(fs *factSet) *models.Liquidity {
	cashConcept, cashCur, cashPrev := fs.pick(keyCash)
	caConcept, caCur, caPrev := fs.pick(keyCurrentAssets)
	clConcept, clCur, clPrev := fs.pick(keyCurrentLiabilities)

	return &models.Liquidity{
		Cash: newMetric("Cash & Equivalents", models.UnitUSD, cashCur, cashPrev, cashConcept),
		Debt: totalDebtMetric(fs),
		CurrentRatio: newMetric("Current Ratio", models.UnitCount,
			safeRatio(caCur, clCur), safeRatio(caPrev, clPrev), caConcept, clConcept),
	}
}

// newMetric builds an unreviewed metric. Anchors are recorded only for
// concepts that actually matched.
func newMetric(label string, unit models.Unit, cur, prev *float64, anchors ...string) models.Metric {
	m := models.Metric{Label: label, Unit: unit, Current: cur, Prior: prev}
	for _, a := range anchors {
		if a != "" {
			m.SourceAnchors = append(m.SourceAnchors, a)
		}
	}
	return m
}

// grossMarginMetric derives margin = gross profit / revenue per period.
// When the filing reports gross profit but no current revenue the metric
// degrades to the raw dollar figure; label and unit move together.
func grossMarginMetric(revCur, revPrev, gpCur, gpPrev *float64, revConcept, gpConcept string) models.Metric {
	if revCur == nil && gpCur != nil {
		return newMetric("Gross Profit", models.UnitUSD, gpCur, gpPrev, gpConcept)
	}
	return newMetric("Gross Margin", models.UnitPCT,
		safeRatio(gpCur, revCur), safeRatio(gpPrev, revPrev), gpConcept, revConcept)
}

// freeCashFlowMetric derives FCF = operating cash flow - capex. For the
// current period a missing capex counts as zero; the prior period needs
// both components reported or stays nil.
func freeCashFlowMetric(fs *factSet) models.Metric {
	cfoConcept, cfoCur, cfoPrev := fs.pick(keyCFO)
	capexConcept, capexCur, capexPrev := fs.pick(keyCapex)

	var cur, prev *float64
	if cfoCur != nil {
		v := *cfoCur
		if capexCur != nil {
			v -= *capexCur
		}
		cur = &v
	}
	if cfoPrev != nil && capexPrev != nil {
		v := *cfoPrev - *capexPrev
		prev = &v
	}
	return newMetric("Free Cash Flow", models.UnitUSD, cur, prev, cfoConcept, capexConcept)
}

// totalDebtMetric sums the reported long-term and current debt per
// period, nil only when neither component is reported.
func totalDebtMetric(fs *factSet) models.Metric {
	longConcept, longCur, longPrev := fs.pick(keyDebtLong)
	shortConcept, shortCur, shortPrev := fs.pick(keyDebtCurrent)
	return newMetric("Total Debt", models.UnitUSD,
		sumNonNil(longCur, shortCur), sumNonNil(longPrev, shortPrev), longConcept, shortConcept)
}

// safeRatio divides num by denom, nil when either side is missing or the
// denominator is zero.
func safeRatio(num, denom *float64) *float64 {
	if num == nil || denom == nil || *denom == 0 {
		return nil
	}
	v := *num / *denom
	return &v
}

// sumNonNil adds the non-nil terms, nil when every term is nil.
func sumNonNil(terms ...*float64) *float64 {
	var total float64
	seen := false
	for _, t := range terms {
		if t != nil {
			total += *t
			seen = true
		}
	}
	if !seen {
		return nil
	}
	return &total
}
