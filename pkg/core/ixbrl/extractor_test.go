package ixbrl

import (
	"math"
	"strings"
	"testing"

	"filing_digest/pkg/models"

	"github.com/PuerkitoBio/goquery"
)

func floatPtr(f float64) *float64 {
	return &f
}

func mustParse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestParseNumericText(t *testing.T) {
	tests := []struct {
		input    string
		expected *float64
	}{
		{"10,000", floatPtr(10000)},
		{"(5,000)", floatPtr(-5000)},
		{"-3,500", floatPtr(-3500)},
		{"$1,234.56", floatPtr(1234.56)},
		{"46.6%", floatPtr(46.6)},
		{" 94,836 ", floatPtr(94836)},
		{"1.65", floatPtr(1.65)},
		{"-", nil},
		{"—", nil},
		{"", nil},
		{"September 28, 2024", nil},
		{"see note 5", nil},
	}

	for _, tc := range tests {
		result := parseNumericText(tc.input)
		if tc.expected == nil {
			if result != nil {
				t.Errorf("Input %q: expected nil, got %f", tc.input, *result)
			}
		} else {
			if result == nil {
				t.Errorf("Input %q: expected %f, got nil", tc.input, *tc.expected)
			} else if *result != *tc.expected {
				t.Errorf("Input %q: expected %f, got %f", tc.input, *tc.expected, *result)
			}
		}
	}
}

func TestParseFactValue(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		sign     string
		scale    string
		format   string
		expected *float64
	}{
		{"plain", "1,234", "", "", "", floatPtr(1234)},
		{"scale millions", "94,836", "", "6", "", floatPtr(94836000000)},
		{"scale thousands", "500", "", "3", "", floatPtr(500000)},
		{"negative scale", "165", "", "-2", "", floatPtr(1.65)},
		{"sign attribute", "2,940", "-", "6", "", floatPtr(-2940000000)},
		{"parens", "(1,000)", "", "", "", floatPtr(-1000)},
		{"format hint millions", "94,836", "", "", "in millions", floatPtr(94836000000)},
		{"format hint billions", "1.2", "", "", "Billions", floatPtr(1200000000)},
		{"scale beats format", "100", "", "3", "in millions", floatPtr(100000)},
		{"unparsable", "n/a", "", "6", "", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := parseFactValue(tc.text, tc.sign, tc.scale, tc.format)
			if tc.expected == nil {
				if result != nil {
					t.Fatalf("expected nil, got %f", *result)
				}
				return
			}
			if result == nil {
				t.Fatalf("expected %f, got nil", *tc.expected)
			}
			if math.Abs(*result-*tc.expected) > 1e-6 {
				t.Errorf("expected %f, got %f", *tc.expected, *result)
			}
		})
	}
}

// sampleFiling mirrors the shape of an Apple 10-Q: hidden context
// resources plus inline facts tagged in the statement tables. Income
// facts carry duration contexts; balance sheet facts carry instants.
const sampleFiling = `<html><body>
<div style="display:none">
  <ix:header><ix:resources>
    <xbrli:context id="d-cur">
      <xbrli:period><xbrli:startDate>2024-09-29</xbrli:startDate><xbrli:endDate>2024-12-28</xbrli:endDate></xbrli:period>
    </xbrli:context>
    <xbrli:context id="d-prior">
      <xbrli:period><xbrli:startDate>2023-10-01</xbrli:startDate><xbrli:endDate>2023-12-30</xbrli:endDate></xbrli:period>
    </xbrli:context>
    <xbrli:context id="i-cur">
      <xbrli:period><xbrli:instant>2024-12-28</xbrli:instant></xbrli:period>
    </xbrli:context>
    <xbrli:context id="i-prior">
      <xbrli:period><xbrli:instant>2023-12-30</xbrli:instant></xbrli:period>
    </xbrli:context>
    <xbrli:context id="bad-date">
      <xbrli:period><xbrli:instant>Q1 FY25</xbrli:instant></xbrli:period>
    </xbrli:context>
  </ix:resources></ix:header>
</div>
<table>
  <tr><td>Net sales</td>
    <td>$<ix:nonFraction name="us-gaap:RevenueFromContractWithCustomerExcludingAssessedTax" contextRef="d-cur" scale="6" decimals="-6">94,836</ix:nonFraction></td>
    <td>$<ix:nonFraction name="us-gaap:RevenueFromContractWithCustomerExcludingAssessedTax" contextRef="d-prior" scale="6" decimals="-6">90,753</ix:nonFraction></td></tr>
  <tr><td>Gross profit</td>
    <td><ix:nonFraction name="us-gaap:GrossProfit" contextRef="d-cur" scale="6">44,058</ix:nonFraction></td>
    <td><ix:nonFraction name="us-gaap:GrossProfit" contextRef="d-prior" scale="6">41,863</ix:nonFraction></td></tr>
  <tr><td>Operating income</td>
    <td><ix:nonFraction name="us-gaap:OperatingIncomeLoss" contextRef="d-cur" scale="6">29,591</ix:nonFraction></td>
    <td><ix:nonFraction name="us-gaap:OperatingIncomeLoss" contextRef="d-prior" scale="6">28,348</ix:nonFraction></td></tr>
  <tr><td>Net income</td>
    <td><ix:nonFraction name="us-gaap:NetIncomeLoss" contextRef="d-cur" scale="6">25,903</ix:nonFraction></td>
    <td><ix:nonFraction name="us-gaap:NetIncomeLoss" contextRef="d-prior" scale="6">24,160</ix:nonFraction></td></tr>
  <tr><td>Basic EPS</td>
    <td><ix:nonFraction name="us-gaap:EarningsPerShareBasic" contextRef="d-cur" decimals="2">1.67</ix:nonFraction></td>
    <td><ix:nonFraction name="us-gaap:EarningsPerShareBasic" contextRef="d-prior" decimals="2">1.54</ix:nonFraction></td></tr>
  <tr><td>Diluted EPS</td>
    <td><ix:nonFraction name="us-gaap:EarningsPerShareDiluted" contextRef="d-cur" decimals="2">1.65</ix:nonFraction></td>
    <td><ix:nonFraction name="us-gaap:EarningsPerShareDiluted" contextRef="d-prior" decimals="2">1.52</ix:nonFraction></td></tr>
</table>
<table>
  <tr><td>Cash and cash equivalents</td>
    <td><ix:nonFraction name="us-gaap:CashAndCashEquivalentsAtCarryingValue" contextRef="i-cur" scale="6">30,299</ix:nonFraction></td>
    <td><ix:nonFraction name="us-gaap:CashAndCashEquivalentsAtCarryingValue" contextRef="i-prior" scale="6">29,943</ix:nonFraction></td></tr>
  <tr><td>Total current assets</td>
    <td><ix:nonFraction name="us-gaap:AssetsCurrent" contextRef="i-cur" scale="6">133,240</ix:nonFraction></td>
    <td><ix:nonFraction name="us-gaap:AssetsCurrent" contextRef="i-prior" scale="6">143,566</ix:nonFraction></td></tr>
  <tr><td>Total current liabilities</td>
    <td><ix:nonFraction name="us-gaap:LiabilitiesCurrent" contextRef="i-cur" scale="6">144,365</ix:nonFraction></td>
    <td><ix:nonFraction name="us-gaap:LiabilitiesCurrent" contextRef="i-prior" scale="6">133,973</ix:nonFraction></td></tr>
  <tr><td>Term debt, current</td>
    <td><ix:nonFraction name="us-gaap:LongTermDebtCurrent" contextRef="i-cur" scale="6">10,848</ix:nonFraction></td>
    <td><ix:nonFraction name="us-gaap:LongTermDebtCurrent" contextRef="i-prior" scale="6">10,912</ix:nonFraction></td></tr>
  <tr><td>Term debt, non-current</td>
    <td><ix:nonFraction name="us-gaap:LongTermDebtNoncurrent" contextRef="i-cur" scale="6">83,956</ix:nonFraction></td>
    <td><ix:nonFraction name="us-gaap:LongTermDebtNoncurrent" contextRef="i-prior" scale="6">95,088</ix:nonFraction></td></tr>
</table>
<table>
  <tr><td>Cash generated by operating activities</td>
    <td><ix:nonFraction name="us-gaap:NetCashProvidedByUsedInOperatingActivities" contextRef="d-cur" scale="6">29,935</ix:nonFraction></td>
    <td><ix:nonFraction name="us-gaap:NetCashProvidedByUsedInOperatingActivities" contextRef="d-prior" scale="6">39,937</ix:nonFraction></td></tr>
  <tr><td>Payments for acquisition of property, plant and equipment</td>
    <td><ix:nonFraction name="us-gaap:PaymentsToAcquirePropertyPlantAndEquipment" contextRef="d-cur" scale="6">2,940</ix:nonFraction></td>
    <td><ix:nonFraction name="us-gaap:PaymentsToAcquirePropertyPlantAndEquipment" contextRef="d-prior" scale="6">2,392</ix:nonFraction></td></tr>
  <tr><td>Unmapped context</td>
    <td><ix:nonFraction name="us-gaap:Revenues" contextRef="nowhere" scale="6">1</ix:nonFraction></td></tr>
</table>
</body></html>`

var sampleMeta = models.FilingMeta{
	CIK:         "0000320193",
	Symbol:      "AAPL",
	CompanyName: "Apple Inc.",
	FilingType:  models.Filing10Q,
	FilingDate:  "2025-01-31",
	PeriodEnd:   "2024-12-28",
}

func checkValue(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s: expected %f, got nil", name, want)
	}
	if math.Abs(*got-want) > 1e-6 {
		t.Errorf("%s: expected %f, got %f", name, want, *got)
	}
}

func TestExtract_AppleShapedFiling(t *testing.T) {
	summary, err := NewExtractor().Extract(sampleFiling, sampleMeta)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if summary.Symbol != "AAPL" || summary.FilingType != models.Filing10Q {
		t.Errorf("metadata not carried through: %+v", summary)
	}

	fin := summary.Financials
	checkValue(t, "revenue current", fin.Revenue.Current, 94836000000)
	checkValue(t, "revenue prior", fin.Revenue.Prior, 90753000000)
	checkValue(t, "net income current", fin.NetIncome.Current, 25903000000)
	checkValue(t, "net income prior", fin.NetIncome.Prior, 24160000000)
	checkValue(t, "eps diluted current", fin.EPSDiluted.Current, 1.65)
	checkValue(t, "eps diluted prior", fin.EPSDiluted.Prior, 1.52)

	// Derived gross margin uses per-period ratios.
	if fin.GrossMargin.Label != "Gross Margin" || fin.GrossMargin.Unit != models.UnitPCT {
		t.Errorf("gross margin shape wrong: %+v", fin.GrossMargin)
	}
	checkValue(t, "gross margin current", fin.GrossMargin.Current, 44058.0/94836.0)
	checkValue(t, "gross margin prior", fin.GrossMargin.Prior, 41863.0/90753.0)

	// FCF = CFO - capex per period.
	checkValue(t, "fcf current", fin.FreeCashFlow.Current, 26995000000)
	checkValue(t, "fcf prior", fin.FreeCashFlow.Prior, 37545000000)

	if summary.Liquidity == nil {
		t.Fatal("liquidity should be populated")
	}
	liq := summary.Liquidity
	checkValue(t, "cash current", liq.Cash.Current, 30299000000)
	checkValue(t, "debt current", liq.Debt.Current, 94804000000)
	checkValue(t, "debt prior", liq.Debt.Prior, 106000000000)
	checkValue(t, "current ratio", liq.CurrentRatio.Current, 133240.0/144365.0)

	// The winning concept is recorded as the anchor.
	if len(fin.Revenue.SourceAnchors) == 0 ||
		fin.Revenue.SourceAnchors[0] != "us-gaap:RevenueFromContractWithCustomerExcludingAssessedTax" {
		t.Errorf("revenue anchor wrong: %v", fin.Revenue.SourceAnchors)
	}

	// Extraction never fills narrative sections or sources.
	if summary.Risks != nil || summary.Outlook != nil || len(summary.Sources) != 0 {
		t.Errorf("extractor should leave risks/outlook/sources empty")
	}
}

func TestExtract_DocumentOrderFallback(t *testing.T) {
	// No usable contexts at all: first occurrence is current, second is
	// prior, silently.
	html := `<html><body>
	<ix:nonFraction name="us-gaap:Revenues" contextRef="x" scale="6">1,000</ix:nonFraction>
	<ix:nonFraction name="us-gaap:Revenues" contextRef="y" scale="6">900</ix:nonFraction>
	</body></html>`

	summary, err := NewExtractor().Extract(html, sampleMeta)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	checkValue(t, "revenue current", summary.Financials.Revenue.Current, 1000000000)
	checkValue(t, "revenue prior", summary.Financials.Revenue.Prior, 900000000)
}

func TestExtract_SinglePeriodOnly(t *testing.T) {
	html := `<html><body>
	<div style="display:none"><xbrli:context id="d-cur">
	  <xbrli:period><xbrli:endDate>2024-12-28</xbrli:endDate></xbrli:period>
	</xbrli:context></div>
	<ix:nonFraction name="us-gaap:Revenues" contextRef="d-cur" scale="6">1,000</ix:nonFraction>
	</body></html>`

	summary, err := NewExtractor().Extract(html, sampleMeta)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	checkValue(t, "revenue current", summary.Financials.Revenue.Current, 1000000000)
	if summary.Financials.Revenue.Prior != nil {
		t.Errorf("prior should be nil with one period, got %f", *summary.Financials.Revenue.Prior)
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	summary, err := NewExtractor().Extract("<html><body></body></html>", sampleMeta)
	if err != nil {
		t.Fatalf("missing facts must not error: %v", err)
	}
	for _, m := range summary.Financials.Ordered() {
		if m.Current != nil || m.Prior != nil {
			t.Errorf("%s should be empty, got %+v", m.Label, m)
		}
	}
}

func TestGrossProfitFallbackWhenRevenueAbsent(t *testing.T) {
	html := `<html><body>
	<div style="display:none"><xbrli:context id="d-cur">
	  <xbrli:period><xbrli:endDate>2024-12-28</xbrli:endDate></xbrli:period>
	</xbrli:context></div>
	<ix:nonFraction name="us-gaap:GrossProfit" contextRef="d-cur" scale="6">44,058</ix:nonFraction>
	</body></html>`

	summary, err := NewExtractor().Extract(html, sampleMeta)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	gm := summary.Financials.GrossMargin
	if gm.Label != "Gross Profit" || gm.Unit != models.UnitUSD {
		t.Fatalf("expected raw gross profit fallback, got %q (%s)", gm.Label, gm.Unit)
	}
	checkValue(t, "gross profit", gm.Current, 44058000000)
}

func TestParseContexts(t *testing.T) {
	html := `<html><body><div>
	<xbrli:context id="a"><xbrli:period><xbrli:startDate>2024-01-01</xbrli:startDate><xbrli:endDate>2024-06-30</xbrli:endDate></xbrli:period></xbrli:context>
	<xbrli:context id="b"><xbrli:period><xbrli:instant>2024-06-30</xbrli:instant></xbrli:period></xbrli:context>
	<xbrli:context id="c"><xbrli:period><xbrli:instant>junk</xbrli:instant></xbrli:period></xbrli:context>
	<context id="d"><period><endDate>2023-06-30</endDate></period></context>
	</div></body></html>`

	doc := mustParse(t, html)
	table := parseContexts(doc)
	if table["a"] != "2024-06-30" || table["b"] != "2024-06-30" || table["d"] != "2023-06-30" {
		t.Errorf("context table wrong: %v", table)
	}
	if _, ok := table["c"]; ok {
		t.Errorf("unparsable date should be dropped, got %v", table["c"])
	}
}
