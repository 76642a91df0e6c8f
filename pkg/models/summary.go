package models

// Unit classifies how a metric value is rendered and compared.
type Unit string

const (
	UnitUSD   Unit = "USD"   // dollar amounts
	UnitPCT   Unit = "PCT"   // ratios stored as fractions (0.466 = 46.6%)
	UnitEPS   Unit = "EPS"   // per-share dollar amounts
	UnitCount Unit = "COUNT" // unitless ratios and counts
)

// Supported filing form types.
const (
	Filing10Q = "10-Q"
	Filing10K = "10-K"
)

// Metric is one reported figure across the current and prior periods.
// Nil means the filing did not disclose the value; zero is a real zero.
// DeltaAbs and DeltaPct stay nil until review runs, and remain nil
// whenever either period is missing (DeltaPct also when prior is zero).
type Metric struct {
	Label         string   `json:"label"`
	Unit          Unit     `json:"unit"`
	Current       *float64 `json:"current"`
	Prior         *float64 `json:"prior"`
	DeltaAbs      *float64 `json:"delta_abs"`
	DeltaPct      *float64 `json:"delta_pct"`
	Material      bool     `json:"material"`
	SourceAnchors []string `json:"source_anchors,omitempty"`
}

// Financials holds the core statement metrics in their canonical order.
type Financials struct {
	Revenue         Metric `json:"revenue"`
	GrossMargin     Metric `json:"gross_margin"`
	OperatingIncome Metric `json:"operating_income"`
	NetIncome       Metric `json:"net_income"`
	EPSBasic        Metric `json:"eps_basic"`
	EPSDiluted      Metric `json:"eps_diluted"`
	FreeCashFlow    Metric `json:"free_cash_flow"`
	HasPrior        bool   `json:"has_prior"`
}

// Ordered returns the financial metrics in canonical reporting order.
// The pointers alias the struct fields so callers can mutate in place.
func (f *Financials) Ordered() []*Metric {
	return []*Metric{
		&f.Revenue,
		&f.GrossMargin,
		&f.OperatingIncome,
		&f.NetIncome,
		&f.EPSBasic,
		&f.EPSDiluted,
		&f.FreeCashFlow,
	}
}

// Liquidity covers balance-sheet health. The whole object is dropped from
// the summary when none of its metrics carry a current value.
type Liquidity struct {
	Cash         Metric `json:"cash"`
	Debt         Metric `json:"debt"`
	CurrentRatio Metric `json:"current_ratio"`
}

// Ordered returns the liquidity metrics in reporting order.
func (l *Liquidity) Ordered() []*Metric {
	return []*Metric{&l.Cash, &l.Debt, &l.CurrentRatio}
}

// Risks carries narrative risk factors produced upstream. The pipeline
// passes them through untouched apart from elision of empty content.
type Risks struct {
	Items     []string `json:"items"`
	Citations []string `json:"citations,omitempty"`
}

// Outlook carries forward-looking statements produced upstream.
type Outlook struct {
	GuidanceSummary *string  `json:"guidance_summary"`
	Catalysts       []string `json:"catalysts,omitempty"`
}

// FilingMeta is the caller-supplied identity of a filing. The extraction
// stage never infers any of these fields from the document itself.
type FilingMeta struct {
	CIK         string `json:"cik"`
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	FilingType  string `json:"filing_type"`
	FilingDate  string `json:"filing_date"`
	PeriodEnd   string `json:"period_end"`
}

// FilingSummary is the structured product of extraction and review.
type FilingSummary struct {
	CIK         string     `json:"cik"`
	Symbol      string     `json:"symbol"`
	CompanyName string     `json:"company_name"`
	FilingType  string     `json:"filing_type"`
	FilingDate  string     `json:"filing_date"`
	PeriodEnd   string     `json:"period_end"`
	Financials  Financials `json:"financials"`
	Liquidity   *Liquidity `json:"liquidity,omitempty"`
	Risks       *Risks     `json:"risks,omitempty"`
	Outlook     *Outlook   `json:"outlook,omitempty"`
	Sources     []string   `json:"sources"`
}

// ReviewMeta summarizes what review found, for downstream composition.
type ReviewMeta struct {
	HasPrior        bool     `json:"has_prior"`
	MaterialMetrics []string `json:"material_metrics"`
	Footnotes       []string `json:"footnotes"`
}

// Scorecard is the quality gate's per-dimension breakdown. Total is the
// plain sum of the seven sub-scores (maximum 35).
type Scorecard struct {
	Accuracy           int `json:"accuracy"`
	Clarity            int `json:"clarity"`
	InsightDensity     int `json:"insight_density"`
	NumericalPrecision int `json:"numerical_precision"`
	NarrativeFlow      int `json:"narrative_flow"`
	SectionBalance     int `json:"section_balance"`
	Brevity            int `json:"brevity"`
	Total              int `json:"total"`
}
