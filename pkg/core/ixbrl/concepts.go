package ixbrl

// Target metric keys. These identify what we extract, not how a filing
// happens to tag it; the tagging variants live in conceptCandidates.
const (
	keyRevenue         = "revenue"
	keyGrossProfit     = "gross_profit"
	keyOperatingIncome = "operating_income"
	keyNetIncome       = "net_income"
	keyEPSBasic        = "eps_basic"
	keyEPSDiluted      = "eps_diluted"
	keyCFO             = "cfo"
	keyCapex           = "capex"

	keyCash               = "cash"
	keyDebtLong           = "debt_long"
	keyDebtCurrent        = "debt_current"
	keyCurrentAssets      = "current_assets"
	keyCurrentLiabilities = "current_liabilities"
)

// conceptCandidates maps each target metric to its ordered list of XBRL
// concept names. Filings tag the same economic fact under different
// concepts depending on taxonomy year and preparer; the first concept in
// the list that produced at least one fact wins for that metric.
var conceptCandidates = map[string][]string{
	keyRevenue: {
		"us-gaap:Revenues",
		"us-gaap:RevenueFromContractWithCustomerExcludingAssessedTax",
		"us-gaap:RevenueFromContractWithCustomerIncludingAssessedTax",
		"us-gaap:SalesRevenueNet",
	},
	keyGrossProfit: {
		"us-gaap:GrossProfit",
	},
	keyOperatingIncome: {
		"us-gaap:OperatingIncomeLoss",
	},
	keyNetIncome: {
		"us-gaap:NetIncomeLoss",
		"us-gaap:ProfitLoss",
	},
	keyEPSBasic: {
		"us-gaap:EarningsPerShareBasic",
	},
	keyEPSDiluted: {
		"us-gaap:EarningsPerShareDiluted",
	},
	keyCFO: {
		"us-gaap:NetCashProvidedByUsedInOperatingActivities",
		"us-gaap:NetCashProvidedByUsedInOperatingActivitiesContinuingOperations",
	},
	keyCapex: {
		"us-gaap:PaymentsToAcquirePropertyPlantAndEquipment",
		"us-gaap:PaymentsToAcquireProductiveAssets",
	},
	keyCash: {
		"us-gaap:CashAndCashEquivalentsAtCarryingValue",
		"us-gaap:CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalentsIncludingDisposalGroupAndDiscontinuedOperations",
		"us-gaap:CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalents",
	},
	keyDebtLong: {
		"us-gaap:LongTermDebtNoncurrent",
		"us-gaap:LongTermDebt",
	},
	keyDebtCurrent: {
		"us-gaap:LongTermDebtCurrent",
		"us-gaap:DebtCurrent",
	},
	keyCurrentAssets: {
		"us-gaap:AssetsCurrent",
	},
	keyCurrentLiabilities: {
		"us-gaap:LiabilitiesCurrent",
	},
}

// targetConcepts is the flattened lookup used during the document scan.
var targetConcepts = func() map[string]bool {
	set := make(map[string]bool)
	for _, list := range conceptCandidates {
		for _, concept := range list {
			set[concept] = true
		}
	}
	return set
}()
