package models

// Tier is an ordered dealer classification assigned via threshold rules.
type Tier string

const (
	TierGold   Tier = "Gold"
	TierSilver Tier = "Silver"
	TierBronze Tier = "Bronze"
	TierCopper Tier = "Copper"
)

// TierOrder returns the tiers from highest to lowest.
func TierOrder() []Tier {
	return []Tier{TierGold, TierSilver, TierBronze, TierCopper}
}

// DealerStat is the per-dealer ranking row: one entry per distinct customer
// in the input, sorted by total sales descending.
type DealerStat struct {
	CustomerName  string   `json:"customerName"`
	TotalSales    float64  `json:"totalSales"`
	TotalOrders   int      `json:"totalOrders"` // distinct challan numbers
	LineItems     int      `json:"lineItems"`
	Categories    []string `json:"categories"` // distinct, first-seen order
	CategoryCount int      `json:"categoryCount"`
}

// CategoryShare is one category's amount and percentage of a grand total.
type CategoryShare struct {
	Category Category `json:"category"`
	Amount   float64  `json:"amount"`
	Percent  float64  `json:"percent"`
}

// MonthCategoryShare is the two-level month x category breakdown. Percent
// is relative to the month's total, so shares within one month sum to 100.
type MonthCategoryShare struct {
	Month       string   `json:"month"`
	Year        int      `json:"year"`
	MonthNumber int      `json:"monthNumber"`
	Category    Category `json:"category"`
	Amount      float64  `json:"amount"`
	Percent     float64  `json:"percent"`
}

// MonthTotal is one month's aggregate, used for trend/growth series.
type MonthTotal struct {
	Month       string  `json:"month"`
	Year        int     `json:"year"`
	MonthNumber int     `json:"monthNumber"`
	Amount      float64 `json:"amount"`
	Orders      int     `json:"orders"`
}

// CategoryCell is one per-category column in the dealer summary table.
type CategoryCell struct {
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percent"`
}

// DealerSummary is the dealer summary table row: totals, per-category
// amount/share cells, loyalty score, market share and assigned tier.
type DealerSummary struct {
	CustomerName string                    `json:"customerName"`
	TotalOrders  int                       `json:"totalOrders"`
	TotalAmount  float64                   `json:"totalAmount"`
	Categories   map[Category]CategoryCell `json:"categories"`
	MarketShare  float64                   `json:"marketShare"` // percent of grand total
	LoyaltyScore float64                   `json:"loyaltyScore"`
	Tier         Tier                      `json:"tier"`
}

// SummaryTotals is the grand-total row under the dealer summary table.
type SummaryTotals struct {
	TotalOrders int                       `json:"totalOrders"`
	TotalAmount float64                   `json:"totalAmount"`
	Categories  map[Category]CategoryCell `json:"categories"`
}

// TierSummary groups the dealer summaries by tier.
type TierSummary struct {
	Tier        Tier    `json:"tier"`
	Dealers     int     `json:"dealers"`
	TotalOrders int     `json:"totalOrders"`
	TotalAmount float64 `json:"totalAmount"`
}

// ProductTrendRow is the item x month quantity timeline with totals.
type ProductTrendRow struct {
	Category   Category           `json:"category"`
	ItemName   string             `json:"itemName"`
	MonthlyQty map[string]float64 `json:"monthlyQty"`
	TotalQty   float64            `json:"totalQty"`
	TotalCost  float64            `json:"totalCost"`
}

// HeatmapRow is one item's monthly quantity cells; all-zero rows are
// dropped before the matrix is returned.
type HeatmapRow struct {
	ItemName string             `json:"itemName"`
	Cells    map[string]float64 `json:"cells"`
}

// Heatmap is the item x month quantity matrix for one dealer tier, with
// month labels in chronological order.
type Heatmap struct {
	Tier   Tier         `json:"tier"`
	Months []string     `json:"months"`
	Rows   []HeatmapRow `json:"rows"`
}
