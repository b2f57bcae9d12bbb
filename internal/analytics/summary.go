package analytics

import (
	"sort"

	"github.com/agridash/dealer-insights/internal/models"
)

// DealerSummaries builds the dealer summary table: per dealer, order and
// amount totals, per-category amount/share cells, market share, loyalty
// score and the assigned tier. Sorted by total amount descending.
func DealerSummaries(records []models.NormalizedRecord, loyalty LoyaltyPolicy, tiers TierPolicy) []models.DealerSummary {
	accs, order := accumulateDealers(records)

	grand := 0.0
	for _, name := range order {
		grand += accs[name].stat.TotalSales
	}

	perCategory := make(map[string]map[models.Category]float64, len(order))
	for _, r := range records {
		cells, ok := perCategory[r.CustomerName]
		if !ok {
			cells = make(map[models.Category]float64)
			perCategory[r.CustomerName] = cells
		}
		cells[r.Category] += r.Amount
	}

	summaries := make([]models.DealerSummary, 0, len(order))
	for _, name := range order {
		acc := accs[name]
		total := acc.stat.TotalSales

		cells := make(map[models.Category]models.CategoryCell, len(perCategory[name]))
		for cat, amount := range perCategory[name] {
			cell := models.CategoryCell{Amount: amount}
			if total > 0 {
				cell.Percent = round2(amount / total * 100)
			}
			cells[cat] = cell
		}

		share := 0.0
		if grand > 0 {
			share = total / grand * 100
		}
		score := LoyaltyScore(LoyaltyInputs{
			OrderCount:    len(acc.orders),
			CategoryCount: len(acc.categories),
			FirstOrder:    acc.firstOrder,
			LastOrder:     acc.lastOrder,
		}, loyalty)

		summaries = append(summaries, models.DealerSummary{
			CustomerName: name,
			TotalOrders:  len(acc.orders),
			TotalAmount:  total,
			Categories:   cells,
			MarketShare:  round2(share),
			LoyaltyScore: round2(score),
			Tier:         ClassifyTier(share, score, tiers),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TotalAmount > summaries[j].TotalAmount
	})
	return summaries
}

// SummaryTotals computes the grand-total row under the summary table.
func SummaryTotals(summaries []models.DealerSummary) models.SummaryTotals {
	totals := models.SummaryTotals{Categories: make(map[models.Category]models.CategoryCell)}
	for _, s := range summaries {
		totals.TotalOrders += s.TotalOrders
		totals.TotalAmount += s.TotalAmount
		for cat, cell := range s.Categories {
			agg := totals.Categories[cat]
			agg.Amount += cell.Amount
			totals.Categories[cat] = agg
		}
	}
	if totals.TotalAmount > 0 {
		for cat, cell := range totals.Categories {
			cell.Percent = round2(cell.Amount / totals.TotalAmount * 100)
			totals.Categories[cat] = cell
		}
	}
	return totals
}

// TierSummaries groups the summary rows by tier, highest tier first. Tiers
// with no dealers are omitted.
func TierSummaries(summaries []models.DealerSummary) []models.TierSummary {
	byTier := make(map[models.Tier]*models.TierSummary)
	for _, s := range summaries {
		agg, ok := byTier[s.Tier]
		if !ok {
			agg = &models.TierSummary{Tier: s.Tier}
			byTier[s.Tier] = agg
		}
		agg.Dealers++
		agg.TotalOrders += s.TotalOrders
		agg.TotalAmount += s.TotalAmount
	}

	out := make([]models.TierSummary, 0, len(byTier))
	for _, tier := range models.TierOrder() {
		if agg, ok := byTier[tier]; ok {
			out = append(out, *agg)
		}
	}
	return out
}
