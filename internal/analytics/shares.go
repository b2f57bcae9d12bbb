package analytics

import (
	"math"
	"sort"

	"github.com/agridash/dealer-insights/internal/models"
)

// round2 rounds to two decimals, the precision exposed by share views.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CategoryShare sums amounts per category and expresses each as a
// percentage of the grand total. Percentages sum to 100 within rounding
// tolerance. A zero grand total yields zero percentages, not NaN.
func CategoryShare(records []models.NormalizedRecord) []models.CategoryShare {
	totals := make(map[models.Category]float64)
	var order []models.Category
	grand := 0.0

	for _, r := range records {
		if _, seen := totals[r.Category]; !seen {
			order = append(order, r.Category)
		}
		totals[r.Category] += r.Amount
		grand += r.Amount
	}

	shares := make([]models.CategoryShare, 0, len(order))
	for _, cat := range order {
		share := models.CategoryShare{Category: cat, Amount: totals[cat]}
		if grand > 0 {
			share.Percent = round2(totals[cat] / grand * 100)
		}
		shares = append(shares, share)
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Amount > shares[j].Amount
	})
	return shares
}

// MonthlyCategoryShare computes the month x category breakdown: amounts at
// the fine level divided by the month total, so shares within one month sum
// to 100 within rounding tolerance. Output is ordered chronologically, and
// within a month by first-encountered category.
func MonthlyCategoryShare(records []models.NormalizedRecord) []models.MonthCategoryShare {
	type monthKey struct {
		year  int
		month int
	}
	type cellKey struct {
		monthKey
		cat models.Category
	}

	monthTotals := make(map[monthKey]float64)
	cells := make(map[cellKey]*models.MonthCategoryShare)
	var order []cellKey

	for _, r := range records {
		mk := monthKey{r.Year, r.MonthNumber}
		ck := cellKey{mk, r.Category}
		monthTotals[mk] += r.Amount
		if cell, ok := cells[ck]; ok {
			cell.Amount += r.Amount
		} else {
			cells[ck] = &models.MonthCategoryShare{
				Month:       r.Month,
				Year:        r.Year,
				MonthNumber: r.MonthNumber,
				Category:    r.Category,
			}
			cells[ck].Amount = r.Amount
			order = append(order, ck)
		}
	}

	out := make([]models.MonthCategoryShare, 0, len(order))
	for _, ck := range order {
		cell := *cells[ck]
		if total := monthTotals[ck.monthKey]; total > 0 {
			cell.Percent = round2(cell.Amount / total * 100)
		}
		out = append(out, cell)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].MonthNumber < out[j].MonthNumber
	})
	return out
}

// MonthlyTotals sums amount and distinct orders per month, chronologically
// ordered. This is the series fed into GrowthRate.
func MonthlyTotals(records []models.NormalizedRecord) []models.MonthTotal {
	type monthKey struct {
		year  int
		month int
	}

	totals := make(map[monthKey]*models.MonthTotal)
	orders := make(map[monthKey]map[string]struct{})
	var order []monthKey

	for _, r := range records {
		mk := monthKey{r.Year, r.MonthNumber}
		mt, ok := totals[mk]
		if !ok {
			mt = &models.MonthTotal{Month: r.Month, Year: r.Year, MonthNumber: r.MonthNumber}
			totals[mk] = mt
			orders[mk] = make(map[string]struct{})
			order = append(order, mk)
		}
		mt.Amount += r.Amount
		if r.OrderID != "" {
			orders[mk][r.OrderID] = struct{}{}
		}
	}

	out := make([]models.MonthTotal, 0, len(order))
	for _, mk := range order {
		mt := *totals[mk]
		mt.Orders = len(orders[mk])
		out = append(out, mt)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].MonthNumber < out[j].MonthNumber
	})
	return out
}
