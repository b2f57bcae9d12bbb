package analytics

import (
	"sort"

	"github.com/agridash/dealer-insights/internal/models"
)

// ProductTrend pivots ordered quantity by item and month, with per-item
// total quantity and total cost. Rows are ordered by category, then item
// name, matching the timeline table of the dashboard.
func ProductTrend(records []models.NormalizedRecord) []models.ProductTrendRow {
	type itemKey struct {
		category models.Category
		item     string
	}

	rows := make(map[itemKey]*models.ProductTrendRow)
	var order []itemKey

	for _, r := range records {
		ik := itemKey{r.Category, r.ItemNameCleaned}
		row, ok := rows[ik]
		if !ok {
			row = &models.ProductTrendRow{
				Category:   r.Category,
				ItemName:   r.ItemNameCleaned,
				MonthlyQty: make(map[string]float64),
			}
			rows[ik] = row
			order = append(order, ik)
		}
		row.MonthlyQty[r.Month] += r.Quantity
		row.TotalQty += r.Quantity
		row.TotalCost += r.Amount
	}

	out := make([]models.ProductTrendRow, 0, len(order))
	for _, ik := range order {
		out = append(out, *rows[ik])
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].ItemName < out[j].ItemName
	})
	return out
}

// QuantityHeatmap builds the item x month quantity matrix for one tier's
// records. Other Bulk Orders are excluded, rows whose quantities are all
// zero are dropped, and month labels are chronological.
func QuantityHeatmap(records []models.NormalizedRecord, tier models.Tier) models.Heatmap {
	type monthKey struct {
		year  int
		month int
	}

	cells := make(map[string]map[string]float64)
	var itemOrder []string
	monthLabels := make(map[monthKey]string)

	for _, r := range records {
		if r.Category == models.CategoryOtherBulkOrders {
			continue
		}
		item := r.ItemNameCleaned
		if item == "" {
			item = "unknown item"
		}
		row, ok := cells[item]
		if !ok {
			row = make(map[string]float64)
			cells[item] = row
			itemOrder = append(itemOrder, item)
		}
		row[r.Month] += r.Quantity
		monthLabels[monthKey{r.Year, r.MonthNumber}] = r.Month
	}

	keys := make([]monthKey, 0, len(monthLabels))
	for mk := range monthLabels {
		keys = append(keys, mk)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})
	months := make([]string, 0, len(keys))
	for _, mk := range keys {
		months = append(months, monthLabels[mk])
	}

	hm := models.Heatmap{Tier: tier, Months: months}
	for _, item := range itemOrder {
		row := cells[item]
		total := 0.0
		for _, qty := range row {
			total += qty
		}
		if total <= 0 {
			continue
		}
		hm.Rows = append(hm.Rows, models.HeatmapRow{ItemName: item, Cells: row})
	}
	return hm
}
