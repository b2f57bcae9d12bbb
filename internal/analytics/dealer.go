// Package analytics holds the pure reducers that turn normalized records
// into view-ready aggregates. Every reducer is total over any input slice,
// including the empty one, runs in a single O(n) accumulation pass, and
// breaks sort ties on first-encountered order (stable sort on insertion
// order; no stronger tie-break is guaranteed).
package analytics

import (
	"sort"
	"time"

	"github.com/agridash/dealer-insights/internal/models"
)

type dealerAccumulator struct {
	stat       models.DealerStat
	orders     map[string]struct{}
	categories map[models.Category]struct{}
	firstOrder time.Time
	lastOrder  time.Time
}

// DealerStats groups records by customer and accumulates total sales,
// distinct-order counts and distinct categories, sorted by total sales
// descending. The produced keys are exactly the distinct customers in the
// input, and group sums reconstruct the grand total.
func DealerStats(records []models.NormalizedRecord) []models.DealerStat {
	accs, order := accumulateDealers(records)

	stats := make([]models.DealerStat, 0, len(order))
	for _, name := range order {
		acc := accs[name]
		acc.stat.TotalOrders = len(acc.orders)
		acc.stat.CategoryCount = len(acc.categories)
		stats = append(stats, acc.stat)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalSales > stats[j].TotalSales
	})
	return stats
}

// TopN returns the first n ranking rows after the stable descending sort.
// n larger than the input returns everything.
func TopN(stats []models.DealerStat, n int) []models.DealerStat {
	if n < 0 {
		n = 0
	}
	if n > len(stats) {
		n = len(stats)
	}
	return stats[:n]
}

func accumulateDealers(records []models.NormalizedRecord) (map[string]*dealerAccumulator, []string) {
	accs := make(map[string]*dealerAccumulator)
	var order []string

	for _, r := range records {
		acc, ok := accs[r.CustomerName]
		if !ok {
			acc = &dealerAccumulator{
				stat:       models.DealerStat{CustomerName: r.CustomerName},
				orders:     make(map[string]struct{}),
				categories: make(map[models.Category]struct{}),
				firstOrder: r.Date,
				lastOrder:  r.Date,
			}
			accs[r.CustomerName] = acc
			order = append(order, r.CustomerName)
		}

		acc.stat.TotalSales += r.Amount
		acc.stat.LineItems++
		if r.OrderID != "" {
			acc.orders[r.OrderID] = struct{}{}
		}
		if _, seen := acc.categories[r.Category]; !seen {
			acc.categories[r.Category] = struct{}{}
			acc.stat.Categories = append(acc.stat.Categories, string(r.Category))
		}
		if r.Date.Before(acc.firstOrder) {
			acc.firstOrder = r.Date
		}
		if r.Date.After(acc.lastOrder) {
			acc.lastOrder = r.Date
		}
	}
	return accs, order
}
