package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agridash/dealer-insights/internal/cache"
	"github.com/agridash/dealer-insights/internal/dataset"
	"github.com/agridash/dealer-insights/internal/filter"
	"github.com/agridash/dealer-insights/internal/models"
)

// syntheticDataset builds n records spread over five dealers, three
// categories and a year of dates, with deterministic amounts.
func syntheticDataset(n int) []models.NormalizedRecord {
	categories := []models.Category{
		models.CategoryBioFertilizers,
		models.CategoryMicronutrients,
		models.CategoryBioStimulants,
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	records := make([]models.NormalizedRecord, n)
	for i := 0; i < n; i++ {
		date := base.AddDate(0, 0, i%365)
		records[i] = models.NormalizedRecord{
			OrderID:      fmt.Sprintf("DC-%d", i/3),
			CustomerName: fmt.Sprintf("Dealer-%d", i%5),
			ItemName:     fmt.Sprintf("Item-%d", i%7),
			Category:     categories[i%3],
			Amount:       float64(100 + i%400),
			Quantity:     float64(1 + i%5),
			Date:         date,
			Month:        date.Format("Jan 06"),
			Year:         date.Year(),
			MonthNumber:  int(date.Month()),
		}
	}
	return records
}

func newDashboardFixture(t *testing.T, records []models.NormalizedRecord) (*DashboardService, *cache.TieredCache) {
	logger, _ := zap.NewDevelopment()
	data := dataset.NewStore(logger)
	data.Replace(records)
	viewCache := cache.NewTieredCache(cache.NewMemoryCache(), nil, cache.NewStats(), logger)
	filterCfg := filter.Config{ChunkSize: 500, SyncThreshold: 1000, Debounce: time.Millisecond}
	return NewDashboardService(data, viewCache, time.Minute, filterCfg, logger), viewCache
}

func TestDealerRankingProperties(t *testing.T) {
	records := syntheticDataset(10000)
	svc, _ := newDashboardFixture(t, records)

	res := svc.DealerRanking(models.FilterState{}, 0, "")
	require.True(t, res.Success, res.Error)
	require.Len(t, res.Data, 5)

	// The ranking conserves the grand total.
	var want float64
	expected := make(map[string]float64)
	for _, rec := range records {
		want += rec.Amount
		expected[rec.CustomerName] += rec.Amount
	}
	var got float64
	for _, stat := range res.Data {
		got += stat.TotalSales
		assert.InDelta(t, expected[stat.CustomerName], stat.TotalSales, 0.01)
	}
	assert.InDelta(t, want, got, 0.01)

	// The first row is the dealer with the largest direct sum.
	top := res.Data[0].CustomerName
	for name, sum := range expected {
		assert.GreaterOrEqual(t, expected[top], sum, "ranking head must dominate %s", name)
	}

	topTwo := svc.DealerRanking(models.FilterState{}, 2, "")
	require.True(t, topTwo.Success)
	assert.Len(t, topTwo.Data, 2)
	assert.Equal(t, res.Data[:2], topTwo.Data)
}

func TestDealerNameSearch(t *testing.T) {
	svc, _ := newDashboardFixture(t, syntheticDataset(1000))

	res := svc.DealerRanking(models.FilterState{}, 0, "dealer-3")
	require.True(t, res.Success, res.Error)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Dealer-3", res.Data[0].CustomerName)

	// The ranking search consults dealer names only; a product string
	// surfaces no dealers even though records carry it.
	byItem := svc.DealerRanking(models.FilterState{}, 0, "Item-2")
	require.True(t, byItem.Success)
	assert.Empty(t, byItem.Data)

	// The generic search dimension still matches item names.
	recs := svc.FilteredRecords(models.FilterState{Search: "Item-2"})
	require.True(t, recs.Success)
	assert.NotEmpty(t, recs.Data)
}

func TestTierFilterScopesViews(t *testing.T) {
	records := syntheticDataset(10000)
	svc, _ := newDashboardFixture(t, records)

	summary := svc.DealerSummaryTable(models.FilterState{})
	require.True(t, summary.Success)
	require.NotEmpty(t, summary.Data.Rows)

	// Collect every dealer holding the first row's tier, then filter by
	// that tier (lowercased, the match folds case).
	tier := summary.Data.Rows[0].Tier
	wantDealers := make(map[string]bool)
	for _, row := range summary.Data.Rows {
		if row.Tier == tier {
			wantDealers[row.CustomerName] = true
		}
	}

	state := models.FilterState{Tiers: []string{strings.ToLower(string(tier))}}
	res := svc.DealerRanking(state, 0, "")
	require.True(t, res.Success, res.Error)
	require.Len(t, res.Data, len(wantDealers))
	for _, stat := range res.Data {
		assert.True(t, wantDealers[stat.CustomerName], stat.CustomerName)
	}

	// Record-level reads honor the tier dimension too.
	filtered := svc.FilteredRecords(state)
	require.True(t, filtered.Success)
	require.NotEmpty(t, filtered.Data)
	for _, rec := range filtered.Data {
		require.True(t, wantDealers[rec.CustomerName], rec.CustomerName)
	}

	// An unknown tier matches nothing.
	none := svc.DealerRanking(models.FilterState{Tiers: []string{"Platinum"}}, 0, "")
	require.True(t, none.Success)
	assert.Empty(t, none.Data)
}

func TestDateRangeFilterRestrictsViews(t *testing.T) {
	records := syntheticDataset(10000)
	svc, _ := newDashboardFixture(t, records)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	state := models.FilterState{DateFrom: &from, DateTo: &to}

	res := svc.DealerRanking(state, 0, "")
	require.True(t, res.Success)

	var want float64
	for _, rec := range records {
		if !rec.Date.Before(from) && !rec.Date.After(to) {
			want += rec.Amount
		}
	}
	var got float64
	var gotItems int
	for _, stat := range res.Data {
		got += stat.TotalSales
		gotItems += stat.LineItems
	}
	assert.InDelta(t, want, got, 0.01)

	full := svc.DealerRanking(models.FilterState{}, 0, "")
	var fullSum float64
	var fullItems int
	for _, stat := range full.Data {
		fullSum += stat.TotalSales
		fullItems += stat.LineItems
	}
	assert.Less(t, got, fullSum)

	// Dates are uniform over the year, so a half-year window keeps
	// roughly half the records.
	assert.InDelta(t, float64(fullItems)/2, float64(gotItems), float64(fullItems)/10)
}

func TestFilteredRecords(t *testing.T) {
	records := syntheticDataset(5000)
	logger, _ := zap.NewDevelopment()
	data := dataset.NewStore(logger)
	data.Replace(records)
	viewCache := cache.NewTieredCache(cache.NewMemoryCache(), nil, cache.NewStats(), logger)

	// A small chunk size forces the cooperative chunked path.
	svc := NewDashboardService(data, viewCache, time.Minute,
		filter.Config{ChunkSize: 100, SyncThreshold: 500, Debounce: time.Millisecond}, logger)

	state := models.FilterState{Customers: []string{"Dealer-2"}}
	res := svc.FilteredRecords(state)
	require.True(t, res.Success)
	assert.Equal(t, filter.Apply(records, state), res.Data)

	// Above the threshold with no constraints the full snapshot comes back.
	all := svc.FilteredRecords(models.FilterState{})
	require.True(t, all.Success)
	assert.Len(t, all.Data, 5000)
}

func TestViewsAreMemoizedPerFilterState(t *testing.T) {
	svc, viewCache := newDashboardFixture(t, syntheticDataset(1000))

	state := models.FilterState{Customers: []string{"Dealer-1"}}
	first := svc.CategoryShares(state)
	require.True(t, first.Success)
	second := svc.CategoryShares(state)
	require.True(t, second.Success)
	assert.Equal(t, first.Data, second.Data)

	key := viewKey("category-shares", state)
	assert.Equal(t, uint64(1), viewCache.Stats().Key(key).Misses)
	assert.Equal(t, uint64(1), viewCache.Stats().Key(key).Hits)

	// A different filter state computes under its own key.
	other := svc.CategoryShares(models.FilterState{})
	require.True(t, other.Success)
	assert.NotEqual(t, viewKey("category-shares", models.FilterState{}), key)
}

func TestDealerSummaryTable(t *testing.T) {
	svc, _ := newDashboardFixture(t, syntheticDataset(1000))

	res := svc.DealerSummaryTable(models.FilterState{})
	require.True(t, res.Success)
	require.Len(t, res.Data.Rows, 5)

	var rowSum float64
	for _, row := range res.Data.Rows {
		rowSum += row.TotalAmount
		assert.NotEmpty(t, row.Tier)
		assert.GreaterOrEqual(t, row.LoyaltyScore, 0.0)
		assert.LessOrEqual(t, row.LoyaltyScore, 100.0)
	}
	assert.InDelta(t, res.Data.Totals.TotalAmount, rowSum, 0.01)

	tiers := svc.TierSummary(models.FilterState{})
	require.True(t, tiers.Success)
	dealers := 0
	for _, ts := range tiers.Data {
		dealers += ts.Dealers
	}
	assert.Equal(t, 5, dealers)
}

func TestTrendViews(t *testing.T) {
	svc, _ := newDashboardFixture(t, syntheticDataset(1000))

	totals := svc.MonthlyTotals(models.FilterState{})
	require.True(t, totals.Success)
	assert.NotEmpty(t, totals.Data)

	growth := svc.Growth(models.FilterState{}, 3)
	require.True(t, growth.Success)

	trends := svc.ProductTrends(models.FilterState{})
	require.True(t, trends.Success)
	assert.NotEmpty(t, trends.Data)

	shares := svc.MonthlyCategoryShares(models.FilterState{})
	require.True(t, shares.Success)
	assert.NotEmpty(t, shares.Data)

	heatmap := svc.TierHeatmap(models.FilterState{}, models.TierCopper)
	require.True(t, heatmap.Success)
	assert.Equal(t, models.TierCopper, heatmap.Data.Tier)
}

func TestExport(t *testing.T) {
	svc, _ := newDashboardFixture(t, syntheticDataset(100))

	t.Run("csv artifact re-parses", func(t *testing.T) {
		res := svc.Export(models.FilterState{}, FormatCSV, nil, 0)
		require.True(t, res.Success, res.Error)
		assert.Equal(t, "text/csv", res.Data.ContentType)
		assert.Equal(t, 100, res.Data.Records)

		rows, err := csv.NewReader(bytes.NewReader(res.Data.Data)).ReadAll()
		require.NoError(t, err)
		assert.Len(t, rows, 101)
	})

	t.Run("report artifact paginates", func(t *testing.T) {
		res := svc.Export(models.FilterState{}, FormatReport, nil, 25)
		require.True(t, res.Success)
		assert.Len(t, res.Data.Pages, 4)
	})

	t.Run("xlsx artifact is produced", func(t *testing.T) {
		res := svc.Export(models.FilterState{}, FormatExcel, nil, 0)
		require.True(t, res.Success)
		assert.NotEmpty(t, res.Data.Data)
	})

	t.Run("unknown format fails", func(t *testing.T) {
		res := svc.Export(models.FilterState{}, "pdf", nil, 0)
		assert.False(t, res.Success)
	})

	t.Run("empty filtered set exports nothing", func(t *testing.T) {
		res := svc.Export(models.FilterState{Customers: []string{"nobody"}}, FormatCSV, nil, 0)
		require.True(t, res.Success)
		assert.Nil(t, res.Data.Data)
		assert.Equal(t, 0, res.Data.Records)
	})
}

func TestCacheOperations(t *testing.T) {
	svc, viewCache := newDashboardFixture(t, syntheticDataset(100))

	require.True(t, svc.CategoryShares(models.FilterState{}).Success)
	stats := svc.CacheStats()
	require.True(t, stats.Success)
	assert.NotEmpty(t, stats.Data)

	require.True(t, svc.ClearCache().Success)
	_, ok := viewCache.Get(viewKey("category-shares", models.FilterState{}))
	assert.False(t, ok)
}
