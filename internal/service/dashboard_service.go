package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agridash/dealer-insights/internal/analytics"
	"github.com/agridash/dealer-insights/internal/cache"
	"github.com/agridash/dealer-insights/internal/dataset"
	"github.com/agridash/dealer-insights/internal/export"
	"github.com/agridash/dealer-insights/internal/filter"
	"github.com/agridash/dealer-insights/internal/models"
)

// ExportFormat selects the export artifact type.
type ExportFormat string

const (
	FormatCSV    ExportFormat = "csv"
	FormatExcel  ExportFormat = "xlsx"
	FormatReport ExportFormat = "report"
)

// ExportArtifact is a rendered export ready to hand to the transport.
type ExportArtifact struct {
	Format      ExportFormat `json:"format"`
	ContentType string       `json:"contentType"`
	FileName    string       `json:"fileName"`
	Data        []byte       `json:"data,omitempty"`
	Pages       []string     `json:"pages,omitempty"`
	Records     int          `json:"records"`
}

// DealerSummaryView is the dealer summary table plus its grand-total row.
type DealerSummaryView struct {
	Rows   []models.DealerSummary `json:"rows"`
	Totals models.SummaryTotals   `json:"totals"`
}

// DashboardService computes the analytics views over the filtered
// dataset. Every view is memoized in the two-tier cache under a key
// derived from the view name and the filter state, so repeated reads
// with an unchanged dataset and filter hit the cache.
type DashboardService struct {
	data      *dataset.Store
	cache     *cache.TieredCache
	loyalty   analytics.LoyaltyPolicy
	tiers     analytics.TierPolicy
	viewTTL   time.Duration
	filterCfg filter.Config
	logger    *zap.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(data *dataset.Store, viewCache *cache.TieredCache, viewTTL time.Duration, filterCfg filter.Config, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		data:      data,
		cache:     viewCache,
		loyalty:   analytics.DefaultLoyaltyPolicy(),
		tiers:     analytics.DefaultTierPolicy(),
		viewTTL:   viewTTL,
		filterCfg: filterCfg,
		logger:    logger,
	}
}

func (s *DashboardService) filtered(state models.FilterState) []models.NormalizedRecord {
	records := filter.Apply(s.data.Snapshot(), state)
	return s.scopeTiers(records, state.Tiers)
}

// scopeTiers narrows records to dealers whose assigned tier is one of the
// accepted ones. Tier assignment is derived from the dealer summaries over
// the records already narrowed by the record-level dimensions, so the tier
// filter sees the same assignments as the summary table.
func (s *DashboardService) scopeTiers(records []models.NormalizedRecord, tiers []string) []models.NormalizedRecord {
	if len(tiers) == 0 {
		return records
	}

	inTier := make(map[string]bool)
	for _, row := range analytics.DealerSummaries(records, s.loyalty, s.tiers) {
		for _, want := range tiers {
			if strings.EqualFold(want, string(row.Tier)) {
				inTier[row.CustomerName] = true
				break
			}
		}
	}

	out := make([]models.NormalizedRecord, 0, len(records))
	for _, rec := range records {
		if inTier[rec.CustomerName] {
			out = append(out, rec)
		}
	}
	return out
}

// FilteredRecords returns the raw record subset matching the filter. It
// runs through the filter pipeline, so datasets above the sync threshold
// are processed in cooperative chunks instead of one long pass.
func (s *DashboardService) FilteredRecords(state models.FilterState) models.OpResult[[]models.NormalizedRecord] {
	resultCh := make(chan []models.NormalizedRecord, 1)
	p := filter.NewPipeline(s.filterCfg, func(records []models.NormalizedRecord, _ models.FilterState) {
		resultCh <- records
	}, nil, s.logger)

	p.Submit(s.data.Snapshot(), state)
	p.Flush()
	records := <-resultCh
	p.Close()

	return models.OK(s.scopeTiers(records, state.Tiers))
}

func viewKey(name string, state models.FilterState, extra ...any) string {
	key := "view:" + name + ":" + state.CacheKey()
	for _, e := range extra {
		key += fmt.Sprintf(":%v", e)
	}
	return key
}

// DealerRanking returns the top-n dealers by total sales under the
// current filter. n <= 0 returns all dealers. A non-empty search narrows
// the ranking rows to dealers whose name contains the term; unlike the
// record-level Search dimension it never consults item names.
func (s *DashboardService) DealerRanking(state models.FilterState, n int, search string) models.OpResult[[]models.DealerStat] {
	stats, err := cache.FetchJSON(s.cache, viewKey("dealers", state, n, strings.ToLower(search)), s.viewTTL, func() ([]models.DealerStat, error) {
		stats := analytics.DealerStats(s.filtered(state))
		if search != "" {
			term := strings.ToLower(search)
			kept := stats[:0]
			for _, stat := range stats {
				if strings.Contains(strings.ToLower(stat.CustomerName), term) {
					kept = append(kept, stat)
				}
			}
			stats = kept
		}
		if n > 0 {
			stats = analytics.TopN(stats, n)
		}
		return stats, nil
	})
	if err != nil {
		return models.Failf[[]models.DealerStat]("failed to compute dealer ranking: %v", err)
	}
	return models.OK(stats)
}

// CategoryShares returns per-category amounts and percentages of the
// filtered grand total.
func (s *DashboardService) CategoryShares(state models.FilterState) models.OpResult[[]models.CategoryShare] {
	shares, err := cache.FetchJSON(s.cache, viewKey("category-shares", state), s.viewTTL, func() ([]models.CategoryShare, error) {
		return analytics.CategoryShare(s.filtered(state)), nil
	})
	if err != nil {
		return models.Failf[[]models.CategoryShare]("failed to compute category shares: %v", err)
	}
	return models.OK(shares)
}

// MonthlyCategoryShares returns the month x category breakdown.
func (s *DashboardService) MonthlyCategoryShares(state models.FilterState) models.OpResult[[]models.MonthCategoryShare] {
	shares, err := cache.FetchJSON(s.cache, viewKey("monthly-category-shares", state), s.viewTTL, func() ([]models.MonthCategoryShare, error) {
		return analytics.MonthlyCategoryShare(s.filtered(state)), nil
	})
	if err != nil {
		return models.Failf[[]models.MonthCategoryShare]("failed to compute monthly shares: %v", err)
	}
	return models.OK(shares)
}

// MonthlyTotals returns the chronological per-month amount/order series.
func (s *DashboardService) MonthlyTotals(state models.FilterState) models.OpResult[[]models.MonthTotal] {
	totals, err := cache.FetchJSON(s.cache, viewKey("monthly-totals", state), s.viewTTL, func() ([]models.MonthTotal, error) {
		return analytics.MonthlyTotals(s.filtered(state)), nil
	})
	if err != nil {
		return models.Failf[[]models.MonthTotal]("failed to compute monthly totals: %v", err)
	}
	return models.OK(totals)
}

// Growth returns the trailing-window growth rate of monthly sales.
func (s *DashboardService) Growth(state models.FilterState, window int) models.OpResult[float64] {
	if window <= 0 {
		window = 3
	}
	rate, err := cache.FetchJSON(s.cache, viewKey("growth", state, window), s.viewTTL, func() (float64, error) {
		return analytics.GrowthRate(analytics.MonthlyTotals(s.filtered(state)), window), nil
	})
	if err != nil {
		return models.Failf[float64]("failed to compute growth: %v", err)
	}
	return models.OK(rate)
}

// DealerSummaryTable returns the per-dealer summary rows plus totals.
func (s *DashboardService) DealerSummaryTable(state models.FilterState) models.OpResult[DealerSummaryView] {
	view, err := cache.FetchJSON(s.cache, viewKey("dealer-summary", state), s.viewTTL, func() (DealerSummaryView, error) {
		rows := analytics.DealerSummaries(s.filtered(state), s.loyalty, s.tiers)
		return DealerSummaryView{Rows: rows, Totals: analytics.SummaryTotals(rows)}, nil
	})
	if err != nil {
		return models.Failf[DealerSummaryView]("failed to compute dealer summary: %v", err)
	}
	return models.OK(view)
}

// TierSummary groups the dealer summaries by assigned tier.
func (s *DashboardService) TierSummary(state models.FilterState) models.OpResult[[]models.TierSummary] {
	tiers, err := cache.FetchJSON(s.cache, viewKey("tier-summary", state), s.viewTTL, func() ([]models.TierSummary, error) {
		rows := analytics.DealerSummaries(s.filtered(state), s.loyalty, s.tiers)
		return analytics.TierSummaries(rows), nil
	})
	if err != nil {
		return models.Failf[[]models.TierSummary]("failed to compute tier summary: %v", err)
	}
	return models.OK(tiers)
}

// ProductTrends returns the item x month quantity timeline.
func (s *DashboardService) ProductTrends(state models.FilterState) models.OpResult[[]models.ProductTrendRow] {
	rows, err := cache.FetchJSON(s.cache, viewKey("product-trends", state), s.viewTTL, func() ([]models.ProductTrendRow, error) {
		return analytics.ProductTrend(s.filtered(state)), nil
	})
	if err != nil {
		return models.Failf[[]models.ProductTrendRow]("failed to compute product trends: %v", err)
	}
	return models.OK(rows)
}

// TierHeatmap returns the quantity heatmap for one dealer tier.
func (s *DashboardService) TierHeatmap(state models.FilterState, tier models.Tier) models.OpResult[models.Heatmap] {
	heatmap, err := cache.FetchJSON(s.cache, viewKey("heatmap", state, tier), s.viewTTL, func() (models.Heatmap, error) {
		scoped := s.scopeTiers(s.filtered(state), []string{string(tier)})
		return analytics.QuantityHeatmap(scoped, tier), nil
	})
	if err != nil {
		return models.Failf[models.Heatmap]("failed to compute heatmap: %v", err)
	}
	return models.OK(heatmap)
}

// Export renders the filtered record set in the requested format.
// Exports are not memoized; artifacts can be large and are typically
// requested once.
func (s *DashboardService) Export(state models.FilterState, format ExportFormat, fields []string, pageSize int) models.OpResult[ExportArtifact] {
	records := s.filtered(state)
	artifact := ExportArtifact{Format: format, Records: len(records)}

	switch format {
	case FormatCSV:
		data, err := export.ToCSV(records, fields)
		if err != nil {
			return models.Failf[ExportArtifact]("failed to export csv: %v", err)
		}
		artifact.Data = data
		artifact.ContentType = "text/csv"
		artifact.FileName = "dealer-records.csv"
	case FormatExcel:
		data, err := export.ToExcel(records, fields)
		if err != nil {
			return models.Failf[ExportArtifact]("failed to export workbook: %v", err)
		}
		artifact.Data = data
		artifact.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		artifact.FileName = "dealer-records.xlsx"
	case FormatReport:
		artifact.Pages = export.ToReportPages(records, fields, pageSize)
		artifact.ContentType = "text/plain"
		artifact.FileName = "dealer-records.txt"
	default:
		return models.Failf[ExportArtifact]("unsupported export format: %q", format)
	}

	return models.OK(artifact)
}

// CacheStats returns the per-key and aggregate cache counters.
func (s *DashboardService) CacheStats() models.OpResult[map[string]cache.KeyStats] {
	return models.OK(s.cache.Stats().Snapshot())
}

// ClearCache drops every memoized view.
func (s *DashboardService) ClearCache() models.OpResult[string] {
	if err := s.cache.Clear(); err != nil {
		return models.Failf[string]("failed to clear cache: %v", err)
	}
	return models.OK("cache cleared")
}
