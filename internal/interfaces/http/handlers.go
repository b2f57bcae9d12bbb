package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agridash/dealer-insights/internal/models"
	"github.com/agridash/dealer-insights/internal/service"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	imports   *service.ImportService
	dashboard *service.DashboardService
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(imports *service.ImportService, dashboard *service.DashboardService, logger *zap.Logger) *Handlers {
	return &Handlers{imports: imports, dashboard: dashboard, logger: logger}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// respond writes an OpResult as JSON: 200 on success, 400 otherwise.
func respond[T any](c *gin.Context, res models.OpResult[T]) {
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	c.JSON(status, res)
}

// parseFilterState builds a FilterState from the common query
// parameters shared by every view endpoint.
func parseFilterState(c *gin.Context) (models.FilterState, error) {
	var state models.FilterState

	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return state, err
		}
		state.DateFrom = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return state, err
		}
		state.DateTo = &t
	}
	state.Customers = splitList(c.Query("customers"))
	state.Categories = splitList(c.Query("categories"))
	state.Tiers = splitList(c.Query("tiers"))
	if min := c.Query("min_amount"); min != "" {
		v, err := strconv.ParseFloat(min, 64)
		if err != nil {
			return state, err
		}
		state.MinAmount = &v
	}
	if max := c.Query("max_amount"); max != "" {
		v, err := strconv.ParseFloat(max, 64)
		if err != nil {
			return state, err
		}
		state.MaxAmount = &v
	}
	state.Search = c.Query("q")

	return state, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func badFilter(c *gin.Context, err error) {
	respond(c, models.Failf[any]("invalid filter parameters: %v", err))
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	respond(c, models.OK(HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}))
}

// ImportCSV handles POST /api/v1/imports. Expects a multipart form with
// a "file" part and an optional "mode" field (replace|append).
func (h *Handlers) ImportCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond(c, models.Fail[any]("missing file upload"))
		return
	}

	mode := models.ImportMode(c.DefaultPostForm("mode", string(models.ImportModeReplace)))

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open upload", zap.Error(err))
		respond(c, models.Fail[any]("failed to open upload"))
		return
	}
	defer file.Close()

	respond(c, h.imports.ImportCSV(file, mode, fileHeader.Filename))
}

// ListBatches handles GET /api/v1/batches
func (h *Handlers) ListBatches(c *gin.Context) {
	includeDeleted := c.Query("include_deleted") == "true"
	respond(c, h.imports.ListBatches(includeDeleted))
}

// DeleteBatch handles DELETE /api/v1/batches/:id
func (h *Handlers) DeleteBatch(c *gin.Context) {
	respond(c, h.imports.DeleteBatch(c.Param("id")))
}

// FilteredRecords handles GET /api/v1/records
func (h *Handlers) FilteredRecords(c *gin.Context) {
	state, err := parseFilterState(c)
	if err != nil {
		badFilter(c, err)
		return
	}
	respond(c, h.dashboard.FilteredRecords(state))
}

// ClearRecords handles DELETE /api/v1/records
func (h *Handlers) ClearRecords(c *gin.Context) {
	respond(c, h.imports.ClearAll())
}

// DealerRanking handles GET /api/v1/views/dealers. The optional "dealer"
// parameter searches dealer names within the ranking.
func (h *Handlers) DealerRanking(c *gin.Context) {
	state, err := parseFilterState(c)
	if err != nil {
		badFilter(c, err)
		return
	}
	top, _ := strconv.Atoi(c.DefaultQuery("top", "0"))
	respond(c, h.dashboard.DealerRanking(state, top, c.Query("dealer")))
}

// CategoryShares handles GET /api/v1/views/category-shares
func (h *Handlers) CategoryShares(c *gin.Context) {
	state, err := parseFilterState(c)
	if err != nil {
		badFilter(c, err)
		return
	}
	respond(c, h.dashboard.CategoryShares(state))
}

// MonthlyCategoryShares handles GET /api/v1/views/monthly-category-shares
func (h *Handlers) MonthlyCategoryShares(c *gin.Context) {
	state, err := parseFilterState(c)
	if err != nil {
		badFilter(c, err)
		return
	}
	respond(c, h.dashboard.MonthlyCategoryShares(state))
}

// MonthlyTotals handles GET /api/v1/views/monthly-totals
func (h *Handlers) MonthlyTotals(c *gin.Context) {
	state, err := parseFilterState(c)
	if err != nil {
		badFilter(c, err)
		return
	}
	respond(c, h.dashboard.MonthlyTotals(state))
}

// Growth handles GET /api/v1/views/growth
func (h *Handlers) Growth(c *gin.Context) {
	state, err := parseFilterState(c)
	if err != nil {
		badFilter(c, err)
		return
	}
	window, _ := strconv.Atoi(c.DefaultQuery("window", "3"))
	respond(c, h.dashboard.Growth(state, window))
}

// DealerSummary handles GET /api/v1/views/dealer-summary
func (h *Handlers) DealerSummary(c *gin.Context) {
	state, err := parseFilterState(c)
	if err != nil {
		badFilter(c, err)
		return
	}
	respond(c, h.dashboard.DealerSummaryTable(state))
}

// TierSummary handles GET /api/v1/views/tier-summary
func (h *Handlers) TierSummary(c *gin.Context) {
	state, err := parseFilterState(c)
	if err != nil {
		badFilter(c, err)
		return
	}
	respond(c, h.dashboard.TierSummary(state))
}

// ProductTrends handles GET /api/v1/views/product-trends
func (h *Handlers) ProductTrends(c *gin.Context) {
	state, err := parseFilterState(c)
	if err != nil {
		badFilter(c, err)
		return
	}
	respond(c, h.dashboard.ProductTrends(state))
}

// TierHeatmap handles GET /api/v1/views/heatmap
func (h *Handlers) TierHeatmap(c *gin.Context) {
	state, err := parseFilterState(c)
	if err != nil {
		badFilter(c, err)
		return
	}
	tier := models.Tier(c.DefaultQuery("tier", string(models.TierGold)))
	respond(c, h.dashboard.TierHeatmap(state, tier))
}

// Export handles GET /api/v1/export. Binary formats stream the artifact
// as a download; the report format returns JSON pages.
func (h *Handlers) Export(c *gin.Context) {
	state, err := parseFilterState(c)
	if err != nil {
		badFilter(c, err)
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", string(service.FormatCSV)))
	fields := splitList(c.Query("fields"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	res := h.dashboard.Export(state, format, fields, pageSize)
	if !res.Success {
		respond(c, res)
		return
	}

	if format == service.FormatReport {
		respond(c, res)
		return
	}
	if len(res.Data.Data) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+res.Data.FileName+`"`)
	c.Data(http.StatusOK, res.Data.ContentType, res.Data.Data)
}

// ListFiles handles GET /api/v1/files
func (h *Handlers) ListFiles(c *gin.Context) {
	respond(c, h.imports.ListFiles())
}

// DeleteFile handles DELETE /api/v1/files/:id
func (h *Handlers) DeleteFile(c *gin.Context) {
	respond(c, h.imports.DeleteFile(c.Param("id")))
}

// ClearCache handles POST /api/v1/cache/clear
func (h *Handlers) ClearCache(c *gin.Context) {
	respond(c, h.dashboard.ClearCache())
}

// CacheStats handles GET /api/v1/cache/stats
func (h *Handlers) CacheStats(c *gin.Context) {
	respond(c, h.dashboard.CacheStats())
}
