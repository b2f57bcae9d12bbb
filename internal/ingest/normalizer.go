// Package ingest converts raw import rows into normalized records.
package ingest

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agridash/dealer-insights/internal/category"
	"github.com/agridash/dealer-insights/internal/models"
)

// dateLayouts are tried in order when parsing challan dates.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"2006/01/02",
	"02 Jan 2006",
	time.RFC3339,
}

// Normalizer converts raw rows into normalized records. It never returns
// an error: upstream data quality is assumed poor, so parse failures are
// absorbed into forgiving defaults rather than surfaced. It is safe to
// call in a tight loop over tens of thousands of rows.
type Normalizer struct {
	now    func() time.Time
	logger *zap.Logger
}

// NewNormalizer creates a normalizer using the wall clock.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	return NewNormalizerWithClock(time.Now, logger)
}

// NewNormalizerWithClock creates a normalizer with an injected clock, so
// tests can pin the fallback timestamp used for unparseable dates.
func NewNormalizerWithClock(now func() time.Time, logger *zap.Logger) *Normalizer {
	return &Normalizer{now: now, logger: logger}
}

// Normalize converts one raw row. The returned bool reports whether the
// challan date could not be parsed and the current time was substituted;
// callers count these so synthetic dates are visible on import results
// instead of silently skewing recency-based metrics.
func (n *Normalizer) Normalize(raw models.RawRecord) (models.NormalizedRecord, bool) {
	customer := strings.TrimSpace(raw[models.ColumnCustomerName])
	if customer == "" {
		customer = "Unknown"
	}

	itemName := strings.TrimSpace(raw[models.ColumnItemName])
	cleaned := cleanItemName(itemName)

	date, substituted := n.parseDate(raw[models.ColumnChallanDate])

	rec := models.NormalizedRecord{
		OrderID:         strings.TrimSpace(raw[models.ColumnChallanNumber]),
		CustomerName:    customer,
		ItemName:        itemName,
		ItemNameCleaned: cleaned,
		Category:        category.Classify(cleaned),
		Amount:          parseAmount(raw[models.ColumnItemTotal]),
		Quantity:        parseAmount(raw[models.ColumnQuantity]),
		Date:            date,
		Month:           date.Format("Jan 06"),
		Year:            date.Year(),
		MonthNumber:     int(date.Month()),
	}

	extras := extraFields(raw)
	if len(extras) > 0 {
		rec.ExtraFields = extras
	}
	return rec, substituted
}

// NormalizeAll converts a batch of rows, returning the records and the
// number of date substitutions.
func (n *Normalizer) NormalizeAll(raws []models.RawRecord) ([]models.NormalizedRecord, int) {
	records := make([]models.NormalizedRecord, 0, len(raws))
	substituted := 0
	for _, raw := range raws {
		rec, sub := n.Normalize(raw)
		if sub {
			substituted++
		}
		records = append(records, rec)
	}
	if substituted > 0 && n.logger != nil {
		n.logger.Warn("Substituted current time for unparseable challan dates",
			zap.Int("count", substituted),
			zap.Int("total", len(raws)))
	}
	return records, substituted
}

func (n *Normalizer) parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t, false
			}
		}
	}
	return n.now(), true
}

// parseAmount strips currency symbols and thousand separators before the
// numeric conversion. Non-numeric or negative results coerce to 0; the
// amount invariant is always >= 0.
func parseAmount(value string) float64 {
	s := strings.TrimSpace(value)
	for _, prefix := range []string{"₹", "Rs.", "Rs", "INR"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// cleanItemName lowercases and collapses whitespace runs so the classifier
// sees a canonical form.
func cleanItemName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func extraFields(raw models.RawRecord) map[string]string {
	known := map[string]struct{}{
		models.ColumnChallanNumber: {},
		models.ColumnChallanDate:   {},
		models.ColumnCustomerName:  {},
		models.ColumnItemName:      {},
		models.ColumnItemTotal:     {},
		models.ColumnQuantity:      {},
	}
	extras := make(map[string]string)
	for col, val := range raw {
		if _, ok := known[col]; ok {
			continue
		}
		extras[col] = val
	}
	return extras
}
