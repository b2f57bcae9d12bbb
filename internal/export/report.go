package export

import (
	"fmt"
	"strings"

	"github.com/agridash/dealer-insights/internal/models"
)

const defaultPageSize = 50

// ToReportPages renders the records as paginated plain-text pages, one
// string per page. A non-positive pageSize falls back to the default.
func ToReportPages(records []models.NormalizedRecord, fields []string, pageSize int) []string {
	if len(records) == 0 {
		return nil
	}
	if len(fields) == 0 {
		fields = DefaultFields()
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	totalPages := (len(records) + pageSize - 1) / pageSize

	var pages []string
	for page := 0; page < totalPages; page++ {
		start := page * pageSize
		end := start + pageSize
		if end > len(records) {
			end = len(records)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Dealer Records (page %d of %d)\n", page+1, totalPages)
		b.WriteString(strings.Repeat("=", 40))
		b.WriteByte('\n')
		for _, rec := range records[start:end] {
			for _, field := range fields {
				fmt.Fprintf(&b, "%s: %s\n", field, rec.Field(field))
			}
			b.WriteByte('\n')
		}
		pages = append(pages, b.String())
	}
	return pages
}
